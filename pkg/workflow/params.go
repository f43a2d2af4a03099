package workflow

import "strings"

// FlatParam is a parameter addressed by a dotted key path such as
// "task_json.bgm.url".
type FlatParam struct {
	Key   string `json:"key" yaml:"key"`
	Value any    `json:"value,omitempty" yaml:"value,omitempty"`
}

// FlattenParams converts nested parameters into dotted-key leaves. A
// parameter with sub-parameters contributes only its leaves; one without
// sub-parameters contributes itself. Parameters with an empty key are
// dropped.
func FlattenParams(params []Param) []FlatParam {
	var out []FlatParam
	var walk func(items []Param, prefix string)
	walk = func(items []Param, prefix string) {
		for _, p := range items {
			if p.Key == "" {
				continue
			}
			key := p.Key
			if prefix != "" {
				key = prefix + "." + p.Key
			}
			if len(p.SubParams) > 0 {
				walk(p.SubParams, key)
				continue
			}
			out = append(out, FlatParam{Key: key, Value: p.Value})
		}
	}
	walk(params, "")
	return out
}

// RestoreParams rebuilds nested parameters from dotted keys, at any depth.
// Keys are trimmed and blank keys skipped. Sibling order follows first
// appearance; a repeated leaf key overwrites the earlier value.
func RestoreParams(flat []FlatParam) []Param {
	var roots []*Param
	rootIdx := make(map[string]int)

	for _, fp := range flat {
		key := strings.TrimSpace(fp.Key)
		if key == "" {
			continue
		}
		parts := strings.Split(key, ".")

		if len(parts) == 1 {
			p := &Param{Key: parts[0], Value: fp.Value}
			if i, ok := rootIdx[parts[0]]; ok {
				roots[i] = p
			} else {
				rootIdx[parts[0]] = len(roots)
				roots = append(roots, p)
			}
			continue
		}

		var cur *Param
		if i, ok := rootIdx[parts[0]]; ok {
			cur = roots[i]
		} else {
			cur = &Param{Key: parts[0]}
			rootIdx[parts[0]] = len(roots)
			roots = append(roots, cur)
		}
		for i, part := range parts[1:] {
			child := findParam(cur.SubParams, part)
			if child < 0 {
				cur.SubParams = append(cur.SubParams, Param{Key: part})
				child = len(cur.SubParams) - 1
			}
			if i == len(parts)-2 {
				cur.SubParams[child].Value = fp.Value
				break
			}
			cur = &cur.SubParams[child]
		}
	}

	out := make([]Param, len(roots))
	for i, r := range roots {
		out[i] = *r
	}
	return out
}

func findParam(ps []Param, key string) int {
	for i := range ps {
		if ps[i].Key == key {
			return i
		}
	}
	return -1
}

package workflow

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/flowlayout/pkg/errors"
)

// Format identifies a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat parses a format name. The empty string selects JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unknown format %q (want json or yaml)", s)
}

// DetectFormat guesses the encoding of data. Input whose first non-space
// byte opens a JSON object or array is JSON; anything else is YAML.
func DetectFormat(data []byte) Format {
	trimmed := bytes.TrimLeft(data, " \t\r\n\ufeff")
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return FormatJSON
	}
	return FormatYAML
}

// FormatForPath returns the format implied by a file extension, or ""
// when the extension says nothing.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	}
	return ""
}

// Parse decodes and validates a workflow document, detecting its format.
func Parse(data []byte) (*Document, error) {
	return ParseAs(data, DetectFormat(data))
}

// ParseAs decodes and validates a workflow document in the given format.
func ParseAs(data []byte, format Format) (*Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "document is empty")
	}

	var (
		doc *Document
		err error
	)
	switch format {
	case FormatYAML:
		doc, err = decodeYAML(data)
	default:
		doc, err = decodeJSON(data)
	}
	if err != nil {
		return nil, err
	}
	if err := Validate(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// ParseFile reads and parses a workflow file. A .yaml or .yml extension
// forces YAML; otherwise the format is detected from the content.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "file not found: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	format := FormatForPath(path)
	if format == "" {
		format = DetectFormat(data)
	}
	return ParseAs(data, format)
}

func decodeJSON(data []byte) (*Document, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n\ufeff")

	if len(trimmed) > 0 && trimmed[0] == '[' {
		var tasks []Task
		if err := json.Unmarshal(trimmed, &tasks); err != nil {
			return nil, jsonError(err)
		}
		return &Document{Tasks: tasks, Bare: true}, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, jsonError(err)
	}
	if _, ok := fields["tasks"]; ok {
		var doc Document
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, jsonError(err)
		}
		return &doc, nil
	}

	var task Task
	if err := json.Unmarshal(trimmed, &task); err != nil {
		return nil, jsonError(err)
	}
	return &Document{Tasks: []Task{task}, Bare: true, Single: true}, nil
}

func jsonError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if stderrors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "document"
		}
		return errors.Wrap(errors.ErrCodeInvalidSchema, err, "field %s has the wrong type", field)
	}
	return errors.Wrap(errors.ErrCodeInvalidJSON, err, "invalid JSON")
}

func decodeYAML(data []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, yamlError(err)
	}
	node := &root
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}

	switch node.Kind {
	case yaml.SequenceNode:
		var tasks []Task
		if err := node.Decode(&tasks); err != nil {
			return nil, yamlError(err)
		}
		return &Document{Tasks: tasks, Bare: true}, nil
	case yaml.MappingNode:
		if hasKey(node, "tasks") {
			var doc Document
			if err := node.Decode(&doc); err != nil {
				return nil, yamlError(err)
			}
			return &doc, nil
		}
		var task Task
		if err := node.Decode(&task); err != nil {
			return nil, yamlError(err)
		}
		return &Document{Tasks: []Task{task}, Bare: true, Single: true}, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidSchema, "document must be a mapping or a list of tasks")
}

func hasKey(mapping *yaml.Node, key string) bool {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return true
		}
	}
	return false
}

func yamlError(err error) error {
	var typeErr *yaml.TypeError
	if stderrors.As(err, &typeErr) {
		return errors.Wrap(errors.ErrCodeInvalidSchema, err, "document has fields of the wrong type")
	}
	return errors.Wrap(errors.ErrCodeInvalidYAML, err, "invalid YAML")
}

// Validate checks that doc can be turned into a graph.
func Validate(doc *Document) error {
	if doc == nil || len(doc.Tasks) == 0 {
		return errors.New(errors.ErrCodeInvalidSchema, "workflow has no tasks")
	}
	seen := make(map[string]struct{}, len(doc.Tasks))
	for i, t := range doc.Tasks {
		if t.ID == "" {
			return errors.New(errors.ErrCodeInvalidSchema, "task %d is missing the id field", i+1)
		}
		if strings.TrimSpace(t.ID) == "" {
			return errors.New(errors.ErrCodeInvalidSchema, "task %d has a blank id", i+1)
		}
		if strings.TrimSpace(t.ActionName) == "" {
			return errors.New(errors.ErrCodeInvalidSchema, "task %d is missing the action_name field", i+1)
		}
		if _, dup := seen[t.ID]; dup {
			return errors.New(errors.ErrCodeDuplicateTaskID, "duplicate task id %q", t.ID)
		}
		seen[t.ID] = struct{}{}
	}
	return nil
}

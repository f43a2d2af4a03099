package workflow

import (
	"bytes"
	"encoding/json"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/flowlayout/pkg/errors"
)

// ExportOptions controls document serialization.
type ExportOptions struct {
	// IncludePositions keeps each task's canvas position in the output.
	IncludePositions bool
}

// Marshal serializes doc in the given format. JSON output is indented with
// two spaces. Documents read as a bare task array are written back as one,
// and a document read as a single task object stays an object while it
// has exactly one task.
func Marshal(doc *Document, format Format, opts ExportOptions) ([]byte, error) {
	out := doc
	if !opts.IncludePositions {
		out = doc.Clone()
		for i := range out.Tasks {
			out.Tasks[i].Position = nil
		}
	}

	var v any = out
	switch {
	case out.Single && len(out.Tasks) == 1:
		v = out.Tasks[0]
	case out.Bare:
		v = out.Tasks
	}

	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode YAML")
		}
		if err := enc.Close(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode YAML")
		}
		return buf.Bytes(), nil
	case FormatJSON, "":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode JSON")
		}
		return append(data, '\n'), nil
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", format)
}

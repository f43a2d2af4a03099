package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/flowlayout/pkg/errors"
	"github.com/matzehuels/flowlayout/pkg/workflow"
)

// stdio is the path that selects stdin or stdout.
const stdio = "-"

// readInput reads path, or stdin when path is "-".
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == stdio {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeFileNotFound, "file not found: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// writeOutput writes data to path, or to stdout when path is "" or "-".
// Files are replaced atomically.
func writeOutput(path string, data []byte, stdout io.Writer) error {
	if path == "" || path == stdio {
		_, err := stdout.Write(data)
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return os.Rename(tmp.Name(), path)
}

// outputFormat picks the output encoding: the --format flag, then the
// output file extension, then the encoding of the input.
func outputFormat(flag, outPath string, input []byte) (workflow.Format, error) {
	if flag != "" {
		return workflow.ParseFormat(flag)
	}
	if f := workflow.FormatForPath(outPath); f != "" {
		return f, nil
	}
	return workflow.DetectFormat(input), nil
}

// displayName is the history name of a document read from path.
func displayName(path string) string {
	if path == stdio {
		return "stdin"
	}
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"
)

// Streams are the standard streams a command reads from and writes to.
// Documents go to Out; logs, spinners and status lines go to Err.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Execute runs the flowlayout command tree with args.
//
// Logging:
//   - Default: info level (logs to Err)
//   - With --verbose (-v): debug level, plus pipeline and cache tracing
//
// Example:
//
//	func main() {
//	    streams := cli.Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
//	    if err := cli.Execute(ctx, os.Args[1:], streams); err != nil {
//	        os.Exit(1)
//	    }
//	}
func Execute(ctx context.Context, args []string, streams Streams) error {
	var verbose bool

	statusOut = streams.Err
	c := New(streams.Err, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetIn(streams.In)
	root.SetOut(streams.Out)
	root.SetErr(streams.Err)

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	originalPreRun := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		level := LogInfo
		if verbose {
			level = LogDebug
		}
		c.SetLogLevel(level)

		if originalPreRun != nil {
			return originalPreRun(cmd, args)
		}
		return nil
	}

	return root.ExecuteContext(ctx)
}

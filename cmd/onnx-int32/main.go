// Package main provides the onnx-int32 CLI, which rewrites INT64 tensors and types
// in an ONNX model to INT32.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/born-ml/onnx-int32/internal/narrow"
)

const version = "v0.1.0"

const usage = "Usage: onnx-int32 [--quiet] [--skip-check] [--workers N] <input.onnx> <output.onnx>"

// Exit codes.
const (
	exitFailure = 1 // load or save failed
	exitUsage   = 2 // wrong number of arguments
)

func main() {
	if err := newCommand(os.Stdout).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitFailure)
	}
}

func newCommand(stdout io.Writer) *cli.Command {
	var workers int64

	return &cli.Command{
		Name:      "onnx-int32",
		Usage:     "rewrite INT64 tensors and types in an ONNX model to INT32",
		ArgsUsage: "<input.onnx> <output.onnx>",
		Version:   version,
		Writer:    stdout,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "print only milestones, warnings and the total"},
			&cli.BoolFlag{Name: "skip-check", Usage: "do not validate the converted model"},
			&cli.IntFlag{Name: "workers", Usage: "goroutines narrowing large tensors (0 = one per CPU)", Value: 0, Destination: &workers},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			// Argument count is checked before any file is touched.
			if cmd.Args().Len() != 2 {
				return cli.Exit(usage, exitUsage)
			}
			input, output := cmd.Args().Get(0), cmd.Args().Get(1)

			report := narrow.NewConsoleReporter(stdout)
			report.Quiet = cmd.Bool("quiet")

			opts := narrow.DefaultOptions()
			opts.SkipCheck = cmd.Bool("skip-check")
			opts.Workers = int(workers)

			if _, err := narrow.ConvertFile(input, output, report, opts); err != nil {
				return cli.Exit(fmt.Sprintf("Error: %v", err), exitFailure)
			}
			return nil
		},
	}
}

// Package onnx narrows INT64 tensors and types in ONNX models to INT32.
//
// Runtimes without 64-bit integer kernels (for example ONNX Runtime Web on WebGPU)
// reject models that use INT64 anywhere. This package rewrites every INT64 initializer,
// graph input and output, embedded attribute tensor, Cast target and value info to
// INT32, clamping payload values that do not fit.
//
// # Example Usage
//
//	import "github.com/born-ml/onnx-int32/onnx"
//
//	res, err := onnx.NarrowFile("model.onnx", "model.int32.onnx", onnx.NarrowOptions{
//	    Output: os.Stdout,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("converted sites:", res.Count())
//
// Working on a parsed model:
//
//	model, err := onnx.ParseFile("model.onnx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if _, err := onnx.NarrowModel(model); err != nil {
//	    log.Fatal(err)
//	}
//	err = onnx.WriteFile("model.int32.onnx", model)
package onnx

import (
	"io"

	"github.com/born-ml/onnx-int32/internal/narrow"
	internalonnx "github.com/born-ml/onnx-int32/internal/onnx"
)

// NarrowOptions configures NarrowFile.
type NarrowOptions struct {
	// Output receives progress lines. Nil discards them.
	Output io.Writer

	// Quiet keeps only milestones and warnings in Output.
	Quiet bool

	// SkipCheck disables model validation after conversion.
	SkipCheck bool
}

// NarrowResult summarizes a conversion run.
type NarrowResult = narrow.Result

// ParseError reports an input model that could not be read or decoded.
type ParseError = narrow.ParseError

// WriteError reports an output model that could not be encoded or written.
type WriteError = narrow.WriteError

// NarrowFile converts the model at input and writes the result to output.
//
// Returns *ParseError when the input cannot be loaded and *WriteError when the output
// cannot be saved. A model that fails validation is still written; the failure is in
// NarrowResult.CheckErr.
func NarrowFile(input, output string, opts ...NarrowOptions) (*NarrowResult, error) {
	var opt NarrowOptions
	if len(opts) > 0 {
		opt = opts[0]
	}
	nopts := narrow.DefaultOptions()
	nopts.SkipCheck = opt.SkipCheck
	return narrow.ConvertFile(input, output, reporterFor(opt), nopts)
}

// NarrowModel converts a parsed model in place without validating it.
func NarrowModel(m *Model) (*NarrowResult, error) {
	return narrow.NewConverter(nil).Convert(m)
}

// Check validates the structure of a model.
func Check(m *Model) error {
	return internalonnx.Check(m)
}

func reporterFor(opt NarrowOptions) narrow.Reporter {
	if opt.Output == nil {
		return narrow.NopReporter{}
	}
	r := narrow.NewConsoleReporter(opt.Output)
	r.Quiet = opt.Quiet
	return r
}

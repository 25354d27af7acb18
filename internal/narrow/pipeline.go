package narrow

import (
	"crypto/sha256"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/born-ml/onnx-int32/internal/onnx"
)

// Options configures a conversion run.
type Options struct {
	// SkipCheck disables model validation after conversion.
	SkipCheck bool

	// Workers is the number of goroutines narrowing large payloads. Zero means one per CPU.
	Workers int
}

// DefaultOptions returns default conversion options.
func DefaultOptions() Options {
	return Options{
		SkipCheck: false,
		Workers:   0,
	}
}

// ConvertFile loads the model at inputPath, narrows it, validates it and writes it
// to outputPath.
//
// Load failures are returned as *ParseError and save failures as *WriteError.
// Validation failures are only reported and recorded in Result.CheckErr.
func ConvertFile(inputPath, outputPath string, report Reporter, opts Options) (*Result, error) {
	if report == nil {
		report = NopReporter{}
	}

	report.Info("Loading model: %s", inputPath)
	model, err := onnx.ParseFile(inputPath)
	if err != nil {
		return nil, &ParseError{Path: inputPath, Err: err}
	}
	describe(report, model)

	res, err := ConvertModel(model, report, opts)
	if err != nil {
		return res, &ParseError{Path: inputPath, Err: err}
	}

	report.Info("Saving converted model: %s", outputPath)
	data, err := onnx.Marshal(model)
	if err != nil {
		return res, &WriteError{Path: outputPath, Err: errors.WithMessage(err, "encode")}
	}
	//nolint:gosec // G306: Model files are not secrets.
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return res, &WriteError{Path: outputPath, Err: err}
	}
	res.Checksum = sha256.Sum256(data)
	report.Info("Done. Wrote %d bytes (sha256 %x)", len(data), res.Checksum)
	return res, nil
}

// ConvertModel narrows a parsed model in place and validates the result unless
// opts.SkipCheck is set.
func ConvertModel(model *onnx.ModelProto, report Reporter, opts Options) (*Result, error) {
	if report == nil {
		report = NopReporter{}
	}

	conv := NewConverter(report)
	conv.SetWorkers(opts.Workers)
	res, err := conv.Convert(model)
	if err != nil {
		return res, err
	}
	report.Info("Total conversions: %d", res.Count())

	if opts.SkipCheck {
		return res, nil
	}
	report.Info("Validating model...")
	if err := onnx.Check(model); err != nil {
		res.CheckErr = err
		report.Warn("model validation failed: %s", strings.ReplaceAll(err.Error(), "\n", "; "))
		report.Warn("the model may still work, but proceed with caution")
		return res, nil
	}
	report.Info("Model validation passed")
	return res, nil
}

func describe(report Reporter, model *onnx.ModelProto) {
	info := onnx.Describe(model)
	report.Info("Model: producer %q %s, IR version %d, opset %d, %d nodes, %d initializers",
		info.ProducerName, info.ProducerVersion, info.IRVersion, info.OpsetVersion, info.NodeCount, info.WeightCount)

	dtypes := make([]int32, 0, len(info.DataTypes))
	for dt := range info.DataTypes {
		dtypes = append(dtypes, dt)
	}
	sort.Slice(dtypes, func(i, j int) bool { return dtypes[i] < dtypes[j] })
	parts := make([]string, 0, len(dtypes))
	for _, dt := range dtypes {
		parts = append(parts, fmt.Sprintf("%s=%d", onnx.DataTypeName(dt), info.DataTypes[dt]))
	}
	if len(parts) > 0 {
		report.Info("Declared element types: %s", strings.Join(parts, " "))
	}
}

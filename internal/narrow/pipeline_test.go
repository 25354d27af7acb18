package narrow

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/onnx-int32/internal/onnx"
)

func TestConvertFile(t *testing.T) {
	in := writeModel(t, scenarioModel())
	out := filepath.Join(t.TempDir(), "out.onnx")
	rec := &recorder{}

	res, err := ConvertFile(in, out, rec, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 3, res.Count())
	assert.NoError(t, res.CheckErr)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, sha256.Sum256(data), res.Checksum)

	model, err := onnx.Parse(data)
	require.NoError(t, err)
	g := model.Graph
	assert.Equal(t, int32(onnx.TensorProtoInt32), g.Inputs[0].Type.TensorType.ElemType)
	values, err := g.Initializers[0].Int32Values()
	require.NoError(t, err)
	assert.Equal(t, []int32{1, 2, 3}, values)
	assert.Equal(t, int64(onnx.TensorProtoInt32), g.Nodes[1].Attribute("to").I)
	assert.Equal(t, "unit-test", model.ProducerName)

	assert.Contains(t, rec.info, "Loading model: "+in)
	assert.Contains(t, rec.info, "Declared element types: INT64=2")
	assert.Contains(t, rec.info, "Total conversions: 3")
	assert.Contains(t, rec.info, "Validating model...")
	assert.Contains(t, rec.info, "Model validation passed")
	assert.Contains(t, rec.info, "Saving converted model: "+out)
	assert.Empty(t, rec.warnings)

	// The input file is left as it was.
	original, err := onnx.ParseFile(in)
	require.NoError(t, err)
	assert.Equal(t, int32(onnx.TensorProtoInt64), original.Graph.Initializers[0].DataType)
}

func TestConvertFileOwnOutput(t *testing.T) {
	in := writeModel(t, scenarioModel())
	dir := t.TempDir()
	first := filepath.Join(dir, "first.onnx")
	second := filepath.Join(dir, "second.onnx")

	_, err := ConvertFile(in, first, nil, DefaultOptions())
	require.NoError(t, err)
	res, err := ConvertFile(first, second, nil, DefaultOptions())
	require.NoError(t, err)
	assert.Zero(t, res.Count())

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestConvertFileParseErrors(t *testing.T) {
	dir := t.TempDir()
	garbage := filepath.Join(dir, "garbage.onnx")
	require.NoError(t, os.WriteFile(garbage, []byte{0x0a, 0xff, 0xff, 0xff}, 0o600))

	malformed := scenarioModel()
	malformed.Graph.Initializers[0].RawData = make([]byte, 12)
	malformedPath := writeModel(t, malformed)

	tests := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(dir, "missing.onnx")},
		{"not a model", garbage},
		{"malformed payload", malformedPath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "out.onnx")

			_, err := ConvertFile(tt.path, out, nil, DefaultOptions())
			require.Error(t, err)

			var perr *ParseError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tt.path, perr.Path)
			assert.NoFileExists(t, out)
		})
	}
}

func TestConvertFileWriteError(t *testing.T) {
	in := writeModel(t, scenarioModel())
	out := filepath.Join(t.TempDir(), "missing", "out.onnx")

	_, err := ConvertFile(in, out, nil, DefaultOptions())
	require.Error(t, err)

	var werr *WriteError
	require.True(t, errors.As(err, &werr))
	assert.Equal(t, out, werr.Path)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConvertFileValidationWarning(t *testing.T) {
	m := scenarioModel()
	m.Graph.Nodes[0].Inputs[1] = "nowhere"
	in := writeModel(t, m)
	out := filepath.Join(t.TempDir(), "out.onnx")
	rec := &recorder{}

	res, err := ConvertFile(in, out, rec, DefaultOptions())
	require.NoError(t, err)
	require.Error(t, res.CheckErr)
	assert.FileExists(t, out)

	require.Len(t, rec.warnings, 2)
	assert.Contains(t, rec.warnings[0], "model validation failed")
	assert.Contains(t, rec.warnings[0], "undefined_input")
	assert.NotContains(t, rec.info, "Model validation passed")
}

func TestConvertFileSkipCheck(t *testing.T) {
	m := scenarioModel()
	m.Graph.Nodes[0].Inputs[1] = "nowhere"
	in := writeModel(t, m)
	out := filepath.Join(t.TempDir(), "out.onnx")
	rec := &recorder{}

	res, err := ConvertFile(in, out, rec, Options{SkipCheck: true})
	require.NoError(t, err)
	assert.NoError(t, res.CheckErr)
	assert.NotContains(t, rec.info, "Validating model...")
	assert.Empty(t, rec.warnings)
}

func TestConvertFileConsoleOutput(t *testing.T) {
	in := writeModel(t, scenarioModel())
	out := filepath.Join(t.TempDir(), "out.onnx")
	var buf bytes.Buffer

	_, err := ConvertFile(in, out, NewConsoleReporter(&buf), DefaultOptions())
	require.NoError(t, err)

	text := buf.String()
	assert.Contains(t, text, "  Converted initializer: weight\n")
	assert.Contains(t, text, "  Converted input: ids\n")
	assert.Contains(t, text, "  Converted Cast node target type: cast\n")
	assert.Contains(t, text, "Total conversions: 3\n")
	assert.Contains(t, text, "Done. Wrote ")
}

func TestConvertModelClampWarning(t *testing.T) {
	m := scenarioModel()
	m.Graph.Initializers[0] = int64Tensor("weight", []int64{1 << 40, 2, 3}, 3)
	var buf bytes.Buffer

	res, err := ConvertModel(m, NewConsoleReporter(&buf), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"weight"}, res.Clamped())
	assert.Contains(t, buf.String(), `Warning: initializer "weight" has 1 values outside INT32 range, clamping`)
}

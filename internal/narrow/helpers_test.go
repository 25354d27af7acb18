package narrow

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/born-ml/onnx-int32/internal/onnx"
)

func tensorValue(name string, dtype int32, dims ...int64) onnx.ValueInfoProto {
	shape := &onnx.TensorShapeProto{}
	for _, d := range dims {
		shape.Dims = append(shape.Dims, onnx.DimensionProto{DimValue: d})
	}
	return onnx.ValueInfoProto{
		Name: name,
		Type: &onnx.TypeProto{TensorType: &onnx.TensorTypeProto{ElemType: dtype, Shape: shape}},
	}
}

func int64Tensor(name string, values []int64, dims ...int64) onnx.TensorProto {
	t := onnx.TensorProto{Name: name, Dims: dims}
	t.SetInt64Values(values)
	return t
}

func castNode(name, input, output string, to int64) onnx.NodeProto {
	return onnx.NodeProto{
		Name:       name,
		OpType:     "Cast",
		Inputs:     []string{input},
		Outputs:    []string{output},
		Attributes: []onnx.AttributeProto{{Name: "to", Type: onnx.AttributeProtoInt, I: to}},
	}
}

// scenarioModel builds:
//
//	prod = Mul(ids, weight); out = Cast(prod, to=INT64)
//
// with "ids" and "weight" declared INT64 and "out" left untyped.
func scenarioModel() *onnx.ModelProto {
	return &onnx.ModelProto{
		IRVersion:    8,
		ProducerName: "unit-test",
		OpsetImport:  []onnx.OperatorSetID{{Version: 17}},
		Graph: &onnx.GraphProto{
			Name:         "scenario",
			Inputs:       []onnx.ValueInfoProto{tensorValue("ids", onnx.TensorProtoInt64, 3)},
			Initializers: []onnx.TensorProto{int64Tensor("weight", []int64{1, 2, 3}, 3)},
			Nodes: []onnx.NodeProto{
				{Name: "mul", OpType: "Mul", Inputs: []string{"ids", "weight"}, Outputs: []string{"prod"}},
				castNode("cast", "prod", "out", onnx.TensorProtoInt64),
			},
			Outputs: []onnx.ValueInfoProto{{Name: "out"}},
		},
	}
}

// writeModel saves m to a file in a fresh temp dir and returns its path.
func writeModel(t *testing.T, m *onnx.ModelProto) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.onnx")
	require.NoError(t, onnx.WriteFile(path, m))
	return path
}

// recorder collects reported lines by kind.
type recorder struct {
	progress []string
	info     []string
	warnings []string
}

func (r *recorder) Progress(format string, args ...interface{}) {
	r.progress = append(r.progress, fmt.Sprintf(format, args...))
}

func (r *recorder) Info(format string, args ...interface{}) {
	r.info = append(r.info, fmt.Sprintf(format, args...))
}

func (r *recorder) Warn(format string, args ...interface{}) {
	r.warnings = append(r.warnings, fmt.Sprintf(format, args...))
}

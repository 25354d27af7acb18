package onnx

import internalonnx "github.com/born-ml/onnx-int32/internal/onnx"

// Model is a parsed ONNX model. Fields not exposed on the structs are preserved
// when the model is written back.
type Model = internalonnx.ModelProto

// Graph is the computation graph of a Model.
type Graph = internalonnx.GraphProto

// Tensor is an initializer or attribute tensor.
type Tensor = internalonnx.TensorProto

// ValueInfo declares the type of a graph input, output or intermediate value.
type ValueInfo = internalonnx.ValueInfoProto

// Node is a single operation in a Graph.
type Node = internalonnx.NodeProto

// Attribute is a named operator parameter of a Node.
type Attribute = internalonnx.AttributeProto

// ModelInfo contains metadata about an ONNX model.
type ModelInfo = internalonnx.ModelInfo

// Element type codes used by the converter.
const (
	DataTypeInt32 = internalonnx.TensorProtoInt32
	DataTypeInt64 = internalonnx.TensorProtoInt64
)

// ParseFile reads and decodes an ONNX model file.
func ParseFile(path string) (*Model, error) {
	return internalonnx.ParseFile(path)
}

// Parse decodes an ONNX model from bytes.
func Parse(data []byte) (*Model, error) {
	return internalonnx.Parse(data)
}

// WriteFile encodes a model and writes it to path.
func WriteFile(path string, m *Model) error {
	return internalonnx.WriteFile(path, m)
}

// GetModelInfo extracts metadata from an ONNX file.
//
// Example:
//
//	info, err := onnx.GetModelInfo("model.onnx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Producer: %s\n", info.ProducerName)
//	fmt.Printf("Opset: %d\n", info.OpsetVersion)
//	fmt.Printf("INT64 declarations: %d\n", info.DataTypes[onnx.DataTypeInt64])
func GetModelInfo(path string) (*ModelInfo, error) {
	return internalonnx.GetModelInfo(path)
}

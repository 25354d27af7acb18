// Package onnx reads, writes and checks ONNX model files.
//
// ONNX (Open Neural Network Exchange) models are protobuf messages. This package
// hand-maps the subset of onnx.proto needed to rewrite element types and tensor
// payloads onto plain Go structs, using protowire for the wire primitives. Fields it
// does not map (sub-graphs, sparse initializers, external data descriptors, training
// info, functions) are carried through as raw bytes, so Parse followed by Marshal
// keeps every part of the file.
//
// Key components:
//   - ModelProto: Top-level ONNX model structure with metadata and graph
//   - GraphProto: Computation graph with nodes, inputs, outputs, initializers and value info
//   - NodeProto: Single operation in the graph (e.g., Conv, MatMul, Cast)
//   - TensorProto: Weight/initializer tensor with data and shape
//   - ValueInfoProto: Input/output/intermediate tensor type information
//   - Check: structural validation of a model (SSA form, payload sizes, data types)
//
// Example usage:
//
//	model, err := onnx.ParseFile("model.onnx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for i := range model.Graph.Initializers {
//	    init := &model.Graph.Initializers[i]
//	    fmt.Printf("%s: %s %v\n", init.Name, onnx.DataTypeName(init.DataType), init.Dims)
//	}
//
//	if err := onnx.Check(model); err != nil {
//	    log.Printf("model is not well-formed: %v", err)
//	}
//
//	if err := onnx.WriteFile("copy.onnx", model); err != nil {
//	    log.Fatal(err)
//	}
package onnx

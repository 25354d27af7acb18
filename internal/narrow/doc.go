// Package narrow rewrites 64-bit integer sites of an ONNX model to 32-bit integers.
//
// Runtimes such as ONNX Runtime Web's WebGPU backend have no INT64 kernels. The
// converter walks five fixed collections of the graph and narrows every INT64 site:
//
//   - Initializers: payload decoded, clamped to the int32 range, re-encoded as INT32
//   - Graph inputs and outputs: declared element type rewritten
//   - Node attributes: embedded TENSOR attributes narrowed like initializers,
//     and Cast nodes targeting INT64 retargeted to INT32
//   - Value info: declared element type rewritten
//
// Values outside the int32 range are clamped, not rejected. Scalar INT and INTS
// attributes are never touched, and sub-graphs are not descended into.
//
// Example usage:
//
//	res, err := narrow.ConvertFile("model.onnx", "model.int32.onnx",
//	    narrow.NewConsoleReporter(os.Stdout), narrow.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%d sites converted\n", res.Count())
package narrow

package onnx

// tensorValue declares a tensor-typed value with static dims.
func tensorValue(name string, dtype int32, dims ...int64) ValueInfoProto {
	shape := &TensorShapeProto{}
	for _, d := range dims {
		shape.Dims = append(shape.Dims, DimensionProto{DimValue: d})
	}
	return ValueInfoProto{
		Name: name,
		Type: &TypeProto{TensorType: &TensorTypeProto{ElemType: dtype, Shape: shape}},
	}
}

// int64Tensor creates an INT64 tensor with raw data.
func int64Tensor(name string, values []int64, dims ...int64) TensorProto {
	t := TensorProto{Name: name, Dims: dims}
	t.SetInt64Values(values)
	return t
}

// validModel returns a small model that passes Check:
//
//	sum = Add(ids, offset); out = Cast(sum, to=FLOAT)
func validModel() *ModelProto {
	return &ModelProto{
		IRVersion:   8,
		OpsetImport: []OperatorSetID{{Version: 17}},
		Graph: &GraphProto{
			Name:         "valid",
			Inputs:       []ValueInfoProto{tensorValue("ids", TensorProtoInt64, 1, 4)},
			Initializers: []TensorProto{int64Tensor("offset", []int64{1}, 1)},
			Nodes: []NodeProto{
				{Name: "add", OpType: "Add", Inputs: []string{"ids", "offset"}, Outputs: []string{"sum"}},
				{
					Name:       "cast",
					OpType:     "Cast",
					Inputs:     []string{"sum"},
					Outputs:    []string{"out"},
					Attributes: []AttributeProto{{Name: "to", Type: AttributeProtoInt, I: TensorProtoFloat}},
				},
			},
			Outputs:   []ValueInfoProto{tensorValue("out", TensorProtoFloat, 1, 4)},
			ValueInfo: []ValueInfoProto{tensorValue("sum", TensorProtoInt64, 1, 4)},
		},
	}
}

// sampleModel returns a model touching most modelled fields.
func sampleModel() *ModelProto {
	return &ModelProto{
		IRVersion:       9,
		OpsetImport:     []OperatorSetID{{Version: 17}, {Domain: "com.example", Version: 1}},
		ProducerName:    "pytorch",
		ProducerVersion: "2.3.0",
		ModelVersion:    2,
		DocString:       "sample model",
		MetadataProps:   []StringStringEntry{{Key: "license", Value: "MIT"}},
		Graph: &GraphProto{
			Name:      "sample",
			DocString: "graph doc",
			Initializers: []TensorProto{
				int64Tensor("offset", []int64{1, -2, 3}, 3),
				{Name: "scale", DataType: TensorProtoFloat, Dims: []int64{2}, FloatData: []float32{1.5, -2}},
			},
			Inputs: []ValueInfoProto{
				{
					Name: "ids",
					Type: &TypeProto{TensorType: &TensorTypeProto{
						ElemType: TensorProtoInt64,
						Shape: &TensorShapeProto{Dims: []DimensionProto{
							{DimParam: "batch"},
							{DimValue: 3},
						}},
					}},
				},
			},
			Nodes: []NodeProto{
				{
					Name:    "custom",
					OpType:  "Shift",
					Domain:  "com.example",
					Inputs:  []string{"ids", "", "offset"},
					Outputs: []string{"shifted"},
					Attributes: []AttributeProto{
						{Name: "perm", Type: AttributeProtoInts, Ints: []int64{0, -1, 5}},
						{Name: "mode", Type: AttributeProtoString, S: []byte("wrap")},
						{Name: "gain", Type: AttributeProtoFloats, Floats: []float32{0.25}},
					},
				},
				{
					Name:       "cast",
					OpType:     "Cast",
					Inputs:     []string{"shifted"},
					Outputs:    []string{"out"},
					Attributes: []AttributeProto{{Name: "to", Type: AttributeProtoInt, I: TensorProtoInt64}},
				},
			},
			Outputs:   []ValueInfoProto{tensorValue("out", TensorProtoInt64, 3)},
			ValueInfo: []ValueInfoProto{tensorValue("shifted", TensorProtoInt64, 3)},
		},
	}
}

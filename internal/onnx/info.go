package onnx

// ModelInfo contains basic information about an ONNX model.
type ModelInfo struct {
	IRVersion       int64
	OpsetVersion    int64
	ProducerName    string
	ProducerVersion string
	InputNames      []string
	OutputNames     []string
	NodeCount       int
	WeightCount     int

	// DataTypes counts initializers, graph inputs/outputs and value infos by element type.
	DataTypes map[int32]int
}

// Describe extracts basic info from a parsed model.
func Describe(m *ModelProto) *ModelInfo {
	info := &ModelInfo{
		IRVersion:       m.IRVersion,
		ProducerName:    m.ProducerName,
		ProducerVersion: m.ProducerVersion,
		DataTypes:       make(map[int32]int),
	}

	for _, opset := range m.OpsetImport {
		if opset.Domain == "" || opset.Domain == "ai.onnx" {
			info.OpsetVersion = opset.Version
			break
		}
	}

	g := m.Graph
	if g == nil {
		return info
	}

	// Older exporters list initializers as graph inputs too; those are weights.
	initNames := make(map[string]bool, len(g.Initializers))
	for i := range g.Initializers {
		initNames[g.Initializers[i].Name] = true
		info.DataTypes[g.Initializers[i].DataType]++
	}
	for i := range g.Inputs {
		if !initNames[g.Inputs[i].Name] {
			info.InputNames = append(info.InputNames, g.Inputs[i].Name)
		}
	}
	for i := range g.Outputs {
		info.OutputNames = append(info.OutputNames, g.Outputs[i].Name)
	}
	for _, list := range [][]ValueInfoProto{g.Inputs, g.Outputs, g.ValueInfo} {
		for i := range list {
			if t := list[i].Type; t != nil && t.TensorType != nil {
				info.DataTypes[t.TensorType.ElemType]++
			}
		}
	}

	info.NodeCount = len(g.Nodes)
	info.WeightCount = len(g.Initializers)
	return info
}

// GetModelInfo extracts basic info from an ONNX file.
func GetModelInfo(path string) (*ModelInfo, error) {
	m, err := ParseFile(path)
	if err != nil {
		return nil, err
	}
	return Describe(m), nil
}

package onnx

import (
	"errors"
	"fmt"
	"math"
	"os"

	"google.golang.org/protobuf/encoding/protowire"
)

// Marshal encodes a model in protobuf wire format.
//
// Modelled fields are written in field-number order followed by the unknown fields the
// parser retained. Repeated numeric fields are packed only where onnx.proto declares
// them packed (float_data, int32_data, int64_data).
func Marshal(m *ModelProto) ([]byte, error) {
	if m == nil {
		return nil, errors.New("nil model")
	}
	return appendModelProto(nil, m), nil
}

// WriteFile encodes a model and writes it to path.
func WriteFile(path string, m *ModelProto) error {
	data, err := Marshal(m)
	if err != nil {
		return err
	}
	//nolint:gosec // G306: Model files are not secrets.
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func appendModelProto(b []byte, m *ModelProto) []byte {
	b = appendInt64(b, 1, m.IRVersion)
	b = appendString(b, 2, m.ProducerName)
	b = appendString(b, 3, m.ProducerVersion)
	b = appendString(b, 4, m.Domain)
	b = appendInt64(b, 5, m.ModelVersion)
	b = appendString(b, 6, m.DocString)
	if m.Graph != nil {
		b = appendMessage(b, 7, appendGraphProto(nil, m.Graph))
	}
	for i := range m.OpsetImport {
		b = appendMessage(b, 8, appendOperatorSetID(nil, &m.OpsetImport[i]))
	}
	for i := range m.MetadataProps {
		b = appendMessage(b, 14, appendStringStringEntry(nil, &m.MetadataProps[i]))
	}
	return append(b, m.unknown...)
}

func appendGraphProto(b []byte, g *GraphProto) []byte {
	for i := range g.Nodes {
		b = appendMessage(b, 1, appendNodeProto(nil, &g.Nodes[i]))
	}
	b = appendString(b, 2, g.Name)
	for i := range g.Initializers {
		b = appendMessage(b, 5, appendTensorProto(nil, &g.Initializers[i]))
	}
	b = appendString(b, 10, g.DocString)
	for i := range g.Inputs {
		b = appendMessage(b, 11, appendValueInfoProto(nil, &g.Inputs[i]))
	}
	for i := range g.Outputs {
		b = appendMessage(b, 12, appendValueInfoProto(nil, &g.Outputs[i]))
	}
	for i := range g.ValueInfo {
		b = appendMessage(b, 13, appendValueInfoProto(nil, &g.ValueInfo[i]))
	}
	return append(b, g.unknown...)
}

func appendNodeProto(b []byte, n *NodeProto) []byte {
	for _, s := range n.Inputs {
		b = appendRepeatedString(b, 1, s)
	}
	for _, s := range n.Outputs {
		b = appendRepeatedString(b, 2, s)
	}
	b = appendString(b, 3, n.Name)
	b = appendString(b, 4, n.OpType)
	for i := range n.Attributes {
		b = appendMessage(b, 5, appendAttributeProto(nil, &n.Attributes[i]))
	}
	b = appendString(b, 6, n.DocString)
	b = appendString(b, 7, n.Domain)
	return append(b, n.unknown...)
}

func appendTensorProto(b []byte, t *TensorProto) []byte {
	for _, d := range t.Dims {
		b = protowire.AppendTag(b, 1, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(d)) //nolint:gosec // G115: two's complement int64 on the wire.
	}
	b = appendInt64(b, 2, int64(t.DataType))
	if len(t.FloatData) > 0 {
		packed := make([]byte, 0, 4*len(t.FloatData))
		for _, v := range t.FloatData {
			packed = protowire.AppendFixed32(packed, math.Float32bits(v))
		}
		b = appendMessage(b, 4, packed)
	}
	if len(t.Int32Data) > 0 {
		var packed []byte
		for _, v := range t.Int32Data {
			packed = protowire.AppendVarint(packed, uint64(int64(v))) //nolint:gosec // G115: int32 is sign-extended on the wire.
		}
		b = appendMessage(b, 5, packed)
	}
	if len(t.Int64Data) > 0 {
		var packed []byte
		for _, v := range t.Int64Data {
			packed = protowire.AppendVarint(packed, uint64(v)) //nolint:gosec // G115: two's complement int64 on the wire.
		}
		b = appendMessage(b, 7, packed)
	}
	b = appendString(b, 8, t.Name)
	if t.RawData != nil {
		b = appendMessage(b, 9, t.RawData)
	}
	b = appendString(b, 12, t.DocString)
	b = appendInt64(b, 14, int64(t.DataLocation))
	return append(b, t.unknown...)
}

func appendValueInfoProto(b []byte, v *ValueInfoProto) []byte {
	b = appendString(b, 1, v.Name)
	if v.Type != nil {
		b = appendMessage(b, 2, appendTypeProto(nil, v.Type))
	}
	b = appendString(b, 3, v.DocString)
	return append(b, v.unknown...)
}

func appendTypeProto(b []byte, t *TypeProto) []byte {
	if t.TensorType != nil {
		b = appendMessage(b, 1, appendTensorTypeProto(nil, t.TensorType))
	}
	return append(b, t.unknown...)
}

func appendTensorTypeProto(b []byte, t *TensorTypeProto) []byte {
	b = appendInt64(b, 1, int64(t.ElemType))
	if t.Shape != nil {
		b = appendMessage(b, 2, appendTensorShapeProto(nil, t.Shape))
	}
	return append(b, t.unknown...)
}

func appendTensorShapeProto(b []byte, s *TensorShapeProto) []byte {
	for i := range s.Dims {
		b = appendMessage(b, 1, appendDimensionProto(nil, &s.Dims[i]))
	}
	return append(b, s.unknown...)
}

func appendDimensionProto(b []byte, d *DimensionProto) []byte {
	switch {
	case d.DimParam != "":
		b = appendString(b, 2, d.DimParam)
	case d.DimValue != 0 || d.hasValue:
		b = protowire.AppendTag(b, 1, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(d.DimValue)) //nolint:gosec // G115: two's complement int64 on the wire.
	}
	return append(b, d.unknown...)
}

// appendAttributeProto always writes the value field selected by Type, even when it
// holds the zero value: checkers require exactly one populated value field.
func appendAttributeProto(b []byte, a *AttributeProto) []byte {
	b = appendString(b, 1, a.Name)
	if a.Type == AttributeProtoFloat || math.Float32bits(a.F) != 0 {
		b = protowire.AppendTag(b, 2, protowire.Fixed32Type)
		b = protowire.AppendFixed32(b, math.Float32bits(a.F))
	}
	if a.Type == AttributeProtoInt || a.I != 0 {
		b = protowire.AppendTag(b, 3, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(a.I)) //nolint:gosec // G115: two's complement int64 on the wire.
	}
	if a.Type == AttributeProtoString || a.S != nil {
		b = appendMessage(b, 4, a.S)
	}
	if a.T != nil {
		b = appendMessage(b, 5, appendTensorProto(nil, a.T))
	}
	for _, v := range a.Floats {
		b = protowire.AppendTag(b, 7, protowire.Fixed32Type)
		b = protowire.AppendFixed32(b, math.Float32bits(v))
	}
	for _, v := range a.Ints {
		b = protowire.AppendTag(b, 8, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(v)) //nolint:gosec // G115: two's complement int64 on the wire.
	}
	for _, s := range a.Strings {
		b = appendMessage(b, 9, s)
	}
	b = appendString(b, 13, a.DocString)
	b = appendInt64(b, 20, int64(a.Type))
	return append(b, a.unknown...)
}

func appendOperatorSetID(b []byte, o *OperatorSetID) []byte {
	b = appendString(b, 1, o.Domain)
	b = appendInt64(b, 2, o.Version)
	return append(b, o.unknown...)
}

func appendStringStringEntry(b []byte, e *StringStringEntry) []byte {
	b = appendString(b, 1, e.Key)
	b = appendString(b, 2, e.Value)
	return append(b, e.unknown...)
}

// appendMessage writes a length-delimited field unconditionally.
func appendMessage(b []byte, num protowire.Number, v []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

// appendString writes a singular string field, skipping the empty string.
func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	return appendRepeatedString(b, num, s)
}

// appendRepeatedString writes one element of a repeated string field; empty elements
// are kept since they are positional (optional node inputs).
func appendRepeatedString(b []byte, num protowire.Number, s string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

// appendInt64 writes a singular varint field, skipping zero.
func appendInt64(b []byte, num protowire.Number, v int64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(v)) //nolint:gosec // G115: two's complement int64 on the wire.
}

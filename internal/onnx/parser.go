package onnx

import (
	"fmt"
	"math"
	"os"

	"google.golang.org/protobuf/encoding/protowire"
)

// ParseFile parses an ONNX model from file.
//
//nolint:gosec // G304: Path is provided by user, file inclusion is intentional for ONNX model loading
func ParseFile(path string) (*ModelProto, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return Parse(data)
}

// Parse parses an ONNX model from bytes.
//
// Fields the model structs do not cover are retained and re-emitted by Marshal.
func Parse(data []byte) (*ModelProto, error) {
	p := &parser{data: data, pos: 0}
	model := &ModelProto{}
	if err := p.readMessage(model); err != nil {
		return nil, fmt.Errorf("failed to parse model: %w", err)
	}
	return model, nil
}

// parser decodes the protobuf wire format one message at a time.
type parser struct {
	data []byte
	pos  int
}

// readMessage reads a protobuf message into the given struct.
func (p *parser) readMessage(msg interface{}) error {
	switch m := msg.(type) {
	case *ModelProto:
		return p.readModelProto(m)
	case *GraphProto:
		return p.readGraphProto(m)
	case *NodeProto:
		return p.readNodeProto(m)
	case *TensorProto:
		return p.readTensorProto(m)
	case *ValueInfoProto:
		return p.readValueInfoProto(m)
	case *TypeProto:
		return p.readTypeProto(m)
	case *TensorTypeProto:
		return p.readTensorTypeProto(m)
	case *TensorShapeProto:
		return p.readTensorShapeProto(m)
	case *DimensionProto:
		return p.readDimensionProto(m)
	case *AttributeProto:
		return p.readAttributeProto(m)
	case *OperatorSetID:
		return p.readOperatorSetID(m)
	case *StringStringEntry:
		return p.readStringStringEntry(m)
	default:
		return fmt.Errorf("unknown message type: %T", msg)
	}
}

// fieldFunc decodes one field. It returns false when the field is not modelled (or
// arrives with an unexpected wire type) so the caller keeps it as unknown bytes.
type fieldFunc func(num protowire.Number, typ protowire.Type) (bool, error)

// walk iterates over every field of the current message.
func (p *parser) walk(unknown *[]byte, fn fieldFunc) error {
	for p.pos < len(p.data) {
		start := p.pos
		num, typ, err := p.readTag()
		if err != nil {
			return err
		}
		handled, err := fn(num, typ)
		if err != nil {
			return fmt.Errorf("field %d: %w", num, err)
		}
		if handled {
			continue
		}
		if err := p.skipField(num, typ); err != nil {
			return fmt.Errorf("field %d: %w", num, err)
		}
		*unknown = append(*unknown, p.data[start:p.pos]...)
	}
	return nil
}

// readModelProto reads ModelProto message.
func (p *parser) readModelProto(m *ModelProto) error {
	return p.walk(&m.unknown, func(num protowire.Number, typ protowire.Type) (bool, error) {
		var err error
		switch {
		case num == 1 && typ == protowire.VarintType: // ir_version
			m.IRVersion, err = p.readInt64()
		case num == 2 && typ == protowire.BytesType: // producer_name
			m.ProducerName, err = p.readString()
		case num == 3 && typ == protowire.BytesType: // producer_version
			m.ProducerVersion, err = p.readString()
		case num == 4 && typ == protowire.BytesType: // domain
			m.Domain, err = p.readString()
		case num == 5 && typ == protowire.VarintType: // model_version
			m.ModelVersion, err = p.readInt64()
		case num == 6 && typ == protowire.BytesType: // doc_string
			m.DocString, err = p.readString()
		case num == 7 && typ == protowire.BytesType: // graph
			m.Graph = &GraphProto{}
			err = p.readEmbedded(m.Graph)
		case num == 8 && typ == protowire.BytesType: // opset_import
			opset := OperatorSetID{}
			err = p.readEmbedded(&opset)
			m.OpsetImport = append(m.OpsetImport, opset)
		case num == 14 && typ == protowire.BytesType: // metadata_props
			entry := StringStringEntry{}
			err = p.readEmbedded(&entry)
			m.MetadataProps = append(m.MetadataProps, entry)
		default:
			return false, nil
		}
		return true, err
	})
}

// readGraphProto reads GraphProto message.
func (p *parser) readGraphProto(m *GraphProto) error {
	return p.walk(&m.unknown, func(num protowire.Number, typ protowire.Type) (bool, error) {
		if typ != protowire.BytesType {
			return false, nil
		}
		var err error
		switch num {
		case 1: // node
			node := NodeProto{}
			err = p.readEmbedded(&node)
			m.Nodes = append(m.Nodes, node)
		case 2: // name
			m.Name, err = p.readString()
		case 5: // initializer
			tensor := TensorProto{}
			err = p.readEmbedded(&tensor)
			m.Initializers = append(m.Initializers, tensor)
		case 10: // doc_string
			m.DocString, err = p.readString()
		case 11: // input
			vi := ValueInfoProto{}
			err = p.readEmbedded(&vi)
			m.Inputs = append(m.Inputs, vi)
		case 12: // output
			vi := ValueInfoProto{}
			err = p.readEmbedded(&vi)
			m.Outputs = append(m.Outputs, vi)
		case 13: // value_info
			vi := ValueInfoProto{}
			err = p.readEmbedded(&vi)
			m.ValueInfo = append(m.ValueInfo, vi)
		default:
			return false, nil
		}
		return true, err
	})
}

// readNodeProto reads NodeProto message.
func (p *parser) readNodeProto(m *NodeProto) error {
	return p.walk(&m.unknown, func(num protowire.Number, typ protowire.Type) (bool, error) {
		if typ != protowire.BytesType {
			return false, nil
		}
		var (
			s   string
			err error
		)
		switch num {
		case 1: // input
			s, err = p.readString()
			m.Inputs = append(m.Inputs, s)
		case 2: // output
			s, err = p.readString()
			m.Outputs = append(m.Outputs, s)
		case 3: // name
			m.Name, err = p.readString()
		case 4: // op_type
			m.OpType, err = p.readString()
		case 5: // attribute
			attr := AttributeProto{}
			err = p.readEmbedded(&attr)
			m.Attributes = append(m.Attributes, attr)
		case 6: // doc_string
			m.DocString, err = p.readString()
		case 7: // domain
			m.Domain, err = p.readString()
		default:
			return false, nil
		}
		return true, err
	})
}

// readTensorProto reads TensorProto message.
//
//nolint:gocognit,gocyclo,cyclop // Protobuf parsing requires field-by-field switch logic
func (p *parser) readTensorProto(m *TensorProto) error {
	return p.walk(&m.unknown, func(num protowire.Number, typ protowire.Type) (bool, error) {
		var err error
		switch {
		case num == 1: // dims (repeated int64, packed or not)
			err = p.readRepeatedVarint(typ, func(v uint64) {
				m.Dims = append(m.Dims, int64(v)) //nolint:gosec // G115: two's complement int64 on the wire.
			})
		case num == 2 && typ == protowire.VarintType: // data_type
			m.DataType, err = p.readInt32()
		case num == 4: // float_data
			err = p.readRepeatedFixed32(typ, func(v uint32) {
				m.FloatData = append(m.FloatData, math.Float32frombits(v))
			})
		case num == 5: // int32_data
			err = p.readRepeatedVarint(typ, func(v uint64) {
				m.Int32Data = append(m.Int32Data, int32(v)) //nolint:gosec // G115: int32 is sign-extended on the wire.
			})
		case num == 7: // int64_data
			err = p.readRepeatedVarint(typ, func(v uint64) {
				m.Int64Data = append(m.Int64Data, int64(v)) //nolint:gosec // G115: two's complement int64 on the wire.
			})
		case num == 8 && typ == protowire.BytesType: // name
			m.Name, err = p.readString()
		case num == 9 && typ == protowire.BytesType: // raw_data
			m.RawData, err = p.readBytes()
		case num == 12 && typ == protowire.BytesType: // doc_string
			m.DocString, err = p.readString()
		case num == 14 && typ == protowire.VarintType: // data_location
			m.DataLocation, err = p.readInt32()
		default:
			return false, nil
		}
		return true, err
	})
}

// readValueInfoProto reads ValueInfoProto message.
func (p *parser) readValueInfoProto(m *ValueInfoProto) error {
	return p.walk(&m.unknown, func(num protowire.Number, typ protowire.Type) (bool, error) {
		if typ != protowire.BytesType {
			return false, nil
		}
		var err error
		switch num {
		case 1: // name
			m.Name, err = p.readString()
		case 2: // type
			m.Type = &TypeProto{}
			err = p.readEmbedded(m.Type)
		case 3: // doc_string
			m.DocString, err = p.readString()
		default:
			return false, nil
		}
		return true, err
	})
}

// readTypeProto reads TypeProto message.
func (p *parser) readTypeProto(m *TypeProto) error {
	return p.walk(&m.unknown, func(num protowire.Number, typ protowire.Type) (bool, error) {
		if num != 1 || typ != protowire.BytesType { // tensor_type
			return false, nil
		}
		m.TensorType = &TensorTypeProto{}
		return true, p.readEmbedded(m.TensorType)
	})
}

// readTensorTypeProto reads TensorTypeProto message.
func (p *parser) readTensorTypeProto(m *TensorTypeProto) error {
	return p.walk(&m.unknown, func(num protowire.Number, typ protowire.Type) (bool, error) {
		var err error
		switch {
		case num == 1 && typ == protowire.VarintType: // elem_type
			m.ElemType, err = p.readInt32()
		case num == 2 && typ == protowire.BytesType: // shape
			m.Shape = &TensorShapeProto{}
			err = p.readEmbedded(m.Shape)
		default:
			return false, nil
		}
		return true, err
	})
}

// readTensorShapeProto reads TensorShapeProto message.
func (p *parser) readTensorShapeProto(m *TensorShapeProto) error {
	return p.walk(&m.unknown, func(num protowire.Number, typ protowire.Type) (bool, error) {
		if num != 1 || typ != protowire.BytesType { // dim
			return false, nil
		}
		dim := DimensionProto{}
		err := p.readEmbedded(&dim)
		m.Dims = append(m.Dims, dim)
		return true, err
	})
}

// readDimensionProto reads DimensionProto message.
func (p *parser) readDimensionProto(m *DimensionProto) error {
	return p.walk(&m.unknown, func(num protowire.Number, typ protowire.Type) (bool, error) {
		var err error
		switch {
		case num == 1 && typ == protowire.VarintType: // dim_value
			m.DimValue, err = p.readInt64()
			m.hasValue = true
		case num == 2 && typ == protowire.BytesType: // dim_param
			m.DimParam, err = p.readString()
		default:
			return false, nil
		}
		return true, err
	})
}

// readAttributeProto reads AttributeProto message.
//
//nolint:gocognit,gocyclo,cyclop // Protobuf parsing requires field-by-field switch logic
func (p *parser) readAttributeProto(m *AttributeProto) error {
	return p.walk(&m.unknown, func(num protowire.Number, typ protowire.Type) (bool, error) {
		var (
			b   []byte
			err error
		)
		switch {
		case num == 1 && typ == protowire.BytesType: // name
			m.Name, err = p.readString()
		case num == 2 && typ == protowire.Fixed32Type: // f
			var bits uint32
			bits, err = p.readFixed32()
			m.F = math.Float32frombits(bits)
		case num == 3 && typ == protowire.VarintType: // i
			m.I, err = p.readInt64()
		case num == 4 && typ == protowire.BytesType: // s
			m.S, err = p.readBytes()
		case num == 5 && typ == protowire.BytesType: // t
			m.T = &TensorProto{}
			err = p.readEmbedded(m.T)
		case num == 7: // floats
			err = p.readRepeatedFixed32(typ, func(v uint32) {
				m.Floats = append(m.Floats, math.Float32frombits(v))
			})
		case num == 8: // ints
			err = p.readRepeatedVarint(typ, func(v uint64) {
				m.Ints = append(m.Ints, int64(v)) //nolint:gosec // G115: two's complement int64 on the wire.
			})
		case num == 9 && typ == protowire.BytesType: // strings
			b, err = p.readBytes()
			m.Strings = append(m.Strings, b)
		case num == 13 && typ == protowire.BytesType: // doc_string
			m.DocString, err = p.readString()
		case num == 20 && typ == protowire.VarintType: // type
			m.Type, err = p.readInt32()
		default:
			return false, nil
		}
		return true, err
	})
}

// readOperatorSetID reads OperatorSetID message.
func (p *parser) readOperatorSetID(m *OperatorSetID) error {
	return p.walk(&m.unknown, func(num protowire.Number, typ protowire.Type) (bool, error) {
		var err error
		switch {
		case num == 1 && typ == protowire.BytesType: // domain
			m.Domain, err = p.readString()
		case num == 2 && typ == protowire.VarintType: // version
			m.Version, err = p.readInt64()
		default:
			return false, nil
		}
		return true, err
	})
}

// readStringStringEntry reads StringStringEntry message.
func (p *parser) readStringStringEntry(m *StringStringEntry) error {
	return p.walk(&m.unknown, func(num protowire.Number, typ protowire.Type) (bool, error) {
		if typ != protowire.BytesType {
			return false, nil
		}
		var err error
		switch num {
		case 1: // key
			m.Key, err = p.readString()
		case 2: // value
			m.Value, err = p.readString()
		default:
			return false, nil
		}
		return true, err
	})
}

// readTag reads a protobuf field tag.
func (p *parser) readTag() (protowire.Number, protowire.Type, error) {
	num, typ, n := protowire.ConsumeTag(p.data[p.pos:])
	if n < 0 {
		return 0, 0, protowire.ParseError(n)
	}
	p.pos += n
	return num, typ, nil
}

// readVarint reads a varint.
func (p *parser) readVarint() (uint64, error) {
	v, n := protowire.ConsumeVarint(p.data[p.pos:])
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	p.pos += n
	return v, nil
}

// readInt64 reads a varint-encoded int64.
func (p *parser) readInt64() (int64, error) {
	v, err := p.readVarint()
	return int64(v), err //nolint:gosec // G115: Protobuf int64 is two's complement.
}

// readInt32 reads a varint-encoded int32 or enum.
func (p *parser) readInt32() (int32, error) {
	v, err := p.readVarint()
	return int32(v), err //nolint:gosec // G115: Protobuf int32 is sign-extended to 64 bits.
}

// readFixed32 reads a little-endian 32-bit value.
func (p *parser) readFixed32() (uint32, error) {
	v, n := protowire.ConsumeFixed32(p.data[p.pos:])
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	p.pos += n
	return v, nil
}

// readBytes reads a length-delimited byte slice. The result aliases the input buffer.
func (p *parser) readBytes() ([]byte, error) {
	v, n := protowire.ConsumeBytes(p.data[p.pos:])
	if n < 0 {
		return nil, protowire.ParseError(n)
	}
	p.pos += n
	return v, nil
}

// readString reads a length-delimited string.
func (p *parser) readString() (string, error) {
	b, err := p.readBytes()
	return string(b), err
}

// readEmbedded reads a length-delimited sub-message.
func (p *parser) readEmbedded(msg interface{}) error {
	data, err := p.readBytes()
	if err != nil {
		return err
	}
	sub := &parser{data: data, pos: 0}
	return sub.readMessage(msg)
}

// readRepeatedVarint reads one element of a repeated varint field, or a whole packed run.
func (p *parser) readRepeatedVarint(typ protowire.Type, fn func(uint64)) error {
	switch typ {
	case protowire.VarintType:
		v, err := p.readVarint()
		if err != nil {
			return err
		}
		fn(v)
		return nil
	case protowire.BytesType:
		data, err := p.readBytes()
		if err != nil {
			return err
		}
		for len(data) > 0 {
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			fn(v)
			data = data[n:]
		}
		return nil
	default:
		return fmt.Errorf("unexpected wire type %d for repeated varint", typ)
	}
}

// readRepeatedFixed32 reads one element of a repeated fixed32 field, or a whole packed run.
func (p *parser) readRepeatedFixed32(typ protowire.Type, fn func(uint32)) error {
	switch typ {
	case protowire.Fixed32Type:
		v, err := p.readFixed32()
		if err != nil {
			return err
		}
		fn(v)
		return nil
	case protowire.BytesType:
		data, err := p.readBytes()
		if err != nil {
			return err
		}
		for len(data) > 0 {
			v, n := protowire.ConsumeFixed32(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			fn(v)
			data = data[n:]
		}
		return nil
	default:
		return fmt.Errorf("unexpected wire type %d for repeated fixed32", typ)
	}
}

// skipField skips the value of a field based on wire type.
func (p *parser) skipField(num protowire.Number, typ protowire.Type) error {
	n := protowire.ConsumeFieldValue(num, typ, p.data[p.pos:])
	if n < 0 {
		return protowire.ParseError(n)
	}
	p.pos += n
	return nil
}

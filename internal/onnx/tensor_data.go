package onnx

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Payload errors.
var (
	ErrExternalData  = errors.New("tensor data is stored externally")
	ErrWrongDataType = errors.New("tensor has a different data type")
	ErrRawDataSize   = errors.New("raw data size is not a multiple of the element size")
)

var dataTypeNames = map[int32]string{
	TensorProtoUndefined:      "UNDEFINED",
	TensorProtoFloat:          "FLOAT",
	TensorProtoUint8:          "UINT8",
	TensorProtoInt8:           "INT8",
	TensorProtoUint16:         "UINT16",
	TensorProtoInt16:          "INT16",
	TensorProtoInt32:          "INT32",
	TensorProtoInt64:          "INT64",
	TensorProtoString:         "STRING",
	TensorProtoBool:           "BOOL",
	TensorProtoFloat16:        "FLOAT16",
	TensorProtoDouble:         "DOUBLE",
	TensorProtoUint32:         "UINT32",
	TensorProtoUint64:         "UINT64",
	TensorProtoComplex64:      "COMPLEX64",
	TensorProtoComplex128:     "COMPLEX128",
	TensorProtoBfloat16:       "BFLOAT16",
	TensorProtoFloat8E4M3FN:   "FLOAT8E4M3FN",
	TensorProtoFloat8E4M3FNUZ: "FLOAT8E4M3FNUZ",
	TensorProtoFloat8E5M2:     "FLOAT8E5M2",
	TensorProtoFloat8E5M2FNUZ: "FLOAT8E5M2FNUZ",
	TensorProtoUint4:          "UINT4",
	TensorProtoInt4:           "INT4",
	TensorProtoFloat4E2M1:     "FLOAT4E2M1",
}

// elemSizes holds the byte width of fixed-size element types. STRING and the
// sub-byte types are absent.
var elemSizes = map[int32]int64{
	TensorProtoFloat:          4,
	TensorProtoUint8:          1,
	TensorProtoInt8:           1,
	TensorProtoUint16:         2,
	TensorProtoInt16:          2,
	TensorProtoInt32:          4,
	TensorProtoInt64:          8,
	TensorProtoBool:           1,
	TensorProtoFloat16:        2,
	TensorProtoDouble:         8,
	TensorProtoUint32:         4,
	TensorProtoUint64:         8,
	TensorProtoComplex64:      8,
	TensorProtoComplex128:     16,
	TensorProtoBfloat16:       2,
	TensorProtoFloat8E4M3FN:   1,
	TensorProtoFloat8E4M3FNUZ: 1,
	TensorProtoFloat8E5M2:     1,
	TensorProtoFloat8E5M2FNUZ: 1,
}

// DataTypeName returns the ONNX name of a data type code, e.g. "INT64".
func DataTypeName(dtype int32) string {
	if name, ok := dataTypeNames[dtype]; ok {
		return name
	}
	return fmt.Sprintf("DataType(%d)", dtype)
}

// IsKnownDataType reports whether dtype is a defined, non-UNDEFINED element type.
func IsKnownDataType(dtype int32) bool {
	_, ok := dataTypeNames[dtype]
	return ok && dtype != TensorProtoUndefined
}

// ElemSize returns the byte width of a fixed-size element type.
func ElemSize(dtype int32) (int64, bool) {
	size, ok := elemSizes[dtype]
	return size, ok
}

// NumElements returns the element count implied by Dims. A tensor without dims is a scalar.
func (t *TensorProto) NumElements() int64 {
	n := int64(1)
	for _, d := range t.Dims {
		n *= d
	}
	return n
}

// IsExternal reports whether the payload lives outside the model file.
func (t *TensorProto) IsExternal() bool {
	return t.DataLocation == DataLocationExternal
}

// Int64Values decodes the payload of an INT64 tensor from raw_data or int64_data.
func (t *TensorProto) Int64Values() ([]int64, error) {
	if t.DataType != TensorProtoInt64 {
		return nil, fmt.Errorf("%w: %s", ErrWrongDataType, DataTypeName(t.DataType))
	}
	if t.IsExternal() {
		return nil, ErrExternalData
	}
	if len(t.RawData) == 0 {
		out := make([]int64, len(t.Int64Data))
		copy(out, t.Int64Data)
		return out, nil
	}
	if len(t.RawData)%8 != 0 {
		return nil, fmt.Errorf("%w: %d bytes for INT64", ErrRawDataSize, len(t.RawData))
	}
	out := make([]int64, len(t.RawData)/8)
	for i := range out {
		out[i] = int64(binary.LittleEndian.Uint64(t.RawData[i*8:])) //nolint:gosec // G115: reinterpreting two's complement bits.
	}
	return out, nil
}

// Int32Values decodes the payload of an INT32 tensor from raw_data or int32_data.
func (t *TensorProto) Int32Values() ([]int32, error) {
	if t.DataType != TensorProtoInt32 {
		return nil, fmt.Errorf("%w: %s", ErrWrongDataType, DataTypeName(t.DataType))
	}
	if t.IsExternal() {
		return nil, ErrExternalData
	}
	if len(t.RawData) == 0 {
		out := make([]int32, len(t.Int32Data))
		copy(out, t.Int32Data)
		return out, nil
	}
	if len(t.RawData)%4 != 0 {
		return nil, fmt.Errorf("%w: %d bytes for INT32", ErrRawDataSize, len(t.RawData))
	}
	out := make([]int32, len(t.RawData)/4)
	for i := range out {
		out[i] = int32(binary.LittleEndian.Uint32(t.RawData[i*4:])) //nolint:gosec // G115: reinterpreting two's complement bits.
	}
	return out, nil
}

// SetInt32Values turns t into an INT32 tensor holding values in raw_data. Name, dims
// and doc string are kept; the typed data fields are cleared.
func (t *TensorProto) SetInt32Values(values []int32) {
	raw := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(raw[i*4:], uint32(v)) //nolint:gosec // G115: reinterpreting two's complement bits.
	}
	t.DataType = TensorProtoInt32
	t.RawData = raw
	t.FloatData = nil
	t.Int32Data = nil
	t.Int64Data = nil
}

// SetInt64Values turns t into an INT64 tensor holding values in raw_data.
func (t *TensorProto) SetInt64Values(values []int64) {
	raw := make([]byte, 8*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint64(raw[i*8:], uint64(v)) //nolint:gosec // G115: reinterpreting two's complement bits.
	}
	t.DataType = TensorProtoInt64
	t.RawData = raw
	t.FloatData = nil
	t.Int32Data = nil
	t.Int64Data = nil
}

package onnx

import (
	"errors"
	"fmt"
)

// CheckError describes one structural problem found by Check.
type CheckError struct {
	Kind    string // Kind of problem (e.g., "undefined_input", "raw_data_size")
	Where   string // Record involved (e.g., `initializer "W"`)
	Details string // Additional details
}

// Error implements the error interface.
func (e *CheckError) Error() string {
	if e.Where != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Where, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Details)
}

// Check validates the structure of a model and returns every problem found, joined
// with errors.Join, or nil. Use errors.As with *CheckError to inspect them.
//
// Sub-graphs held in GRAPH attributes are not descended into.
func Check(m *ModelProto) error {
	c := &checker{}
	c.checkModel(m)
	return errors.Join(c.errs...)
}

type checker struct {
	errs []error
}

func (c *checker) fail(kind, where, format string, args ...interface{}) {
	c.errs = append(c.errs, &CheckError{Kind: kind, Where: where, Details: fmt.Sprintf(format, args...)})
}

func (c *checker) checkModel(m *ModelProto) {
	if m == nil {
		c.fail("missing_model", "", "model is nil")
		return
	}
	if m.IRVersion <= 0 {
		c.fail("missing_ir_version", "", "ir_version is %d", m.IRVersion)
	}
	if m.IRVersion >= 3 && len(m.OpsetImport) == 0 {
		c.fail("missing_opset", "", "ir_version %d requires opset_import", m.IRVersion)
	}
	if m.Graph == nil {
		c.fail("missing_graph", "", "model has no graph")
		return
	}
	c.checkGraph(m.Graph)
}

//nolint:gocognit,gocyclo,cyclop // One pass over every graph collection.
func (c *checker) checkGraph(g *GraphProto) {
	defined := make(map[string]bool)

	for i := range g.Inputs {
		c.checkValueInfo("input", &g.Inputs[i])
		defined[g.Inputs[i].Name] = true
	}
	for i := range g.Outputs {
		c.checkValueInfo("output", &g.Outputs[i])
	}
	for i := range g.ValueInfo {
		c.checkValueInfo("value_info", &g.ValueInfo[i])
	}

	initNames := make(map[string]bool, len(g.Initializers))
	for i := range g.Initializers {
		t := &g.Initializers[i]
		where := fmt.Sprintf("initializer %q", t.Name)
		switch {
		case t.Name == "":
			c.fail("unnamed_initializer", fmt.Sprintf("initializer #%d", i), "initializer has no name")
		case initNames[t.Name]:
			c.fail("duplicate_initializer", where, "name is used by more than one initializer")
		}
		initNames[t.Name] = true
		defined[t.Name] = true
		c.checkTensor(where, t)
	}

	for i := range g.Nodes {
		n := &g.Nodes[i]
		where := nodeLabel(i, n)
		if n.OpType == "" {
			c.fail("missing_op_type", where, "node has no op_type")
		}
		for _, in := range n.Inputs {
			if in != "" && !defined[in] {
				c.fail("undefined_input", where, "input %q is not a graph input, initializer or earlier node output", in)
			}
		}
		for j := range n.Attributes {
			c.checkAttribute(where, n, &n.Attributes[j])
		}
		for _, out := range n.Outputs {
			if out == "" {
				continue
			}
			if defined[out] {
				c.fail("duplicate_output", where, "output %q is already defined (graph must be in SSA form)", out)
			}
			defined[out] = true
		}
	}
}

func (c *checker) checkValueInfo(kind string, v *ValueInfoProto) {
	where := fmt.Sprintf("%s %q", kind, v.Name)
	if v.Name == "" {
		c.fail("unnamed_value", where, "%s has no name", kind)
	}
	if v.Type == nil || v.Type.TensorType == nil {
		return
	}
	if dt := v.Type.TensorType.ElemType; !IsKnownDataType(dt) {
		c.fail("invalid_elem_type", where, "element type %s", DataTypeName(dt))
	}
}

func (c *checker) checkTensor(where string, t *TensorProto) {
	if !IsKnownDataType(t.DataType) {
		c.fail("invalid_data_type", where, "data type %s", DataTypeName(t.DataType))
		return
	}
	for _, d := range t.Dims {
		if d < 0 {
			c.fail("negative_dim", where, "dims %v contain a negative value", t.Dims)
			return
		}
	}
	if t.IsExternal() || t.RawData == nil {
		return
	}
	size, ok := ElemSize(t.DataType)
	if !ok {
		return
	}
	if want := t.NumElements() * size; int64(len(t.RawData)) != want {
		c.fail("raw_data_size", where, "raw_data has %d bytes, dims %v of %s need %d",
			len(t.RawData), t.Dims, DataTypeName(t.DataType), want)
	}
}

func (c *checker) checkAttribute(nodeWhere string, n *NodeProto, a *AttributeProto) {
	where := fmt.Sprintf("%s attribute %q", nodeWhere, a.Name)
	if a.Name == "" {
		c.fail("unnamed_attribute", nodeWhere, "attribute has no name")
	}
	switch a.Type {
	case AttributeProtoTensor:
		if a.T == nil {
			c.fail("attribute_value", where, "TENSOR attribute has no tensor")
			return
		}
		c.checkTensor(where, a.T)
	case AttributeProtoInt, AttributeProtoInts:
		if a.T != nil || len(a.Floats) > 0 || len(a.Strings) > 0 {
			c.fail("attribute_value", where, "integer attribute carries values of another kind")
		}
	}
	if n.OpType == "Cast" && n.InDefaultDomain() && a.Name == "to" && !IsKnownDataType(int32(a.I)) { //nolint:gosec // G115: dtype codes are small.
		c.fail("invalid_cast_target", where, "target type %d is not a known data type", a.I)
	}
}

func nodeLabel(i int, n *NodeProto) string {
	if n.Name != "" {
		return fmt.Sprintf("node %q (%s)", n.Name, n.OpType)
	}
	return fmt.Sprintf("node #%d (%s)", i, n.OpType)
}

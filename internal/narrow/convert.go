package narrow

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/born-ml/onnx-int32/internal/onnx"
	"github.com/born-ml/onnx-int32/internal/parallel"
)

// Site identifies the kind of record a conversion touched.
type Site int

// Conversion sites, in the order the converter visits them.
const (
	SiteInitializer Site = iota
	SiteInput
	SiteOutput
	SiteAttributeTensor
	SiteCastTarget
	SiteValueInfo
)

// String returns the site name used in progress lines.
func (s Site) String() string {
	switch s {
	case SiteInitializer:
		return "initializer"
	case SiteInput:
		return "input"
	case SiteOutput:
		return "output"
	case SiteAttributeTensor:
		return "attribute tensor"
	case SiteCastTarget:
		return "Cast target type"
	case SiteValueInfo:
		return "value_info"
	default:
		return fmt.Sprintf("Site(%d)", int(s))
	}
}

// Conversion records one INT64 site rewritten to INT32.
type Conversion struct {
	Site      Site
	Name      string // initializer, value or tensor name; may be empty for attribute tensors
	Node      string // owning node, for attribute tensors and Cast targets
	Attribute string // attribute name, for attribute tensors and Cast targets
	Clamped   bool   // payload had values outside the int32 range
}

// Result summarizes one conversion run.
type Result struct {
	// Conversions lists every rewritten site in visiting order.
	Conversions []Conversion

	// Skipped lists INT64 tensors left untouched because their data is external.
	Skipped []string

	// CheckErr holds the validation failure, if validation ran and failed.
	CheckErr error

	// Checksum is the SHA-256 of the written file; zero until the model is saved.
	Checksum [32]byte
}

// Count returns the number of converted sites.
func (r *Result) Count() int {
	return len(r.Conversions)
}

// CountBySite returns the number of converted sites per kind.
func (r *Result) CountBySite() map[Site]int {
	counts := make(map[Site]int)
	for _, c := range r.Conversions {
		counts[c.Site]++
	}
	return counts
}

// Clamped returns the names of tensors whose payload was clamped.
func (r *Result) Clamped() []string {
	var names []string
	for _, c := range r.Conversions {
		if c.Clamped {
			names = append(names, c.Name)
		}
	}
	return names
}

// Converter narrows INT64 sites of a model in place.
type Converter struct {
	report Reporter
	par    parallel.Config
}

// NewConverter creates a converter reporting to r. A nil r discards progress.
func NewConverter(r Reporter) *Converter {
	if r == nil {
		r = NopReporter{}
	}
	return &Converter{report: r, par: parallel.DefaultConfig()}
}

// SetWorkers sets the number of goroutines used to narrow large payloads.
// n <= 0 uses one per CPU; n == 1 narrows sequentially.
func (c *Converter) SetWorkers(n int) {
	c.par = parallel.DefaultConfig().WithWorkers(n)
}

// Convert rewrites every INT64 initializer, graph input, graph output, embedded
// attribute tensor, Cast target and value info of m to INT32.
//
// A model without a graph converts nothing. The only error is a malformed INT64
// payload; the model may be partially converted when it is returned.
func (c *Converter) Convert(m *onnx.ModelProto) (*Result, error) {
	res := &Result{}
	if m == nil || m.Graph == nil {
		return res, nil
	}
	g := m.Graph

	if err := c.convertInitializers(g, res); err != nil {
		return res, err
	}
	c.convertDeclarations(g.Inputs, SiteInput, res)
	c.convertDeclarations(g.Outputs, SiteOutput, res)
	if err := c.convertNodes(g, res); err != nil {
		return res, err
	}
	c.convertDeclarations(g.ValueInfo, SiteValueInfo, res)
	return res, nil
}

func (c *Converter) convertInitializers(g *onnx.GraphProto, res *Result) error {
	for i := range g.Initializers {
		t := &g.Initializers[i]
		if t.DataType != onnx.TensorProtoInt64 {
			continue
		}
		what := fmt.Sprintf("initializer %q", t.Name)
		if t.IsExternal() {
			c.skip(res, what)
			continue
		}
		clamped, err := c.narrowTensor(t, what)
		if err != nil {
			return errors.Wrap(err, what)
		}
		res.Conversions = append(res.Conversions, Conversion{Site: SiteInitializer, Name: t.Name, Clamped: clamped})
		c.report.Progress("Converted initializer: %s", t.Name)
	}
	return nil
}

func (c *Converter) convertDeclarations(values []onnx.ValueInfoProto, site Site, res *Result) {
	for i := range values {
		v := &values[i]
		if v.Type == nil || v.Type.TensorType == nil || v.Type.TensorType.ElemType != onnx.TensorProtoInt64 {
			continue
		}
		v.Type.TensorType.ElemType = onnx.TensorProtoInt32
		res.Conversions = append(res.Conversions, Conversion{Site: site, Name: v.Name})
		c.report.Progress("Converted %s: %s", site, v.Name)
	}
}

//nolint:gocognit // Attribute tensors and Cast targets share one pass over the nodes.
func (c *Converter) convertNodes(g *onnx.GraphProto, res *Result) error {
	for i := range g.Nodes {
		n := &g.Nodes[i]
		label := nodeLabel(i, n)

		// Only TENSOR attributes are narrowed; INT and INTS values are not dtype codes
		// in general and stay as they are.
		for j := range n.Attributes {
			a := &n.Attributes[j]
			if a.Type != onnx.AttributeProtoTensor || a.T == nil || a.T.DataType != onnx.TensorProtoInt64 {
				continue
			}
			what := fmt.Sprintf("attribute %q of node %s", a.Name, label)
			if a.T.IsExternal() {
				c.skip(res, what)
				continue
			}
			clamped, err := c.narrowTensor(a.T, what)
			if err != nil {
				return errors.Wrap(err, what)
			}
			res.Conversions = append(res.Conversions, Conversion{
				Site:      SiteAttributeTensor,
				Name:      a.T.Name,
				Node:      n.Name,
				Attribute: a.Name,
				Clamped:   clamped,
			})
			c.report.Progress("Converted attribute tensor in node: %s", label)
		}

		// Retargeting a Cast changes what the node computes, not just a declaration.
		if n.OpType != "Cast" || !n.InDefaultDomain() {
			continue
		}
		if to := n.Attribute("to"); to != nil && to.I == onnx.TensorProtoInt64 {
			to.I = onnx.TensorProtoInt32
			res.Conversions = append(res.Conversions, Conversion{
				Site:      SiteCastTarget,
				Name:      n.Name,
				Node:      n.Name,
				Attribute: to.Name,
			})
			c.report.Progress("Converted Cast node target type: %s", label)
		}
	}
	return nil
}

// narrowTensor rewrites an INT64 tensor as INT32, clamping out-of-range values.
func (c *Converter) narrowTensor(t *onnx.TensorProto, what string) (bool, error) {
	values, err := t.Int64Values()
	if err != nil {
		return false, err
	}
	narrowed, clamped := clampInt32(values, c.par)
	if clamped > 0 {
		c.report.Warn("%s has %d values outside INT32 range, clamping", what, clamped)
	}
	t.SetInt32Values(narrowed)
	return clamped > 0, nil
}

func (c *Converter) skip(res *Result, what string) {
	res.Skipped = append(res.Skipped, what)
	c.report.Warn("%s stores its data externally and stays INT64", what)
}

// clampInt32 narrows values to int32, saturating at the range bounds. It returns the
// number of values that had to be clamped.
func clampInt32(values []int64, cfg parallel.Config) ([]int32, int) {
	out := make([]int32, len(values))
	var clamped atomic.Int64
	parallel.For(len(values), func(start, end int) {
		n := 0
		for i := start; i < end; i++ {
			switch v := values[i]; {
			case v > math.MaxInt32:
				out[i] = math.MaxInt32
				n++
			case v < math.MinInt32:
				out[i] = math.MinInt32
				n++
			default:
				out[i] = int32(v)
			}
		}
		clamped.Add(int64(n))
	}, cfg)
	return out, int(clamped.Load())
}

func nodeLabel(i int, n *onnx.NodeProto) string {
	if n.Name != "" {
		return n.Name
	}
	return fmt.Sprintf("#%d (%s)", i, n.OpType)
}

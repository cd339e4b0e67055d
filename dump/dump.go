// Package dump prints the element tree below a model element, one line per element.
//
// Each line has the form
//
//	<indent><name>(<Type>#<id>): <attribute>=<value>, ...
//
// where the indent is one space per level. Entity-valued attributes are not printed
// on the line; they appear as child lines instead. Values use the familiar
// ifcopenshell notation: None for unset values, True/False for logicals and
// parenthesised tuples for aggregates.
package dump

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/tsawler/ifcnotes/core"
	"github.com/tsawler/ifcnotes/extract"
	"github.com/tsawler/ifcnotes/resolver"
	"github.com/tsawler/ifcnotes/walk"
)

// ignored are attributes listed as child collections rather than on the line
var ignored = map[string]bool{
	"Items":           true,
	"Representations": true,
	"Elements":        true,
}

// Tree writes the element tree rooted at e
func Tree(w io.Writer, name string, e *resolver.Element, opts ...walk.Option) error {
	bw := bufio.NewWriter(w)

	err := walk.Walk(name, e, func(depth int, name string, node walk.Traversable) (walk.Signal, error) {
		el, ok := node.(*resolver.Element)
		if !ok {
			return walk.Continue, nil
		}
		line, err := Line(el)
		if err != nil {
			return walk.Stop, err
		}
		fmt.Fprintf(bw, "%s%s(%s#%d): %s\n", strings.Repeat(" ", depth), name, el.Type(), el.ID(), line)
		return walk.Continue, nil
	}, opts...)
	if err != nil {
		return err
	}
	return bw.Flush()
}

// Line formats the non-entity attributes of one element
func Line(e *resolver.Element) (string, error) {
	attrs, err := e.Attributes()
	if err != nil {
		return "", err
	}

	parts := make([]string, 0, len(attrs)+1)
	if e.HasAttribute("ObjectPlacement") {
		parts = append(parts, "obj_place="+placementOrigin(e))
	}
	for _, a := range attrs {
		if ignored[a.Name] {
			continue
		}
		if _, ok := a.Value.(*resolver.Element); ok {
			continue
		}
		obj, ok := a.Value.(core.Object)
		if !ok {
			continue
		}
		parts = append(parts, a.Name+"="+Value(obj))
	}
	return strings.Join(parts, ", "), nil
}

// placementOrigin returns the world origin of the element's local placement
func placementOrigin(e *resolver.Element) string {
	p, err := e.Ref("ObjectPlacement")
	if err != nil || p == nil {
		return "None"
	}
	m, err := extract.LocalPlacement(p)
	if err != nil {
		return "<" + err.Error() + ">"
	}
	o := m.Origin()
	return "(" + formatFloat(o.X) + ", " + formatFloat(o.Y) + ", " + formatFloat(o.Z) + ")"
}

// Value formats a parsed value
func Value(obj core.Object) string {
	switch v := obj.(type) {
	case nil, core.Null:
		return "None"
	case core.Derived:
		return "*"
	case core.Int:
		return strconv.FormatInt(int64(v), 10)
	case core.Real:
		return formatFloat(float64(v))
	case core.String:
		return string(v)
	case core.Binary:
		return string(v)
	case core.Enum:
		switch v {
		case "T":
			return "True"
		case "F":
			return "False"
		case "U":
			return "None"
		}
		return string(v)
	case core.Ref:
		return v.String()
	case core.Typed:
		return Value(v.Value)
	case core.List:
		items := make([]string, len(v))
		for i, item := range v {
			items[i] = Value(item)
		}
		if len(items) == 1 {
			return "(" + items[0] + ",)"
		}
		return "(" + strings.Join(items, ", ") + ")"
	default:
		return obj.String()
	}
}

// formatFloat prints the shortest round-trip form, always with a decimal
// point, switching to exponent form for very small or very large magnitudes
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	abs := math.Abs(f)
	if abs != 0 {
		exp := math.Floor(math.Log10(abs))
		if exp < -4 || exp >= 16 {
			return strconv.FormatFloat(f, 'e', -1, 64)
		}
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".") {
		s += ".0"
	}
	return s
}

package resolver

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/tsawler/ifcnotes/core"
	"github.com/tsawler/ifcnotes/schema"
	"github.com/tsawler/ifcnotes/walk"
)

// ErrUnknownAttribute is returned when an element type has no attribute of the given name
var ErrUnknownAttribute = errors.New("unknown attribute")

// collectionKinds are the aggregates exposed as child collections, in traversal order
var collectionKinds = []struct {
	attribute string
	kind      string
}{
	{"Representations", "Representation"},
	{"Items", "Item"},
	{"Elements", "Element"},
}

// Element is a model element: one entity instance with named attributes
type Element struct {
	inst     *core.Instance
	names    []string
	resolver *ObjectResolver
}

var _ walk.Traversable = (*Element)(nil)

func newElement(inst *core.Instance, r *ObjectResolver) *Element {
	return &Element{
		inst:     inst,
		names:    schema.AttributeNames(inst.Name, inst.Args.Len()),
		resolver: r,
	}
}

// ID returns the instance id
func (e *Element) ID() int {
	return e.inst.ID
}

// Type returns the canonical entity type name
func (e *Element) Type() string {
	return schema.CanonicalName(e.inst.Name)
}

// Key identifies the element for cycle detection
func (e *Element) Key() string {
	return "#" + strconv.Itoa(e.inst.ID)
}

// Instance returns the underlying parsed instance
func (e *Element) Instance() *core.Instance {
	return e.inst
}

// IsA reports whether the element is of type typ or a subtype of it
func (e *Element) IsA(typ string) bool {
	return schema.IsA(e.inst.Name, typ)
}

// String returns "Type#id"
func (e *Element) String() string {
	return e.Type() + "#" + strconv.Itoa(e.inst.ID)
}

// AttributeNames returns the attribute names in declaration order
func (e *Element) AttributeNames() []string {
	return e.names
}

// HasAttribute reports whether the element type declares the attribute
func (e *Element) HasAttribute(name string) bool {
	return e.index(name) >= 0
}

func (e *Element) index(name string) int {
	for i, n := range e.names {
		if n == name {
			return i
		}
	}
	return -1
}

// Attr returns the raw value of an attribute
func (e *Element) Attr(name string) (core.Object, error) {
	i := e.index(name)
	if i < 0 {
		return nil, fmt.Errorf("%s has no attribute %s: %w", e, name, ErrUnknownAttribute)
	}
	return e.inst.Args[i], nil
}

// Ref resolves an entity-valued attribute. It returns nil without error when the
// attribute is unset.
func (e *Element) Ref(name string) (*Element, error) {
	obj, err := e.Attr(name)
	if err != nil {
		return nil, err
	}
	if core.IsUnset(obj) {
		return nil, nil
	}
	ref, ok := obj.(core.Ref)
	if !ok {
		return nil, fmt.Errorf("%s.%s is %s, not a reference", e, name, obj.Type())
	}
	target, err := e.resolver.Element(int(ref))
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", e, name, err)
	}
	return target, nil
}

// Refs resolves an aggregate of references. Unset aggregates yield nil.
func (e *Element) Refs(name string) ([]*Element, error) {
	obj, err := e.Attr(name)
	if err != nil {
		return nil, err
	}
	if core.IsUnset(obj) {
		return nil, nil
	}
	list, ok := obj.(core.List)
	if !ok {
		return nil, fmt.Errorf("%s.%s is %s, not a list", e, name, obj.Type())
	}

	out := make([]*Element, 0, len(list))
	for _, ref := range list.Refs() {
		target, err := e.resolver.Element(int(ref))
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", e, name, err)
		}
		out = append(out, target)
	}
	return out, nil
}

// Number returns a numeric attribute; ok is false when unset or not a number
func (e *Element) Number(name string) (float64, bool) {
	obj, err := e.Attr(name)
	if err != nil {
		return 0, false
	}
	return core.Number(obj)
}

// Text returns a string attribute; typed labels such as IFCLABEL('x') are unwrapped
func (e *Element) Text(name string) (string, bool) {
	obj, err := e.Attr(name)
	if err != nil {
		return "", false
	}
	if typed, ok := obj.(core.Typed); ok {
		obj = typed.Value
	}
	s, ok := obj.(core.String)
	return string(s), ok
}

// Floats returns a numeric aggregate such as Coordinates or DirectionRatios
func (e *Element) Floats(name string) ([]float64, error) {
	obj, err := e.Attr(name)
	if err != nil {
		return nil, err
	}
	list, ok := obj.(core.List)
	if !ok {
		return nil, fmt.Errorf("%s.%s is %s, not a list", e, name, obj.Type())
	}
	values, err := list.Floats()
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", e, name, err)
	}
	return values, nil
}

// Attributes returns every attribute in declaration order. Reference values are
// resolved to *Element; all other values are the raw parsed objects.
func (e *Element) Attributes() ([]walk.Attribute, error) {
	attrs := make([]walk.Attribute, 0, len(e.names))
	for i, name := range e.names {
		value, err := e.resolver.Resolve(e.inst.Args[i])
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", e, name, err)
		}
		attrs = append(attrs, walk.Attribute{Name: name, Value: value})
	}
	return attrs, nil
}

// ChildCollections returns the Representations, Items and Elements aggregates the
// element type declares, in that order
func (e *Element) ChildCollections() ([]walk.Collection, error) {
	var collections []walk.Collection
	for _, ck := range collectionKinds {
		if !e.HasAttribute(ck.attribute) {
			continue
		}
		members, err := e.Refs(ck.attribute)
		if err != nil {
			return nil, err
		}
		if len(members) == 0 {
			continue
		}
		c := walk.Collection{Kind: ck.kind, Members: make([]walk.Traversable, len(members))}
		for i, m := range members {
			c.Members[i] = m
		}
		collections = append(collections, c)
	}
	return collections, nil
}

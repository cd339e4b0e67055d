package resolver

import (
	"fmt"

	"github.com/tsawler/ifcnotes/core"
)

// ObjectReader interface allows the resolver to work with any reader
type ObjectReader interface {
	Instance(id int) (*core.Instance, error)
	InstancesOf(typ string) []*core.Instance
}

// ObjectResolver resolves instance references into Elements
type ObjectResolver struct {
	reader ObjectReader
	cache  map[int]*Element
}

// NewResolver creates a new object resolver
func NewResolver(reader ObjectReader) *ObjectResolver {
	return &ObjectResolver{
		reader: reader,
		cache:  make(map[int]*Element),
	}
}

// Element returns the element for an instance id
func (r *ObjectResolver) Element(id int) (*Element, error) {
	if e, ok := r.cache[id]; ok {
		return e, nil
	}

	inst, err := r.reader.Instance(id)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve reference #%d: %w", id, err)
	}
	e := r.wrap(inst)
	return e, nil
}

// ElementsOf returns the elements of a type (subtypes included) in file order
func (r *ObjectResolver) ElementsOf(typ string) []*Element {
	instances := r.reader.InstancesOf(typ)
	out := make([]*Element, 0, len(instances))
	for _, inst := range instances {
		if e, ok := r.cache[inst.ID]; ok {
			out = append(out, e)
			continue
		}
		out = append(out, r.wrap(inst))
	}
	return out
}

func (r *ObjectResolver) wrap(inst *core.Instance) *Element {
	e := newElement(inst, r)
	r.cache[inst.ID] = e
	return e
}

// Resolve follows a reference; any other object is returned unchanged
func (r *ObjectResolver) Resolve(obj core.Object) (any, error) {
	if ref, ok := obj.(core.Ref); ok {
		return r.Element(int(ref))
	}
	return obj, nil
}

// ResolveDeep resolves references inside aggregates too; lists become []any
func (r *ObjectResolver) ResolveDeep(obj core.Object) (any, error) {
	list, ok := obj.(core.List)
	if !ok {
		return r.Resolve(obj)
	}

	resolved := make([]any, len(list))
	for i, elem := range list {
		v, err := r.ResolveDeep(elem)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve list element %d: %w", i, err)
		}
		resolved[i] = v
	}
	return resolved, nil
}

// CacheSize returns the number of elements created so far
func (r *ObjectResolver) CacheSize() int {
	return len(r.cache)
}

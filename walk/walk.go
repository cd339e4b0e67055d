// Package walk provides depth-first traversal over a graph of model elements.
//
// A node exposes its attributes and its named child collections through
// [Traversable]. [Walk] visits the node, then every attribute whose value is itself
// Traversable (in declaration order, named by the attribute key), then the members of
// each collection (in the order the node lists them, named "<Kind>[<index>]").
//
// The visit callback steers the traversal with a [Signal].
package walk

import (
	"errors"
	"fmt"
	"strconv"
)

// Signal tells Walk how to proceed after a node has been visited
type Signal int

const (
	// Continue descends into the node's children
	Continue Signal = iota
	// SkipSubtree leaves the node's children unvisited; siblings are still visited
	SkipSubtree
	// Stop ends the whole walk without error
	Stop
)

// String returns the signal name
func (s Signal) String() string {
	switch s {
	case Continue:
		return "Continue"
	case SkipSubtree:
		return "SkipSubtree"
	case Stop:
		return "Stop"
	default:
		return "Signal(" + strconv.Itoa(int(s)) + ")"
	}
}

// Attribute is one named attribute value of a node
type Attribute struct {
	Name  string
	Value any
}

// Collection is a named list of child nodes, e.g. Representations or Items
type Collection struct {
	Kind    string // singular kind used in child names: "Representation", "Item", "Element"
	Members []Traversable
}

// Traversable is a node the walker can descend into
type Traversable interface {
	Attributes() ([]Attribute, error)
	ChildCollections() ([]Collection, error)
}

// Keyed nodes carry an identity used to detect cycles
type Keyed interface {
	Key() string
}

// VisitFunc is called for every node reached
type VisitFunc func(depth int, name string, node Traversable) (Signal, error)

var (
	// ErrCycle is returned when a node is reached again below itself
	ErrCycle = errors.New("cycle detected")
	// ErrMaxDepth is returned when the walk goes deeper than the configured limit
	ErrMaxDepth = errors.New("maximum depth exceeded")
)

// errStop unwinds the recursion after a Stop signal
var errStop = errors.New("stop")

// Option configures a walk
type Option func(*walker)

// WithMaxDepth sets the maximum depth (default: 256)
func WithMaxDepth(depth int) Option {
	return func(w *walker) {
		w.maxDepth = depth
	}
}

type walker struct {
	fn       VisitFunc
	maxDepth int
	onPath   map[string]bool // keys of the nodes between the root and the current node
}

// Walk visits node and its descendants depth-first, starting at depth 0
func Walk(name string, node Traversable, fn VisitFunc, opts ...Option) error {
	w := &walker{
		fn:       fn,
		maxDepth: 256,
		onPath:   make(map[string]bool),
	}
	for _, opt := range opts {
		opt(w)
	}

	err := w.walk(0, name, node)
	if errors.Is(err, errStop) {
		return nil
	}
	return err
}

func (w *walker) walk(depth int, name string, node Traversable) error {
	if depth > w.maxDepth {
		return fmt.Errorf("%s at depth %d: %w (%d)", name, depth, ErrMaxDepth, w.maxDepth)
	}

	if k, ok := node.(Keyed); ok {
		key := k.Key()
		if w.onPath[key] {
			return fmt.Errorf("%s (%s): %w", name, key, ErrCycle)
		}
		w.onPath[key] = true
		defer delete(w.onPath, key)
	}

	signal, err := w.fn(depth, name, node)
	if err != nil {
		return err
	}
	switch signal {
	case Stop:
		return errStop
	case SkipSubtree:
		return nil
	}

	attrs, err := node.Attributes()
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	for _, attr := range attrs {
		child, ok := attr.Value.(Traversable)
		if !ok || child == nil {
			continue
		}
		if err := w.walk(depth+1, attr.Name, child); err != nil {
			return err
		}
	}

	collections, err := node.ChildCollections()
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	for _, c := range collections {
		for i, member := range c.Members {
			childName := c.Kind + "[" + strconv.Itoa(i) + "]"
			if err := w.walk(depth+1, childName, member); err != nil {
				return err
			}
		}
	}

	return nil
}

// Package extract collects the text literals of IfcAnnotation elements together
// with everything needed to place them in world space.
package extract

import (
	"fmt"
	"strconv"

	"github.com/tsawler/ifcnotes/internal/logging"
	"github.com/tsawler/ifcnotes/model"
	"github.com/tsawler/ifcnotes/resolver"
	"github.com/tsawler/ifcnotes/walk"
)

// Result holds the annotations of a model and the texts found below them
type Result struct {
	Annotations []*model.AnnotationNode
	Texts       []*model.TextRecord
}

// Extractor walks annotation subtrees
type Extractor struct {
	resolver *resolver.ObjectResolver
	maxDepth int
	contexts map[int]*model.WorldContext // by context instance id
}

// Option configures an Extractor
type Option func(*Extractor)

// WithMaxDepth limits how deep annotation subtrees are walked (default: 256)
func WithMaxDepth(depth int) Option {
	return func(x *Extractor) {
		x.maxDepth = depth
	}
}

// New creates an Extractor over the elements of res
func New(res *resolver.ObjectResolver, opts ...Option) *Extractor {
	x := &Extractor{
		resolver: res,
		maxDepth: 256,
		contexts: make(map[int]*model.WorldContext),
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Extract processes every IfcAnnotation in file order. Any error aborts the whole
// extraction.
func (x *Extractor) Extract() (*Result, error) {
	result := &Result{}
	for _, e := range x.resolver.ElementsOf("IfcAnnotation") {
		node, texts, err := x.ExtractAnnotation(e)
		if err != nil {
			return nil, err
		}
		result.Annotations = append(result.Annotations, node)
		result.Texts = append(result.Texts, texts...)
	}

	logging.Logger().Debug("extracted annotation texts",
		"annotations", len(result.Annotations),
		"texts", len(result.Texts))
	return result, nil
}

// ExtractAnnotation builds the node for one annotation and collects its texts
func (x *Extractor) ExtractAnnotation(e *resolver.Element) (*model.AnnotationNode, []*model.TextRecord, error) {
	node, err := x.Annotation(e)
	if err != nil {
		return nil, nil, err
	}

	var texts []*model.TextRecord
	visit := func(depth int, name string, n walk.Traversable) (walk.Signal, error) {
		item, ok := n.(*resolver.Element)
		if !ok {
			return walk.Continue, nil
		}

		if name == "ContextOfItems" {
			ctx, err := x.Context(item)
			if err != nil {
				return walk.Stop, err
			}
			node.Attach(ctx)
			return walk.SkipSubtree, nil
		}

		if item.IsA("IfcTextLiteralWithExtent") {
			rec, err := x.Text(item, node)
			if err != nil {
				return walk.Stop, err
			}
			texts = append(texts, rec)
			logging.Logger().Debug("found text", "annotation", node.GlobalID, "id", rec.ID, "depth", depth, "literal", rec.Literal)
			return walk.SkipSubtree, nil
		}

		return walk.Continue, nil
	}

	if err := walk.Walk(node.GlobalID, e, visit, walk.WithMaxDepth(x.maxDepth)); err != nil {
		return nil, nil, fmt.Errorf("annotation %s: %w", node.GlobalID, err)
	}

	if node.Context == nil && len(texts) > 0 {
		logging.Logger().Warn("annotation has texts but no representation context",
			"annotation", node.GlobalID, "texts", len(texts))
	}
	return node, texts, nil
}

// Annotation builds the node of an IfcAnnotation: global id and local placement
func (x *Extractor) Annotation(e *resolver.Element) (*model.AnnotationNode, error) {
	if !e.IsA("IfcAnnotation") {
		return nil, fmt.Errorf("%s: %w", e, ErrNotAnnotation)
	}

	gid, ok := e.Text("GlobalId")
	if !ok {
		return nil, fmt.Errorf("%s.GlobalId: %w", e, ErrMissingAttribute)
	}

	placement, err := required(e, "ObjectPlacement")
	if err != nil {
		return nil, fmt.Errorf("annotation %s: %w", gid, err)
	}
	local, err := LocalPlacement(placement)
	if err != nil {
		return nil, fmt.Errorf("annotation %s: %w", gid, err)
	}

	return &model.AnnotationNode{GlobalID: gid, LocalPlacement: local}, nil
}

// Context builds the world context of a representation context.
// Contexts are shared between annotations, so each is built once.
func (x *Extractor) Context(e *resolver.Element) (*model.WorldContext, error) {
	if ctx, ok := x.contexts[e.ID()]; ok {
		return ctx, nil
	}
	wcs, err := WorldCoordinateSystem(e)
	if err != nil {
		return nil, err
	}
	ctx := &model.WorldContext{ID: strconv.Itoa(e.ID()), WorldCoordinateSystem: wcs}
	x.contexts[e.ID()] = ctx
	return ctx, nil
}

// Text builds the record of an IfcTextLiteralWithExtent
func (x *Extractor) Text(e *resolver.Element, parent *model.AnnotationNode) (*model.TextRecord, error) {
	literal, ok := e.Text("Literal")
	if !ok {
		return nil, fmt.Errorf("%s.Literal: %w", e, ErrMissingAttribute)
	}

	placementElem, err := required(e, "Placement")
	if err != nil {
		return nil, err
	}
	placement, err := AxisPlacement(placementElem)
	if err != nil {
		return nil, err
	}

	extent, err := required(e, "Extent")
	if err != nil {
		return nil, err
	}
	sx, ok := extent.Number("SizeInX")
	if !ok {
		return nil, fmt.Errorf("%s.SizeInX: %w", extent, ErrMissingAttribute)
	}
	sy, ok := extent.Number("SizeInY")
	if !ok {
		return nil, fmt.Errorf("%s.SizeInY: %w", extent, ErrMissingAttribute)
	}
	if sx < 0 || sy < 0 {
		return nil, fmt.Errorf("%s: %w: %g x %g", extent, ErrInvalidExtent, sx, sy)
	}

	alignment, _ := e.Text("BoxAlignment")

	return &model.TextRecord{
		ID:           strconv.Itoa(e.ID()),
		Parent:       parent,
		Placement:    placement,
		SizeX:        sx,
		SizeY:        sy,
		Literal:      literal,
		BoxAlignment: alignment,
	}, nil
}

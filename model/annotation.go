package model

import (
	"errors"
	"fmt"
)

// ErrNoContext is returned when face vertices are requested for a text whose
// annotation has no world context yet
var ErrNoContext = errors.New("annotation has no representation context")

// WorldContext holds the world coordinate system of a representation context.
// It is shared by all texts of one annotation and not modified after creation.
type WorldContext struct {
	ID                    string // instance id of the context, for diagnostics
	WorldCoordinateSystem Mat4
}

// AnnotationNode is one IfcAnnotation
type AnnotationNode struct {
	GlobalID       string
	LocalPlacement Mat4
	// Context is set once the annotation's ContextOfItems has been discovered
	Context *WorldContext
}

// Attach sets the world context. Each ContextOfItems met during the walk replaces
// the previous one, so all texts of the annotation use the last context found.
func (a *AnnotationNode) Attach(ctx *WorldContext) {
	a.Context = ctx
}

// TextRecord is one text literal with extent below an annotation
type TextRecord struct {
	ID           string // instance id of the literal
	Parent       *AnnotationNode
	Placement    Mat4 // 2D placement of the literal, z fixed to +Z
	SizeX        float64
	SizeY        float64
	Literal      string
	BoxAlignment string
}

// Transform returns the composite transform local . world . placement
func (t *TextRecord) Transform() (Mat4, error) {
	if t.Parent == nil {
		return Mat4{}, fmt.Errorf("text #%s: no parent annotation: %w", t.ID, ErrNoContext)
	}
	if t.Parent.Context == nil {
		return Mat4{}, fmt.Errorf("text #%s of annotation %s: %w", t.ID, t.Parent.GlobalID, ErrNoContext)
	}
	return t.Parent.LocalPlacement.
		Multiply(t.Parent.Context.WorldCoordinateSystem).
		Multiply(t.Placement), nil
}

// FaceVertices returns the world-space corners p0..p3 of the extent rectangle,
// counter-clockwise seen from +z of the literal's frame:
//
//	p3 ------ p2
//	|          |  SizeY
//	p0 ------ p1
//	   SizeX
func (t *TextRecord) FaceVertices() ([4]Vec3, error) {
	m, err := t.Transform()
	if err != nil {
		return [4]Vec3{}, err
	}
	return [4]Vec3{
		m.Transform(Vec3{0, 0, 0}),
		m.Transform(Vec3{t.SizeX, 0, 0}),
		m.Transform(Vec3{t.SizeX, t.SizeY, 0}),
		m.Transform(Vec3{0, t.SizeY, 0}),
	}, nil
}

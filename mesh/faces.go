// Package mesh turns annotation texts into textured quads and exports them as a
// binary glTF scene.
package mesh

import (
	"fmt"

	"github.com/tsawler/ifcnotes/model"
)

// Face is the quad of one text record
type Face struct {
	ID       string
	Text     string
	Vertices [4]model.Vec3 // p0..p3: bottom-left, bottom-right, top-right, top-left
	// Normals of the two triangles (0,2,3) and (0,1,2), not normalised
	Normals [2]model.Vec3
}

// Normal returns the unit normal of the quad, or +Z for a degenerate quad
func (f Face) Normal() model.Vec3 {
	n := f.Normals[0].Add(f.Normals[1])
	if n.Length() == 0 {
		return model.UnitZ
	}
	return n.Normalize()
}

// Mesh is the combined geometry of all faces: four vertices per face and two
// triangles per face
type Mesh struct {
	Faces   []Face
	Indices []uint32
}

// Positions returns the vertices of every face in order
func (m *Mesh) Positions() []model.Vec3 {
	out := make([]model.Vec3, 0, 4*len(m.Faces))
	for _, f := range m.Faces {
		out = append(out, f.Vertices[:]...)
	}
	return out
}

// Triangles returns the number of triangles
func (m *Mesh) Triangles() int {
	return len(m.Indices) / 3
}

// quadIndices are the two triangles of a quad
var quadIndices = [6]uint32{0, 2, 3, 0, 1, 2}

// BuildFaces computes the world-space quad of every record
func BuildFaces(records []*model.TextRecord) (*Mesh, error) {
	m := &Mesh{
		Faces:   make([]Face, 0, len(records)),
		Indices: make([]uint32, 0, 6*len(records)),
	}

	for i, r := range records {
		p, err := r.FaceVertices()
		if err != nil {
			return nil, fmt.Errorf("text %s: %w", r.ID, err)
		}

		m.Faces = append(m.Faces, Face{
			ID:       r.ID,
			Text:     r.Literal,
			Vertices: p,
			Normals: [2]model.Vec3{
				p[2].Sub(p[0]).Cross(p[3].Sub(p[0])),
				p[1].Sub(p[0]).Cross(p[2].Sub(p[0])),
			},
		})

		base := uint32(4 * i)
		for _, idx := range quadIndices {
			m.Indices = append(m.Indices, base+idx)
		}
	}

	return m, nil
}

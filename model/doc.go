// Package model provides the in-memory representation of extracted annotation text
// and the placement math that positions it in world space.
//
// # Geometry
//
// [Vec3] is a 3D vector and [Mat4] a 4x4 homogeneous transform stored row-major.
// [Placement3D] and [Placement2D] build transforms from IFC axis placements
// (origin, optional axis, optional reference direction). The columns of the result
// are the orthonormal x, y and z axes followed by the origin.
//
// # Annotations
//
// One [AnnotationNode] exists per IfcAnnotation. It owns the annotation's local
// placement and, once discovered, the [WorldContext] of its representation context.
// A [TextRecord] is one text literal with extent below an annotation:
//
//	corners, err := record.FaceVertices()
//
// FaceVertices composes local placement, world coordinate system and the literal's
// own 2D placement (in that order) and maps the corners of the extent rectangle.
package model

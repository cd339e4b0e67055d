package model

// parallelEpsilon bounds |a x b| for unit vectors treated as parallel
const parallelEpsilon = 1e-12

// Placement3D builds the transform of an IfcAxis2Placement3D.
// A nil axis defaults to +Z and a nil ref to +X. The reference direction is
// projected into the plane normal to the axis, so the result is always a rigid
// transform: z = |axis|, y = |z x ref|, x = y x z.
func Placement3D(location Vec3, axis, ref *Vec3) Mat4 {
	z := UnitZ
	if axis != nil && axis.Length() > 0 {
		z = axis.Normalize()
	}

	x := firstProjectedAxis(z, ref)
	y := z.Cross(x).Normalize()
	x = y.Cross(z)
	return FromColumns(x, y, z, location)
}

// Placement2D builds the transform of an IfcAxis2Placement2D: z is fixed to +Z, the
// 2D reference direction (default +X) is lifted to z = 0 and the 2D location to
// (x, y, 0).
func Placement2D(location Vec3, ref *Vec3) Mat4 {
	location.Z = 0
	if ref != nil {
		lifted := Vec3{ref.X, ref.Y, 0}
		ref = &lifted
	}
	return Placement3D(location, nil, ref)
}

// firstProjectedAxis returns a provisional x axis for z. Without a usable reference
// direction it follows IFC's default: +X, or +Y when z is parallel to +X.
func firstProjectedAxis(z Vec3, ref *Vec3) Vec3 {
	if ref != nil && z.Cross(ref.Normalize()).Length() > parallelEpsilon {
		return *ref
	}
	if z.Cross(UnitX).Length() > parallelEpsilon {
		return UnitX
	}
	return UnitY
}

package extract

import (
	"fmt"

	"github.com/tsawler/ifcnotes/model"
	"github.com/tsawler/ifcnotes/resolver"
)

// maxPlacementChain bounds PlacementRelTo and ParentContext chains
const maxPlacementChain = 100

// AxisPlacement converts an IfcAxis2Placement3D or IfcAxis2Placement2D to a matrix
func AxisPlacement(e *resolver.Element) (model.Mat4, error) {
	switch {
	case e.IsA("IfcAxis2Placement3D"):
		location, err := point(e, "Location")
		if err != nil {
			return model.Mat4{}, err
		}
		axis, err := direction(e, "Axis")
		if err != nil {
			return model.Mat4{}, err
		}
		ref, err := direction(e, "RefDirection")
		if err != nil {
			return model.Mat4{}, err
		}
		return model.Placement3D(location, axis, ref), nil

	case e.IsA("IfcAxis2Placement2D"):
		location, err := point(e, "Location")
		if err != nil {
			return model.Mat4{}, err
		}
		ref, err := direction(e, "RefDirection")
		if err != nil {
			return model.Mat4{}, err
		}
		return model.Placement2D(location, ref), nil
	}

	return model.Mat4{}, fmt.Errorf("%s: %w", e, ErrUnsupportedPlacement)
}

// LocalPlacement converts an IfcObjectPlacement to a matrix, following the
// PlacementRelTo chain: M = relTo . relative
func LocalPlacement(e *resolver.Element) (model.Mat4, error) {
	m := model.Identity()
	seen := make(map[int]bool)

	// Collect relative placements from the element up to the root
	var chain []model.Mat4
	for current := e; current != nil; {
		if seen[current.ID()] {
			return model.Mat4{}, fmt.Errorf("%s: placement chain loops", current)
		}
		if len(chain) >= maxPlacementChain {
			return model.Mat4{}, fmt.Errorf("%s: placement chain longer than %d", e, maxPlacementChain)
		}
		seen[current.ID()] = true

		if !current.IsA("IfcLocalPlacement") {
			return model.Mat4{}, fmt.Errorf("%s: %w", current, ErrUnsupportedPlacement)
		}
		relative, err := required(current, "RelativePlacement")
		if err != nil {
			return model.Mat4{}, err
		}
		rm, err := AxisPlacement(relative)
		if err != nil {
			return model.Mat4{}, err
		}
		chain = append(chain, rm)

		parent, err := current.Ref("PlacementRelTo")
		if err != nil {
			return model.Mat4{}, err
		}
		current = parent
	}

	// Root first
	for i := len(chain) - 1; i >= 0; i-- {
		m = m.Multiply(chain[i])
	}
	return m, nil
}

// WorldCoordinateSystem returns the world coordinate system of a representation
// context. Sub-contexts derive it, so the ParentContext chain is followed until a
// context that sets it.
func WorldCoordinateSystem(ctx *resolver.Element) (model.Mat4, error) {
	current := ctx
	for i := 0; current != nil && i < maxPlacementChain; i++ {
		if current.HasAttribute("WorldCoordinateSystem") {
			wcs, err := current.Ref("WorldCoordinateSystem")
			if err != nil {
				return model.Mat4{}, err
			}
			if wcs != nil {
				return AxisPlacement(wcs)
			}
		}
		if !current.HasAttribute("ParentContext") {
			break
		}
		parent, err := current.Ref("ParentContext")
		if err != nil {
			return model.Mat4{}, err
		}
		current = parent
	}
	return model.Mat4{}, fmt.Errorf("%s.WorldCoordinateSystem: %w", ctx, ErrMissingAttribute)
}

// required resolves an entity-valued attribute that must be set
func required(e *resolver.Element, name string) (*resolver.Element, error) {
	target, err := e.Ref(name)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, fmt.Errorf("%s.%s: %w", e, name, ErrMissingAttribute)
	}
	return target, nil
}

// point reads an IfcCartesianPoint attribute
func point(e *resolver.Element, name string) (model.Vec3, error) {
	p, err := required(e, name)
	if err != nil {
		return model.Vec3{}, err
	}
	coords, err := p.Floats("Coordinates")
	if err != nil {
		return model.Vec3{}, err
	}
	v, err := model.NewVec3(coords)
	if err != nil {
		return model.Vec3{}, fmt.Errorf("%s.Coordinates: %w", p, err)
	}
	return v, nil
}

// direction reads an optional IfcDirection attribute
func direction(e *resolver.Element, name string) (*model.Vec3, error) {
	d, err := e.Ref(name)
	if err != nil || d == nil {
		return nil, err
	}
	ratios, err := d.Floats("DirectionRatios")
	if err != nil {
		return nil, err
	}
	v, err := model.NewVec3(ratios)
	if err != nil {
		return nil, fmt.Errorf("%s.DirectionRatios: %w", d, err)
	}
	return &v, nil
}

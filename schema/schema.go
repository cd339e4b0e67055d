// Package schema holds the subset of the IFC schema that annotation extraction and
// tree dumps need: canonical entity names, supertypes and attribute order.
//
// It is a lookup table, not a schema engine. Entities that are not listed are still
// readable; their attributes get synthesized names (see [AttributeName]).
package schema

import (
	"strconv"
	"strings"
)

// Entity describes one IFC entity type
type Entity struct {
	Name       string   // canonical spelling, e.g. IfcTextLiteralWithExtent
	Supertype  string   // canonical name of the direct supertype, empty for roots
	Abstract   bool     // abstract supertypes never appear in a file
	Attributes []string // explicit attributes, inherited ones first
}

// definition is the table form: only the attributes an entity adds to its supertype
type definition struct {
	name      string
	supertype string
	abstract  bool
	own       []string
}

var definitions = []definition{
	// Root and product hierarchy
	{"IfcRoot", "", true, []string{"GlobalId", "OwnerHistory", "Name", "Description"}},
	{"IfcObjectDefinition", "IfcRoot", true, nil},
	{"IfcObject", "IfcObjectDefinition", true, []string{"ObjectType"}},
	{"IfcProduct", "IfcObject", true, []string{"ObjectPlacement", "Representation"}},
	{"IfcAnnotation", "IfcProduct", false, nil},

	// Object placements
	{"IfcObjectPlacement", "", true, nil},
	{"IfcLocalPlacement", "IfcObjectPlacement", false, []string{"PlacementRelTo", "RelativePlacement"}},
	{"IfcGridPlacement", "IfcObjectPlacement", false, []string{"PlacementLocation", "PlacementRefDirection"}},

	// Geometry resource
	{"IfcRepresentationItem", "", true, nil},
	{"IfcGeometricRepresentationItem", "IfcRepresentationItem", true, nil},
	{"IfcPoint", "IfcGeometricRepresentationItem", true, nil},
	{"IfcCartesianPoint", "IfcPoint", false, []string{"Coordinates"}},
	{"IfcDirection", "IfcGeometricRepresentationItem", false, []string{"DirectionRatios"}},
	{"IfcPlacement", "IfcGeometricRepresentationItem", true, []string{"Location"}},
	{"IfcAxis1Placement", "IfcPlacement", false, []string{"Axis"}},
	{"IfcAxis2Placement2D", "IfcPlacement", false, []string{"RefDirection"}},
	{"IfcAxis2Placement3D", "IfcPlacement", false, []string{"Axis", "RefDirection"}},
	{"IfcCartesianTransformationOperator", "IfcGeometricRepresentationItem", true, []string{"Axis1", "Axis2", "LocalOrigin", "Scale"}},
	{"IfcCartesianTransformationOperator2D", "IfcCartesianTransformationOperator", false, nil},
	{"IfcCartesianTransformationOperator3D", "IfcCartesianTransformationOperator", false, []string{"Axis3"}},
	{"IfcCurve", "IfcGeometricRepresentationItem", true, nil},
	{"IfcBoundedCurve", "IfcCurve", true, nil},
	{"IfcPolyline", "IfcBoundedCurve", false, []string{"Points"}},
	{"IfcTrimmedCurve", "IfcBoundedCurve", false, []string{"BasisCurve", "Trim1", "Trim2", "SenseAgreement", "MasterRepresentation"}},
	{"IfcConic", "IfcCurve", true, []string{"Position"}},
	{"IfcCircle", "IfcConic", false, []string{"Radius"}},
	{"IfcGeometricSet", "IfcGeometricRepresentationItem", false, []string{"Elements"}},
	{"IfcGeometricCurveSet", "IfcGeometricSet", false, nil},
	{"IfcAnnotationFillArea", "IfcGeometricRepresentationItem", false, []string{"OuterBoundary", "InnerBoundaries"}},
	{"IfcMappedItem", "IfcRepresentationItem", false, []string{"MappingSource", "MappingTarget"}},
	{"IfcStyledItem", "IfcRepresentationItem", false, []string{"Item", "Styles", "Name"}},
	{"IfcAnnotationOccurrence", "IfcStyledItem", true, nil},
	{"IfcAnnotationTextOccurrence", "IfcAnnotationOccurrence", false, nil},
	{"IfcAnnotationCurveOccurrence", "IfcAnnotationOccurrence", false, nil},

	// Text and extents
	{"IfcTextLiteral", "IfcGeometricRepresentationItem", false, []string{"Literal", "Placement", "Path"}},
	{"IfcTextLiteralWithExtent", "IfcTextLiteral", false, []string{"Extent", "BoxAlignment"}},
	{"IfcPlanarExtent", "IfcGeometricRepresentationItem", false, []string{"SizeInX", "SizeInY"}},
	{"IfcPlanarBox", "IfcPlanarExtent", false, []string{"Placement"}},

	// Representations and contexts
	{"IfcProductRepresentation", "", true, []string{"Name", "Description", "Representations"}},
	{"IfcProductDefinitionShape", "IfcProductRepresentation", false, nil},
	{"IfcRepresentation", "", true, []string{"ContextOfItems", "RepresentationIdentifier", "RepresentationType", "Items"}},
	{"IfcShapeModel", "IfcRepresentation", true, nil},
	{"IfcShapeRepresentation", "IfcShapeModel", false, nil},
	{"IfcRepresentationMap", "", false, []string{"MappingOrigin", "MappedRepresentation"}},
	{"IfcRepresentationContext", "", true, []string{"ContextIdentifier", "ContextType"}},
	{"IfcGeometricRepresentationContext", "IfcRepresentationContext", false, []string{"CoordinateSpaceDimension", "Precision", "WorldCoordinateSystem", "TrueNorth"}},
	{"IfcGeometricRepresentationSubContext", "IfcGeometricRepresentationContext", false, []string{"ParentContext", "TargetScale", "TargetView", "UserDefinedTargetView"}},
	{"IfcPresentationLayerAssignment", "", false, []string{"Name", "Description", "AssignedItems", "Identifier"}},

	// Ownership
	{"IfcOwnerHistory", "", false, []string{"OwningUser", "OwningApplication", "State", "ChangeAction", "LastModifiedDate", "LastModifyingUser", "LastModifyingApplication", "CreationDate"}},
	{"IfcPersonAndOrganization", "", false, []string{"ThePerson", "TheOrganization", "Roles"}},
	{"IfcPerson", "", false, []string{"Identification", "FamilyName", "GivenName", "MiddleNames", "PrefixTitles", "SuffixTitles", "Roles", "Addresses"}},
	{"IfcOrganization", "", false, []string{"Identification", "Name", "Description", "Roles", "Addresses"}},
	{"IfcApplication", "", false, []string{"ApplicationDeveloper", "Version", "ApplicationFullName", "ApplicationIdentifier"}},
}

// entities is keyed by upper-case name, the spelling used in STEP files
var entities = buildTable(definitions)

func buildTable(defs []definition) map[string]*Entity {
	table := make(map[string]*Entity, len(defs))
	for _, d := range defs {
		e := &Entity{Name: d.name, Supertype: d.supertype, Abstract: d.abstract}
		if d.supertype != "" {
			parent, ok := table[strings.ToUpper(d.supertype)]
			if !ok {
				panic("schema: supertype " + d.supertype + " of " + d.name + " is not defined before it")
			}
			e.Attributes = append(e.Attributes, parent.Attributes...)
		}
		e.Attributes = append(e.Attributes, d.own...)
		table[strings.ToUpper(d.name)] = e
	}
	return table
}

// Lookup returns the entity for a type name in any letter case
func Lookup(name string) (*Entity, bool) {
	e, ok := entities[strings.ToUpper(name)]
	return e, ok
}

// CanonicalName returns the schema spelling of a type name, or the name as given
// when the type is not in the table
func CanonicalName(name string) string {
	if e, ok := Lookup(name); ok {
		return e.Name
	}
	return name
}

// AttributeName returns the name of the attribute at index i of the given type.
// Unknown types and indices beyond the table get "Attribute<i>".
func AttributeName(typ string, i int) string {
	if e, ok := Lookup(typ); ok && i < len(e.Attributes) {
		return e.Attributes[i]
	}
	return "Attribute" + strconv.Itoa(i)
}

// AttributeNames returns names for the first n attributes of the given type
func AttributeNames(typ string, n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = AttributeName(typ, i)
	}
	return names
}

// AttributeIndex returns the position of a named attribute, or -1
func AttributeIndex(typ, attr string) int {
	e, ok := Lookup(typ)
	if !ok {
		return -1
	}
	for i, name := range e.Attributes {
		if name == attr {
			return i
		}
	}
	return -1
}

// IsA reports whether typ is want or one of its subtypes. Letter case is ignored.
func IsA(typ, want string) bool {
	want = strings.ToUpper(want)
	current := strings.ToUpper(typ)
	for current != "" {
		if current == want {
			return true
		}
		e, ok := entities[current]
		if !ok {
			return false
		}
		current = strings.ToUpper(e.Supertype)
	}
	return false
}

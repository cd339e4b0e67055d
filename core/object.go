package core

import (
	"fmt"
	"strconv"
	"strings"
)

// Object represents a STEP parameter value
type Object interface {
	Type() ObjectType
	String() string
}

// ObjectType represents the type of STEP parameter
type ObjectType int

const (
	ObjNull ObjectType = iota
	ObjDerived
	ObjInt
	ObjReal
	ObjString
	ObjEnum
	ObjBinary
	ObjList
	ObjRef
	ObjTyped
)

// String returns the string representation of the object type
func (t ObjectType) String() string {
	switch t {
	case ObjNull:
		return "Null"
	case ObjDerived:
		return "Derived"
	case ObjInt:
		return "Int"
	case ObjReal:
		return "Real"
	case ObjString:
		return "String"
	case ObjEnum:
		return "Enum"
	case ObjBinary:
		return "Binary"
	case ObjList:
		return "List"
	case ObjRef:
		return "Ref"
	case ObjTyped:
		return "Typed"
	default:
		return "Unknown"
	}
}

// Null represents an unset parameter ($)
type Null struct{}

func (n Null) Type() ObjectType { return ObjNull }
func (n Null) String() string   { return "$" }

// Derived represents a parameter whose value is derived by the schema (*)
type Derived struct{}

func (d Derived) Type() ObjectType { return ObjDerived }
func (d Derived) String() string   { return "*" }

// Int represents a STEP integer
type Int int64

func (i Int) Type() ObjectType { return ObjInt }
func (i Int) String() string   { return strconv.FormatInt(int64(i), 10) }

// Real represents a STEP real number
type Real float64

func (r Real) Type() ObjectType { return ObjReal }
func (r Real) String() string   { return strconv.FormatFloat(float64(r), 'g', -1, 64) }

// String represents a decoded STEP string
type String string

func (s String) Type() ObjectType { return ObjString }
func (s String) String() string   { return string(s) }

// Enum represents an enumeration value such as .T. or .PLAN_VIEW.
type Enum string

func (e Enum) Type() ObjectType { return ObjEnum }
func (e Enum) String() string   { return "." + string(e) + "." }

// Bool interprets the logical enumerations .T. and .F.
// The second return value is false for any other value (including .U.).
func (e Enum) Bool() (bool, bool) {
	switch e {
	case "T":
		return true, true
	case "F":
		return false, true
	}
	return false, false
}

// Binary represents a binary literal ("0FF"); the value is kept as written
type Binary string

func (b Binary) Type() ObjectType { return ObjBinary }
func (b Binary) String() string   { return `"` + string(b) + `"` }

// List represents an aggregate (LIST, SET, BAG or ARRAY)
type List []Object

func (l List) Type() ObjectType { return ObjList }
func (l List) String() string {
	parts := make([]string, 0, len(l))
	for _, obj := range l {
		parts = append(parts, obj.String())
	}
	return "(" + strings.Join(parts, ",") + ")"
}

// Len returns the length of the list
func (l List) Len() int {
	return len(l)
}

// Get retrieves an element at the given index
func (l List) Get(index int) Object {
	if index < 0 || index >= len(l) {
		return nil
	}
	return l[index]
}

// Floats converts a list of numbers to float64 values.
// Integers are accepted because some exporters write whole coordinates without a decimal point.
func (l List) Floats() ([]float64, error) {
	out := make([]float64, len(l))
	for i, obj := range l {
		f, ok := Number(obj)
		if !ok {
			return nil, fmt.Errorf("element %d is %s, not a number", i, obj.Type())
		}
		out[i] = f
	}
	return out, nil
}

// Refs returns the instance ids of all Ref members, skipping anything else
func (l List) Refs() []Ref {
	var refs []Ref
	for _, obj := range l {
		if r, ok := obj.(Ref); ok {
			refs = append(refs, r)
		}
	}
	return refs
}

// Ref represents an entity instance reference (#123)
type Ref int

func (r Ref) Type() ObjectType { return ObjRef }
func (r Ref) String() string   { return "#" + strconv.Itoa(int(r)) }

// Typed represents a typed parameter such as IFCLABEL('Text') or IFCLENGTHMEASURE(2.5)
type Typed struct {
	Name  string
	Value Object
}

func (t Typed) Type() ObjectType { return ObjTyped }
func (t Typed) String() string {
	return fmt.Sprintf("%s(%s)", t.Name, t.Value.String())
}

// Number extracts a float64 from Real, Int or a Typed wrapper around either
func Number(obj Object) (float64, bool) {
	switch v := obj.(type) {
	case Real:
		return float64(v), true
	case Int:
		return float64(v), true
	case Typed:
		return Number(v.Value)
	}
	return 0, false
}

// IsUnset reports whether a parameter carries no value ($ or *)
func IsUnset(obj Object) bool {
	if obj == nil {
		return true
	}
	switch obj.(type) {
	case Null, Derived:
		return true
	}
	return false
}

// Instance represents one entity instance from the DATA section
type Instance struct {
	ID   int
	Name string // entity type name as written, upper case
	Args List
	// Parts holds the partial entity values of a complex instance; Name is then
	// the first part's name and Args its arguments.
	Parts []Typed
}

// IsComplex reports whether the instance was written in external-mapping form
func (i *Instance) IsComplex() bool {
	return len(i.Parts) > 0
}

// String returns the instance in its STEP form
func (i *Instance) String() string {
	if i.IsComplex() {
		parts := make([]string, 0, len(i.Parts))
		for _, p := range i.Parts {
			parts = append(parts, p.String())
		}
		return fmt.Sprintf("#%d=(%s);", i.ID, strings.Join(parts, ""))
	}
	return fmt.Sprintf("#%d=%s%s;", i.ID, i.Name, i.Args.String())
}

// HeaderEntity is an instance from the HEADER section; these carry no id
type HeaderEntity struct {
	Name string
	Args List
}

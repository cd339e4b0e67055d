// Package core provides low-level STEP physical file (ISO 10303-21) parsing primitives
// and object types.
//
// IFC models are exchanged as STEP physical files: a HEADER section followed by a DATA
// section of entity instances of the form
//
//	#12=IFCCARTESIANPOINT((0.,0.,0.));
//
// # Object Types
//
// Parameter values are represented by types satisfying the [Object] interface:
//
//   - [Null] - the unset value $
//   - [Derived] - the derived value *
//   - [Int] and [Real] - numbers
//   - [String] - decoded strings (see [DecodeString])
//   - [Enum] - enumerations such as .T. or .PLAN_VIEW.
//   - [Binary] - binary literals
//   - [List] - aggregates
//   - [Ref] - references to other entity instances
//   - [Typed] - typed parameters such as IFCLABEL('x')
//
// # Parsing
//
// The [Lexer] converts raw bytes into tokens; the [Parser] builds parameters,
// [Instance] values and [HeaderEntity] values from them. Complex instances written in
// external-mapping form keep their partial entities in [Instance.Parts].
package core

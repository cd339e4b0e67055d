// Package reader provides high-level reading of IFC models stored as STEP physical files.
//
// This package orchestrates the lower-level core package: it parses the HEADER and
// DATA sections eagerly and indexes every entity instance by id and by type.
//
// # Opening Models
//
// Use [Open] to read a model file (.ifc, or .ifczip holding one):
//
//	r, err := reader.Open("house.ifc")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//
// Or use [NewReader] with any io.Reader carrying STEP text.
//
// # Instances
//
// [Reader.Instance] returns one instance by id, [Reader.InstancesOf] every instance of
// a type (subtypes included, file order kept). References between instances are not
// followed here; see the resolver package for that.
//
// # Progress
//
// [WithProgress] renders a byte progress bar while a large model is parsed.
package reader

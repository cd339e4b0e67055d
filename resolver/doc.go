// Package resolver turns parsed STEP instances into navigable model elements.
//
// Entity instances refer to each other with references such as #42. An
// [ObjectResolver] follows those references on demand and hands out one cached
// [Element] per instance, so elements can be compared by identity.
//
// # Basic Usage
//
//	res := resolver.NewResolver(r)
//	for _, annotation := range res.ElementsOf("IfcAnnotation") {
//	    placement, err := annotation.Ref("ObjectPlacement")
//	    ...
//	}
//
// # Attributes
//
// Attributes are addressed by their schema names (see the schema package). Entity
// types missing from the schema table expose their attributes as Attribute0,
// Attribute1, ...
//
// # Traversal
//
// [Element] implements walk.Traversable: attributes holding a reference are
// traversable children, and the Representations, Items and Elements aggregates are
// exposed as child collections.
package resolver

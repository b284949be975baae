// Package schema implements the declarative property system for dynamically
// defined component kinds.
//
// A kind pairs a name with an ordered field schema and an optional
// supertype; its effective schema is the ancestor chain merged root-to-leaf
// with leaf entries winning. Schemas drive four operations over a
// component's property bag: default initialization after construction,
// required-field validation before first activation, field copying (the
// shared basis of "construct with params" and "clone"), and reference
// retargeting when a sub-hierarchy is cloned into another container.
//
// Neither side of the native boundary needs static type information: fields
// are addressed by name and a small tag enum.
package schema

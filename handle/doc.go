// Package handle defines the integer addressing scheme used to reach native
// entities across the runtime boundary.
//
// Two handle shapes exist. Simple handles pair a manager index with a local
// ID and address components inside per-type pools. Packed handles squeeze a
// (container, local) pair into one signed 32-bit integer and address scene
// objects and container-scoped resources (animations, skins). All functions
// here are pure; validity of the named entity is the registry's concern.
package handle

// Package engine loads the compiled scene runtime with wazero and exposes
// it to the binding layer as a Bridge: one synchronous call primitive per
// native API function, plus linear memory and the runtime's exported
// allocator.
//
// The native ABI surface is a fixed table binding each FuncID to an export
// name and call shape. All exports are resolved at load time; when the
// runtime ships a WIT manifest, it is validated against the table first so
// an ABI mismatch is a load error rather than a corrupt call later.
package engine

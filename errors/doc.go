// Package errors provides structured error types for the binding layer.
//
// Errors carry a Phase (where in processing the failure happened) and a Kind
// (what category of failure it is), plus an optional field path and the
// entity concerned. Two errors match under errors.Is when Phase and Kind
// agree, which is what callers branch on.
//
// The taxonomy mirrors the propagation policy: validity errors
// (unregistered_kind, field_missing, cross_container) and allocation failures
// always propagate to the caller; construction/lifecycle failures are caught
// at the hook boundary, logged, and converted to a broken placeholder proxy.
package errors

// Package arena manages the scratch region of native linear memory used to
// exchange bulk array data (vertex attributes, raycast results, name
// strings) without allocating per call.
//
// One arena exists per session. It grows in 1024-byte increments and never
// shrinks. Growth reallocates the region, so typed views obtained before a
// growth-triggering EnsureCapacity report Len() == 0 afterwards and must be
// re-fetched. The arena is strictly single-owner for the duration of a call;
// see the Arena type for the re-entrancy rule.
package arena

// Package scenebridge binds an externally-compiled scene/engine runtime to Go
// callers through lightweight proxy objects.
//
// The runtime itself (scene graph storage, transform math, physics stepping,
// rendering) lives in a compiled WebAssembly module and is reached only
// through integer-indexed calls and a shared linear memory block. This library
// owns everything on the managed side of that boundary:
//
//	scenebridge/         Root package with Bridge, Memory and Allocator interfaces
//	├── handle/          Packed-integer handle encoding (container, local) pairs
//	├── arena/           Growable scratch region in linear memory for bulk marshalling
//	├── registry/        Flyweight handle -> proxy cache with safe invalidation
//	├── schema/          Declarative property schemas: defaults, validation, cloning
//	├── scene/           Proxy facades: sessions, scenes, objects, components, resources
//	├── engine/          wazero-backed Bridge implementation and API manifest checks
//	├── errors/          Structured error types for debugging
//	└── testbed/         In-process fake runtime used by integration tests
//
// # Quick Start
//
// Load a runtime binary and create a scene:
//
//	eng, err := engine.Load(ctx, wasmBytes)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer eng.Close(ctx)
//
//	session, err := scene.NewSession(eng.Bridge())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	sc, err := session.CreateScene(ctx)
//	obj, err := sc.CreateObject(ctx, "player", nil)
//
// # Identity and Lifetime
//
// Every live native entity has exactly one live proxy: wrapping the same
// handle twice returns the same instance. Destroying an entity invalidates
// its proxy synchronously, so a native-side reuse of the raw ID can never
// alias a stale proxy. See the registry package for details.
//
// # Threading Model
//
// The entire binding layer is single-threaded and synchronous. Every public
// operation runs to completion on the calling goroutine before control
// returns. The scratch arena in particular must never be touched re-entrantly;
// user lifecycle hooks must not call back into marshalling operations.
package scenebridge

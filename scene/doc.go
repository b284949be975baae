// Package scene is the managed-side facade over the native scene runtime:
// sessions, containers, objects, components and resources, all addressed
// through flyweight proxies backed by the registry package.
//
// A Session binds one loaded runtime (any scenebridge.Bridge) to one arena
// and one set of registries. Scenes wrap native containers; Objects and the
// component and resource proxies wrap native handles and stay identical
// across repeated lookups until destroyed. Dynamic components have no native
// storage: their property bags and lifecycle live entirely on this side,
// driven by Session.Update.
//
// Everything in this package is single-threaded by contract, matching the
// native runtime's execution model.
package scene

// Package types defines the entity types, version-code model, color sets and
// standard errors shared by the takeoff registry, catalog, plan manager and
// storage backend.
package types

// Package graph defines the design graph types for Carve.
// The design graph is an immutable DAG of primitives, booleans,
// transforms, and groups that represents a solid model.
package graph

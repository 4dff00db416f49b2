// Package graph defines the design graph a carve script evaluates to.
// The design graph is an immutable DAG of primitives, transforms,
// booleans and named parts. Node IDs are content hashes, so identical
// subexpressions share one node.
package graph

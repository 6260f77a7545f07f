// Package harness runs YAML-defined end-to-end scenarios against the
// built-in function catalog.
//
// A scenario names a flow document (by path, or inline as node specs),
// seed variables, and a root node, then asserts on the root's result
// tree, final scratch variables, and per-node execution counts. Golden
// comparison of the fully-executed serialized document catches drift in
// anything the assertions don't pin down.
package harness

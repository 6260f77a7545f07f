// Package builtin is the built-in function catalog: the port-driven
// control-flow functions (If, For, Repeat, While) plus the ordinary
// math, comparison, string, and scratch-variable functions the standard
// node palette offers.
//
// Every entry here is a plain registry function - the engine never
// special-cases a builtin. Control flow happens entirely through the
// graph-context port triggers the descriptors declare.
package builtin

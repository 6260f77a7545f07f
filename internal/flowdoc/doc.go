// Package flowdoc is the persisted document format for graphs: a JSON
// envelope carrying flow metadata plus one record per node with its
// function identifier, data bindings, edges, and optionally its last
// computed result.
//
// Function identifiers are stable strings, not runtime handles, so a
// document written by one build loads against another - the registry's
// structural fallback absorbs version drift. Deserialization is
// tolerant: a node whose function cannot be resolved is skipped and
// reported as a diagnostic, and the rest of the document still loads.
package flowdoc

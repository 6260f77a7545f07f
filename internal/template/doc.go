// Package template renders template expressions used in node input
// mappings.
//
// The engine only ever needs one narrow operation - render an expression
// string against a native context - so the package exposes exactly that
// behind the Renderer interface. The default implementation speaks the
// jinja dialect via gonja, with the statement keywords that reach outside
// the expression (include, extends, import, from) disabled: a persisted
// workflow document must not be able to read files through a parameter
// binding.
//
// Callers that need only bare-path resolution can swap in their own
// Renderer; the binder treats the renderer as opaque.
package template

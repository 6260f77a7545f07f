// Package registry maps stable, serializable function identifiers to
// invocable functions.
//
// A workflow document never stores a function pointer - it stores an
// identifier string of the form
//
//	scope, version | name | type1, type2, ...
//
// which encodes the declaring scope, its version info, the function name,
// and the value-parameter type signature. At load time the identifier is
// resolved back to a registered Function. Resolution tolerates version
// drift: if no exact identifier matches, the registry falls back to
// structural identity (scope + name + signature with the version ignored),
// and fails with FunctionNotFoundError only when that also misses.
//
// Functions declare ordered, typed, named parameters. Two parameter kinds
// are auto-injected by the engine and never populated from input mappings:
// the graph context (port triggering and run-scoped variables) and the
// service locator (opaque lookup of host capabilities). Injected
// parameters do not participate in the identifier's type signature.
//
// A function that declares output ports is port-driven: the engine will
// not fan out its plain edges, and the function body decides which ports
// fire via the injected graph context.
package registry

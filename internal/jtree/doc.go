// Package jtree implements the generic JSON-like value tree that carries
// all data between workflow nodes.
//
// A Value is a sealed tagged variant: Null, Bool, Number, String, Array,
// or Object. Objects preserve key insertion order, arrays preserve element
// order, and both survive a JSON round-trip with ordering intact.
//
// ARCHITECTURE:
//
// Three layers build on the value type:
//   - Path addressing: dotted paths ("a.b.c", "items.0.name") for get/set,
//     with intermediate containers created on set.
//   - Merge: recursive map union where the source wins on scalar conflicts.
//   - Coercion: conversion of a Value to a declared parameter type, with a
//     typed CoercionError when no lossless-enough conversion exists.
//
// Canonical marshaling (sorted keys, NFC-normalized strings, no HTML
// escaping) is provided separately for content hashing. It is NOT the
// serialization used for persisted documents - those keep insertion order.
//
// INVARIANTS:
//   - Object keys are unique; Set on an existing key overwrites in place
//     and keeps the key's original position.
//   - GetPath never errors: a missing or type-mismatched segment yields
//     (Null, false), not an error. Absence is data, not failure.
//   - Merge mutates its destination and never aliases source containers
//     into it (sources are deep-copied on insert).
package jtree

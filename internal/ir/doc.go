// Package ir defines the canonical flat intermediate representation for
// moonsmith.
//
// This package contains the node model, the balanced-ternary node ID codec,
// the document container, and the serialization surface. All other internal
// packages import ir; ir imports nothing internal. This keeps the IR the
// foundational layer with no circular dependencies.
//
// Key design constraints:
//   - The flat Nodes table is the sole owner of every node; children are
//     referenced by NodeID, never by embedded structure.
//   - Nodes are created once, by the lowerer. Later stages only read or
//     attach metadata.
//   - Serialization is deterministic: sorted keys, NFC-normalized strings,
//     no HTML escaping. Volatile metadata (run id, stage timings) is
//     stripped before any equality comparison.
package ir

// Package state defines the persistence-facing contracts for a catalog's
// three independent records (the serialized option list, the price map, and
// the availability map) plus a Keeper that orchestrates loading them into a
// catalog at startup and saving them after each settled mutation.
//
// Responsibilities:
//   - Store[T] only loads/saves a single record for a single Ref; absence of
//     a record on load is an empty default (ok == false), never an error.
//   - Keeper bundles the three typed stores, rebuilds a variants.Catalog via
//     variants.Restore on load, and snapshots all three records on save.
//   - SaveHook adapts the Keeper to an activity hook so every settled catalog
//     mutation persists without the core knowing about storage.
//
// The core variants package stays persistence-agnostic; all storage logic
// lives behind Store implementations supplied by consumers. MemoryStore
// serves tests and examples; FileStore keeps one JSON document per record
// under a directory, the single-user local equivalent of the browser storage
// the records originally lived in.
//
// Deterministic keys:
//
//	Ref.Identifier() yields "<catalog>/<record>" with the catalog name
//	defaulting to "default". Record names are fixed (options, prices,
//	availability); unknown records are errors so adapters fail loudly.
package state

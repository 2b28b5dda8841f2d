// Package usage tracks per-user consumption counters and the assigned plan.
//
// The Record keyed by user id is the unit of contention: the Store contract
// guarantees that concurrent mutations of the same record are serialized
// (no lost counter updates) while different users never block each other.
// Two implementations are provided: MemoryStore for tests and local runs, and
// PGStore, which leans on single-statement atomic SQL.
//
// Counters are monotonic. They are only ever incremented here; the sole reset
// path is the administrative bulk wipe (ResetAllCounters), which runs in one
// transaction together with the deletion of the externally-owned course rows.
package usage

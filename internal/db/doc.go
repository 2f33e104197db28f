// Package db contains the data-access layer for Ringmaster.
//
// The package exposes a `Store` interface with one implementation per
// supported engine (SQLite, PostgreSQL, MySQL), all backed by a shared set of
// Bun-based helpers in `bun_adapter.go`. `InitDB` wires the package-level
// `store` that the package helpers delegate to, so most callers never touch a
// Store value directly.
//
// Engine differences
//   - SQLite and Postgres share the portable `ON CONFLICT` upsert form for the
//     analytics counters and enforce the one-pending-submission-per-IP rule
//     with a partial unique index.
//   - MySQL overrides the counter upserts with `ON DUPLICATE KEY UPDATE` and
//     enforces the pending-submission rule with a transactional check, since
//     it has no partial indexes.
//
// Testing notes
//   - Prefer `db.InitDB("sqlite", ":memory:")` in tests that need real DB
//     semantics and migrations. In-memory DSNs are pinned to a single
//     connection so the schema stays visible across the pool.
package db

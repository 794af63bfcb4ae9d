// Package database provides optional SQLite-based crawl history storage.
//
// Flat artifact files are consolescan's primary output; the database is
// an opt-in supplement that records run totals and per-URL outcomes so
// repeated crawls of the same site can be compared over time.
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
// 4. WAL mode provides good concurrent read performance
package database

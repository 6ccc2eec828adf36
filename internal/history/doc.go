// Package history records finished recordings in a small SQLite ledger.
//
// The ledger is append-mostly: the session manager writes one row per
// successful stop and the CLI lists, summarizes, or clears it. Schema
// changes ship as embedded migrations applied on open.
package history

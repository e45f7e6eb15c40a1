// Package ledger persists download session history in SQLite.
//
// Each download run becomes one session row with per-page outcome rows
// underneath it. The history command reads it back; nothing in the download
// path depends on the ledger being enabled.
package ledger

// Package storage holds ingested order-item tables in memory.
//
// Entries are immutable once stored and live until Clear is called, which
// the application does on shutdown. Nothing survives a restart.
package storage

package main

// Default limits for CLI commands.
const (
	DefaultQueueLimit  = 50
	DefaultLedgerLimit = 100
)

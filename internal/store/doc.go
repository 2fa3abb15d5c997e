// Package store provides the SQLite connection that dblog replays writes into.
//
// The store opens a file, applies pragmas and executes opaque commands one
// at a time. There is no schema of its own and no implicit transaction;
// every Exec autocommits, as the node committed the writes it produced.
//
// # Database Configuration
//
//   - journal_mode: WAL by default, configurable
//   - synchronous=NORMAL
//   - busy_timeout: 5000ms by default, configurable
//
// A single connection is kept open so that ":memory:" databases and
// connection-scoped state (temp tables, pragmas) survive between commands.
package store

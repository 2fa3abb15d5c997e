// Package harness runs dblog scenarios: scripted sequences of write batches
// and store-ready events, checked against assertions and golden traces.
//
// # Scenario Format
//
//	name: buffered_then_replayed
//	description: "Batches before init are replayed in arrival order"
//	fail_on:            # optional: commands the store rejects
//	  - INSERT B
//	steps:
//	  - write: ["INSERT A"]
//	  - write: ["INSERT B", "INSERT C"]
//	  - ready: dblog.sqlite3
//	assertions:
//	  - type: executed
//	    commands: ["INSERT A", "INSERT B", "INSERT C"]
//	  - type: pending
//	    count: 0
//
// Each step is either a write (one batch) or a ready event carrying the
// store locator. The store is an in-memory recorder, so scenarios exercise
// ordering and error handling without touching disk.
//
// # Assertion Types
//
//   - executed: the exact command sequence the store applied
//   - pending: number of commands still buffered
//   - state: "ready" or "not_ready"
//   - error: step N failed with the given code
//   - no_errors: no step failed
//   - stats: subset match on deferred/replayed/executed/batches
//
// # Golden Traces
//
// RunWithGolden renders the trace one event per line and compares it with
// testdata/golden/<name>.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness

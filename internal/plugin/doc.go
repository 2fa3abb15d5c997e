// Package plugin hosts a dblog.Plugin behind the lightningd plugin protocol.
//
// lightningd talks JSON-RPC 2.0 over the plugin's stdin and stdout. The host
// answers getmanifest (advertising the dblog-file option and the db_write
// hook), turns init into a store-ready event and db_write hook calls into
// write batches. Requests are handled one at a time in arrival order; the
// reader goroutine only decodes.
//
// Log output travels back to lightningd as "log" notifications so that it
// lands in the node's log next to the writes that caused it.
package plugin

// Package dblog buffers database writes observed before the backing store is
// ready and replays them, in order, once it is.
//
// A Plugin moves through exactly two states:
//
//	NotReady --OnStoreReady--> Ready
//
// While NotReady every write batch is appended to a WriteBuffer. The
// store-ready event opens the store, latches the InitGate, drains the buffer
// once and executes the backlog. From then on batches pass straight through
// to the store. The gate never reopens and a drained buffer is sealed, so a
// command can be neither replayed twice nor buffered after the replay.
//
// # Ordering
//
// Commands reach the store in the order OnWriteBatch first saw them, across
// both phases. Handlers are serialized by the Plugin; the host is expected
// to deliver events one at a time as well.
//
// # Errors
//
// Failures are returned as *Error with a Code (see errors.go). Nothing is
// retried: a failed command stops its batch, and a failed replay fails
// initialization.
package dblog

// Package logging provides the structured logging interface used across dblog.
//
// Components accept a Logger and never reach for a global. The zerolog
// adapter is the production implementation; NoopLogger silences tests.
package logging

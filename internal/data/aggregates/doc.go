// Package aggregates implements the ledger, model, moderation and simulation write
// boundaries over the table repos in internal/data/repos.
//
// Each exported write opens its own transaction through a TxRunner. The *InTx ledger
// variants join a caller's transaction instead, so a model charge commits with its version.
package aggregates

// Package aggregates defines domain-facing aggregate contracts.
//
// Each aggregate is a write boundary where several rows (user balance, ledger, model
// pointer, versions, moderation requests, simulations) must change together or not at all.
// Contracts carry no persistence details; see internal/data/aggregates for implementations.
package aggregates

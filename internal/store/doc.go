// Package store defines the persistence interfaces for the mastery engine's
// ledgers and sessions, along with the DBTX abstraction and transaction
// helper shared by all implementations.
//
// Every mutation that must be linearizable per user (energy spends, XP
// credits, stage transitions) is expressed as a single atomic store
// operation so implementations can back it with one conditional statement or
// a row lock. Callers never read-modify-write ledger state across calls.
package store

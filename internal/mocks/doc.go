// Package mocks provides hand-written test doubles: stateful in-memory
// store implementations guarded by mutexes, and a scripted content
// generator with per-method override hooks. The in-memory stores preserve
// the concurrency semantics of the real ones (conditional updates, at most
// one refill per day, idempotent referral credits) so service tests exercise
// the same contracts.
package mocks

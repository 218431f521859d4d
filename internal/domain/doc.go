// Package domain defines the core business entities of the adaptive mastery
// engine: learning sessions and their stage machine, per-concept mastery
// signals, flashcard progress, the energy quota, and progression accounts.
//
// Entities are created through validating New* constructors and carry no
// persistence concerns. Mutation rules that must hold regardless of storage
// backend (stage transition legality, balance floors, XP monotonicity) live
// here; the store and service layers enforce them atomically.
package domain

// Package postgres provides PostgreSQL implementations of the store
// interfaces, backed by database/sql over the pgx stdlib driver.
//
// Per-user ledger mutations are single conditional statements so they stay
// linearizable without application-level locking: energy spends only land
// when the balance covers them, daily refills only land once per calendar
// day, referral credits insert-then-apply in one CTE, and session stage
// transitions are compare-and-swap against the persisted stage.
package postgres

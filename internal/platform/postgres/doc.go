// Package postgres implements the store interfaces on PostgreSQL. The memo
// job store leans on the schema for correctness: a partial unique index
// rejects a second active job per deal, and the section update's WHERE clause
// enforces the legal status transitions.
package postgres

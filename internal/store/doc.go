// Package store defines the persistence interfaces for deals and memo
// generation jobs, plus the sentinel errors callers branch on. The memo job
// row doubles as the durable task record: the worker, the recovery pass and
// the janitor all operate on it through these interfaces.
package store

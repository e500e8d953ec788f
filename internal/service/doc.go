// Package service holds the use cases behind the HTTP layer.
//
// MemoService owns the generation lifecycle: launching a job (durable
// creation first, then a bounded wait on the worker through a WorkerInvoker)
// and reading its status with progress derived from the section rows.
// DealService is the minimal deal CRUD memo generation needs. The auth
// subpackage verifies bearer tokens.
//
// Services depend on the store interfaces and domain entities only; the two
// WorkerInvoker implementations are the single point where embedded and
// remote generation modes differ.
package service

// Package task runs memo generation in the background: a buffered queue
// feeding a worker pool, the section-by-section generation task, startup
// recovery that requeues jobs interrupted by a restart, and a cron janitor
// that fails jobs stuck in generating.
package task

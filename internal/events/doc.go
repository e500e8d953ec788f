// Package events decouples the memo service from the generation worker.
//
// The service layer emits a GenerationRequestEvent when a job should run; the
// task layer registers an EventHandler that turns the event into queued work.
// Neither side imports the other's constructors, which keeps the embedded and
// remote worker modes symmetrical from the service's point of view.
package events

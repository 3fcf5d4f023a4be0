// Package pipeline runs charter extraction and dispatch off the request path.
//
// The webhook handler submits a Job and returns immediately. A fixed set of
// workers drains a buffered channel and, for each job, runs:
//
//	extract → assemble → dispatch
//
// Key features:
//   - Non-blocking Submit: a full queue drops the job (ErrQueueFull)
//   - No ordering across jobs and no per-job timeout
//   - Extraction failures are logged at warn and optionally quarantined
//   - Sink failures are logged; the record is not retried
//   - Every outcome is published on an events.Hub
//
// Shutdown:
//   - Stop rejects new jobs with ErrStopped
//   - Queued jobs are drained before Stop returns
package pipeline

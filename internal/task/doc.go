// Package task dispatches named background tasks to queues and runs them.
// Tasks are published as JSON envelopes either to an in-process queue
// drained by a worker pool or to Kafka topics consumed by a worker group.
package task

package engine

// Job is one webhook delivery handed from the dispatcher to the worker
// pool. The payload is the event serialized once per dispatch and shared
// across subscribers.
type Job struct {
	SubscriberID int64
	AttemptID    int64
	URL          string
	Payload      []byte
}

// JobQueue accepts delivery work without blocking the producer.
type JobQueue interface {
	TrySubmit(job Job) error
}

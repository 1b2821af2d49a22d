package domain

import "errors"

var (
	// ErrBlockListUnavailable means the gate could not reach its backing set.
	// The request fails; the recipient is never assumed to be allowed.
	ErrBlockListUnavailable = errors.New("block list unavailable")

	// ErrPublishFailed means the event log did not acknowledge the delivery
	// event within the retry budget. The event is the system of record, so the
	// originating request must be reported as failed.
	ErrPublishFailed = errors.New("delivery event publish failed")
)

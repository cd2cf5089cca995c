package recovery

import "errors"

var (
	// ErrAlreadyProcessed indicates the recovery identifier was consumed before.
	ErrAlreadyProcessed = errors.New("deferred link already processed")
	// ErrNoLinkData indicates the visit carries no usable link.
	ErrNoLinkData = errors.New("no link data for visit")
	// ErrExpired indicates the recovered link is past its expiry.
	ErrExpired = errors.New("deferred link expired")
)

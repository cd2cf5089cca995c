package applinks

import "errors"

var (
	// ErrAlreadyInitialized is returned by a second Initialize in one process.
	ErrAlreadyInitialized = errors.New("applinks already initialized")
	// ErrPrivateKey rejects secret (sk_) keys, which must never ship in clients.
	ErrPrivateKey = errors.New("private api keys (sk_*) must not be used in client applications; use a public key (pk_*)")
	// ErrListenerAttached is returned when subscribing while a listener is active.
	ErrListenerAttached = errors.New("result listener already attached")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("applinks sdk closed")
)

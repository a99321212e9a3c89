package reconcile

import "errors"

// ErrBadSignature means the payload failed signature verification. It is
// the only condition that produces a rejection response; no record is
// touched when it is returned.
var ErrBadSignature = errors.New("webhook signature verification failed")

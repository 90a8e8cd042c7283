package approval

import "errors"

var (
	// ErrDecisionTimeout is returned by WaitForDecision when no decision
	// arrives within the allowed window.  Callers must treat it as a
	// non-approval – never as a silent approval.
	ErrDecisionTimeout = errors.New("approval: decision timeout")

	// ErrAlreadyDecided is returned by Decide when a terminal decision has
	// already been recorded for the request.
	ErrAlreadyDecided = errors.New("approval: already decided")

	// ErrRequestNotFound is returned by Decide for an unknown request id.
	ErrRequestNotFound = errors.New("approval: request not found")
)

package catalog

import "errors"

var (
	ErrFinalizationInProgress = errors.New("finalization in progress")
	ErrAlreadyRunning         = errors.New("finalization already running")
	ErrNothingPending         = errors.New("nothing pending")
	ErrNotFound               = errors.New("not found")
	ErrLeaseLost              = errors.New("finalization lease lost")
)

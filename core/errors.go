package core

import "errors"

// Programmer-error sentinels. These are panicked, never returned: a
// misuse of the scheduling contract is a bug in the caller, not a
// recoverable runtime condition, mirroring the original system's
// assert-and-crash posture.
var (
	ErrNilJob              = errors.New("core: nil job")
	ErrSchedulerTerminated = errors.New("core: scheduler already terminated")
	ErrForeignAwait        = errors.New("core: awaited job already belongs to a different scheduler")
	ErrDoubleSchedule      = errors.New("core: job scheduled more than once")
	ErrAffinityOutOfRange  = errors.New("core: affinity index out of range")
)

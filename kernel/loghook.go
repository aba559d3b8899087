package kernel

import "log"

// LogHook is a Hook whose job is to record information about the
// simulation as it runs.
type LogHook interface {
	Hook
}

// LogHookBase provides the common logic shared by LogHooks: a destination
// logger to write to.
type LogHookBase struct {
	*log.Logger
}

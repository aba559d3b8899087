package kernel

// HookPos names a site in the maestro loop where hooks may be invoked.
type HookPos struct {
	Name string
}

// HookCtx carries the information available at a hook invocation site.
type HookCtx struct {
	Domain Hookable
	Pos    *HookPos
	Item   interface{}
	Detail interface{}
}

// Hookable is anything that accepts Hooks and can fan a HookCtx out to them.
type Hookable interface {
	AcceptHook(hook Hook)
	InvokeHook(ctx HookCtx)
}

var (
	// HookPosBeforeEvent fires just before an Event is handled.
	HookPosBeforeEvent = &HookPos{Name: "BeforeEvent"}
	// HookPosAfterEvent fires just after an Event has been handled.
	HookPosAfterEvent = &HookPos{Name: "AfterEvent"}
	// HookPosBeforeSimcall fires just before a simcall's kernel closure runs.
	HookPosBeforeSimcall = &HookPos{Name: "BeforeSimcall"}
	// HookPosAfterSimcall fires just after a simcall's kernel closure has run.
	HookPosAfterSimcall = &HookPos{Name: "AfterSimcall"}
)

// Hook is invoked by a Hookable object at one of its hook positions.
type Hook interface {
	Func(ctx HookCtx)
}

// HookableBase implements Hookable and fans a HookCtx out to every
// registered Hook, in registration order.
type HookableBase struct {
	Hooks []Hook
}

// NewHookableBase creates an empty HookableBase.
func NewHookableBase() *HookableBase {
	return &HookableBase{Hooks: make([]Hook, 0)}
}

// AcceptHook registers hook.
func (h *HookableBase) AcceptHook(hook Hook) {
	h.Hooks = append(h.Hooks, hook)
}

// InvokeHook runs every registered hook with ctx.
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	for _, hook := range h.Hooks {
		hook.Func(ctx)
	}
}

package core

// Action represents a semantic game action, abstracted from physical key presses.
type Action int

const (
	ActionNone     Action = iota
	ActionAimUp           // W, Up arrow
	ActionAimDown         // S, Down arrow
	ActionAimLeft         // A, Left arrow
	ActionAimRight        // D, Right arrow
	ActionFire            // Space, F - toggle continuous fire
	ActionSwitch          // Q, right click - next weapon
	ActionUpgrade         // U - upgrade current weapon
	ActionRestart         // R key - restart game after game over
	ActionQuit            // Ctrl+C, Esc - exit game/session
	ActionPause           // P - pause/unpause game
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionAimUp:
		return "AimUp"
	case ActionAimDown:
		return "AimDown"
	case ActionAimLeft:
		return "AimLeft"
	case ActionAimRight:
		return "AimRight"
	case ActionFire:
		return "Fire"
	case ActionSwitch:
		return "Switch"
	case ActionUpgrade:
		return "Upgrade"
	case ActionRestart:
		return "Restart"
	case ActionQuit:
		return "Quit"
	case ActionPause:
		return "Pause"
	default:
		return "Unknown"
	}
}

// InputFrame is the input state for a single simulation tick.
type InputFrame struct {
	// Actions maps action types to whether they were triggered this frame.
	Actions map[Action]bool

	// Pointer is the last known mouse cell, valid when HasPointer is set.
	PointerX, PointerY int
	HasPointer         bool

	// Held is true while the primary mouse button is down.
	Held bool
}

// NewInputFrame creates an empty input frame.
func NewInputFrame() InputFrame {
	return InputFrame{
		Actions: make(map[Action]bool),
	}
}

// Set marks an action as triggered for this frame.
func (f *InputFrame) Set(a Action) {
	if f.Actions == nil {
		f.Actions = make(map[Action]bool)
	}
	f.Actions[a] = true
}

// Has returns true if the given action was triggered this frame.
func (f InputFrame) Has(a Action) bool {
	if f.Actions == nil {
		return false
	}
	return f.Actions[a]
}

// Point records the pointer cell for this frame.
func (f *InputFrame) Point(x, y int) {
	f.PointerX, f.PointerY = x, y
	f.HasPointer = true
}

// Clear resets one-shot actions for the next frame. Pointer state and the
// held flag persist until the platform changes them.
func (f *InputFrame) Clear() {
	for k := range f.Actions {
		delete(f.Actions, k)
	}
}

// Clone creates a copy of this input frame.
func (f InputFrame) Clone() InputFrame {
	clone := f
	clone.Actions = make(map[Action]bool, len(f.Actions))
	for k, v := range f.Actions {
		clone.Actions[k] = v
	}
	return clone
}

package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-survivor/internal/core"
)

// KeyMap defines the key bindings for a survival run.
type KeyMap struct {
	AimUp      key.Binding
	AimDown    key.Binding
	AimLeft    key.Binding
	AimRight   key.Binding
	Fire       key.Binding
	Switch     key.Binding
	Upgrade    key.Binding
	Pause      key.Binding
	Restart    key.Binding
	Screenshot key.Binding
	Quit       key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Fire, k.Switch, k.Upgrade, k.Pause, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.AimUp, k.AimDown, k.AimLeft, k.AimRight},
		{k.Fire, k.Switch, k.Upgrade},
		{k.Pause, k.Restart, k.Screenshot, k.Quit},
	}
}

// DefaultKeyMap returns default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		AimUp: key.NewBinding(
			key.WithKeys("w", "up"),
			key.WithHelp("w/up", "aim up"),
		),
		AimDown: key.NewBinding(
			key.WithKeys("s", "down"),
			key.WithHelp("s/down", "aim down"),
		),
		AimLeft: key.NewBinding(
			key.WithKeys("a", "left"),
			key.WithHelp("a/left", "aim left"),
		),
		AimRight: key.NewBinding(
			key.WithKeys("d", "right"),
			key.WithHelp("d/right", "aim right"),
		),
		Fire: key.NewBinding(
			key.WithKeys(" ", "f"),
			key.WithHelp("space/f", "auto fire"),
		),
		Switch: key.NewBinding(
			key.WithKeys("q", "tab"),
			key.WithHelp("q/tab", "switch weapon"),
		),
		Upgrade: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "upgrade"),
		),
		Pause: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "pause"),
		),
		Restart: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "restart"),
		),
		Screenshot: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "screenshot"),
		),
		Quit: key.NewBinding(
			key.WithKeys("esc", "ctrl+c"),
			key.WithHelp("esc", "quit"),
		),
	}
}

// MapKey translates a key message to a game action.
// Returns the action (may be ActionNone) and whether it's a quit request.
func (k KeyMap) MapKey(msg tea.KeyMsg) (action core.Action, isQuit bool) {
	switch {
	case key.Matches(msg, k.Quit):
		return core.ActionQuit, true
	case key.Matches(msg, k.AimUp):
		return core.ActionAimUp, false
	case key.Matches(msg, k.AimDown):
		return core.ActionAimDown, false
	case key.Matches(msg, k.AimLeft):
		return core.ActionAimLeft, false
	case key.Matches(msg, k.AimRight):
		return core.ActionAimRight, false
	case key.Matches(msg, k.Fire):
		return core.ActionFire, false
	case key.Matches(msg, k.Switch):
		return core.ActionSwitch, false
	case key.Matches(msg, k.Upgrade):
		return core.ActionUpgrade, false
	case key.Matches(msg, k.Pause):
		return core.ActionPause, false
	case key.Matches(msg, k.Restart):
		return core.ActionRestart, false
	}
	return core.ActionNone, false
}

// MapKeyToFrame updates an input frame based on a key message.
// Returns true if the key was a quit request.
func (k KeyMap) MapKeyToFrame(msg tea.KeyMsg, frame *core.InputFrame) bool {
	action, isQuit := k.MapKey(msg)
	if action != core.ActionNone {
		frame.Set(action)
	}
	return isQuit
}

// MapMouse updates an input frame from a mouse event: the pointer cell aims,
// the left button fires while held and the right button switches weapons.
func MapMouse(msg tea.MouseMsg, frame *core.InputFrame) {
	frame.Point(msg.X, msg.Y)

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonLeft:
			frame.Held = true
		case tea.MouseButtonRight:
			frame.Set(core.ActionSwitch)
		}
	case tea.MouseActionRelease:
		frame.Held = false
	}
}

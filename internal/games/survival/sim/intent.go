package sim

import "github.com/vovakirdan/tui-survivor/internal/core"

// Intent is the player's input for one tick, already in arena space.
type Intent struct {
	Aim     core.Vec2 // Point the player faces
	HasAim  bool      // False keeps the previous facing
	Firing  bool      // Trigger held
	Switch  bool      // Cycle to the next weapon
	Upgrade bool      // Buy an upgrade for the current weapon
}

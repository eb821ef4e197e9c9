// Package autopilot drives a survival session without a human, for the
// headless sim command.
package autopilot

import (
	bt "github.com/joeycumines/go-behaviortree"

	"github.com/vovakirdan/tui-survivor/internal/games/survival/sim"
)

// Bot decides one sim.Intent per tick with a behavior tree:
//
//	selector
//	├── game over → idle
//	└── sequence
//	    ├── optional: score covers upgrade → upgrade
//	    ├── optional: reloading and another weapon is loaded → switch
//	    └── nearest enemy → aim → fire
type Bot struct {
	tree   bt.Node
	sess   *sim.Session
	intent sim.Intent
	target *sim.Enemy
}

// New builds a bot. Call Decide once per tick.
func New() *Bot {
	b := &Bot{}
	b.tree = bt.New(bt.Selector,
		leaf(b.gameOver),
		bt.New(bt.Sequence,
			optional(bt.New(bt.Sequence, leaf(b.canUpgrade), leaf(b.upgrade))),
			optional(bt.New(bt.Sequence, leaf(b.shouldSwitch), leaf(b.switchWeapon))),
			bt.New(bt.Sequence, leaf(b.pickTarget), leaf(b.aim), leaf(b.fire)),
		),
	)
	return b
}

// Decide returns the intent for the session's next Update.
func (b *Bot) Decide(s *sim.Session) sim.Intent {
	b.sess = s
	b.intent = sim.Intent{}
	b.target = nil
	if _, err := b.tree.Tick(); err != nil {
		return sim.Intent{}
	}
	return b.intent
}

func leaf(fn func() bool) bt.Node {
	return bt.New(func([]bt.Node) (bt.Status, error) {
		if fn() {
			return bt.Success, nil
		}
		return bt.Failure, nil
	})
}

func optional(n bt.Node) bt.Node {
	return bt.New(bt.Selector, n, leaf(func() bool { return true }))
}

func (b *Bot) gameOver() bool {
	return b.sess.IsGameOver()
}

func (b *Bot) canUpgrade() bool {
	p := b.sess.Player
	return p.Score >= p.CurrentWeapon().UpgradeCost
}

func (b *Bot) upgrade() bool {
	b.intent.Upgrade = true
	return true
}

func (b *Bot) shouldSwitch() bool {
	p := b.sess.Player
	if !p.CurrentWeapon().Reloading {
		return false
	}
	next := p.Weapons[(p.Current+1)%len(p.Weapons)]
	return next != p.CurrentWeapon() && next.Ammo > 0
}

func (b *Bot) switchWeapon() bool {
	b.intent.Switch = true
	return true
}

// pickTarget chooses the enemy closest to the player.
func (b *Bot) pickTarget() bool {
	pos := b.sess.Player.Pos
	best := -1.0
	for _, e := range b.sess.Enemies() {
		if !e.Alive() {
			continue
		}
		if d := e.Pos.Dist(pos); best < 0 || d < best {
			best = d
			b.target = e
		}
	}
	return b.target != nil
}

func (b *Bot) aim() bool {
	b.intent.Aim = b.target.Pos
	b.intent.HasAim = true
	return true
}

func (b *Bot) fire() bool {
	b.intent.Firing = true
	return true
}

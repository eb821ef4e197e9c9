package survival

import (
	"fmt"

	"github.com/vovakirdan/tui-survivor/internal/core"
	"github.com/vovakirdan/tui-survivor/internal/games/survival/sim"
)

// Glyphs used in the arena.
const (
	PlayerChar  = '@'
	EnemyChar   = 'Z'
	StunnedChar = 'z'
	BulletChar  = '•'
	AimChar     = '+'
)

// field returns the arena's inner rectangle in screen cells. The border is
// drawn one cell outside it.
func (g *Game) field() core.Rect {
	return core.NewRect(1, hudRows+1, g.runtime.ScreenW-2, g.runtime.ScreenH-hudRows-2)
}

// arenaToCell maps an arena position to a screen cell inside the field.
func (g *Game) arenaToCell(p core.Vec2) (int, int) {
	f := g.field()
	x := int(p.X / g.cfg.Arena.Width * float64(f.W))
	y := int(p.Y / g.cfg.Arena.Height * float64(f.H))
	return f.X + core.Clamp(x, 0, f.W-1), f.Y + core.Clamp(y, 0, f.H-1)
}

// cellToArena maps a screen cell to the arena position at its center.
func (g *Game) cellToArena(cx, cy int) core.Vec2 {
	f := g.field()
	if f.W <= 0 || f.H <= 0 {
		return core.Vec2{}
	}
	x := (float64(cx-f.X) + 0.5) * g.cfg.Arena.Width / float64(f.W)
	y := (float64(cy-f.Y) + 0.5) * g.cfg.Arena.Height / float64(f.H)
	return core.V(core.ClampF(x, 0, g.cfg.Arena.Width), core.ClampF(y, 0, g.cfg.Arena.Height))
}

func waveBanner(wave int) string {
	return fmt.Sprintf("WAVE %d", wave)
}

// Render draws the current game state to the screen.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()

	if g.screenTooSmall {
		msg := "Window too small"
		hint := fmt.Sprintf("Need %dx%d", minScreenW, minScreenH)
		dst.DrawTextCentered(dst.Height()/2-1, msg)
		dst.DrawTextCentered(dst.Height()/2+1, hint)
		return
	}

	g.renderHUD(dst)

	f := g.field()
	dst.DrawBox(core.NewRect(f.X-1, f.Y-1, f.W+2, f.H+2), core.ColorGray)

	if g.loading > 0 {
		g.drawCenteredBox(dst, "LOADING...", fmt.Sprintf("Survive, %s", g.sess.Player.Name))
		return
	}

	g.renderProjectiles(dst)
	g.renderEnemies(dst)
	g.renderPlayer(dst)
	g.renderFlashes(dst)
	g.renderOverlay(dst)
}

// renderHUD draws the player, score and wave line plus the weapon line.
func (g *Game) renderHUD(dst *core.Screen) {
	ui := g.sess.Snapshot()

	left := fmt.Sprintf("%s  HP %d/%d", ui.Player, ui.Health, ui.MaxHealth)
	healthColor := core.ColorGreen
	switch {
	case ui.Health*4 <= ui.MaxHealth:
		healthColor = core.ColorBrightRed
	case ui.Health*2 <= ui.MaxHealth:
		healthColor = core.ColorYellow
	}
	dst.DrawTextColored(1, 0, left, healthColor)

	center := fmt.Sprintf("Score: %d  Kills: %d", ui.Score, ui.Kills)
	dst.DrawTextCentered(0, center)

	right := fmt.Sprintf("Wave %d  Zombies: %d", ui.Wave, ui.Remaining)
	dst.DrawText(dst.Width()-len(right)-1, 0, right)

	weapon := ui.Weapon.String()
	weaponColor := core.ColorBrightWhite
	if ui.Weapon.Reloading {
		weaponColor = core.ColorYellow
	}
	dst.DrawTextColored(1, 1, weapon, weaponColor)

	info := fmt.Sprintf("Lv %d  Upgrade [U]: %d", ui.Weapon.Level, ui.Weapon.UpgradeCost)
	if ui.NextWaveInMs > 0 {
		secs := (ui.NextWaveInMs + 999) / 1000
		info = fmt.Sprintf("Next wave in %ds  |  %s", secs, info)
	}
	if g.autoFire {
		info = "AUTO  " + info
	}
	dst.DrawText(dst.Width()-len(info)-1, 1, info)
}

func (g *Game) renderProjectiles(dst *core.Screen) {
	g.sess.Projectiles.Each(func(p *sim.Projectile) {
		x, y := g.arenaToCell(p.Pos)
		dst.SetColored(x, y, BulletChar, core.ColorBrightYellow)
	})
}

func (g *Game) renderEnemies(dst *core.Screen) {
	for _, e := range g.sess.Enemies() {
		if !e.Alive() {
			continue
		}
		x, y := g.arenaToCell(e.Pos)
		switch {
		case e.Frozen():
			dst.SetColored(x, y, EnemyChar, core.ColorGray)
		case e.Stunned():
			dst.SetColored(x, y, StunnedChar, core.ColorYellow)
		default:
			dst.SetColored(x, y, EnemyChar, core.ColorRed)
		}
	}
}

func (g *Game) renderPlayer(dst *core.Screen) {
	p := g.sess.Player
	if p.Alive() {
		tip := p.Pos.Add(core.FromAngle(p.Rotation).Scale(p.Muzzle().Dist(p.Pos) * 3))
		ax, ay := g.arenaToCell(tip)
		px, py := g.arenaToCell(p.Pos)
		if ax != px || ay != py {
			dst.SetColored(ax, ay, AimChar, core.ColorCyan)
		}
	}

	x, y := g.arenaToCell(p.Pos)
	color := core.ColorBrightGreen
	if !p.Alive() {
		color = core.ColorGray
	}
	dst.SetColored(x, y, PlayerChar, color)
}

func (g *Game) renderFlashes(dst *core.Screen) {
	for _, f := range g.flashes {
		x, y := g.arenaToCell(f.at)
		dst.SetColored(x, y, f.glyph, f.color)
	}
}

// renderOverlay draws banners and game state messages.
func (g *Game) renderOverlay(dst *core.Screen) {
	switch {
	case g.sess.IsGameOver():
		ui := g.sess.Snapshot()
		subtitle := fmt.Sprintf("Score: %d  |  Wave: %d  |  Press R to restart", ui.Score, ui.Wave)
		g.drawCenteredBox(dst, "GAME OVER", subtitle)
	case g.paused:
		g.drawCenteredBox(dst, "PAUSED", "Press P to resume")
	case g.banner != "" && g.tick < g.bannerTill:
		f := g.field()
		dst.DrawTextColored(f.X+(f.W-len([]rune(g.banner)))/2, f.Y+1, g.banner, core.ColorBrightCyan)
	}
}

// drawCenteredBox draws a centered message box.
func (g *Game) drawCenteredBox(dst *core.Screen, title, subtitle string) {
	w := dst.Width()
	h := dst.Height()

	boxW := max(len(title), len(subtitle)) + 4
	boxH := 5
	boxX := (w - boxW) / 2
	boxY := (h - boxH) / 2

	dst.DrawRect(core.NewRect(boxX, boxY, boxW, boxH), ' ')
	dst.DrawBox(core.NewRect(boxX, boxY, boxW, boxH), core.ColorBrightWhite)

	titleX := boxX + (boxW-len(title))/2
	dst.DrawTextColored(titleX, boxY+1, title, core.ColorBrightRed)

	subtitleX := boxX + (boxW-len(subtitle))/2
	dst.DrawText(subtitleX, boxY+3, subtitle)
}

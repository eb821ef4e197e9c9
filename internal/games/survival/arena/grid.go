// Package arena finds overlaps between survival combatants with a uniform
// grid broad phase.
package arena

import (
	"math"
	"slices"

	"github.com/vovakirdan/tui-survivor/internal/games/survival/sim"
)

// DefaultCellSize is a few enemy diameters wide.
const DefaultCellSize = 64

// Detector implements sim.SpatialQuery. Enemies are bucketed by the grid
// cells their circle covers; projectiles and the player only look at the
// buckets they could touch. Buffers are reused between calls, so a Detector
// belongs to one session.
type Detector struct {
	cellSize float64
	minX     float64
	minY     float64
	cols     int
	rows     int
	cells    [][]int // Enemy indexes per cell, row-major
	cand     []int
	mark     []uint32
	stamp    uint32
}

// NewDetector creates a detector with the given cell size in world units.
// Non-positive sizes use DefaultCellSize.
func NewDetector(cellSize float64) *Detector {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	return &Detector{cellSize: cellSize}
}

// Contacts implements sim.SpatialQuery with the same ordering as
// sim.BruteForce: projectile contacts in slot then spawn order, followed by
// player contacts in spawn order.
func (d *Detector) Contacts(v sim.View) []sim.Contact {
	d.build(v)

	var out []sim.Contact
	hit := v.ProjectileRadius + v.EnemyRadius
	v.Projectiles.Each(func(p *sim.Projectile) {
		for _, i := range d.query(p.Pos.X, p.Pos.Y, hit, len(v.Enemies)) {
			e := v.Enemies[i]
			if p.Pos.Dist(e.Pos) <= hit {
				out = append(out, sim.Contact{Kind: sim.ProjectileEnemy, Projectile: p, Enemy: e})
			}
		}
	})

	if v.Player.Alive() {
		touch := v.PlayerRadius + v.EnemyRadius
		pos := v.Player.Pos
		for _, i := range d.query(pos.X, pos.Y, touch, len(v.Enemies)) {
			e := v.Enemies[i]
			if pos.Dist(e.Pos) <= touch {
				out = append(out, sim.Contact{Kind: sim.PlayerEnemy, Enemy: e})
			}
		}
	}
	return out
}

func (d *Detector) build(v sim.View) {
	cols := max(1, int(math.Ceil(v.Bounds.Width()/d.cellSize)))
	rows := max(1, int(math.Ceil(v.Bounds.Height()/d.cellSize)))
	if cols != d.cols || rows != d.rows {
		d.cols, d.rows = cols, rows
		d.cells = make([][]int, cols*rows)
	}
	d.minX, d.minY = v.Bounds.MinX, v.Bounds.MinY
	for i := range d.cells {
		d.cells[i] = d.cells[i][:0]
	}

	for i, e := range v.Enemies {
		if !e.Alive() {
			continue
		}
		x0, y0, x1, y1 := d.span(e.Pos.X, e.Pos.Y, v.EnemyRadius)
		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				d.cells[y*d.cols+x] = append(d.cells[y*d.cols+x], i)
			}
		}
	}
}

// span returns the inclusive cell range covered by a circle, clipped to the
// grid.
func (d *Detector) span(x, y, r float64) (x0, y0, x1, y1 int) {
	clip := func(v float64, n int) int {
		return min(n-1, max(0, int(math.Floor(v/d.cellSize))))
	}
	x, y = x-d.minX, y-d.minY
	return clip(x-r, d.cols), clip(y-r, d.rows), clip(x+r, d.cols), clip(y+r, d.rows)
}

// query returns the sorted, de-duplicated enemy indexes in the cells a
// circle at (x, y) with radius r overlaps.
func (d *Detector) query(x, y, r float64, n int) []int {
	if len(d.mark) < n {
		d.mark = make([]uint32, n)
		d.stamp = 0
	}
	d.stamp++
	if d.stamp == 0 {
		clear(d.mark)
		d.stamp = 1
	}

	d.cand = d.cand[:0]
	x0, y0, x1, y1 := d.span(x, y, r)
	for cy := y0; cy <= y1; cy++ {
		for cx := x0; cx <= x1; cx++ {
			for _, i := range d.cells[cy*d.cols+cx] {
				if d.mark[i] != d.stamp {
					d.mark[i] = d.stamp
					d.cand = append(d.cand, i)
				}
			}
		}
	}
	slices.Sort(d.cand)
	return d.cand
}

package config

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// CountEnv is the environment visible to waves.count_formula.
type CountEnv struct {
	Wave int `expr:"wave"`
	Base int `expr:"base"`
	Step int `expr:"step"`
}

// SpeedEnv is the environment visible to waves.speed_formula.
// Jitter is the random offset already drawn for this enemy.
type SpeedEnv struct {
	Wave   int     `expr:"wave"`
	Base   float64 `expr:"base"`
	Jitter int     `expr:"jitter"`
	Step   int     `expr:"step"`
}

// WaveFormulas computes per-wave enemy counts and speeds. Empty formulas
// use the built-in escalation:
//
//	count = base + (wave-1)*step
//	speed = base + jitter + wave*step
//
// An expression that fails at run time also falls back to the built-in
// formula; the first failure of each expression is logged at Warn.
type WaveFormulas struct {
	waves   WaveConfig
	enemies EnemyConfig
	count   *vm.Program
	speed   *vm.Program

	logger      *log.Logger
	countFailed bool
	speedFailed bool
}

// NewWaveFormulas compiles the optional expressions in cfg.
func NewWaveFormulas(waves WaveConfig, enemies EnemyConfig) (*WaveFormulas, error) {
	f := &WaveFormulas{waves: waves, enemies: enemies, logger: log.New(io.Discard)}

	if waves.CountFormula != "" {
		prog, err := expr.Compile(waves.CountFormula, expr.Env(CountEnv{}), expr.AsInt())
		if err != nil {
			return nil, fmt.Errorf("config: waves.count_formula: %w", err)
		}
		f.count = prog
	}
	if waves.SpeedFormula != "" {
		prog, err := expr.Compile(waves.SpeedFormula, expr.Env(SpeedEnv{}), expr.AsFloat64())
		if err != nil {
			return nil, fmt.Errorf("config: waves.speed_formula: %w", err)
		}
		f.speed = prog
	}
	return f, nil
}

// SetLogger sets where expression failures are reported.
func (f *WaveFormulas) SetLogger(l *log.Logger) {
	if l != nil {
		f.logger = l
	}
}

// SpawnCount returns how many enemies wave n spawns. Always at least 1.
func (f *WaveFormulas) SpawnCount(wave int) int {
	n := f.waves.BaseCount + (wave-1)*f.waves.CountStep
	if f.count != nil {
		env := CountEnv{Wave: wave, Base: f.waves.BaseCount, Step: f.waves.CountStep}
		out, err := expr.Run(f.count, env)
		if v, ok := out.(int); err == nil && ok {
			n = v
		} else {
			f.fail(&f.countFailed, "count_formula", f.waves.CountFormula, wave, out, err)
		}
	}
	return max(1, n)
}

// EnemySpeed returns the speed of an enemy spawned in wave n with the
// given jitter. Never negative.
func (f *WaveFormulas) EnemySpeed(wave, jitter int) float64 {
	s := f.enemies.BaseSpeed + float64(jitter) + float64(wave*f.waves.SpeedStep)
	if f.speed != nil {
		env := SpeedEnv{Wave: wave, Base: f.enemies.BaseSpeed, Jitter: jitter, Step: f.waves.SpeedStep}
		out, err := expr.Run(f.speed, env)
		if v, ok := out.(float64); err == nil && ok {
			s = v
		} else {
			f.fail(&f.speedFailed, "speed_formula", f.waves.SpeedFormula, wave, out, err)
		}
	}
	return max(0, s)
}

func (f *WaveFormulas) fail(logged *bool, name, source string, wave int, out any, err error) {
	if *logged {
		return
	}
	*logged = true
	if err == nil {
		err = fmt.Errorf("result %v (%T) is not a number of the expected type", out, out)
	}
	f.logger.Warn("wave formula failed, using built-in formula",
		"formula", "waves."+name, "expr", source, "wave", wave, "err", err)
}

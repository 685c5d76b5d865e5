package benders

import (
	"fmt"
	"time"

	"bendersShop/internal/cuts"
	"bendersShop/internal/problem"
	"bendersShop/internal/sa"
)

type Config struct {
	// TimeLimit: общий бюджет времени запуска (0 - без ограничения).
	TimeLimit           time.Duration
	MasterTimeLimit     time.Duration
	SubproblemTimeLimit time.Duration

	MaxIterations int
	// Tolerance: допустимый относительный зазор (incumbent - bound) / incumbent.
	Tolerance float64

	Workers int
	// Horizon > 0 включает вариант с крайним сроком на станках,
	// в котором подзадача может быть недопустимой.
	Horizon int

	Objective   problem.Objective
	CutStrength cuts.Strength

	// LoadRelaxation: мастер знает, что makespan не меньше загрузки каждого станка.
	LoadRelaxation bool

	Seed      int64
	Heuristic bool
	Annealing sa.Config
}

func DefaultConfig() Config {
	return Config{
		TimeLimit:           10 * time.Minute,
		MasterTimeLimit:     60 * time.Second,
		SubproblemTimeLimit: 30 * time.Second,

		MaxIterations: 200,
		Tolerance:     0,

		Workers: 0,
		Horizon: 0,

		Objective:      problem.DefaultObjective(),
		CutStrength:    cuts.StrengthMachine,
		LoadRelaxation: true,

		Seed:      1,
		Heuristic: true,
		Annealing: sa.DefaultConfig(),
	}
}

func (c Config) Validate() error {
	if c.TimeLimit < 0 || c.MasterTimeLimit < 0 || c.SubproblemTimeLimit < 0 {
		return fmt.Errorf(
			"лимиты времени должны быть >= 0 (получено total=%s master=%s sub=%s)",
			c.TimeLimit, c.MasterTimeLimit, c.SubproblemTimeLimit,
		)
	}
	if c.MaxIterations <= 0 {
		return fmt.Errorf(
			"MaxIterations должно быть > 0 (получено %d)",
			c.MaxIterations,
		)
	}
	if c.Tolerance < 0 || c.Tolerance >= 1 {
		return fmt.Errorf(
			"Tolerance должно лежать в интервале [0,1) (получено %f)",
			c.Tolerance,
		)
	}
	if c.Workers < 0 {
		return fmt.Errorf("Workers должно быть >= 0 (получено %d)", c.Workers)
	}
	if c.Horizon < 0 {
		return fmt.Errorf("Horizon должно быть >= 0 (получено %d)", c.Horizon)
	}
	if err := c.Objective.Validate(); err != nil {
		return err
	}
	if err := c.CutStrength.Validate(); err != nil {
		return err
	}
	if c.Heuristic {
		if err := c.Annealing.Validate(); err != nil {
			return fmt.Errorf("конфигурация имитации отжига: %w", err)
		}
	}
	return nil
}

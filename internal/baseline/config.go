package baseline

import (
	"fmt"
	"time"

	"bendersShop/internal/problem"
)

type Config struct {
	AssignmentTimeLimit time.Duration
	SchedulingTimeLimit time.Duration
	Workers             int
	// Objective используется только для расчёта сравнимого значения цели.
	Objective problem.Objective
}

func DefaultConfig() Config {
	return Config{
		AssignmentTimeLimit: 30 * time.Second,
		SchedulingTimeLimit: 300 * time.Second,
		Workers:             0,
		Objective:           problem.DefaultObjective(),
	}
}

func (c Config) Validate() error {
	if c.AssignmentTimeLimit < 0 {
		return fmt.Errorf(
			"AssignmentTimeLimit должно быть >= 0 (получено %s)",
			c.AssignmentTimeLimit,
		)
	}
	if c.SchedulingTimeLimit < 0 {
		return fmt.Errorf(
			"SchedulingTimeLimit должно быть >= 0 (получено %s)",
			c.SchedulingTimeLimit,
		)
	}
	if c.Workers < 0 {
		return fmt.Errorf(
			"Workers должно быть >= 0 (получено %d)",
			c.Workers,
		)
	}
	return c.Objective.Validate()
}

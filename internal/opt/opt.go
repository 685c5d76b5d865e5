package opt

import (
	"context"
	"time"

	"bendersShop/internal/problem"
)

type Optimizer interface {
	Solve(ctx context.Context, inst *problem.Instance) (Result, error)
}

type Result struct {
	Assignment problem.Assignment
	Schedule   problem.Schedule
	Cost       int
	Makespan   int
	Objective  int
	// Bound: нижняя граница цели; равна Objective у точных методов, 0 если неизвестна.
	Bound      int
	Iterations int
	Duration   time.Duration
	Meta       map[string]any
}

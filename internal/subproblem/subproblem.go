// Package subproblem решает задачи расписания одного станка при
// зафиксированном назначении. Станки независимы и решаются параллельно.
package subproblem

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"bendersShop/internal/cp"
	"bendersShop/internal/problem"
)

type Config struct {
	// Workers: число одновременно решаемых станков (0 - GOMAXPROCS).
	Workers int
	// Horizon: крайний срок завершения на каждом станке (0 - без ограничения).
	Horizon int
}

func (c Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("Workers должно быть >= 0 (получено %d)", c.Workers)
	}
	if c.Horizon < 0 {
		return fmt.Errorf("Horizon должно быть >= 0 (получено %d)", c.Horizon)
	}
	return nil
}

type MachineResult struct {
	Machine int
	Jobs    []int
	// Starts параллелен Jobs.
	Starts     []int
	Completion int
	Feasible   bool
	Solved     bool
	Status     cp.Status
	WallTime   time.Duration
}

type Result struct {
	// Machines по возрастанию номера станка.
	Machines []MachineResult
	Makespan int
	Schedule problem.Schedule
	// Feasible: ни один станок не оказался недопустимым.
	Feasible bool
	// Complete: расписание построено для всех работ.
	Complete bool
	Elapsed  time.Duration
}

// Solve строит для каждого станка свежую модель и решает их параллельно.
// Каждый обработчик пишет только в свой слот, а makespan и расписание
// собираются чистой редукцией после барьера Wait.
func Solve(ctx context.Context, inst *problem.Instance, a problem.Assignment, cfg Config, limit time.Duration) (Result, error) {
	start := time.Now()

	if err := problem.ValidateAssignment(a, inst); err != nil {
		return Result{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}

	workers := cfg.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	byMachine := a.ByMachine(inst.Machines)
	slots := make([]MachineResult, inst.Machines)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for m := 0; m < inst.Machines; m++ {
		m := m
		jobs := byMachine[m]
		g.Go(func() error {
			mr, err := SolveMachine(gctx, inst, m, jobs, cfg.Horizon, limit)
			if err != nil {
				return fmt.Errorf("станок %d: %w", m, err)
			}
			slots[m] = mr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	res := reduce(inst, slots)
	res.Elapsed = time.Since(start)
	return res, nil
}

func reduce(inst *problem.Instance, slots []MachineResult) Result {
	res := Result{
		Machines: slots,
		Schedule: make(problem.Schedule, inst.Jobs),
		Feasible: true,
		Complete: true,
	}
	for _, mr := range slots {
		if !mr.Feasible {
			res.Feasible = false
		}
		if !mr.Solved {
			res.Complete = false
			continue
		}
		for i, j := range mr.Jobs {
			res.Schedule[j] = mr.Starts[i]
		}
		if mr.Completion > res.Makespan {
			res.Makespan = mr.Completion
		}
	}
	if !res.Complete {
		res.Schedule = nil
		res.Makespan = 0
	}
	return res
}

// SolveMachine решает задачу одного станка: интервал на каждую работу,
// no-overlap по всем, минимизация времени завершения.
func SolveMachine(ctx context.Context, inst *problem.Instance, machine int, jobs []int, horizon int, limit time.Duration) (MachineResult, error) {
	mr := MachineResult{Machine: machine, Jobs: jobs, Feasible: true}
	if len(jobs) == 0 {
		mr.Solved = true
		mr.Status = cp.StatusOptimal
		return mr, nil
	}

	h := horizon
	if h == 0 {
		for _, j := range jobs {
			h += inst.Time(j)
		}
	}

	model := cp.NewModel(fmt.Sprintf("machine_%d", machine))
	ivs := make([]cp.IntervalVar, len(jobs))
	for i, j := range jobs {
		ivs[i] = model.NewIntervalVar(fmt.Sprintf("job_%d", j), inst.Time(j), h)
	}
	model.AddNoOverlap(ivs...)
	model.MinimizeMakespan(ivs...)

	resp, err := cp.Solve(ctx, model, limit)
	if err != nil {
		return mr, err
	}
	mr.Status = resp.Status
	mr.WallTime = resp.WallTime

	switch {
	case resp.Status == cp.StatusInfeasible:
		mr.Feasible = false
	case resp.HasSolution:
		mr.Solved = true
		mr.Starts = make([]int, len(jobs))
		for i, iv := range ivs {
			mr.Starts[i] = resp.Start(iv)
		}
		mr.Completion = resp.Objective
	}
	return mr, nil
}

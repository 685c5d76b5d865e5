// Package baseline - решение без декомпозиции в две фазы: сначала
// назначение минимальной стоимости, затем расписание на зафиксированном
// назначении.
package baseline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"bendersShop/internal/cp"
	"bendersShop/internal/opt"
	"bendersShop/internal/problem"
	"bendersShop/internal/subproblem"
)

var ErrInfeasible = errors.New("baseline: infeasible")

type Solver struct {
	Cfg    Config
	Logger *slog.Logger
}

func New(cfg Config, logger *slog.Logger) (*Solver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Solver{Cfg: cfg, Logger: logger}, nil
}

// SolveAssignment назначает каждую работу ровно одному станку,
// минимизируя суммарную стоимость. Цель записана как превышение над
// минимальной стоимостью каждой работы со сдвигом MinTotalCost: оптимум
// имеет нулевой вес, и решатель останавливается на нём без доказательства.
func (s *Solver) SolveAssignment(ctx context.Context, inst *problem.Instance) (problem.Assignment, cp.Status, error) {
	model := cp.NewModel("assignment")
	x := make([]cp.BoolVar, inst.Jobs*inst.Machines)
	terms := make([]cp.Term, 0, len(x))
	for j := 0; j < inst.Jobs; j++ {
		minCost := inst.MinCost(j)
		row := x[j*inst.Machines : (j+1)*inst.Machines]
		for m := range row {
			row[m] = model.NewBoolVar(fmt.Sprintf("x_%d_%d", j, m))
			if d := inst.Cost(j, m) - minCost; d > 0 {
				terms = append(terms, cp.Term{Var: row[m], Coef: d})
			}
		}
		model.AddExactlyOne(row...)
	}
	model.Minimize(inst.MinTotalCost(), terms...)

	resp, err := cp.Solve(ctx, model, s.Cfg.AssignmentTimeLimit)
	if err != nil {
		return nil, cp.StatusUnknown, err
	}
	s.Logger.Info("модель назначения решена",
		"status", resp.Status.String(),
		"objective", resp.Objective,
		"elapsed", resp.WallTime,
	)
	if !resp.HasSolution {
		return nil, resp.Status, fmt.Errorf("%w: модель назначения (%s)", ErrInfeasible, resp.Status)
	}

	a := make(problem.Assignment, inst.Jobs)
	for j := 0; j < inst.Jobs; j++ {
		a[j] = -1
		for m := 0; m < inst.Machines; m++ {
			if resp.Value(x[j*inst.Machines+m]) {
				a[j] = m
				break
			}
		}
		if a[j] < 0 {
			return nil, resp.Status, fmt.Errorf("работа %d не назначена", j)
		}
	}
	return a, resp.Status, nil
}

// SolveScheduling строит расписание с минимальным makespan для назначения a.
func (s *Solver) SolveScheduling(ctx context.Context, inst *problem.Instance, a problem.Assignment) (subproblem.Result, error) {
	res, err := subproblem.Solve(ctx, inst, a, subproblem.Config{Workers: s.Cfg.Workers}, s.Cfg.SchedulingTimeLimit)
	if err != nil {
		return subproblem.Result{}, err
	}
	s.Logger.Info("модель расписания решена",
		"makespan", res.Makespan,
		"complete", res.Complete,
		"elapsed", res.Elapsed,
	)
	if !res.Complete {
		return res, fmt.Errorf("%w: модель расписания не решена", ErrInfeasible)
	}
	return res, nil
}

func (s *Solver) Solve(ctx context.Context, inst *problem.Instance) (opt.Result, error) {
	start := time.Now()

	if err := inst.Validate(); err != nil {
		return opt.Result{}, err
	}

	a, status, err := s.SolveAssignment(ctx, inst)
	if err != nil {
		return opt.Result{}, err
	}
	sched, err := s.SolveScheduling(ctx, inst, a)
	if err != nil {
		return opt.Result{}, err
	}

	cost := a.Cost(inst)
	return opt.Result{
		Assignment: a,
		Schedule:   sched.Schedule,
		Cost:       cost,
		Makespan:   sched.Makespan,
		Objective:  s.Cfg.Objective.Value(cost, sched.Makespan),
		Iterations: 1,
		Duration:   time.Since(start),
		Meta: map[string]any{
			"assignment_status": status.String(),
		},
	}, nil
}

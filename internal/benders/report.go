package benders

import (
	"fmt"
	"strings"
	"time"

	"bendersShop/internal/cuts"
	"bendersShop/internal/problem"
)

// Report: итог запуска для внешнего потребителя. Оптимизации не выполняет.
type Report struct {
	RunID string
	State State

	Assignment problem.Assignment
	Schedule   problem.Schedule
	Cost       int
	Makespan   int
	Objective  int
	Bound      int
	Gap        float64

	Iterations       int
	Cuts             int
	OptimalityCuts   int
	FeasibilityCuts  int
	IncumbentFoundAt int
	Elapsed          time.Duration
	History          []IterationStats

	Err error
}

func (r *run) report(err error) *Report {
	rep := &Report{
		RunID:      r.id,
		State:      r.state,
		Bound:      r.bound,
		Gap:        r.gap(),
		Iterations: r.iteration,
		Cuts:       r.cuts.Len(),
		Elapsed:    time.Since(r.start),
		History:    r.history,
		Err:        err,
	}
	for _, c := range r.cuts.All() {
		switch c.Kind {
		case cuts.Optimality:
			rep.OptimalityCuts++
		case cuts.Feasibility:
			rep.FeasibilityCuts++
		}
	}
	if r.best != nil {
		rep.Assignment = r.best.assignment
		rep.Schedule = r.best.schedule
		rep.Cost = r.best.cost
		rep.Makespan = r.best.makespan
		rep.Objective = r.best.value
		rep.IncumbentFoundAt = r.best.iteration
	}
	return rep
}

// Complete: отчёт содержит назначение и расписание всех работ.
func (r *Report) Complete() bool {
	return r.Assignment != nil && r.Schedule != nil
}

func (r *Report) Intervals(inst *problem.Instance) [][]problem.Interval {
	if !r.Complete() {
		return nil
	}
	return r.Schedule.Intervals(inst, r.Assignment)
}

func (r *Report) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "run=%s state=%s iterations=%d", r.RunID, r.State, r.Iterations)
	if r.Complete() {
		fmt.Fprintf(&b, " cost=%d makespan=%d objective=%d bound=%d gap=%.4f",
			r.Cost, r.Makespan, r.Objective, r.Bound, r.Gap)
	}
	fmt.Fprintf(&b, " cuts=%d (opt=%d feas=%d) elapsed=%s",
		r.Cuts, r.OptimalityCuts, r.FeasibilityCuts, r.Elapsed.Round(time.Millisecond))
	if r.Err != nil {
		fmt.Fprintf(&b, " err=%v", r.Err)
	}
	return b.String()
}

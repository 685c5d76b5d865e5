// Package master строит и решает мастер-задачу назначения с накопленными
// отсечениями. Модель создаётся заново при каждом вызове; между итерациями
// сохраняется только множество отсечений.
package master

import (
	"context"
	"errors"
	"fmt"
	"math/bits"
	"time"

	"bendersShop/internal/cp"
	"bendersShop/internal/cuts"
	"bendersShop/internal/problem"
)

// ErrInfeasible: мастер без решения. Тривиальное назначение существует
// всегда, поэтому в базовой постановке это означает некорректное отсечение.
var ErrInfeasible = errors.New("master: infeasible")

type Result struct {
	Assignment problem.Assignment
	// Makespan: оценка makespan, которую отсечения приписывают назначению.
	Makespan  int
	Cost      int
	Objective int
	// Bound: доказанная нижняя граница цели (только при Proven).
	Bound    int
	Proven   bool
	Status   cp.Status
	WallTime time.Duration
}

// HasAssignment: решатель вернул назначение (оптимальное или лучшее к моменту таймаута).
func (r Result) HasAssignment() bool { return r.Assignment != nil }

type Config struct {
	Objective problem.Objective
	TimeLimit time.Duration
	// LoadRelaxation добавляет для каждого станка z >= суммарная длительность
	// назначенных на него работ.
	LoadRelaxation bool
}

type model struct {
	*cp.Model
	x []cp.BoolVar // x[j*machines+m], 0 - пара запрещена целевой функцией
	// z = lb + Σ 2^b·bits[b]: двоичная запись сохраняет линейные
	// ограничения на z точными.
	bits []cp.BoolVar
	lb   int
}

// Solve решает мастер-задачу. Возвращает ErrInfeasible, если модель несовместна;
// таймаут не является ошибкой.
func Solve(ctx context.Context, inst *problem.Instance, cfg Config, set *cuts.Set) (Result, error) {
	mm := build(inst, cfg, set)

	resp, err := cp.Solve(ctx, mm.Model, cfg.TimeLimit)
	if err != nil {
		return Result{}, fmt.Errorf("мастер-задача: %w", err)
	}

	res := Result{Status: resp.Status, WallTime: resp.WallTime}
	if resp.Status == cp.StatusInfeasible {
		return res, fmt.Errorf("%w (%d отсечений)", ErrInfeasible, set.Len())
	}
	if !resp.HasSolution {
		return res, nil
	}

	a := make(problem.Assignment, inst.Jobs)
	for j := 0; j < inst.Jobs; j++ {
		a[j] = -1
		for m := 0; m < inst.Machines; m++ {
			if v := mm.x[j*inst.Machines+m]; v != 0 && resp.Value(v) {
				a[j] = m
				break
			}
		}
		if a[j] < 0 {
			return res, fmt.Errorf("мастер-задача: работа %d не назначена", j)
		}
	}

	z := mm.lb
	for b, v := range mm.bits {
		if resp.Value(v) {
			z += 1 << b
		}
	}

	res.Assignment = a
	res.Makespan = z
	res.Cost = a.Cost(inst)
	res.Objective = cfg.Objective.Value(res.Cost, z)
	if resp.HasBound {
		res.Proven = true
		res.Bound = resp.Bound
	}
	return res, nil
}

// excess возвращает члены z - lb с коэффициентом scale.
func (mm *model) excess(scale int) []cp.Term {
	terms := make([]cp.Term, len(mm.bits))
	for b, v := range mm.bits {
		terms[b] = cp.Term{Var: v, Coef: scale << b}
	}
	return terms
}

func build(inst *problem.Instance, cfg Config, set *cuts.Set) *model {
	obj := cfg.Objective
	mm := &model{
		Model: cp.NewModel("master"),
		x:     make([]cp.BoolVar, inst.Jobs*inst.Machines),
		lb:    obj.MakespanLowerBound(inst),
	}

	for j := 0; j < inst.Jobs; j++ {
		group := make([]cp.BoolVar, 0, inst.Machines)
		for m := 0; m < inst.Machines; m++ {
			if !obj.Allowed(inst, j, m) {
				continue
			}
			v := mm.NewBoolVar(fmt.Sprintf("x_%d_%d", j, m))
			mm.x[j*inst.Machines+m] = v
			group = append(group, v)
		}
		mm.AddExactlyOne(group...)
	}

	// Makespan любого назначения не больше суммы всех длительностей.
	if span := inst.TotalTime() - mm.lb; span > 0 {
		mm.bits = make([]cp.BoolVar, bits.Len(uint(span)))
		for b := range mm.bits {
			mm.bits[b] = mm.NewBoolVar(fmt.Sprintf("z_bit_%d", b))
		}
	}

	if cfg.LoadRelaxation {
		for m := 0; m < inst.Machines; m++ {
			terms := mm.excess(1)
			for j := 0; j < inst.Jobs; j++ {
				if v := mm.x[j*inst.Machines+m]; v != 0 {
					terms = append(terms, cp.Term{Var: v, Coef: -inst.ProcTimes[j]})
				}
			}
			mm.AddLinear(terms, cp.GE, -mm.lb)
		}
	}

	for _, c := range set.All() {
		switch c.Kind {
		case cuts.Feasibility:
			mm.addFeasibility(inst, c)
		case cuts.Optimality:
			mm.addOptimality(inst, c)
		}
	}

	// Константная часть цели вынесена в сдвиг, поэтому у назначения с
	// минимальной стоимостью и z = lb вес для решателя нулевой.
	var (
		terms  []cp.Term
		offset = mm.lb
		scale  = 1
	)
	if obj.Mode == problem.ObjectiveWeighted {
		scale = obj.MakespanWeight
		offset = obj.CostWeight*inst.MinTotalCost() + obj.MakespanWeight*mm.lb
		for j := 0; j < inst.Jobs; j++ {
			minCost := inst.MinCost(j)
			for m := 0; m < inst.Machines; m++ {
				if d := inst.Cost(j, m) - minCost; d > 0 && obj.CostWeight > 0 {
					terms = append(terms, cp.Term{Var: mm.x[j*inst.Machines+m], Coef: obj.CostWeight * d})
				}
			}
		}
	}
	terms = append(terms, mm.excess(scale)...)
	mm.Minimize(offset, terms...)
	return mm
}

func (mm *model) addFeasibility(inst *problem.Instance, c cuts.Cut) {
	lits := make([]cp.Literal, 0, len(c.Pairs))
	for _, p := range c.Pairs {
		v := mm.x[p.Job*inst.Machines+p.Machine]
		if v == 0 {
			// Пара запрещена, ¬x тождественно истинно.
			return
		}
		lits = append(lits, v.Not())
	}
	mm.AddBoolOr(lits...)
}

// addOptimality записывает отсечение как z - lb + Σ w_p·(1 - x_p) >= Bound - lb.
// Для отсечения одного станка w_p = p_j; для отсечения по нескольким
// станкам w_p = Bound - lb, то есть no-good: любая несовпавшая пара снимает его.
func (mm *model) addOptimality(inst *problem.Instance, c cuts.Cut) {
	d := c.Bound - mm.lb
	if d <= 0 {
		return
	}
	_, single := c.SingleMachine()

	terms := mm.excess(1)
	rhs := d
	for _, p := range c.Pairs {
		w := d
		if single {
			w = min(inst.ProcTimes[p.Job], d)
		}
		rhs -= w
		if v := mm.x[p.Job*inst.Machines+p.Machine]; v != 0 {
			terms = append(terms, cp.Term{Var: v, Coef: -w})
		}
	}
	mm.AddLinear(terms, cp.GE, rhs)
}

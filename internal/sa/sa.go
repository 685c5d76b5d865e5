package sa

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"bendersShop/internal/problem"
)

// Solver - структура реализации алгоритма имитации отжига над назначениями
type Solver struct {
	Cfg Config
	Rng *rand.Rand
}

// New возвращает новый SA-солвер с валидацией конфигурации, с использованием инициализированного генератора случайных чисел.
func New(cfg Config, rng *rand.Rand) (*Solver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("генератор случайных чисел не инициализирован (nil)")
	}
	return &Solver{Cfg: cfg, Rng: rng}, nil
}

type Result struct {
	Assignment  problem.Assignment
	Cost        int
	Makespan    int
	Value       int
	Evaluations int
	Iterations  int
	Duration    time.Duration
}

// state - назначение вместе с загрузками станков для инкрементальной оценки
type state struct {
	inst  *problem.Instance
	obj   problem.Objective
	a     problem.Assignment
	loads []int
	cost  int
}

func (st *state) relocate(job, to int) {
	from := st.a[job]
	p := st.inst.Time(job)
	st.loads[from] -= p
	st.loads[to] += p
	st.cost += st.inst.Cost(job, to) - st.inst.Cost(job, from)
	st.a[job] = to
}

func (st *state) makespan() int {
	best := 0
	for _, l := range st.loads {
		if l > best {
			best = l
		}
	}
	return best
}

func (st *state) value() int {
	return st.obj.Value(st.cost, st.makespan())
}

// Improve улучшает стартовое назначение start. Перемещения ограничены
// допустимыми для целевой функции парами, поэтому в лексикографическом
// режиме стоимость остаётся оптимальной.
func (s *Solver) Improve(ctx context.Context, inst *problem.Instance, obj problem.Objective, start problem.Assignment) (Result, error) {
	begin := time.Now()

	if err := inst.Validate(); err != nil {
		return Result{}, err
	}
	if err := s.Cfg.Validate(); err != nil {
		return Result{}, err
	}
	if err := problem.ValidateAssignment(start, inst); err != nil {
		return Result{}, err
	}
	if s.Rng == nil {
		return Result{}, fmt.Errorf("генератор случайных чисел не инициализирован (nil)")
	}

	n := inst.Jobs

	// Списки допустимых станков для каждой работы
	allowed := make([][]int, n)
	isAllowed := make([]bool, n*inst.Machines)
	for j := 0; j < n; j++ {
		for m := 0; m < inst.Machines; m++ {
			if obj.Allowed(inst, j, m) {
				allowed[j] = append(allowed[j], m)
				isAllowed[j*inst.Machines+m] = true
			}
		}
	}

	st := &state{inst: inst, obj: obj, a: start.Clone(), loads: start.Loads(inst), cost: start.Cost(inst)}

	maxIter := s.Cfg.Iterations
	if maxIter <= 0 {
		maxIter = s.Cfg.IterationsPerJob * n
	}

	currVal := st.value()
	best := st.a.Clone()
	bestVal := currVal
	evals := 1
	T := s.Cfg.InitialTemp

	result := func(iter int) Result {
		return Result{
			Assignment:  best,
			Cost:        best.Cost(inst),
			Makespan:    best.Makespan(inst),
			Value:       bestVal,
			Evaluations: evals,
			Iterations:  iter,
			Duration:    time.Since(begin),
		}
	}

	iter := 0
	for ; iter < maxIter && T > s.Cfg.FinalTemp; iter++ {
		// Для поддержки отмены через context
		if err := ctx.Err(); err != nil {
			return result(iter), err
		}

		var undo func()
		switch s.Cfg.Neighborhood {
		case NeighborhoodSwap:
			undo = s.neighborSwap(st, isAllowed)
		default:
			undo = s.neighborMove(st, allowed)
		}
		if undo == nil {
			// Окрестность пуста для выбранной работы
			T *= s.Cfg.Alpha
			continue
		}

		candVal := st.value()
		evals++

		delta := candVal - currVal
		accept := false
		if delta <= 0 {
			// Улучшающее решение принимаем всегда
			accept = true
		} else {
			// Критерий Метрополиса
			p := math.Exp(-float64(delta) / T)
			if s.Rng.Float64() < p {
				accept = true
			}
		}

		if accept {
			currVal = candVal
			if currVal < bestVal {
				bestVal = currVal
				copy(best, st.a)
			}
		} else {
			undo()
		}

		// Охлаждение температуры
		T *= s.Cfg.Alpha
	}

	return result(iter), nil
}

// Переносит случайную работу на случайный другой допустимый станок.
func (s *Solver) neighborMove(st *state, allowed [][]int) func() {
	j := s.Rng.Intn(len(st.a))
	opts := allowed[j]
	if len(opts) < 2 {
		return nil
	}
	from := st.a[j]
	to := opts[s.Rng.Intn(len(opts))]
	if to == from {
		to = opts[(indexOf(opts, to)+1)%len(opts)]
	}
	st.relocate(j, to)
	return func() { st.relocate(j, from) }
}

// Меняет местами станки двух случайных работ, если обе пары допустимы.
func (s *Solver) neighborSwap(st *state, isAllowed []bool) func() {
	n := len(st.a)
	if n < 2 {
		return nil
	}
	i := s.Rng.Intn(n)
	k := s.Rng.Intn(n - 1)
	if k >= i {
		k++
	}
	mi, mk := st.a[i], st.a[k]
	machines := st.inst.Machines
	if mi == mk || !isAllowed[i*machines+mk] || !isAllowed[k*machines+mi] {
		return nil
	}
	st.relocate(i, mk)
	st.relocate(k, mi)
	return func() {
		st.relocate(i, mi)
		st.relocate(k, mk)
	}
}

func indexOf(xs []int, v int) int {
	for i, x := range xs {
		if x == v {
			return i
		}
	}
	return -1
}

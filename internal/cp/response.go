package cp

import (
	"fmt"
	"time"
)

type Status int

const (
	StatusUnknown Status = iota
	StatusOptimal
	StatusFeasible
	StatusInfeasible
	StatusTimeout
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "OPTIMAL"
	case StatusFeasible:
		return "FEASIBLE"
	case StatusInfeasible:
		return "INFEASIBLE"
	case StatusTimeout:
		return "TIMEOUT"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(s))
	}
}

type Response struct {
	Status Status
	// Objective: значение лучшего найденного решения (если HasSolution).
	Objective int
	// Bound: доказанная нижняя граница (если HasBound).
	Bound       int
	HasSolution bool
	HasBound    bool
	WallTime    time.Duration

	bools  []bool
	starts []int
	ends   []int
}

// Value возвращает значение булевой переменной в лучшем решении.
func (r *Response) Value(v BoolVar) bool {
	if !r.HasSolution || v < 1 || int(v) > len(r.bools) {
		return false
	}
	return r.bools[v-1]
}

func (r *Response) LitValue(l Literal) bool {
	return r.Value(l.Var) != l.Negated
}

func (r *Response) Start(iv IntervalVar) int {
	if !r.HasSolution || int(iv) >= len(r.starts) {
		return 0
	}
	return r.starts[iv]
}

func (r *Response) End(iv IntervalVar) int {
	if !r.HasSolution || int(iv) >= len(r.ends) {
		return 0
	}
	return r.ends[iv]
}

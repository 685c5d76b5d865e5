// Package cp описывает модель оптимизации (булевы переменные, интервалы,
// линейные ограничения, no-overlap, целевая функция) и решает её внешним движком.
package cp

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidModel     = errors.New("cp: invalid model")
	ErrUnsupportedModel = errors.New("cp: unsupported model")
)

// BoolVar: индекс булевой переменной, начиная с 1 (нумерация DIMACS).
type BoolVar int

// Literal: переменная или её отрицание.
type Literal struct {
	Var     BoolVar
	Negated bool
}

func (v BoolVar) Lit() Literal { return Literal{Var: v} }
func (v BoolVar) Not() Literal { return Literal{Var: v, Negated: true} }
func (l Literal) Not() Literal { return Literal{Var: l.Var, Negated: !l.Negated} }

// IntervalVar: индекс интервала, начиная с 0.
type IntervalVar int

type Op int

const (
	LE Op = iota
	GE
	EQ
)

func (o Op) String() string {
	switch o {
	case LE:
		return "<="
	case GE:
		return ">="
	case EQ:
		return "=="
	default:
		return fmt.Sprintf("Op(%d)", int(o))
	}
}

type Term struct {
	Var  BoolVar
	Coef int
}

type linear struct {
	terms []Term
	op    Op
	rhs   int
}

type interval struct {
	name     string
	duration int
	// start ∈ [0, horizon-duration]
	horizon int
}

type objective struct {
	terms    []Term
	offset   int
	makespan []IntervalVar
}

type Model struct {
	Name string

	bools     []string
	intervals []interval
	exactly   [][]BoolVar
	linears   []linear
	clauses   [][]Literal
	noOverlap [][]IntervalVar
	obj       *objective
}

func NewModel(name string) *Model {
	return &Model{Name: name}
}

func (m *Model) NewBoolVar(name string) BoolVar {
	m.bools = append(m.bools, name)
	return BoolVar(len(m.bools))
}

// NewIntervalVar объявляет интервал фиксированной длительности со стартом в [0, horizon-duration].
func (m *Model) NewIntervalVar(name string, duration, horizon int) IntervalVar {
	m.intervals = append(m.intervals, interval{name: name, duration: duration, horizon: horizon})
	return IntervalVar(len(m.intervals) - 1)
}

func (m *Model) AddExactlyOne(vars ...BoolVar) {
	m.exactly = append(m.exactly, append([]BoolVar(nil), vars...))
}

func (m *Model) AddLinear(terms []Term, op Op, rhs int) {
	m.linears = append(m.linears, linear{terms: append([]Term(nil), terms...), op: op, rhs: rhs})
}

// AddBoolOr требует истинности хотя бы одного литерала.
func (m *Model) AddBoolOr(lits ...Literal) {
	m.clauses = append(m.clauses, append([]Literal(nil), lits...))
}

// AddImplication: a => b.
func (m *Model) AddImplication(a, b Literal) {
	m.AddBoolOr(a.Not(), b)
}

func (m *Model) AddNoOverlap(ivs ...IntervalVar) {
	m.noOverlap = append(m.noOverlap, append([]IntervalVar(nil), ivs...))
}

// Minimize задаёт линейную целевую функцию над булевыми переменными плюс константу.
func (m *Model) Minimize(offset int, terms ...Term) {
	m.obj = &objective{terms: append([]Term(nil), terms...), offset: offset}
}

// MinimizeMakespan задаёт целевую функцию max(end) по интервалам.
func (m *Model) MinimizeMakespan(ivs ...IntervalVar) {
	m.obj = &objective{makespan: append([]IntervalVar(nil), ivs...)}
}

func (m *Model) NumBools() int     { return len(m.bools) }
func (m *Model) NumIntervals() int { return len(m.intervals) }

func (m *Model) Validate() error {
	checkVar := func(v BoolVar) error {
		if v < 1 || int(v) > len(m.bools) {
			return fmt.Errorf("%w: bool var %d out of range [1,%d]", ErrInvalidModel, v, len(m.bools))
		}
		return nil
	}
	checkInterval := func(iv IntervalVar) error {
		if iv < 0 || int(iv) >= len(m.intervals) {
			return fmt.Errorf("%w: interval %d out of range [0,%d)", ErrInvalidModel, iv, len(m.intervals))
		}
		return nil
	}

	for i, iv := range m.intervals {
		if iv.duration < 0 {
			return fmt.Errorf("%w: interval %q has negative duration %d", ErrInvalidModel, iv.name, iv.duration)
		}
		if iv.horizon < 0 {
			return fmt.Errorf("%w: interval %d has negative horizon", ErrInvalidModel, i)
		}
	}
	for _, group := range m.exactly {
		if len(group) == 0 {
			return fmt.Errorf("%w: empty exactly-one group", ErrInvalidModel)
		}
		for _, v := range group {
			if err := checkVar(v); err != nil {
				return err
			}
		}
	}
	for _, l := range m.linears {
		for _, t := range l.terms {
			if err := checkVar(t.Var); err != nil {
				return err
			}
		}
	}
	for _, c := range m.clauses {
		for _, l := range c {
			if err := checkVar(l.Var); err != nil {
				return err
			}
		}
	}
	for _, group := range m.noOverlap {
		for _, iv := range group {
			if err := checkInterval(iv); err != nil {
				return err
			}
		}
	}
	if m.obj != nil {
		for _, t := range m.obj.terms {
			if err := checkVar(t.Var); err != nil {
				return err
			}
		}
		for _, iv := range m.obj.makespan {
			if err := checkInterval(iv); err != nil {
				return err
			}
		}
	}
	return nil
}

// isBoolean: модель без интервалов, решается псевдобулевым движком.
func (m *Model) isBoolean() bool {
	return len(m.intervals) == 0 && len(m.noOverlap) == 0 && (m.obj == nil || len(m.obj.makespan) == 0)
}

// isDisjunctive: только интервалы и no-overlap.
func (m *Model) isDisjunctive() bool {
	return len(m.bools) == 0 && len(m.linears) == 0 && len(m.clauses) == 0 && len(m.exactly) == 0 &&
		(m.obj == nil || len(m.obj.terms) == 0)
}

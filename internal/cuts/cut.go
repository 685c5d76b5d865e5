// Package cuts содержит отсечения логического разложения Бендерса:
// ограничения только над переменными назначения мастер-задачи.
package cuts

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

type Kind int

const (
	// Optimality: если все пары Pairs выбраны, makespan >= Bound.
	Optimality Kind = iota
	// Feasibility: пары Pairs не могут быть выбраны одновременно.
	Feasibility
)

func (k Kind) String() string {
	switch k {
	case Optimality:
		return "optimality"
	case Feasibility:
		return "feasibility"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Pair: литерал назначения x[Job][Machine].
type Pair struct {
	Job     int
	Machine int
}

type Cut struct {
	Kind  Kind
	Pairs []Pair
	// Bound: нижняя граница makespan (только для Optimality).
	Bound int
	// Iteration, на которой отсечение было порождено (0 - инициализация).
	Iteration int
}

// Applies сообщает, активно ли условие отсечения на назначении a.
func (c Cut) Applies(a []int) bool {
	for _, p := range c.Pairs {
		if a[p.Job] != p.Machine {
			return false
		}
	}
	return true
}

// Violated: назначение a с оценкой makespan z нарушает отсечение.
func (c Cut) Violated(a []int, z int) bool {
	if !c.Applies(a) {
		return false
	}
	if c.Kind == Feasibility {
		return true
	}
	return z < c.Bound
}

// key: каноническое представление для удаления дубликатов.
func (c Cut) key() string {
	pairs := append([]Pair(nil), c.Pairs...)
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Job != pairs[j].Job {
			return pairs[i].Job < pairs[j].Job
		}
		return pairs[i].Machine < pairs[j].Machine
	})
	var b strings.Builder
	b.WriteString(c.Kind.String())
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(c.Bound))
	for _, p := range pairs {
		b.WriteByte('|')
		b.WriteString(strconv.Itoa(p.Job))
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(p.Machine))
	}
	return b.String()
}

func (c Cut) String() string {
	if c.Kind == Feasibility {
		return fmt.Sprintf("feasibility(%d pairs)", len(c.Pairs))
	}
	return fmt.Sprintf("optimality(%d pairs => makespan >= %d)", len(c.Pairs), c.Bound)
}

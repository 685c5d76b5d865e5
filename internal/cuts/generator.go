package cuts

import (
	"fmt"

	"bendersShop/internal/problem"
	"bendersShop/internal/subproblem"
)

// Strength: гранулярность отсечений оптимальности.
type Strength string

const (
	// По одному отсечению на станок: набор работ станка => его время завершения.
	StrengthMachine Strength = "machine"
	// Одно no-good отсечение на всё назначение целиком.
	StrengthAssignment Strength = "assignment"
)

func (s Strength) Validate() error {
	switch s {
	case StrengthMachine, StrengthAssignment:
		return nil
	default:
		return fmt.Errorf("неизвестная сила отсечений %q", s)
	}
}

type Generator struct {
	Strength Strength
}

// Generate переводит результат подзадач для назначения a в отсечения.
// Станки обходятся по возрастанию номера, поэтому порядок детерминирован.
//
// Отсечения по станку корректны, так как длительности положительны:
// любое назначение, ставящее на станок надмножество его работ, завершится
// не раньше. Отсечения ссылаются только на пары (работа, станок).
func (g Generator) Generate(iteration int, a problem.Assignment, res subproblem.Result) []Cut {
	var out []Cut

	for _, mr := range res.Machines {
		if len(mr.Jobs) == 0 || mr.Feasible {
			continue
		}
		out = append(out, Cut{
			Kind:      Feasibility,
			Pairs:     machinePairs(mr.Machine, mr.Jobs),
			Iteration: iteration,
		})
	}
	if len(out) > 0 || !res.Complete {
		// Пока назначение недопустимо, его makespan не определён.
		return out
	}

	switch g.Strength {
	case StrengthAssignment:
		pairs := make([]Pair, len(a))
		for j, m := range a {
			pairs[j] = Pair{Job: j, Machine: m}
		}
		out = append(out, Cut{Kind: Optimality, Pairs: pairs, Bound: res.Makespan, Iteration: iteration})
	default:
		for _, mr := range res.Machines {
			if len(mr.Jobs) == 0 {
				continue
			}
			out = append(out, Cut{
				Kind:      Optimality,
				Pairs:     machinePairs(mr.Machine, mr.Jobs),
				Bound:     mr.Completion,
				Iteration: iteration,
			})
		}
	}
	return out
}

// LowerBound - безусловное отсечение. Makespan любого назначения, допустимого
// для obj, не меньше самой длинной работы и средней загрузки каждой группы
// станков, на которую ограничены работы.
func LowerBound(inst *problem.Instance, obj problem.Objective) Cut {
	return Cut{Kind: Optimality, Bound: obj.MakespanLowerBound(inst)}
}

// SingleMachine сообщает станок, если все пары отсечения относятся к нему.
// Такое отсечение допускает ослабление по длительностям: если работа j
// уходит со станка, его время завершения падает не больше чем на p_j.
func (c Cut) SingleMachine() (int, bool) {
	if len(c.Pairs) == 0 {
		return 0, false
	}
	m := c.Pairs[0].Machine
	for _, p := range c.Pairs[1:] {
		if p.Machine != m {
			return 0, false
		}
	}
	return m, true
}

func machinePairs(machine int, jobs []int) []Pair {
	pairs := make([]Pair, len(jobs))
	for i, j := range jobs {
		pairs[i] = Pair{Job: j, Machine: machine}
	}
	return pairs
}

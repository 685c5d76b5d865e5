package cp

import (
	"context"
	"fmt"
	"sort"
)

const ctxCheckEvery = 4096

// solveDisjunctive решает модели из интервалов фиксированной длительности
// и групп no-overlap без прочих ограничений. Внутри группы интервалы
// выстраиваются без простоев в порядке EDD (по возрастанию горизонта),
// интервалы целевой функции идут первыми. EDD точно решает вопрос
// допустимости; при общем горизонте в группе makespan также оптимален.
func solveDisjunctive(ctx context.Context, m *Model) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return &Response{Status: StatusTimeout}, nil
	}

	n := len(m.intervals)
	group := make([]int, n)
	for i := range group {
		group[i] = -1
	}
	members := make([][]IntervalVar, len(m.noOverlap))
	for g, ivs := range m.noOverlap {
		for _, iv := range ivs {
			switch group[iv] {
			case -1:
				group[iv] = g
				members[g] = append(members[g], iv)
			case g:
				// повтор внутри той же группы
			default:
				return nil, fmt.Errorf("%w: interval %d belongs to several no-overlap groups", ErrUnsupportedModel, iv)
			}
		}
	}

	inObj := make([]bool, n)
	if m.obj != nil {
		for _, iv := range m.obj.makespan {
			inObj[iv] = true
		}
	}

	starts := make([]int, n)
	ends := make([]int, n)
	feasible := true
	exact := true

	for i, iv := range m.intervals {
		if group[i] == -1 {
			ends[i] = iv.duration
			if iv.duration > iv.horizon {
				feasible = false
			}
		}
	}

	for _, order := range members {
		sort.SliceStable(order, func(a, b int) bool {
			ia, ib := m.intervals[order[a]], m.intervals[order[b]]
			if ia.horizon != ib.horizon {
				return ia.horizon < ib.horizon
			}
			return inObj[order[a]] && !inObj[order[b]]
		})
		t := 0
		for k, iv := range order {
			if k%ctxCheckEvery == ctxCheckEvery-1 {
				if err := ctx.Err(); err != nil {
					return &Response{Status: StatusTimeout}, nil
				}
			}
			if m.intervals[iv].horizon != m.intervals[order[0]].horizon {
				exact = false
			}
			starts[iv] = t
			t += m.intervals[iv].duration
			ends[iv] = t
			if t > m.intervals[iv].horizon {
				feasible = false
			}
		}
	}

	if !feasible {
		return &Response{Status: StatusInfeasible}, nil
	}

	resp := &Response{
		Status:      StatusOptimal,
		HasSolution: true,
		HasBound:    exact,
		starts:      starts,
		ends:        ends,
	}
	if !exact {
		resp.Status = StatusFeasible
	}
	if m.obj != nil {
		for _, iv := range m.obj.makespan {
			if ends[iv] > resp.Objective {
				resp.Objective = ends[iv]
			}
		}
	}
	if exact {
		resp.Bound = resp.Objective
	}
	return resp, nil
}

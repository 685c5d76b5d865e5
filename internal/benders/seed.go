package benders

import (
	"sort"

	"bendersShop/internal/problem"
)

// Greedy строит стартовое назначение по правилу LPT: работы по убыванию
// длительности, каждая на допустимый станок с наименьшим приростом цели,
// при равенстве - на наименее загруженный.
func Greedy(inst *problem.Instance, obj problem.Objective) problem.Assignment {
	order := make([]int, inst.Jobs)
	for j := range order {
		order[j] = j
	}
	sort.SliceStable(order, func(a, b int) bool {
		return inst.Time(order[a]) > inst.Time(order[b])
	})

	a := make(problem.Assignment, inst.Jobs)
	loads := make([]int, inst.Machines)
	cost, makespan := 0, 0

	for _, j := range order {
		p := inst.Time(j)
		best, bestVal := -1, 0
		for m := 0; m < inst.Machines; m++ {
			if !obj.Allowed(inst, j, m) {
				continue
			}
			v := obj.Value(cost+inst.Cost(j, m), max(makespan, loads[m]+p))
			if best < 0 || v < bestVal || (v == bestVal && loads[m] < loads[best]) {
				best, bestVal = m, v
			}
		}
		a[j] = best
		loads[best] += p
		cost += inst.Cost(j, best)
		makespan = max(makespan, loads[best])
	}
	return a
}

package problem

import "fmt"

type ObjectiveMode string

const (
	// Сначала стоимость назначения, затем makespan на зафиксированном назначении.
	ObjectiveLexicographic ObjectiveMode = "lexicographic"
	// Взвешенная сумма стоимости и makespan.
	ObjectiveWeighted ObjectiveMode = "weighted"
)

type Objective struct {
	Mode           ObjectiveMode
	CostWeight     int
	MakespanWeight int
}

func DefaultObjective() Objective {
	return Objective{Mode: ObjectiveLexicographic, CostWeight: 1, MakespanWeight: 1}
}

func (o Objective) Validate() error {
	switch o.Mode {
	case ObjectiveLexicographic:
		return nil
	case ObjectiveWeighted:
		if o.CostWeight < 0 || o.MakespanWeight < 0 {
			return fmt.Errorf("objective weights must be >= 0 (got cost=%d makespan=%d)", o.CostWeight, o.MakespanWeight)
		}
		if o.MakespanWeight == 0 {
			return fmt.Errorf("makespan weight must be > 0 in weighted mode")
		}
		return nil
	default:
		return fmt.Errorf("unknown objective mode %q", o.Mode)
	}
}

// Allowed reports whether job may run on machine. In lexicographic mode only
// cost-minimal machines keep the total cost at its optimum.
func (o Objective) Allowed(inst *Instance, job, machine int) bool {
	if o.Mode == ObjectiveLexicographic {
		return inst.Cost(job, machine) == inst.MinCost(job)
	}
	return true
}

// Value is the scalar compared between complete solutions. In lexicographic
// mode every candidate has the optimal cost, so only the makespan is compared.
func (o Objective) Value(cost, makespan int) int {
	if o.Mode == ObjectiveLexicographic {
		return makespan
	}
	return o.CostWeight*cost + o.MakespanWeight*makespan
}

// MakespanLowerBound tightens inst.MakespanLowerBound with the allowed pairs.
// Jobs whose allowed machines all lie in a set K can only load K, so the
// makespan is at least their total time spread over |K|. K ranges over the
// distinct allowed sets of the jobs.
func (o Objective) MakespanLowerBound(inst *Instance) int {
	lb := inst.MakespanLowerBound()
	if o.Mode != ObjectiveLexicographic {
		return lb
	}

	type allowedSet struct {
		machines []bool
		size     int
		time     int
	}
	var sets []allowedSet
	index := make(map[string]int)
	key := make([]byte, inst.Machines)
	for j := 0; j < inst.Jobs; j++ {
		for m := range key {
			key[m] = '0'
			if o.Allowed(inst, j, m) {
				key[m] = '1'
			}
		}
		i, ok := index[string(key)]
		if !ok {
			s := allowedSet{machines: make([]bool, inst.Machines)}
			for m := range key {
				if key[m] == '1' {
					s.machines[m] = true
					s.size++
				}
			}
			i = len(sets)
			index[string(key)] = i
			sets = append(sets, s)
		}
		sets[i].time += inst.ProcTimes[j]
	}

	subset := func(a, b allowedSet) bool {
		for m, in := range a.machines {
			if in && !b.machines[m] {
				return false
			}
		}
		return true
	}
	for _, k := range sets {
		total := 0
		for _, s := range sets {
			if subset(s, k) {
				total += s.time
			}
		}
		lb = max(lb, (total+k.size-1)/k.size)
	}
	return lb
}

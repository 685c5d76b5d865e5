package problem

import "fmt"

// Assignment maps job -> machine.
type Assignment []int

func ValidateAssignment(a Assignment, inst *Instance) error {
	if len(a) != inst.Jobs {
		return fmt.Errorf("assignment length must be %d (got %d)", inst.Jobs, len(a))
	}
	for j, m := range a {
		if m < 0 || m >= inst.Machines {
			return fmt.Errorf("assignment[%d]=%d out of range [0,%d)", j, m, inst.Machines)
		}
	}
	return nil
}

// Clone returns an independent copy.
func (a Assignment) Clone() Assignment {
	out := make(Assignment, len(a))
	copy(out, a)
	return out
}

// ByMachine groups jobs per machine; each group is in ascending job order.
func (a Assignment) ByMachine(machines int) [][]int {
	out := make([][]int, machines)
	for j, m := range a {
		out[m] = append(out[m], j)
	}
	return out
}

func (a Assignment) Cost(inst *Instance) int {
	total := 0
	for j, m := range a {
		total += inst.Cost(j, m)
	}
	return total
}

// Loads returns the total processing time per machine.
func (a Assignment) Loads(inst *Instance) []int {
	loads := make([]int, inst.Machines)
	for j, m := range a {
		loads[m] += inst.Time(j)
	}
	return loads
}

// Makespan of a single-resource-per-machine schedule without idle time,
// which is what any left-justified sequence on each machine achieves.
func (a Assignment) Makespan(inst *Instance) int {
	best := 0
	for _, l := range a.Loads(inst) {
		if l > best {
			best = l
		}
	}
	return best
}

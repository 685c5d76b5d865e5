package problem

import (
	"fmt"
	"sort"
)

// Schedule maps job -> start time.
type Schedule []int

type Interval struct {
	Job   int
	Start int
	End   int
}

// Intervals lists the intervals of every machine ordered by start time.
func (s Schedule) Intervals(inst *Instance, a Assignment) [][]Interval {
	out := make([][]Interval, inst.Machines)
	for j, m := range a {
		out[m] = append(out[m], Interval{Job: j, Start: s[j], End: s[j] + inst.Time(j)})
	}
	for m := range out {
		sort.Slice(out[m], func(i, k int) bool {
			if out[m][i].Start != out[m][k].Start {
				return out[m][i].Start < out[m][k].Start
			}
			return out[m][i].Job < out[m][k].Job
		})
	}
	return out
}

func (s Schedule) Makespan(inst *Instance) int {
	best := 0
	for j, st := range s {
		if end := st + inst.Time(j); end > best {
			best = end
		}
	}
	return best
}

// ValidateSchedule checks that every job has a start >= 0 and that the
// intervals sharing a machine are pairwise disjoint.
func ValidateSchedule(s Schedule, a Assignment, inst *Instance) error {
	if err := ValidateAssignment(a, inst); err != nil {
		return err
	}
	if len(s) != inst.Jobs {
		return fmt.Errorf("schedule length must be %d (got %d)", inst.Jobs, len(s))
	}
	for j, st := range s {
		if st < 0 {
			return fmt.Errorf("start[%d]=%d must be >= 0", j, st)
		}
	}
	for m, ivs := range s.Intervals(inst, a) {
		for i := 1; i < len(ivs); i++ {
			if ivs[i].Start < ivs[i-1].End {
				return fmt.Errorf("machine %d: job %d [%d,%d) overlaps job %d [%d,%d)",
					m, ivs[i].Job, ivs[i].Start, ivs[i].End, ivs[i-1].Job, ivs[i-1].Start, ivs[i-1].End)
			}
		}
	}
	return nil
}

package problem

import (
	"errors"
	"fmt"
	"math/rand"
)

// ErrMalformedInstance is returned for instances rejected before any solve attempt.
var ErrMalformedInstance = errors.New("malformed instance")

type Instance struct {
	Jobs     int
	Machines int
	// Costs length must be Jobs*Machines, row-major by job.
	Costs []int
	// ProcTimes length must be Jobs.
	ProcTimes []int
}

func NewInstance(jobs, machines int, costs, procTimes []int) (*Instance, error) {
	inst := &Instance{Jobs: jobs, Machines: machines, Costs: costs, ProcTimes: procTimes}
	if err := inst.Validate(); err != nil {
		return nil, err
	}
	return inst, nil
}

func (inst *Instance) Validate() error {
	if inst == nil {
		return fmt.Errorf("%w: instance is nil", ErrMalformedInstance)
	}
	if inst.Jobs <= 0 {
		return fmt.Errorf("%w: jobs must be > 0 (got %d)", ErrMalformedInstance, inst.Jobs)
	}
	if inst.Machines <= 0 {
		return fmt.Errorf("%w: machines must be > 0 (got %d)", ErrMalformedInstance, inst.Machines)
	}
	if len(inst.Costs) != inst.Jobs*inst.Machines {
		return fmt.Errorf("%w: costs length must be jobs*machines=%d (got %d)", ErrMalformedInstance, inst.Jobs*inst.Machines, len(inst.Costs))
	}
	if len(inst.ProcTimes) != inst.Jobs {
		return fmt.Errorf("%w: procTimes length must be jobs=%d (got %d)", ErrMalformedInstance, inst.Jobs, len(inst.ProcTimes))
	}
	for j, p := range inst.ProcTimes {
		if p <= 0 {
			return fmt.Errorf("%w: procTimes[%d] must be > 0 (got %d)", ErrMalformedInstance, j, p)
		}
	}
	return nil
}

func (inst *Instance) Cost(job, machine int) int {
	return inst.Costs[job*inst.Machines+machine]
}

func (inst *Instance) Time(job int) int {
	return inst.ProcTimes[job]
}

// TotalTime is the sum of all processing times, an upper bound for any makespan.
func (inst *Instance) TotalTime() int {
	total := 0
	for _, p := range inst.ProcTimes {
		total += p
	}
	return total
}

func (inst *Instance) MaxTime() int {
	best := 0
	for _, p := range inst.ProcTimes {
		if p > best {
			best = p
		}
	}
	return best
}

// MinCost returns the cheapest cost of job over all machines.
func (inst *Instance) MinCost(job int) int {
	row := inst.Costs[job*inst.Machines : (job+1)*inst.Machines]
	best := row[0]
	for _, c := range row[1:] {
		if c < best {
			best = c
		}
	}
	return best
}

// MinTotalCost is the optimum of the pure assignment problem: without
// capacities every job independently picks its cheapest machine.
func (inst *Instance) MinTotalCost() int {
	total := 0
	for j := 0; j < inst.Jobs; j++ {
		total += inst.MinCost(j)
	}
	return total
}

// MakespanLowerBound holds for every assignment: the longest job and the
// average machine load cannot be beaten.
func (inst *Instance) MakespanLowerBound() int {
	avg := (inst.TotalTime() + inst.Machines - 1) / inst.Machines
	return max(avg, inst.MaxTime())
}

func RandomInstance(jobs, machines, minCost, maxCost, minTime, maxTime int, rng *rand.Rand) *Instance {
	if rng == nil {
		panic("генератор случайных чисел не инициализирован (nil)")
	}
	if minCost < 0 || maxCost < minCost {
		panic("invalid cost bounds")
	}
	if minTime <= 0 || maxTime < minTime {
		panic("invalid time bounds")
	}
	costs := make([]int, jobs*machines)
	for i := range costs {
		costs[i] = minCost + rng.Intn(maxCost-minCost+1)
	}
	pt := make([]int, jobs)
	for j := range pt {
		pt[j] = minTime + rng.Intn(maxTime-minTime+1)
	}
	inst, err := NewInstance(jobs, machines, costs, pt)
	if err != nil {
		panic(err)
	}
	return inst
}

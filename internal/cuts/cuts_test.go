package cuts

import (
	"context"
	"testing"

	"bendersShop/internal/problem"
	"bendersShop/internal/subproblem"
)

func solved(t *testing.T, inst *problem.Instance, a problem.Assignment, horizon int) subproblem.Result {
	t.Helper()
	res, err := subproblem.Solve(context.Background(), inst, a, subproblem.Config{Horizon: horizon}, 0)
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func unitInstance(t *testing.T, machines int, times []int) *problem.Instance {
	t.Helper()
	costs := make([]int, len(times)*machines)
	for i := range costs {
		costs[i] = 1
	}
	inst, err := problem.NewInstance(len(times), machines, costs, times)
	if err != nil {
		t.Fatal(err)
	}
	return inst
}

func TestGenerateMachineStrength(t *testing.T) {
	inst := unitInstance(t, 3, []int{5, 3, 4})
	a := problem.Assignment{0, 1, 1}

	got := Generator{Strength: StrengthMachine}.Generate(2, a, solved(t, inst, a, 0))
	if len(got) != 2 {
		t.Fatalf("got %d cuts, want one per used machine: %v", len(got), got)
	}
	want := []struct {
		machine int
		jobs    int
		bound   int
	}{{0, 1, 5}, {1, 2, 7}}
	for i, w := range want {
		c := got[i]
		if c.Kind != Optimality || c.Bound != w.bound || len(c.Pairs) != w.jobs || c.Iteration != 2 {
			t.Fatalf("cut %d = %+v", i, c)
		}
		for _, p := range c.Pairs {
			if p.Machine != w.machine {
				t.Fatalf("cut %d references machine %d", i, p.Machine)
			}
		}
		if !c.Applies(a) {
			t.Fatalf("cut %d does not apply to its own assignment", i)
		}
		if !c.Violated(a, w.bound-1) || c.Violated(a, w.bound) {
			t.Fatalf("cut %d: wrong Violated boundary", i)
		}
	}

	// Назначение с надмножеством работ станка 1 также подпадает под отсечение.
	super := problem.Assignment{1, 1, 1}
	if !got[1].Applies(super) {
		t.Fatal("machine cut must apply to a superset of its jobs")
	}
	if got[0].Applies(super) {
		t.Fatal("machine 0 cut applies after job 0 moved away")
	}
}

func TestGenerateAssignmentStrength(t *testing.T) {
	inst := unitInstance(t, 2, []int{5, 3, 4})
	a := problem.Assignment{0, 1, 1}

	got := Generator{Strength: StrengthAssignment}.Generate(1, a, solved(t, inst, a, 0))
	if len(got) != 1 {
		t.Fatalf("got %d cuts, want 1", len(got))
	}
	c := got[0]
	if c.Kind != Optimality || c.Bound != 7 || len(c.Pairs) != inst.Jobs {
		t.Fatalf("cut = %+v", c)
	}
	if c.Applies(problem.Assignment{0, 0, 1}) {
		t.Fatal("no-good cut applies to a different assignment")
	}
}

func TestGenerateFeasibility(t *testing.T) {
	inst := unitInstance(t, 2, []int{4, 4, 4})
	a := problem.Assignment{0, 0, 1}

	got := Generator{Strength: StrengthMachine}.Generate(3, a, solved(t, inst, a, 6))
	if len(got) != 1 {
		t.Fatalf("got %d cuts, want a single feasibility cut: %v", len(got), got)
	}
	c := got[0]
	if c.Kind != Feasibility || len(c.Pairs) != 2 {
		t.Fatalf("cut = %+v", c)
	}
	if !c.Violated(a, 1_000_000) {
		t.Fatal("feasibility cut must be violated whatever the makespan")
	}
}

func TestSetDeduplicatesAndKeepsOrder(t *testing.T) {
	s := NewSet()
	a := Cut{Kind: Optimality, Pairs: []Pair{{0, 1}, {2, 1}}, Bound: 7}
	b := Cut{Kind: Optimality, Pairs: []Pair{{2, 1}, {0, 1}}, Bound: 7, Iteration: 4}
	c := Cut{Kind: Feasibility, Pairs: []Pair{{0, 1}, {2, 1}}}
	lb := Cut{Kind: Optimality, Bound: 6}

	if !s.Add(lb) || !s.Add(a) {
		t.Fatal("new cuts rejected")
	}
	if s.Add(b) {
		t.Fatal("permuted duplicate accepted")
	}
	if n := s.AddAll([]Cut{a, c, c}); n != 1 {
		t.Fatalf("AddAll added %d, want 1", n)
	}
	if s.Len() != 3 {
		t.Fatalf("Len = %d, want 3", s.Len())
	}
	all := s.All()
	if all[0].Bound != 6 || all[1].Kind != Optimality || all[2].Kind != Feasibility {
		t.Fatalf("insertion order lost: %v", all)
	}

	// Изменение исходного среза не затрагивает сохранённое отсечение.
	a.Pairs[0] = Pair{Job: 9, Machine: 9}
	if s.All()[1].Pairs[0].Job == 9 {
		t.Fatal("set aliases caller's pairs")
	}

	if got := s.BoundFor([]int{1, 0, 1}); got != 7 {
		t.Fatalf("BoundFor = %d, want 7", got)
	}
	if got := s.BoundFor([]int{0, 0, 0}); got != 6 {
		t.Fatalf("BoundFor = %d, want the unconditional 6", got)
	}
	if !s.Forbids([]int{1, 0, 1}) || s.Forbids([]int{0, 0, 1}) {
		t.Fatal("Forbids mismatch")
	}
}

func TestLowerBound(t *testing.T) {
	inst := unitInstance(t, 2, []int{5, 3, 4})
	c := LowerBound(inst, problem.DefaultObjective())
	if c.Kind != Optimality || len(c.Pairs) != 0 || c.Bound != 6 {
		t.Fatalf("LowerBound = %+v", c)
	}
	if !c.Applies([]int{1, 1, 1}) {
		t.Fatal("unconditional cut must apply everywhere")
	}
}

func TestSingleMachine(t *testing.T) {
	inst := unitInstance(t, 3, []int{5, 3, 4})
	a := problem.Assignment{0, 1, 1}

	for _, c := range (Generator{Strength: StrengthMachine}).Generate(1, a, solved(t, inst, a, 0)) {
		m, ok := c.SingleMachine()
		if !ok || m != c.Pairs[0].Machine {
			t.Fatalf("machine cut %v: SingleMachine = %d/%v", c, m, ok)
		}
	}
	nogood := Generator{Strength: StrengthAssignment}.Generate(1, a, solved(t, inst, a, 0))[0]
	if _, ok := nogood.SingleMachine(); ok {
		t.Fatal("no-good over two machines reported as single-machine")
	}
	if _, ok := LowerBound(inst, problem.DefaultObjective()).SingleMachine(); ok {
		t.Fatal("unconditional cut has no machine")
	}
}

func TestStrengthValidate(t *testing.T) {
	if err := StrengthMachine.Validate(); err != nil {
		t.Fatal(err)
	}
	if err := StrengthAssignment.Validate(); err != nil {
		t.Fatal(err)
	}
	if err := Strength("pairwise").Validate(); err == nil {
		t.Fatal("unknown strength accepted")
	}
}

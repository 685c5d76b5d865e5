package master

import (
	"context"
	"errors"
	"testing"
	"time"

	"bendersShop/internal/cuts"
	"bendersShop/internal/problem"
)

func lexicographic(relax bool) Config {
	return Config{Objective: problem.DefaultObjective(), LoadRelaxation: relax}
}

func TestSolveWithoutCutsPicksCheapestMachines(t *testing.T) {
	inst, err := problem.NewInstance(3, 3, []int{
		4, 2, 9,
		1, 3, 3,
		7, 7, 6,
	}, []int{2, 2, 2})
	if err != nil {
		t.Fatal(err)
	}

	cfg := lexicographic(true)
	cfg.TimeLimit = time.Second
	res, err := Solve(context.Background(), inst, cfg, cuts.NewSet())
	if err != nil {
		t.Fatal(err)
	}
	if !res.HasAssignment() || !res.Proven {
		t.Fatalf("result = %+v", res)
	}
	want := problem.Assignment{1, 0, 2}
	for j := range want {
		if res.Assignment[j] != want[j] {
			t.Fatalf("assignment = %v, want %v", res.Assignment, want)
		}
	}
	if res.Cost != inst.MinTotalCost() || res.Makespan != 2 || res.Objective != 2 {
		t.Fatalf("cost=%d z=%d objective=%d", res.Cost, res.Makespan, res.Objective)
	}
}

func TestSolveLoadRelaxationIsExact(t *testing.T) {
	inst, err := problem.NewInstance(3, 2, []int{1, 1, 1, 1, 1, 1}, []int{5, 3, 4})
	if err != nil {
		t.Fatal(err)
	}

	res, err := Solve(context.Background(), inst, lexicographic(true), cuts.NewSet())
	if err != nil {
		t.Fatal(err)
	}
	// 12 нельзя разделить поровну, лучшее разбиение {5} | {3,4}.
	if res.Makespan != 7 || !res.Proven || res.Bound != 7 {
		t.Fatalf("z=%d proven=%v bound=%d, want 7", res.Makespan, res.Proven, res.Bound)
	}
	if got := res.Assignment.Makespan(inst); got != res.Makespan {
		t.Fatalf("z=%d, assignment makespan %d", res.Makespan, got)
	}
}

func TestSolveRespectsOptimalityCuts(t *testing.T) {
	inst, err := problem.NewInstance(3, 2, []int{1, 1, 1, 1, 1, 1}, []int{5, 3, 4})
	if err != nil {
		t.Fatal(err)
	}
	cfg := lexicographic(false)
	set := cuts.NewSet()
	set.Add(cuts.LowerBound(inst, cfg.Objective))

	res, err := Solve(context.Background(), inst, cfg, set)
	if err != nil {
		t.Fatal(err)
	}
	if res.Makespan != 6 || res.Bound != 6 {
		t.Fatalf("z=%d bound=%d, want 6", res.Makespan, res.Bound)
	}

	// Работы 1 и 2 на одном станке дают 7; мастер должен их разделить.
	set.Add(cuts.Cut{Kind: cuts.Optimality, Pairs: []cuts.Pair{{Job: 1, Machine: 1}, {Job: 2, Machine: 1}}, Bound: 7})
	set.Add(cuts.Cut{Kind: cuts.Optimality, Pairs: []cuts.Pair{{Job: 1, Machine: 0}, {Job: 2, Machine: 0}}, Bound: 7})
	res, err = Solve(context.Background(), inst, cfg, set)
	if err != nil {
		t.Fatal(err)
	}
	if res.Makespan != 6 {
		t.Fatalf("z = %d, want 6", res.Makespan)
	}
	if res.Assignment[1] == res.Assignment[2] {
		t.Fatalf("assignment %v violates a cut", res.Assignment)
	}
	if got := set.BoundFor(res.Assignment); got > res.Makespan {
		t.Fatalf("z=%d below active cut bound %d", res.Makespan, got)
	}

	// Отсечения по двум станкам: все назначения с раздельными работами 1 и 2 стоят 7.
	set.Add(cuts.Cut{Kind: cuts.Optimality, Pairs: []cuts.Pair{{Job: 1, Machine: 0}, {Job: 2, Machine: 1}}, Bound: 7})
	set.Add(cuts.Cut{Kind: cuts.Optimality, Pairs: []cuts.Pair{{Job: 1, Machine: 1}, {Job: 2, Machine: 0}}, Bound: 7})
	res, err = Solve(context.Background(), inst, cfg, set)
	if err != nil {
		t.Fatal(err)
	}
	if res.Makespan != 7 || res.Objective != 7 {
		t.Fatalf("z=%d objective=%d, want 7", res.Makespan, res.Objective)
	}
}

func TestSolveMachineCutBoundsSubsets(t *testing.T) {
	inst, err := problem.NewInstance(3, 2, []int{1, 1, 1, 1, 1, 1}, []int{5, 3, 4})
	if err != nil {
		t.Fatal(err)
	}
	cfg := lexicographic(false)
	set := cuts.NewSet()
	// Работы 0 и 2 закреплены за станком 0.
	set.Add(cuts.Cut{Kind: cuts.Feasibility, Pairs: []cuts.Pair{{Job: 0, Machine: 1}}})
	set.Add(cuts.Cut{Kind: cuts.Feasibility, Pairs: []cuts.Pair{{Job: 2, Machine: 1}}})
	set.Add(cuts.Cut{Kind: cuts.Optimality, Pairs: []cuts.Pair{
		{Job: 0, Machine: 0}, {Job: 1, Machine: 0}, {Job: 2, Machine: 0},
	}, Bound: 12})

	res, err := Solve(context.Background(), inst, cfg, set)
	if err != nil {
		t.Fatal(err)
	}
	// Без работы 1 станок 0 завершается не раньше 12 - 3 = 9.
	if res.Assignment[1] != 1 || res.Makespan != 9 {
		t.Fatalf("assignment=%v z=%d, want job 1 on machine 1 and z=9", res.Assignment, res.Makespan)
	}
}

func TestSolveLexicographicRestrictsMachines(t *testing.T) {
	inst, err := problem.NewInstance(2, 2, []int{1, 5, 1, 5}, []int{4, 4})
	if err != nil {
		t.Fatal(err)
	}
	cfg := lexicographic(true)
	set := cuts.NewSet()
	set.Add(cuts.LowerBound(inst, cfg.Objective))
	// Отсечение по дорогому станку выполнено тождественно и не влияет на модель.
	set.Add(cuts.Cut{Kind: cuts.Feasibility, Pairs: []cuts.Pair{{Job: 0, Machine: 1}}})

	res, err := Solve(context.Background(), inst, cfg, set)
	if err != nil {
		t.Fatal(err)
	}
	if res.Assignment[0] != 0 || res.Assignment[1] != 0 {
		t.Fatalf("assignment = %v, want both on the cheap machine", res.Assignment)
	}
	if res.Cost != 2 || res.Makespan != 8 {
		t.Fatalf("cost=%d z=%d, want 2/8", res.Cost, res.Makespan)
	}
}

func TestSolveWeightedObjective(t *testing.T) {
	inst, err := problem.NewInstance(2, 2, []int{1, 5, 1, 5}, []int{4, 4})
	if err != nil {
		t.Fatal(err)
	}
	cfg := Config{
		Objective:      problem.Objective{Mode: problem.ObjectiveWeighted, CostWeight: 10, MakespanWeight: 1},
		LoadRelaxation: true,
	}
	set := cuts.NewSet()
	set.Add(cuts.LowerBound(inst, cfg.Objective))

	res, err := Solve(context.Background(), inst, cfg, set)
	if err != nil {
		t.Fatal(err)
	}
	// Обе работы на дешёвом станке: 10*2 + 8 = 28 против 10*6 + 4 = 64.
	if res.Cost != 2 || res.Makespan != 8 || res.Objective != 28 {
		t.Fatalf("cost=%d z=%d objective=%d, want 2/8/28", res.Cost, res.Makespan, res.Objective)
	}
	if res.Bound != 28 {
		t.Fatalf("bound = %d, want 28", res.Bound)
	}
}

func TestSolveInfeasible(t *testing.T) {
	inst, err := problem.NewInstance(1, 1, []int{1}, []int{3})
	if err != nil {
		t.Fatal(err)
	}
	set := cuts.NewSet()
	set.Add(cuts.Cut{Kind: cuts.Feasibility, Pairs: []cuts.Pair{{Job: 0, Machine: 0}}})

	_, err = Solve(context.Background(), inst, lexicographic(true), set)
	if !errors.Is(err, ErrInfeasible) {
		t.Fatalf("err = %v, want ErrInfeasible", err)
	}
}

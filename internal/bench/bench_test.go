package bench

import (
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"bendersShop/internal/baseline"
	"bendersShop/internal/benders"
	"bendersShop/internal/opt"
	"bendersShop/internal/problem"
)

func TestCalcStats(t *testing.T) {
	s := CalcStats([]int{4, 2, 6})
	if s.N != 3 || s.Best != 2 || s.Mean != 4 || math.Abs(s.Std-2) > 1e-9 {
		t.Fatalf("stats = %+v", s)
	}
	if one := CalcStats([]float64{1.5}); one.Std != 0 || one.Best != 1.5 {
		t.Fatalf("single value stats = %+v", one)
	}
	if empty := CalcStats([]int(nil)); empty.N != 0 {
		t.Fatalf("empty stats = %+v", empty)
	}
}

func TestParsePairs(t *testing.T) {
	cases, err := ParsePairs(" 20x3, 50x5 ,,", 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(cases) != 2 {
		t.Fatalf("got %d cases", len(cases))
	}
	if cases[0].Jobs != 20 || cases[0].Machines != 3 || cases[0].InstanceSeed != 100+2000+3 {
		t.Fatalf("case 0 = %+v", cases[0])
	}
	if cases[1].InstanceSeed != 100+10_000+5000+5 {
		t.Fatalf("case 1 seed = %d", cases[1].InstanceSeed)
	}

	for _, bad := range []string{"20", "ax3", "3xb", "0x2", "2x3x4"} {
		if _, err := ParsePairs(bad, 0); err == nil {
			t.Fatalf("ParsePairs(%q) accepted", bad)
		}
	}
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.csv")
	records := []Record{
		{Algo: "BASE", Jobs: 5, Machines: 2, Runs: 1, MakespanBest: 10, CostBest: 7, ObjectiveBest: 10},
		{Algo: "LBBD", Jobs: 5, Machines: 2, Runs: 1, MakespanBest: 9, CostBest: 7, ObjectiveBest: 9, Converged: 1},
	}
	if err := WriteCSV(path, records); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2", len(rows))
	}
	if rows[0][0] != "algo" || rows[2][0] != "LBBD" || rows[2][7] != "9" {
		t.Fatalf("unexpected rows: %v", rows)
	}
	if len(rows[0]) != len(rows[1]) {
		t.Fatal("header and row width differ")
	}
}

func TestStoreRoundTrip(t *testing.T) {
	store, err := OpenStore(filepath.Join(t.TempDir(), "db", "bench.sqlite"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	ctx := context.Background()
	in := []Record{
		{Algo: "BASE", Jobs: 20, Machines: 3, Runs: 2, TimeMeanMs: 1.5, MakespanBest: 300, MakespanMean: 310.5, CostBest: 1700},
		{Algo: "LBBD", Jobs: 20, Machines: 3, Runs: 2, TimeMeanMs: 12.25, MakespanBest: 290, MakespanMean: 290, CostBest: 1700, IterationsMean: 4.5, Converged: 2},
	}
	session, err := store.SaveRecords(ctx, in)
	if err != nil {
		t.Fatal(err)
	}
	other, err := store.SaveRecords(ctx, in[:1])
	if err != nil {
		t.Fatal(err)
	}
	if session == other {
		t.Fatal("sessions must have distinct ids")
	}

	out, err := store.Records(ctx, session)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != len(in) {
		t.Fatalf("got %d records, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("record %d = %+v, want %+v", i, out[i], in[i])
		}
	}
}

func TestRunCase(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	algos := []Algorithm{
		{Name: "BASE", Factory: func(int64) opt.Optimizer {
			s, _ := baseline.New(baseline.DefaultConfig(), logger)
			return s
		}},
		{Name: "LBBD", Factory: func(seed int64) opt.Optimizer {
			cfg := benders.DefaultConfig()
			cfg.Seed = seed
			cfg.MaxIterations = 50
			s, _ := benders.New(cfg, logger)
			return s
		}},
	}
	r := Runner{
		Runs:          2,
		BaseSeed:      1,
		PerRunTimeout: time.Minute,
		Generator:     Generator{CostMin: 1, CostMax: 2, TimeMin: 1, TimeMax: 10},
	}
	c := Case{Jobs: 6, Machines: 2, InstanceSeed: 5}

	var recs []Record
	for _, a := range algos {
		rec, err := r.RunCase(context.Background(), c, a)
		if err != nil {
			t.Fatalf("%s: %v", a.Name, err)
		}
		if rec.Runs != 2 || rec.Jobs != 6 || rec.MakespanBest <= 0 {
			t.Fatalf("%s: record = %+v", a.Name, rec)
		}
		recs = append(recs, rec)
	}
	inst := r.Generator.Instance(c)
	for _, rec := range recs {
		if rec.CostBest != inst.MinTotalCost() {
			t.Fatalf("%s: cost %d, want %d", rec.Algo, rec.CostBest, inst.MinTotalCost())
		}
	}
	if recs[1].MakespanBest > recs[0].MakespanBest {
		t.Fatalf("LBBD makespan %d worse than BASE %d", recs[1].MakespanBest, recs[0].MakespanBest)
	}
}

// sequential ставит все работы на станок 0 подряд и сообщает заданное состояние.
type sequential struct {
	state string
}

func (o sequential) Solve(_ context.Context, inst *problem.Instance) (opt.Result, error) {
	a := make(problem.Assignment, inst.Jobs)
	sched := make(problem.Schedule, inst.Jobs)
	t := 0
	for j := range sched {
		sched[j] = t
		t += inst.ProcTimes[j]
	}
	res := opt.Result{
		Assignment: a,
		Schedule:   sched,
		Cost:       a.Cost(inst),
		Makespan:   t,
		Objective:  t,
		// Граница ниже решения: сходимость по допуску.
		Bound: t - 1,
		Meta:  map[string]any{},
	}
	if o.state != "" {
		res.Meta["state"] = o.state
	}
	return res, nil
}

func TestRunCaseCountsConvergedState(t *testing.T) {
	r := Runner{Runs: 3, BaseSeed: 1, Generator: Generator{CostMin: 0, CostMax: 2, TimeMin: 1, TimeMax: 5}}
	c := Case{Jobs: 4, Machines: 2, InstanceSeed: 2}

	for _, tc := range []struct {
		state string
		want  int
	}{
		{benders.StateConverged.String(), 3},
		{benders.StateIterationLimitExceeded.String(), 0},
		{"", 0},
	} {
		rec, err := r.RunCase(context.Background(), c, Algorithm{
			Name:    "SEQ",
			Factory: func(int64) opt.Optimizer { return sequential{state: tc.state} },
		})
		if err != nil {
			t.Fatal(err)
		}
		if rec.Converged != tc.want {
			t.Fatalf("state %q: converged = %d, want %d", tc.state, rec.Converged, tc.want)
		}
	}
}

func TestRunCaseNilFactory(t *testing.T) {
	r := Runner{Runs: 1}
	_, err := r.RunCase(context.Background(), Case{Jobs: 2, Machines: 1, InstanceSeed: 1}, Algorithm{
		Name:    "NONE",
		Factory: func(int64) opt.Optimizer { return nil },
	})
	if err == nil {
		t.Fatal("nil optimizer accepted")
	}
}

func TestDefaultFileConfigMatchesPackages(t *testing.T) {
	cfg := DefaultFileConfig()
	bc := cfg.BendersSettings(1)
	if err := bc.Validate(); err != nil {
		t.Fatal(err)
	}
	if !bc.Heuristic || !bc.LoadRelaxation || bc.MaxIterations != benders.DefaultConfig().MaxIterations {
		t.Fatalf("benders defaults = %+v", bc)
	}
	if cfg.GeneratorSettings() != DefaultGenerator() {
		t.Fatalf("generator defaults = %+v", cfg.GeneratorSettings())
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bench.yaml")
	data := `
pairs: "10x2"
runs: 3
db: results.sqlite
generator:
  cost_min: 0
  cost_max: 3
benders:
  time_limit: 90s
  objective: weighted
  cost_weight: 4
  cut_strength: assignment
  heuristic: false
  load_relaxation: false
  tolerance: 0
  annealing:
    neighborhood: swap
baseline:
  scheduling_time_limit: 5s
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfigFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Pairs != "10x2" || cfg.Runs != 3 || cfg.DB != "results.sqlite" {
		t.Fatalf("top-level fields = %+v", cfg)
	}
	// Незаданные поля получают значения по умолчанию.
	if cfg.Algos != "BASE,LBBD" || cfg.Generator.TimeMax != DefaultGenerator().TimeMax {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	// Явный ноль сохраняется, а не заменяется значением по умолчанию.
	if g := cfg.GeneratorSettings(); g.CostMin != 0 || g.CostMax != 3 {
		t.Fatalf("generator = %+v, want cost range 0..3", g)
	}

	bc := cfg.BendersSettings(42)
	if err := bc.Validate(); err != nil {
		t.Fatal(err)
	}
	if bc.TimeLimit != 90*time.Second || bc.Heuristic || bc.LoadRelaxation || bc.Seed != 42 {
		t.Fatalf("benders settings = %+v", bc)
	}
	if bc.Objective.Mode != problem.ObjectiveWeighted || bc.Objective.CostWeight != 4 || bc.Objective.MakespanWeight != 1 {
		t.Fatalf("objective = %+v", bc.Objective)
	}
	if bc.CutStrength != "assignment" || bc.Annealing.Neighborhood != "swap" {
		t.Fatalf("strength=%s neighborhood=%s", bc.CutStrength, bc.Annealing.Neighborhood)
	}
	if bc.MasterTimeLimit != benders.DefaultConfig().MasterTimeLimit {
		t.Fatalf("master limit = %s", bc.MasterTimeLimit)
	}

	bl := cfg.BaselineSettings()
	if err := bl.Validate(); err != nil {
		t.Fatal(err)
	}
	if bl.SchedulingTimeLimit != 5*time.Second || bl.AssignmentTimeLimit != baseline.DefaultConfig().AssignmentTimeLimit {
		t.Fatalf("baseline settings = %+v", bl)
	}

	if _, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("missing file accepted")
	}
}

package bench

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"bendersShop/internal/benders"
	"bendersShop/internal/opt"
	"bendersShop/internal/problem"
)

type Algorithm struct {
	Name    string
	Factory func(seed int64) opt.Optimizer
}

type Case struct {
	Jobs         int
	Machines     int
	InstanceSeed int64
}

// Generator - диапазоны случайных стоимостей и длительностей экземпляра.
type Generator struct {
	CostMin, CostMax int
	TimeMin, TimeMax int
}

func DefaultGenerator() Generator {
	return Generator{CostMin: 80, CostMax: 100, TimeMin: 20, TimeMax: 500}
}

func (g Generator) Instance(c Case) *problem.Instance {
	return problem.RandomInstance(c.Jobs, c.Machines, g.CostMin, g.CostMax, g.TimeMin, g.TimeMax, randForSeed(c.InstanceSeed))
}

type Record struct {
	Algo     string
	Jobs     int
	Machines int
	Runs     int

	TimeBestMs float64
	TimeMeanMs float64
	TimeStdMs  float64

	MakespanBest int
	MakespanMean float64
	MakespanStd  float64

	CostBest int
	CostMean float64

	ObjectiveBest  int
	IterationsMean float64
	// Converged: число запусков, завершившихся в состоянии CONVERGED
	// (в том числе с зазором в пределах Tolerance).
	Converged int
}

type Runner struct {
	Runs          int
	BaseSeed      int64
	PerRunTimeout time.Duration // 0 = no timeout
	Generator     Generator
}

func (r Runner) RunCase(ctx context.Context, c Case, algo Algorithm) (Record, error) {
	gen := r.Generator
	if gen == (Generator{}) {
		gen = DefaultGenerator()
	}
	inst := gen.Instance(c)

	makespans := make([]int, 0, r.Runs)
	costs := make([]int, 0, r.Runs)
	objectives := make([]int, 0, r.Runs)
	iterations := make([]int, 0, r.Runs)
	timesMs := make([]float64, 0, r.Runs)
	converged := 0

	for i := 0; i < r.Runs; i++ {
		runSeed := r.BaseSeed + int64(i)

		op := algo.Factory(runSeed)
		if op == nil {
			return Record{}, fmt.Errorf("run %d: factory returned nil optimizer", i)
		}

		runCtx := ctx
		cancel := func() {}
		if r.PerRunTimeout > 0 {
			runCtx, cancel = context.WithTimeout(ctx, r.PerRunTimeout)
		}
		start := time.Now()
		res, err := op.Solve(runCtx, inst)
		dur := time.Since(start)
		cancel()

		if err != nil && runCtx.Err() != nil {
			return Record{}, fmt.Errorf("run %d: cancelled/timeout: %w", i, err)
		}
		if err != nil {
			return Record{}, fmt.Errorf("run %d: solve error: %w", i, err)
		}
		if err := problem.ValidateSchedule(res.Schedule, res.Assignment, inst); err != nil {
			return Record{}, fmt.Errorf("run %d: invalid solution: %w", i, err)
		}

		makespans = append(makespans, res.Makespan)
		costs = append(costs, res.Cost)
		objectives = append(objectives, res.Objective)
		iterations = append(iterations, res.Iterations)
		timesMs = append(timesMs, float64(dur.Microseconds())/1000.0)
		if state, _ := res.Meta["state"].(string); state == benders.StateConverged.String() {
			converged++
		}
	}

	msStats := CalcStats(makespans)
	costStats := CalcStats(costs)
	objStats := CalcStats(objectives)
	tStats := CalcStats(timesMs)

	return Record{
		Algo:     algo.Name,
		Jobs:     c.Jobs,
		Machines: c.Machines,
		Runs:     r.Runs,

		TimeBestMs: tStats.Best,
		TimeMeanMs: tStats.Mean,
		TimeStdMs:  tStats.Std,

		MakespanBest: int(msStats.Best),
		MakespanMean: msStats.Mean,
		MakespanStd:  msStats.Std,

		CostBest: int(costStats.Best),
		CostMean: costStats.Mean,

		ObjectiveBest:  int(objStats.Best),
		IterationsMean: CalcStats(iterations).Mean,
		Converged:      converged,
	}, nil
}

func WriteCSV(path string, records []Record) error {
	if d := dirOf(path); d != "" {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"algo", "jobs", "machines", "runs",
		"time_best_ms", "time_mean_ms", "time_std_ms",
		"makespan_best", "makespan_mean", "makespan_std",
		"cost_best", "cost_mean",
		"objective_best", "iterations_mean", "converged",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, r := range records {
		row := []string{
			r.Algo,
			itoa(r.Jobs),
			itoa(r.Machines),
			itoa(r.Runs),

			ftoa(r.TimeBestMs),
			ftoa(r.TimeMeanMs),
			ftoa(r.TimeStdMs),

			itoa(r.MakespanBest),
			ftoa(r.MakespanMean),
			ftoa(r.MakespanStd),

			itoa(r.CostBest),
			ftoa(r.CostMean),

			itoa(r.ObjectiveBest),
			ftoa(r.IterationsMean),
			itoa(r.Converged),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

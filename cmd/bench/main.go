package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"bendersShop/internal/baseline"
	"bendersShop/internal/bench"
	"bendersShop/internal/benders"
	"bendersShop/internal/opt"
)

// Фабрики

func newBaselineFactory(cfg *bench.FileConfig, logger *slog.Logger) func(seed int64) opt.Optimizer {
	return func(seed int64) opt.Optimizer {
		solver, err := baseline.New(cfg.BaselineSettings(), logger.With("algo", "BASE", "seed", seed))
		if err != nil {
			return nil
		}
		return solver
	}
}

func newBendersFactory(cfg *bench.FileConfig, logger *slog.Logger) func(seed int64) opt.Optimizer {
	return func(seed int64) opt.Optimizer {
		l := logger.With("algo", "LBBD", "seed", seed)
		solver, err := benders.New(cfg.BendersSettings(seed), l)
		if err != nil {
			return nil
		}
		solver.Observer = func(st benders.IterationStats) {
			l.Debug("итерация",
				"iter", st.Iteration,
				"master", st.MasterStatus,
				"bound", st.Bound,
				"incumbent", st.Incumbent,
				"cuts", st.CutsTotal,
				"gap", st.Gap,
			)
		}
		return solver
	}
}

func main() {
	cfg := bench.DefaultFileConfig()
	if path := configPath(os.Args[1:]); path != "" {
		loaded, err := bench.LoadConfigFile(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Ошибка чтения конфигурации:", err)
			os.Exit(2)
		}
		cfg = loaded
	}

	// Значения из файла служат умолчаниями флагов; явно заданный флаг важнее.
	var (
		_       = flag.String("config", "", "путь к YAML-файлу конфигурации")
		verbose = flag.Bool("v", false, "подробный лог итераций")
	)
	flag.StringVar(&cfg.Out, "out", cfg.Out, "путь к выходному CSV-файлу")
	flag.StringVar(&cfg.DB, "db", cfg.DB, "путь к SQLite-базе результатов; пусто — не сохранять")
	flag.StringVar(&cfg.Pairs, "pairs", cfg.Pairs, "конфигурации: количество работ Х количество станков (через запятую)")
	flag.StringVar(&cfg.Algos, "algos", cfg.Algos, "список алгоритмов: BASE, LBBD (через запятую)")
	flag.IntVar(&cfg.Runs, "runs", cfg.Runs, "количество запусков каждого алгоритма (с разными сидами)")
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "базовый сид для запусков алгоритмов")
	flag.Int64Var(&cfg.InstanceSeed, "instance_seed", cfg.InstanceSeed, "базовый сид для генерации экземпляров задачи (фиксирован для конфигурации)")
	flag.DurationVar(&cfg.PerRunTimeout, "per_run_timeout", cfg.PerRunTimeout, "таймаут одного запуска; 0 — без ограничения")

	// --- Генератор экземпляров ---
	flag.IntVar(&cfg.Generator.CostMin, "cost_min", cfg.Generator.CostMin, "минимальная стоимость назначения")
	flag.IntVar(&cfg.Generator.CostMax, "cost_max", cfg.Generator.CostMax, "максимальная стоимость назначения")
	flag.IntVar(&cfg.Generator.TimeMin, "time_min", cfg.Generator.TimeMin, "минимальная длительность работы")
	flag.IntVar(&cfg.Generator.TimeMax, "time_max", cfg.Generator.TimeMax, "максимальная длительность работы")

	// --- Декомпозиция Бендерса ---
	b := &cfg.Benders
	flag.DurationVar(&b.TimeLimit, "time_limit", b.TimeLimit, "общий лимит времени декомпозиции")
	flag.DurationVar(&b.MasterTimeLimit, "master_time_limit", b.MasterTimeLimit, "лимит времени одного решения мастер-задачи")
	flag.DurationVar(&b.SubproblemTimeLimit, "sub_time_limit", b.SubproblemTimeLimit, "лимит времени подзадачи одного станка")
	flag.IntVar(&b.MaxIterations, "max_iter", b.MaxIterations, "максимальное количество итераций")
	flag.Float64Var(&b.Tolerance, "tolerance", b.Tolerance, "допустимый относительный разрыв между границей и решением")
	flag.IntVar(&b.Workers, "workers", b.Workers, "количество параллельных подзадач; 0 — по числу CPU")
	flag.IntVar(&b.Horizon, "horizon", b.Horizon, "горизонт расписания станка; 0 — без ограничения")
	flag.StringVar(&b.Objective, "mode", b.Objective, "целевая функция: lexicographic | weighted")
	flag.IntVar(&b.CostWeight, "cost_weight", b.CostWeight, "вес стоимости (режим weighted)")
	flag.IntVar(&b.MakespanWeight, "makespan_weight", b.MakespanWeight, "вес makespan (режим weighted)")
	flag.StringVar(&b.CutStrength, "cuts", b.CutStrength, "сила отсечений: machine | assignment")
	flag.BoolVar(&b.LoadRelaxation, "load_relax", b.LoadRelaxation, "оценка makespan загрузкой станков в мастер-задаче")
	flag.BoolVar(&b.Heuristic, "heuristic", b.Heuristic, "начальное решение жадной эвристикой и отжигом")

	// --- Алгоритм имитации отжига ---
	flag.IntVar(&b.Annealing.IterationsPerJob, "sa_iter_per_job", b.Annealing.IterationsPerJob, "количество итераций на одну работу")
	flag.Float64Var(&b.Annealing.InitialTemp, "sa_t0", b.Annealing.InitialTemp, "начальная температура")
	flag.Float64Var(&b.Annealing.FinalTemp, "sa_tmin", b.Annealing.FinalTemp, "конечная температура")
	flag.Float64Var(&b.Annealing.Alpha, "sa_alpha", b.Annealing.Alpha, "коэффициент охлаждения (alpha)")
	flag.StringVar(&b.Annealing.Neighborhood, "sa_neigh", b.Annealing.Neighborhood, "тип окрестности: move | swap")

	// --- Базовое решение ---
	flag.DurationVar(&cfg.Baseline.AssignmentTimeLimit, "base_assign_limit", cfg.Baseline.AssignmentTimeLimit, "лимит времени модели назначения")
	flag.DurationVar(&cfg.Baseline.SchedulingTimeLimit, "base_sched_limit", cfg.Baseline.SchedulingTimeLimit, "лимит времени модели расписания")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx := context.Background()

	cases, err := bench.ParsePairs(cfg.Pairs, cfg.InstanceSeed)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Конфликт:", err)
		os.Exit(2)
	}

	if err := cfg.BendersSettings(cfg.Seed).Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "Конфликт в конфигурации декомпозиции:", err)
		os.Exit(2)
	}
	if err := cfg.BaselineSettings().Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "Конфликт в конфигурации базового решения:", err)
		os.Exit(2)
	}

	available := map[string]bench.Algorithm{
		"BASE": {Name: "BASE", Factory: newBaselineFactory(cfg, logger)},
		"LBBD": {Name: "LBBD", Factory: newBendersFactory(cfg, logger)},
	}

	var selected []bench.Algorithm
	for _, a := range bench.SplitCSV(cfg.Algos) {
		al, ok := available[strings.ToUpper(a)]
		if !ok {
			fmt.Fprintf(os.Stderr, "Алгоритм не предоставлен в программе %q; доступные: %v\n", a, keys(available))
			os.Exit(2)
		}
		selected = append(selected, al)
	}

	runner := bench.Runner{
		Runs:          cfg.Runs,
		BaseSeed:      cfg.Seed,
		PerRunTimeout: cfg.PerRunTimeout,
		Generator:     cfg.GeneratorSettings(),
	}

	var records []bench.Record
	for _, c := range cases {
		for _, a := range selected {
			fmt.Printf("Запущен алгоритм %s; %d работ %d машин (общее кол-во запусков=%d)...\n", a.Name, c.Jobs, c.Machines, runner.Runs)

			rec, err := runner.RunCase(ctx, c, a)
			if err != nil {
				fmt.Fprintln(os.Stderr, "Ошибка:", err)
				os.Exit(1)
			}
			records = append(records, rec)

			fmt.Printf("  Makespan: лучшее=%d среднее=%.2f стандартное отклонение=%.2f | Стоимость: лучшая=%d | Итераций в среднем=%.1f, сошлось %d/%d | Время: среднее=%.2fms среднее отклонение=%.2fms\n",
				rec.MakespanBest, rec.MakespanMean, rec.MakespanStd,
				rec.CostBest,
				rec.IterationsMean, rec.Converged, rec.Runs,
				rec.TimeMeanMs, rec.TimeStdMs,
			)
		}
	}

	if err := bench.WriteCSV(cfg.Out, records); err != nil {
		fmt.Fprintln(os.Stderr, "Ошибка при записи в CSV:", err)
		os.Exit(1)
	}
	fmt.Println("Saved:", cfg.Out)

	if cfg.DB != "" {
		store, err := bench.OpenStore(cfg.DB)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Ошибка открытия базы:", err)
			os.Exit(1)
		}
		defer store.Close()
		session, err := store.SaveRecords(ctx, records)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Ошибка при записи в базу:", err)
			os.Exit(1)
		}
		fmt.Println("Saved:", cfg.DB, "session", session)
	}
}

// helpers

// configPath ищет -config до разбора остальных флагов: файл задаёт их умолчания.
func configPath(args []string) string {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			break
		}
		name := strings.TrimLeft(a, "-")
		if name == a {
			continue
		}
		if v, ok := strings.CutPrefix(name, "config="); ok {
			return v
		}
		if name == "config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func keys(m map[string]bench.Algorithm) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

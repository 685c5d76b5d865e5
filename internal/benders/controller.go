// Package benders реализует логическое разложение Бендерса: мастер-задача
// назначения решается повторно с отсечениями, полученными из подзадач
// расписания, пока граница мастера и лучшее найденное решение не сойдутся.
package benders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"bendersShop/internal/cuts"
	"bendersShop/internal/master"
	"bendersShop/internal/opt"
	"bendersShop/internal/problem"
	"bendersShop/internal/sa"
	"bendersShop/internal/subproblem"
)

var (
	// ErrInfeasibleMaster: мастер несовместен. В базовой постановке это
	// означает некорректное отсечение; при заданном Horizon - что экземпляр
	// не имеет допустимого расписания.
	ErrInfeasibleMaster = errors.New("benders: infeasible master")
	// ErrInfeasibleSubproblem: подзадача станка недопустима в базовой постановке.
	ErrInfeasibleSubproblem = errors.New("benders: infeasible subproblem")
	// ErrStalled: итерация не дала новых отсечений, а сходимости нет.
	ErrStalled = errors.New("benders: no new cuts")
	// ErrNoSolution: лимиты исчерпаны до первого полного решения.
	ErrNoSolution = errors.New("benders: no complete solution within limits")
)

// Вызовы решателей; тесты подменяют их, чтобы воспроизвести таймауты.
var (
	solveMaster   = master.Solve
	solveSchedule = subproblem.Solve
)

type Solver struct {
	Cfg    Config
	Logger *slog.Logger
	// Observer, если задан, получает статистику каждой итерации.
	Observer func(IterationStats)
}

func New(cfg Config, logger *slog.Logger) (*Solver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Solver{Cfg: cfg, Logger: logger}, nil
}

type IterationStats struct {
	Iteration    int
	MasterStatus string
	// MasterObjective: цель мастера на его назначении (оценка по отсечениям).
	MasterObjective int
	Bound           int
	// Candidate: цель полного решения этой итерации (0, если его нет).
	Candidate      int
	Incumbent      int
	Improved       bool
	CutsAdded      int
	CutsTotal      int
	Gap            float64
	MasterTime     time.Duration
	SubproblemTime time.Duration
}

type incumbent struct {
	assignment problem.Assignment
	schedule   problem.Schedule
	cost       int
	makespan   int
	value      int
	iteration  int
}

// run: состояние одного запуска; между запусками ничего не разделяется.
type run struct {
	id     string
	inst   *problem.Instance
	cfg    Config
	logger *slog.Logger
	start  time.Time

	state     State
	cuts      *cuts.Set
	gen       cuts.Generator
	best      *incumbent
	bound     int
	hasBound  bool
	iteration int

	master  master.Result
	sub     subproblem.Result
	added   int
	history []IterationStats
	stats   IterationStats
}

func (r *run) transition(to State) error {
	if !isAllowedTransition(r.state, to) {
		return fmt.Errorf("недопустимый переход %s -> %s", r.state, to)
	}
	r.logger.Debug("переход состояния", "run", r.id, "from", r.state.String(), "to", to.String())
	r.state = to
	return nil
}

// Run выполняет разложение и всегда возвращает отчёт. Ошибка возвращается
// для состояния FAILED и для запусков, не нашедших ни одного полного решения.
func (s *Solver) Run(ctx context.Context, inst *problem.Instance) (*Report, error) {
	r := &run{
		id:     uuid.NewString(),
		inst:   inst,
		cfg:    s.Cfg,
		logger: s.Logger,
		start:  time.Now(),
		state:  StateInit,
		cuts:   cuts.NewSet(),
		gen:    cuts.Generator{Strength: s.Cfg.CutStrength},
	}

	if err := inst.Validate(); err != nil {
		r.state = StateFailed
		return r.report(err), err
	}
	if err := s.Cfg.Validate(); err != nil {
		r.state = StateFailed
		return r.report(err), err
	}

	if s.Cfg.TimeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Cfg.TimeLimit)
		defer cancel()
	}

	err := r.init(ctx)
	if err == nil {
		err = r.transition(StateSolvingMaster)
	}
	for err == nil && !r.state.Terminal() {
		switch r.state {
		case StateSolvingMaster:
			err = r.solveMaster(ctx)
		case StateSolvingSubproblem:
			err = r.solveSubproblem(ctx)
		case StateGeneratingCuts:
			err = r.generateCuts()
		case StateCheckConvergence:
			err = r.checkConvergence(ctx, s.Observer)
		default:
			err = fmt.Errorf("неожиданное состояние %s", r.state)
		}
	}
	if err != nil {
		r.state = StateFailed
	} else if r.best == nil {
		err = fmt.Errorf("%w (%s)", ErrNoSolution, r.state)
	}

	rep := r.report(err)
	s.Logger.Info("разложение Бендерса завершено",
		"run", rep.RunID,
		"state", rep.State.String(),
		"iterations", rep.Iterations,
		"objective", rep.Objective,
		"bound", rep.Bound,
		"makespan", rep.Makespan,
		"cuts", rep.Cuts,
		"elapsed", rep.Elapsed,
	)
	return rep, err
}

// init: глобальная нижняя граница и стартовое решение. Стартовое
// назначение оценивается без учёта дедлайна ctx, чтобы у запуска всегда
// было полное решение для отчёта.
func (r *run) init(ctx context.Context) error {
	r.cuts.Add(cuts.LowerBound(r.inst, r.cfg.Objective))

	a := Greedy(r.inst, r.cfg.Objective)
	if r.cfg.Heuristic {
		improver, err := sa.New(r.cfg.Annealing, rand.New(rand.NewSource(r.cfg.Seed)))
		if err != nil {
			return err
		}
		res, err := improver.Improve(ctx, r.inst, r.cfg.Objective, a)
		if err != nil && ctx.Err() == nil {
			return err
		}
		if res.Assignment != nil {
			a = res.Assignment
		}
	}

	sub, err := solveSchedule(context.WithoutCancel(ctx), r.inst, a, r.subConfig(), r.cfg.SubproblemTimeLimit)
	if err != nil {
		return fmt.Errorf("оценка стартового решения: %w", err)
	}
	if !sub.Feasible && r.cfg.Horizon == 0 {
		return ErrInfeasibleSubproblem
	}
	r.cuts.AddAll(r.gen.Generate(0, a, sub))
	if _, err := r.offer(a, sub); err != nil {
		return err
	}
	return nil
}

func (r *run) subConfig() subproblem.Config {
	return subproblem.Config{Workers: r.cfg.Workers, Horizon: r.cfg.Horizon}
}

func (r *run) masterConfig() master.Config {
	return master.Config{
		Objective:      r.cfg.Objective,
		TimeLimit:      r.cfg.MasterTimeLimit,
		LoadRelaxation: r.cfg.LoadRelaxation,
	}
}

func (r *run) solveMaster(ctx context.Context) error {
	if ctx.Err() != nil {
		return r.transition(StateTimeLimitExceeded)
	}

	res, err := solveMaster(ctx, r.inst, r.masterConfig(), r.cuts)
	if errors.Is(err, master.ErrInfeasible) {
		return fmt.Errorf("%w: %w", ErrInfeasibleMaster, err)
	}
	if err != nil {
		return err
	}

	r.iteration++
	r.master = res
	r.stats = IterationStats{
		Iteration:       r.iteration,
		MasterStatus:    res.Status.String(),
		MasterObjective: res.Objective,
		MasterTime:      res.WallTime,
	}
	// Граница не убывает: множество отсечений только растёт.
	if res.Proven && (!r.hasBound || res.Bound > r.bound) {
		r.bound = res.Bound
		r.hasBound = true
	}

	if !res.Proven {
		// Таймаут мастера: лучшее назначение к этому моменту ещё оценивается.
		if res.HasAssignment() {
			sub, err := solveSchedule(context.WithoutCancel(ctx), r.inst, res.Assignment, r.subConfig(), r.cfg.SubproblemTimeLimit)
			if err != nil {
				return err
			}
			if sub.Feasible {
				if _, err := r.offer(res.Assignment, sub); err != nil {
					return err
				}
			}
		}
		r.record()
		return r.transition(StateTimeLimitExceeded)
	}
	return r.transition(StateSolvingSubproblem)
}

func (r *run) solveSubproblem(ctx context.Context) error {
	sub, err := solveSchedule(ctx, r.inst, r.master.Assignment, r.subConfig(), r.cfg.SubproblemTimeLimit)
	if err != nil {
		return err
	}
	r.sub = sub
	r.stats.SubproblemTime = sub.Elapsed

	switch {
	case !sub.Feasible && r.cfg.Horizon == 0:
		return ErrInfeasibleSubproblem
	case !sub.Feasible:
		// Недопустимое назначение: только отсечения допустимости.
	case !sub.Complete:
		r.record()
		return r.transition(StateTimeLimitExceeded)
	default:
		r.stats.Candidate = r.cfg.Objective.Value(r.master.Assignment.Cost(r.inst), sub.Makespan)
		improved, err := r.offer(r.master.Assignment, sub)
		if err != nil {
			return err
		}
		r.stats.Improved = improved
	}
	return r.transition(StateGeneratingCuts)
}

func (r *run) generateCuts() error {
	r.added = r.cuts.AddAll(r.gen.Generate(r.iteration, r.master.Assignment, r.sub))
	r.stats.CutsAdded = r.added
	return r.transition(StateCheckConvergence)
}

func (r *run) checkConvergence(ctx context.Context, observer func(IterationStats)) error {
	r.record()
	if observer != nil {
		observer(r.stats)
	}
	r.logger.Debug("итерация",
		"run", r.id,
		"iteration", r.iteration,
		"bound", r.bound,
		"incumbent", r.stats.Incumbent,
		"gap", r.stats.Gap,
		"cuts", r.cuts.Len(),
	)

	switch {
	case r.converged():
		return r.transition(StateConverged)
	case r.added == 0:
		return fmt.Errorf("%w: итерация %d, зазор %.6f", ErrStalled, r.iteration, r.gap())
	case ctx.Err() != nil:
		return r.transition(StateTimeLimitExceeded)
	case r.iteration >= r.cfg.MaxIterations:
		return r.transition(StateIterationLimitExceeded)
	default:
		return r.transition(StateSolvingMaster)
	}
}

// offer заменяет лучшее решение только при строгом улучшении.
func (r *run) offer(a problem.Assignment, sub subproblem.Result) (bool, error) {
	if !sub.Feasible || !sub.Complete {
		return false, nil
	}
	if err := problem.ValidateSchedule(sub.Schedule, a, r.inst); err != nil {
		return false, fmt.Errorf("некорректное расписание подзадач: %w", err)
	}
	cost := a.Cost(r.inst)
	value := r.cfg.Objective.Value(cost, sub.Makespan)
	if r.best != nil && value >= r.best.value {
		return false, nil
	}
	r.best = &incumbent{
		assignment: a.Clone(),
		schedule:   append(problem.Schedule(nil), sub.Schedule...),
		cost:       cost,
		makespan:   sub.Makespan,
		value:      value,
		iteration:  r.iteration,
	}
	return true, nil
}

func (r *run) record() {
	r.stats.Bound = r.bound
	if r.best != nil {
		r.stats.Incumbent = r.best.value
	}
	r.stats.CutsTotal = r.cuts.Len()
	r.stats.Gap = r.gap()
	r.history = append(r.history, r.stats)
}

func (r *run) converged() bool {
	if r.best == nil || !r.hasBound {
		return false
	}
	return r.bound >= r.best.value || r.gap() <= r.cfg.Tolerance
}

func (r *run) gap() float64 {
	if r.best == nil || !r.hasBound {
		return math.Inf(1)
	}
	diff := r.best.value - r.bound
	if diff <= 0 {
		return 0
	}
	if r.best.value <= 0 {
		return math.Inf(1)
	}
	return float64(diff) / float64(r.best.value)
}

// Solve адаптирует Run к интерфейсу opt.Optimizer.
func (s *Solver) Solve(ctx context.Context, inst *problem.Instance) (opt.Result, error) {
	rep, err := s.Run(ctx, inst)
	res := opt.Result{
		Assignment: rep.Assignment,
		Schedule:   rep.Schedule,
		Cost:       rep.Cost,
		Makespan:   rep.Makespan,
		Objective:  rep.Objective,
		Bound:      rep.Bound,
		Iterations: rep.Iterations,
		Duration:   rep.Elapsed,
		Meta: map[string]any{
			"run_id": rep.RunID,
			"state":  rep.State.String(),
			"cuts":   rep.Cuts,
			"gap":    rep.Gap,
		},
	}
	return res, err
}

package bench

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"bendersShop/internal/baseline"
	"bendersShop/internal/benders"
	"bendersShop/internal/cuts"
	"bendersShop/internal/problem"
	"bendersShop/internal/sa"
)

// FileConfig - конфигурация бенчмарка из YAML-файла. Флаги командной
// строки, заданные явно, имеют приоритет.
type FileConfig struct {
	Out           string        `yaml:"out"`
	DB            string        `yaml:"db"`
	Pairs         string        `yaml:"pairs"`
	Algos         string        `yaml:"algos"`
	Runs          int           `yaml:"runs"`
	Seed          int64         `yaml:"seed"`
	InstanceSeed  int64         `yaml:"instance_seed"`
	PerRunTimeout time.Duration `yaml:"per_run_timeout"`

	Generator GeneratorConfig `yaml:"generator"`
	Benders   BendersConfig   `yaml:"benders"`
	Baseline  BaselineConfig  `yaml:"baseline"`
}

type GeneratorConfig struct {
	CostMin int `yaml:"cost_min"`
	CostMax int `yaml:"cost_max"`
	TimeMin int `yaml:"time_min"`
	TimeMax int `yaml:"time_max"`
}

type BendersConfig struct {
	TimeLimit           time.Duration   `yaml:"time_limit"`
	MasterTimeLimit     time.Duration   `yaml:"master_time_limit"`
	SubproblemTimeLimit time.Duration   `yaml:"subproblem_time_limit"`
	MaxIterations       int             `yaml:"max_iterations"`
	Tolerance           float64         `yaml:"tolerance"`
	Workers             int             `yaml:"workers"`
	Horizon             int             `yaml:"horizon"`
	Objective           string          `yaml:"objective"`
	CostWeight          int             `yaml:"cost_weight"`
	MakespanWeight      int             `yaml:"makespan_weight"`
	CutStrength         string          `yaml:"cut_strength"`
	LoadRelaxation      bool            `yaml:"load_relaxation"`
	Heuristic           bool            `yaml:"heuristic"`
	Annealing           AnnealingConfig `yaml:"annealing"`
}

type AnnealingConfig struct {
	IterationsPerJob int     `yaml:"iterations_per_job"`
	InitialTemp      float64 `yaml:"initial_temp"`
	FinalTemp        float64 `yaml:"final_temp"`
	Alpha            float64 `yaml:"alpha"`
	Neighborhood     string  `yaml:"neighborhood"`
}

type BaselineConfig struct {
	AssignmentTimeLimit time.Duration `yaml:"assignment_time_limit"`
	SchedulingTimeLimit time.Duration `yaml:"scheduling_time_limit"`
}

// DefaultFileConfig собирает значения по умолчанию из конфигураций пакетов.
func DefaultFileConfig() *FileConfig {
	g := DefaultGenerator()
	bd := benders.DefaultConfig()
	ad := bd.Annealing
	bl := baseline.DefaultConfig()
	return &FileConfig{
		Out:          "artifacts/results.csv",
		Pairs:        "20x3,50x5,200x10",
		Algos:        "BASE,LBBD",
		Runs:         5,
		Seed:         1000,
		InstanceSeed: 777,
		Generator: GeneratorConfig{
			CostMin: g.CostMin,
			CostMax: g.CostMax,
			TimeMin: g.TimeMin,
			TimeMax: g.TimeMax,
		},
		Benders: BendersConfig{
			TimeLimit:           bd.TimeLimit,
			MasterTimeLimit:     bd.MasterTimeLimit,
			SubproblemTimeLimit: bd.SubproblemTimeLimit,
			MaxIterations:       bd.MaxIterations,
			Tolerance:           bd.Tolerance,
			Workers:             bd.Workers,
			Horizon:             bd.Horizon,
			Objective:           string(bd.Objective.Mode),
			CostWeight:          bd.Objective.CostWeight,
			MakespanWeight:      bd.Objective.MakespanWeight,
			CutStrength:         string(bd.CutStrength),
			LoadRelaxation:      bd.LoadRelaxation,
			Heuristic:           bd.Heuristic,
			Annealing: AnnealingConfig{
				IterationsPerJob: ad.IterationsPerJob,
				InitialTemp:      ad.InitialTemp,
				FinalTemp:        ad.FinalTemp,
				Alpha:            ad.Alpha,
				Neighborhood:     string(ad.Neighborhood),
			},
		},
		Baseline: BaselineConfig{
			AssignmentTimeLimit: bl.AssignmentTimeLimit,
			SchedulingTimeLimit: bl.SchedulingTimeLimit,
		},
	}
}

// LoadConfigFile reads a YAML config file over the defaults: keys absent
// from the file keep their default values, explicit zeros are kept as written.
func LoadConfigFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultFileConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *FileConfig) GeneratorSettings() Generator {
	return Generator{
		CostMin: c.Generator.CostMin,
		CostMax: c.Generator.CostMax,
		TimeMin: c.Generator.TimeMin,
		TimeMax: c.Generator.TimeMax,
	}
}

func (c *FileConfig) objective() problem.Objective {
	return problem.Objective{
		Mode:           problem.ObjectiveMode(c.Benders.Objective),
		CostWeight:     c.Benders.CostWeight,
		MakespanWeight: c.Benders.MakespanWeight,
	}
}

// BendersSettings собирает конфигурацию контроллера для запуска с сидом seed.
func (c *FileConfig) BendersSettings(seed int64) benders.Config {
	b := c.Benders
	return benders.Config{
		TimeLimit:           b.TimeLimit,
		MasterTimeLimit:     b.MasterTimeLimit,
		SubproblemTimeLimit: b.SubproblemTimeLimit,
		MaxIterations:       b.MaxIterations,
		Tolerance:           b.Tolerance,
		Workers:             b.Workers,
		Horizon:             b.Horizon,
		Objective:           c.objective(),
		CutStrength:         cuts.Strength(b.CutStrength),
		LoadRelaxation:      b.LoadRelaxation,
		Seed:                seed,
		Heuristic:           b.Heuristic,
		Annealing: sa.Config{
			IterationsPerJob: b.Annealing.IterationsPerJob,
			InitialTemp:      b.Annealing.InitialTemp,
			FinalTemp:        b.Annealing.FinalTemp,
			Alpha:            b.Annealing.Alpha,
			Neighborhood:     sa.Neighborhood(b.Annealing.Neighborhood),
		},
	}
}

func (c *FileConfig) BaselineSettings() baseline.Config {
	return baseline.Config{
		AssignmentTimeLimit: c.Baseline.AssignmentTimeLimit,
		SchedulingTimeLimit: c.Baseline.SchedulingTimeLimit,
		Workers:             c.Benders.Workers,
		Objective:           c.objective(),
	}
}

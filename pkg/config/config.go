package config

import (
	"errors"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config is the process-level configuration for the timetable CLI.
type Config struct {
	Env string

	Log       LogConfig
	Scheduler SchedulerConfig
	Solver    SolverConfig
	Metrics   MetricsConfig
	Jobs      JobsConfig
	Output    OutputConfig
}

type LogConfig struct {
	Level  string
	Format string
}

// SchedulerConfig carries engine defaults; a constraint configuration file may
// override the grid dimensions per solve.
type SchedulerConfig struct {
	PeriodsPerDay    int
	DaysPerWeek      int
	MaxOptIterations int
	UseILP           bool
}

// SolverConfig bounds the branch-and-bound search.
type SolverConfig struct {
	NodeLimit int
	Tolerance float64
}

// MetricsConfig controls the optional Prometheus listener.
type MetricsConfig struct {
	Enabled bool
	Addr    string
}

// JobsConfig sizes the CLI solve queue. Each solve is single-threaded; workers
// only parallelize independent inputs.
type JobsConfig struct {
	Workers int
}

// OutputConfig selects report destinations.
type OutputConfig struct {
	Dir     string
	Formats []string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Scheduler = SchedulerConfig{
		PeriodsPerDay:    v.GetInt("SCHEDULER_PERIODS_PER_DAY"),
		DaysPerWeek:      v.GetInt("SCHEDULER_DAYS_PER_WEEK"),
		MaxOptIterations: v.GetInt("SCHEDULER_MAX_OPT_ITERATIONS"),
		UseILP:           v.GetBool("SCHEDULER_USE_ILP"),
	}

	cfg.Solver = SolverConfig{
		NodeLimit: v.GetInt("SOLVER_NODE_LIMIT"),
		Tolerance: v.GetFloat64("SOLVER_TOLERANCE"),
	}

	cfg.Metrics = MetricsConfig{
		Enabled: v.GetBool("ENABLE_METRICS"),
		Addr:    v.GetString("METRICS_ADDR"),
	}

	cfg.Jobs = JobsConfig{
		Workers: v.GetInt("JOBS_WORKERS"),
	}

	cfg.Output = OutputConfig{
		Dir:     v.GetString("OUTPUT_DIR"),
		Formats: splitAndTrim(v.GetString("OUTPUT_FORMATS")),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SCHEDULER_PERIODS_PER_DAY", 7)
	v.SetDefault("SCHEDULER_DAYS_PER_WEEK", 5)
	v.SetDefault("SCHEDULER_MAX_OPT_ITERATIONS", 500)
	v.SetDefault("SCHEDULER_USE_ILP", true)

	v.SetDefault("SOLVER_NODE_LIMIT", 200000)
	v.SetDefault("SOLVER_TOLERANCE", 1e-6)

	v.SetDefault("ENABLE_METRICS", false)
	v.SetDefault("METRICS_ADDR", ":9102")

	v.SetDefault("JOBS_WORKERS", 1)

	v.SetDefault("OUTPUT_DIR", "./out")
	v.SetDefault("OUTPUT_FORMATS", "text")
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-engine/internal/dto"
	"github.com/noah-isme/timetable-engine/internal/ingest"
	"github.com/noah-isme/timetable-engine/internal/models"
	"github.com/noah-isme/timetable-engine/internal/report"
	"github.com/noah-isme/timetable-engine/internal/service"
	"github.com/noah-isme/timetable-engine/internal/solver"
	"github.com/noah-isme/timetable-engine/internal/validate"
	"github.com/noah-isme/timetable-engine/pkg/config"
	"github.com/noah-isme/timetable-engine/pkg/export"
	"github.com/noah-isme/timetable-engine/pkg/jobs"
	"github.com/noah-isme/timetable-engine/pkg/logger"
)

func main() {
	inputDir := flag.String("input", ".", "directory containing students.json, teachers.json, courses.json, rooms.json")
	constraintsPath := flag.String("constraints", "", "optional constraint configuration file")
	outDir := flag.String("out", "", "report output directory (default from config)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	var metrics *service.Metrics
	if cfg.Metrics.Enabled {
		metrics = service.NewMetrics()
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			logr.Sugar().Infow("metrics listener starting", "addr", cfg.Metrics.Addr)
			if err := http.ListenAndServe(cfg.Metrics.Addr, mux); err != nil {
				logr.Sugar().Errorw("metrics listener failed", "error", err)
			}
		}()
	}

	if *outDir == "" {
		*outDir = cfg.Output.Dir
	}

	engine := service.NewEngine(validator.New(), logr, metrics)
	loader := ingest.NewLoader(validator.New(), logr)
	runner := &solveRunner{
		cfg:    cfg,
		engine: engine,
		loader: loader,
		logger: logr,
		outDir: *outDir,
	}

	// Positional args are additional input directories; each is one
	// independent solve dispatched to the worker queue.
	dirs := append([]string{*inputDir}, flag.Args()...)
	if len(dirs) == 1 {
		if err := runner.run(context.Background(), dirs[0], *constraintsPath); err != nil {
			logr.Sugar().Fatalw("solve failed", "input", dirs[0], "error", err)
		}
		return
	}

	queue := jobs.NewQueue("solves", func(ctx context.Context, job jobs.Job) error {
		return runner.run(ctx, job.Payload.(string), *constraintsPath)
	}, jobs.QueueConfig{Workers: cfg.Jobs.Workers, BufferSize: len(dirs), Logger: logr})
	queue.Start(context.Background())
	for i, dir := range dirs {
		if err := queue.Enqueue(jobs.Job{ID: fmt.Sprintf("solve-%d", i+1), Name: dir, Payload: dir}); err != nil {
			logr.Sugar().Errorw("enqueue failed", "input", dir, "error", err)
		}
	}
	queue.Drain()
}

type solveRunner struct {
	cfg    *config.Config
	engine *service.Engine
	loader *ingest.Loader
	logger *zap.Logger
	outDir string
}

func (r *solveRunner) run(ctx context.Context, dir, constraintsPath string) error {
	gridConfig := dto.ScheduleConfig{
		PeriodsPerDay: r.cfg.Scheduler.PeriodsPerDay,
		DaysPerWeek:   r.cfg.Scheduler.DaysPerWeek,
	}
	if constraintsPath != "" {
		constraints, err := ingest.ParseConstraintsFile(constraintsPath)
		if err != nil {
			return err
		}
		if constraints.PeriodsPerDay > 0 {
			gridConfig.PeriodsPerDay = constraints.PeriodsPerDay
		}
		if constraints.DaysPerWeek > 0 {
			gridConfig.DaysPerWeek = constraints.DaysPerWeek
		}
	}

	input, err := r.loader.Load(ingest.Paths{
		Students: filepath.Join(dir, "students.json"),
		Teachers: filepath.Join(dir, "teachers.json"),
		Courses:  filepath.Join(dir, "courses.json"),
		Rooms:    filepath.Join(dir, "rooms.json"),
	}, gridConfig)
	if err != nil {
		return err
	}

	opts := service.DefaultOptions()
	opts.MaxOptimizationIterations = r.cfg.Scheduler.MaxOptIterations
	opts.UseILP = r.cfg.Scheduler.UseILP
	if opts.UseILP {
		opts.Solver = solver.NewBranchBound(solver.Options{
			NodeLimit: r.cfg.Solver.NodeLimit,
			Tolerance: r.cfg.Solver.Tolerance,
			Logger:    r.logger,
		})
	}
	opts.OnProgress = func(event dto.ProgressEvent) {
		r.logger.Debug("progress",
			zap.String("phase", event.Phase),
			zap.Float64("percent", event.Percent),
			zap.String("operation", event.Operation))
	}

	schedule, err := r.engine.Generate(ctx, input, opts)
	if err != nil {
		return err
	}

	if violations := validate.Check(input, schedule); len(violations) > 0 {
		for _, v := range violations {
			r.logger.Warn("hard constraint violated",
				zap.String("dimension", v.Dimension),
				zap.String("section_id", v.SectionID),
				zap.String("message", v.Message))
		}
	}

	return r.writeReports(input, schedule)
}

func (r *solveRunner) writeReports(input *dto.ScheduleInput, schedule *models.Schedule) error {
	if err := os.MkdirAll(r.outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	renderer := report.NewRenderer()
	base := filepath.Join(r.outDir, schedule.Metadata.RunID)

	for _, format := range r.cfg.Output.Formats {
		switch format {
		case "json":
			data, err := renderer.JSON(schedule)
			if err != nil {
				return err
			}
			if err := os.WriteFile(base+".json", data, 0o644); err != nil {
				return err
			}
		case "markdown":
			if err := os.WriteFile(base+".md", []byte(renderer.Markdown(input, schedule)), 0o644); err != nil {
				return err
			}
		case "csv":
			data, err := export.NewCSVExporter().Render(renderer.MasterGrid(input, schedule))
			if err != nil {
				return err
			}
			if err := os.WriteFile(base+".csv", data, 0o644); err != nil {
				return err
			}
		case "pdf":
			data, err := export.NewPDFExporter().Render(renderer.MasterGrid(input, schedule))
			if err != nil {
				return err
			}
			if err := os.WriteFile(base+".pdf", data, 0o644); err != nil {
				return err
			}
		default: // "text"
			if err := os.WriteFile(base+".txt", []byte(renderer.Text(schedule)), 0o644); err != nil {
				return err
			}
		}
	}

	r.logger.Sugar().Infow("reports written",
		"run_id", schedule.Metadata.RunID, "dir", r.outDir, "formats", r.cfg.Output.Formats)
	return nil
}

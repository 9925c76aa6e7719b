package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/ayusman/yanagihara/internal/app"
	"github.com/ayusman/yanagihara/internal/capture"
	"github.com/ayusman/yanagihara/internal/config"
	"github.com/ayusman/yanagihara/internal/landmark"
	"github.com/ayusman/yanagihara/internal/logging"
	"github.com/ayusman/yanagihara/internal/server"
)

func main() {
	envFile := flag.String("env", ".env", "dotenv file to load before reading the environment")
	writeTable := flag.String("write-table", "", "write the default clinical table to this path and exit")
	flag.Parse()

	if *writeTable != "" {
		if err := writeDefaultTable(*writeTable); err != nil {
			fmt.Fprintf(os.Stderr, "write table: %v\n", err)
			os.Exit(1)
		}
		return
	}

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, closer, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	if err := run(cfg, log); err != nil {
		log.WithError(err).Error("exiting")
		closer.Close()
		os.Exit(1)
	}
}

func run(cfg config.Config, log *logrus.Logger) error {
	log.Info("Yanagihara - facial palsy grading")

	table, err := config.LoadTable(cfg.TablePath)
	if err != nil {
		return err
	}
	table.Warn(log)
	engine, err := table.Engine()
	if err != nil {
		return err
	}

	if cfg.TraceDir != "" {
		if err := os.MkdirAll(cfg.TraceDir, 0755); err != nil {
			return fmt.Errorf("create trace directory: %w", err)
		}
	}

	detCfg := landmark.DefaultConfig()
	detCfg.ScriptPath = cfg.ScriptPath
	var detector landmark.Detector
	detector, err = landmark.NewMediaPipeDetector(detCfg, log)
	if err != nil {
		log.WithError(err).Warn("landmarker unavailable, captures will find no face")
		detector = landmark.NewMockDetector()
	}

	a := app.New(app.Config{
		Engine:     engine,
		FPS:        cfg.FPS,
		StillLimit: cfg.StillLimit,
		TraceDir:   cfg.TraceDir,
	}, capture.NewCamera(cfg.CameraID), detector, log)

	if err := a.Start(); err != nil {
		log.WithError(err).WithField("camera", cfg.CameraID).Warn("camera unavailable, live captures disabled")
	}
	defer a.Stop()

	staticDir := cfg.StaticDir
	if staticDir == "" {
		staticDir = findWebDir()
	}
	if staticDir != "" {
		log.WithField("dir", staticDir).Info("serving static files")
	}

	srv := server.New(server.Config{
		StaticDir:  staticDir,
		Grader:     a,
		Preview:    a,
		Thresholds: engine.Thresholds,
		Log:        log,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe(cfg.Addr)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case s := <-sig:
		log.WithField("signal", s.String()).Info("shutting down")
		return nil
	}
}

func writeDefaultTable(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := config.WriteTable(f, config.DefaultTable()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.yanagihara/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	for _, p := range []string{"web", "../web", "../../web"} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	homeWebDir := filepath.Join(homeDir, ".yanagihara", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}
	return ""
}

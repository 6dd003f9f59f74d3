package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/eyeball/bridge"
	"github.com/pthm-cable/eyeball/config"
	"github.com/pthm-cable/eyeball/scene"
	"github.com/pthm-cable/eyeball/viewer"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run the scripted interaction without graphics")
	serve := flag.Bool("serve", false, "Serve the scene to websocket clients")
	addr := flag.String("addr", "", "Bridge listen address (empty = use config)")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = script length in headless mode, unlimited otherwise)")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	opts := scene.Options{
		Seed:      rngSeed,
		LogStats:  *logStats,
		OutputDir: *outputDir,
	}

	switch {
	case *headless:
		os.Exit(runHeadless(cfg, opts, *maxTicks))
	case *serve:
		os.Exit(runBridge(cfg, opts, *addr))
	default:
		os.Exit(runViewer(cfg, opts, *maxTicks))
	}
}

// runHeadless plays the scripted drag and contact sweep.
func runHeadless(cfg *config.Config, opts scene.Options, maxTicks int) int {
	sc, err := scene.New(cfg, opts)
	if err != nil {
		slog.Error("failed to create scene", "error", err)
		return 1
	}
	defer sc.Close()

	script := scene.DefaultScript()
	if maxTicks > 0 {
		script.Ticks = maxTicks
	}

	slog.Info("starting headless run", "seed", opts.Seed, "ticks", script.Ticks)
	res := sc.RunScript(script, nil)

	slog.Info("headless run complete",
		"ticks", res.Ticks,
		"triggers", res.Triggers,
		"peak_rotation", res.PeakRotation,
		"peak_scale", res.PeakScale,
		"perf", sc.Perf().Stats(),
	)
	return 0
}

// runBridge serves the scene until interrupted.
func runBridge(cfg *config.Config, opts scene.Options, addr string) int {
	sc, err := scene.New(cfg, opts)
	if err != nil {
		slog.Error("failed to create scene", "error", err)
		return 1
	}
	defer sc.Close()

	srv, err := bridge.NewServer(sc, cfg)
	if err != nil {
		slog.Error("failed to create bridge", "error", err)
		return 1
	}

	if addr == "" {
		addr = cfg.Bridge.Addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := srv.ListenAndServe(ctx, addr); err != nil {
		slog.Error("bridge stopped", "error", err)
		return 1
	}
	return 0
}

// runViewer opens a window and draws the scene.
func runViewer(cfg *config.Config, opts scene.Options, maxTicks int) int {
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Eyeball")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	sc, err := scene.New(cfg, opts)
	if err != nil {
		slog.Error("failed to create scene", "error", err)
		return 1
	}
	defer sc.Close()

	viewer.New(cfg, sc).Run(maxTicks)
	return 0
}

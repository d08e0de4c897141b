package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image/png"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"mirror-ca/internal/app"
	"mirror-ca/internal/core"
	"mirror-ca/internal/logging"
	"mirror-ca/internal/persistence/runindex"
	"mirror-ca/internal/persistence/statlog"
	"mirror-ca/internal/render"
	"mirror-ca/internal/runner"
	"mirror-ca/internal/sims/mirror"
	"mirror-ca/internal/transport/observer"
)

func main() {
	cfg := app.NewConfig()
	cfg.AutoScan = false
	cfg.Bind(flag.CommandLine)
	var (
		ticks       = flag.Uint64("ticks", 1000, "ticks to run, 0 runs until interrupted")
		paced       = flag.Bool("paced", false, "pace the run at -tps instead of running flat out")
		runID       = flag.String("run", "", "run identifier (default: mode-seed-timestamp)")
		tracePath   = flag.String("trace", "", "write per-tick stats to this .jsonl.zst file")
		indexPath   = flag.String("index", "", "record the run in this SQLite index")
		sampleEvery = flag.Uint64("sample-every", 10, "index one sample per this many ticks")
		observeAddr = flag.String("observe", "", "serve the observer stream on this address (e.g. 127.0.0.1:8090)")
		logEvery    = flag.Uint64("log-every", 100, "log the status line every this many ticks, 0 disables")
		pngPath     = flag.String("png", "", "write the final view slice to this PNG file")
	)
	flag.Parse()

	logger := logging.New(cfg.LogLevel)
	if err := cfg.Resolve(flag.CommandLine, os.LookupEnv); err != nil {
		logger.Fatalf("%v", err)
	}
	logger = logging.New(cfg.LogLevel)

	mcfg, err := cfg.MirrorConfig()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}
	world, err := mirror.NewWithConfig(mcfg)
	if err != nil {
		logger.Fatalf("world: %v", err)
	}
	if err := cfg.ApplyView(world); err != nil {
		logger.Fatalf("view: %v", err)
	}
	id := *runID
	if id == "" {
		id = fmt.Sprintf("%s-%d-%s", mcfg.Mode, mcfg.Seed, time.Now().UTC().Format("20060102T150405"))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := &runner.Runner{
		World:       world,
		RunID:       id,
		Ticks:       *ticks,
		SampleEvery: *sampleEvery,
		AutoScan:    cfg.AutoScan,
		Log:         logger,
		LogEvery:    *logEvery,
	}
	if *paced {
		r.Timer = core.NewFixedStep(cfg.TPS)
	}
	if *tracePath != "" {
		trace, err := statlog.Create(*tracePath)
		if err != nil {
			logger.Fatalf("trace: %v", err)
		}
		defer closeLogged(logger, "trace", trace.Close)
		r.Trace = trace
	}
	if *indexPath != "" {
		idx, err := runindex.Open(*indexPath, logger)
		if err != nil {
			logger.Fatalf("index: %v", err)
		}
		defer closeLogged(logger, "index", idx.Close)
		r.Index = idx
	}
	if *observeAddr != "" {
		hub := observer.NewHub()
		r.Hub = hub
		srv := &http.Server{Handler: observer.NewServer(hub, logger).Handler(), ReadHeaderTimeout: 5 * time.Second}
		ln, err := net.Listen("tcp", *observeAddr)
		if err != nil {
			logger.Fatalf("observe: %v", err)
		}
		logger.Infof("observer listening on http://%s", ln.Addr())
		go func() {
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Errorf("observer: %v", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	if _, err := r.Run(ctx); err != nil {
		logger.Errorf("run: %v", err)
	}
	if *pngPath != "" {
		if err := writePNG(*pngPath, world, cfg.Scale); err != nil {
			logger.Errorf("png: %v", err)
		}
	}
}

func writePNG(path string, w *mirror.World, scale int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	size := w.Size()
	img := render.PlaneImage(w.Cells(), size.W, size.H, w.Palette(), scale)
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func closeLogged(logger logging.Logger, what string, fn func() error) {
	if err := fn(); err != nil {
		logger.Errorf("%s close: %v", what, err)
	}
}

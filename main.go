package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"skybrawl/config"
	"skybrawl/logging"
	"skybrawl/server"
)

// skybrawl 权威服务器入口：TCP 游戏端口 + HTTP 管理/观战接口
func main() {
	if err := config.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	cfg := config.DefaultServer()
	envErr := config.ApplyEnv(&cfg)

	var (
		logFile   string
		logStderr bool
		debug     bool
	)
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "game listen address, e.g. :5000")
	flag.StringVar(&cfg.AdminAddr, "admin", cfg.AdminAddr, "admin HTTP address (empty disables)")
	flag.IntVar(&cfg.MaxPlayers, "max-players", cfg.MaxPlayers, "peer cap")
	flag.IntVar(&cfg.TickHz, "tick-hz", cfg.TickHz, "state broadcast rate")
	flag.DurationVar(&cfg.ClientTimeout, "timeout", cfg.ClientTimeout, "disconnect peers silent for this long")
	flag.DurationVar(&cfg.PickupInterval, "pickups", cfg.PickupInterval, "pickup spawn interval (0 disables)")
	flag.StringVar(&logFile, "log", config.LogFile("server.log"), "log file path")
	flag.BoolVar(&logStderr, "log-stderr", true, "also log to stderr")
	flag.BoolVar(&debug, "debug", false, "enable debug logging")
	flag.Parse()

	// 使用第三方 zap 日志库写入日志文件（带滚动）
	if err := logging.Init(logging.Options{FilePath: logFile, Debug: debug, Stderr: logStderr}); err != nil {
		panic(err)
	}
	defer logging.Sync()
	log := logging.Named("main")
	if envErr != nil {
		log.Warnw("ignoring invalid environment overrides", "err", envErr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg)
	if err := srv.Start(ctx); err != nil {
		log.Fatalf("start: %v", err)
	}

	var admin *http.Server
	if cfg.AdminAddr != "" {
		mux := http.NewServeMux()
		srv.Routes(mux)
		admin = &http.Server{Addr: cfg.AdminAddr, Handler: mux}
		go func() {
			log.Infof("admin listening on %s", cfg.AdminAddr)
			if err := admin.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorf("admin listen: %v", err)
			}
		}()
	}

	// 优雅退出（Ctrl+C）
	<-ctx.Done()
	log.Info("Shutting down...")
	if admin != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_ = admin.Shutdown(shutdownCtx)
		cancel()
	}
	srv.Stop()
	log.Infow("bye", "metrics", srv.Metrics().Snapshot())
}

package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/betbot/marketadmin/internal/adminweb"
	"github.com/betbot/marketadmin/internal/metrics"
	"github.com/betbot/marketadmin/internal/questionapi"
	"github.com/betbot/marketadmin/pkg/config"
	"github.com/betbot/marketadmin/pkg/logger"
	sdkhttp "github.com/betbot/marketadmin/pkg/sdk/http"
	"github.com/betbot/marketadmin/pkg/shutdown"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env (best-effort). If missing, fall back to real env vars.
	_ = godotenv.Load()

	var (
		configPath = flag.String("config", os.Getenv("MARKETADMIN_CONFIG"), "config file (.yaml/.yml/.json)")
		listenAddr = flag.String("listen", "", "HTTP listen address (overrides config)")
	)
	flag.Parse()

	config.SetConfigPath(*configPath)
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	if *listenAddr != "" {
		cfg.Listen = *listenAddr
	}

	if err := logger.Init(logger.Config{
		Level:      cfg.Log.Level,
		OutputFile: cfg.Log.File,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   true,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "init logger failed: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	api := questionapi.NewClient(questionapi.Config{
		BaseURL:       cfg.API.BaseURL,
		QuestionsPath: cfg.API.QuestionsPath,
		AnswersPath:   cfg.API.AnswersPath,
	}, sdkhttp.WithTimeout(cfg.API.RequestTimeout))

	srv, err := adminweb.New(adminweb.Config{
		PageSize:   cfg.PageSize,
		SessionTTL: cfg.SessionTTL,
	}, api)
	if err != nil {
		logger.Errorf("init admin server failed: %v", err)
		return
	}

	httpSrv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	sm := shutdown.NewManager()
	sm.OnShutdown("http", httpSrv.Shutdown)
	sm.OnShutdown("sessions", func(context.Context) error { return srv.Close() })

	if cfg.DebugListen != "" {
		debugCtx, stopDebug := context.WithCancel(context.Background())
		debugSrv, err := metrics.StartAsync(debugCtx, cfg.DebugListen)
		if err != nil {
			logger.Warnf("debug server disabled: %v", err)
			stopDebug()
		} else {
			logger.Infof("debug server listening on %s", debugSrv.Addr)
			sm.OnShutdown("debug", func(context.Context) error { stopDebug(); return nil })
		}
	}

	go func() {
		logger.Infof("marketadmin listening on %s (api %s)", cfg.Listen, cfg.API.BaseURL)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("http server error: %v", err)
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	<-stopCh

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sm.Shutdown(ctx); err != nil {
		logger.Warnf("shutdown: %v", err)
	}
	logger.Info("marketadmin stopped")
}

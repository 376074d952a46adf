// NewsDesk API server. Serves the aggregated news over REST and refreshes
// all RSS sources on a fixed interval.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RobinCoderZhao/newsdesk/internal/api"
	"github.com/RobinCoderZhao/newsdesk/internal/collector"
	appcfg "github.com/RobinCoderZhao/newsdesk/internal/config"
	"github.com/RobinCoderZhao/newsdesk/internal/fetch"
	"github.com/RobinCoderZhao/newsdesk/internal/schedule"
	"github.com/RobinCoderZhao/newsdesk/internal/source"
	"github.com/RobinCoderZhao/newsdesk/internal/store"
	"github.com/RobinCoderZhao/newsdesk/pkg/llm"
)

func main() {
	configPath := flag.String("config", "newsdesk.yaml", "配置文件路径")
	flag.Parse()

	cfg, err := appcfg.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	reg := source.NewRegistry()
	source.RegisterDefaults(reg)
	col := collector.New(reg, fetch.NewHTTPFetcher(cfg.Fetch))

	st, err := store.New(cfg.DataDir)
	if err != nil {
		slog.Error("failed to open data dir", "error", err)
		os.Exit(1)
	}

	// Serve the last snapshot until the first refresh completes.
	if cached := st.Load(""); len(cached) > 0 {
		col.ReplaceCache(cached)
	}

	server := api.NewServer(col, st, llm.NewClient(cfg.LLM))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := schedule.New(cfg.Refresh)
	sched.Add(schedule.Job{Name: "refresh-feeds", Fn: func(ctx context.Context) error {
		records := col.FetchAll(ctx)
		if len(records) == 0 {
			return nil
		}
		_, err := st.Save(records, "")
		return err
	}})
	go sched.Start(ctx)

	srv := &http.Server{
		Addr:    cfg.Listen,
		Handler: server.Router(),
	}

	go func() {
		slog.Info("API server started", "addr", cfg.Listen)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("API server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server...")

	sched.Stop()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown timed out", "error", err)
	}
}

package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/vantage/backend/internal/api"
	"github.com/wonny/vantage/backend/internal/api/handlers"
	"github.com/wonny/vantage/backend/internal/scheduler"
	"github.com/wonny/vantage/backend/internal/scheduler/jobs"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버와 일일 랭킹 갱신 스케줄러를 시작합니다.

이 명령어는:
- 시작 시 랭킹 1회 실행 (--skip-initial 로 생략)
- REFRESH_SCHEDULE (기본 매일 06:30) 마다 재실행
- 최신 랭킹 조회 엔드포인트 제공

Endpoints:
  GET  /health                  - Health check
  GET  /api/ranking             - 랭킹 표 (?sector=&sort=rank|ticker)
  GET  /api/ranking/sectors     - 섹터 목록
  GET  /api/issuers/{ticker}    - 종목 상세
  POST /api/ranking/refresh     - 즉시 재실행
  GET  /metrics                 - Prometheus

Example:
  go run ./cmd/vantage api
  go run ./cmd/vantage api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort        string
	apiSkipInitial bool
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (기본: PORT)")
	apiCmd.Flags().BoolVar(&apiSkipInitial, "skip-initial", false, "시작 시 랭킹 실행 생략")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.close()

	// Override port if flag is set
	if apiPort != "" {
		a.cfg.Port = apiPort
	}
	log := a.log

	// 1. Metrics (optional) wrap every run, manual or scheduled
	var metrics *api.Metrics
	var service handlers.RankingService = a.orchestrator
	if a.cfg.MetricsEnabled {
		metrics = api.NewMetrics()
		service = metrics.Instrument(a.orchestrator)
	}

	// 2. Scheduler
	sched := scheduler.New(log)
	if err := sched.AddJob(jobs.NewRefreshJob(service, a.cfg.RefreshSchedule, log)); err != nil {
		return fmt.Errorf("schedule refresh: %w", err)
	}
	if a.memCache != nil {
		if err := sched.AddJob(jobs.NewCacheCleanupJob(a.memCache, log)); err != nil {
			return fmt.Errorf("schedule cache cleanup: %w", err)
		}
	}
	sched.Start()
	defer sched.Stop()

	// 3. Server
	router := api.NewRouter(handlers.NewRankingHandler(service, log), metrics, log)
	server := api.New(a.cfg, log, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	// 4. Initial run so the API serves data before the first scheduled refresh
	if !apiSkipInitial {
		go func() {
			if _, err := service.Run(ctx); err != nil {
				log.WithError(err).Error("Initial ranking run failed")
			}
		}()
	}

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	if next, ok := sched.NextRun("ranking_refresh"); ok {
		fmt.Printf("   Next scheduled refresh: %s\n", next.Format(time.RFC3339))
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal or server failure
	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}

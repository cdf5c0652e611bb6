// YouLu 路线优化编排引擎服务
// 主程序入口

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/youlu/youlu/internal/config"
	"github.com/youlu/youlu/internal/database"
	"github.com/youlu/youlu/internal/handler"
	"github.com/youlu/youlu/internal/metrics"
	"github.com/youlu/youlu/internal/middleware"
	"github.com/youlu/youlu/internal/repository"
	"github.com/youlu/youlu/pkg/event"
	"github.com/youlu/youlu/pkg/logger"
	"github.com/youlu/youlu/pkg/optimizer"
	"github.com/youlu/youlu/pkg/optimizer/caster"
	"github.com/youlu/youlu/pkg/optimizer/rule/builtin"
	"github.com/youlu/youlu/pkg/solver"
	"github.com/youlu/youlu/pkg/stats"
	"github.com/youlu/youlu/pkg/validator"
)

// 构建信息（通过 ldflags 注入）
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "配置加载失败: %v\n", err)
		os.Exit(1)
	}

	format := "json"
	if cfg.IsDevelopment() {
		format = "console"
	}
	logger.Init(logger.Config{
		Level:  cfg.App.LogLevel,
		Format: format,
	})

	logger.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("git_commit", GitCommit).
		Str("env", cfg.App.Env).
		Msg("YouLu 路线优化引擎启动中")

	// 事件分发：日志、监控指标与Redis对外发布共享同一事件流
	events := event.NewDispatcher()
	events.Subscribe(event.NewLogListener())

	m := metrics.New()
	events.Subscribe(m)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Warn().Err(err).Msg("Redis连接失败，事件不对外发布")
	} else {
		events.Subscribe(event.NewRedisPublisher(redisClient, cfg.Redis.EventChannel))
	}

	// 数据库不可用时服务仍可运行，仅丢失状态持久化
	var states repository.StateRepositoryInterface
	db, err := database.New(&cfg.Database)
	if err != nil {
		logger.Warn().Err(err).Msg("数据库连接失败，优化状态不落库")
	} else {
		defer db.Close()
		states = repository.NewStateRepository(db)
	}

	// 业务规则注册表：配置无效属于致命错误，直接中止启动
	registry, err := builtin.NewRegistry(builtin.Config{
		SpeedDelta:              cfg.Rules.SpeedDelta,
		UnderutilizedSpeedDelta: cfg.Rules.UnderutilizedSpeedDelta,
		UnderutilizedThreshold:  cfg.Rules.UnderutilizedThreshold,
		CapacityIncrease:        cfg.Rules.CapacityIncrease,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("业务规则注册表构建失败")
	}

	solverClient := solver.NewClient(solver.Config{
		Host:            cfg.Solver.Host,
		ConnectTimeout:  cfg.Solver.ConnectTimeout,
		ResponseTimeout: cfg.Solver.ResponseTimeout,
		RetryCount:      cfg.Solver.RetryCount,
		RetryDelay:      cfg.Solver.RetryDelay,
		RateLimit:       cfg.Solver.RateLimit,
	}, events)

	engine := optimizer.NewEngine(solverClient, caster.DefaultSet(events), events)
	validators := validator.NewRegister()
	analyzer := stats.NewRouteAnalyzer()

	optimizeHandler := handler.NewOptimizeHandler(engine, registry, validators, analyzer, states, m)
	qualityHandler := handler.NewQualityHandler(validators, analyzer, m)
	stateHandler := handler.NewStateHandler(states)

	mux := http.NewServeMux()

	// 系统端点
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"youlu"}`))
	})

	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"version":"%s","build_time":"%s","git_commit":"%s"}`, Version, BuildTime, GitCommit)
	})

	// API 根路由
	mux.HandleFunc("/api/v1/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{
			"message": "YouLu 路线优化引擎 API v1",
			"endpoints": {
				"optimize": "POST /api/v1/optimize",
				"plan": "POST /api/v1/plan",
				"route": "POST /api/v1/routes/optimize",
				"validate": "POST /api/v1/validate",
				"quality": "POST /api/v1/quality",
				"states": {
					"get": "GET /api/v1/states?state_id=",
					"latest": "GET /api/v1/states/latest?office_id=&date=",
					"list": "GET /api/v1/states/list?office_id=&date=",
					"lineage": "GET /api/v1/states/lineage?state_id="
				}
			}
		}`))
	})

	// 优化 API
	mux.HandleFunc("/api/v1/optimize", optimizeHandler.Optimize)
	mux.HandleFunc("/api/v1/plan", optimizeHandler.Plan)
	mux.HandleFunc("/api/v1/routes/optimize", optimizeHandler.OptimizeRoute)

	// 校验与质量分析 API
	mux.HandleFunc("/api/v1/validate", qualityHandler.Validate)
	mux.HandleFunc("/api/v1/quality", qualityHandler.Quality)

	// 状态查询 API
	mux.HandleFunc("/api/v1/states", stateHandler.Get)
	mux.HandleFunc("/api/v1/states/latest", stateHandler.Latest)
	mux.HandleFunc("/api/v1/states/list", stateHandler.List)
	mux.HandleFunc("/api/v1/states/lineage", stateHandler.Lineage)

	// Prometheus 指标端点
	if cfg.Metrics.Enabled {
		mux.Handle(cfg.Metrics.Path, m.Handler())
	}

	root := middleware.Chain(mux,
		middleware.Recover(),
		middleware.Logging(),
		middleware.Metrics(m),
		middleware.Timeout(cfg.API.Timeout),
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      root,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.API.Timeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info().
			Int("port", cfg.App.Port).
			Str("solver_host", cfg.Solver.Host).
			Msg("服务器启动")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("服务器启动失败")
			os.Exit(1)
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("服务器关闭失败")
		os.Exit(1)
	}

	logger.Info().Msg("服务器已关闭")
}

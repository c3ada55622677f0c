package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"homesketch-data/internal/config"
	"homesketch-data/internal/database"
	httpapi "homesketch-data/internal/http"
	"homesketch-data/internal/logger"
	"homesketch-data/internal/repository"
	"homesketch-data/internal/service"
	"homesketch-data/internal/store"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "homesketch-data")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	kv := store.NewRedisKV(redisClient)
	costCache := service.NewCostCache(kv, log)

	// 持久层：优先 Postgres，连接失败时回退内存实现（便于本地 go run 联调）
	var db *sql.DB
	var st repository.Store
	if cfg.DBEnabled {
		if d, err := database.NewPostgresDB(&cfg.Database); err == nil {
			db = d
			st = repository.NewPostgresStore(db)
			log.Info("DB enabled for homesketch-data")
		} else {
			log.Warn("DB enabled but connection failed, falling back to in-memory store", zap.Error(err))
		}
	}
	if st == nil {
		st = repository.NewMemoryStore()
	}

	// 账务检查器（未启用时为 nil，删除草图一律归档）
	var billing service.BillingChecker
	if cfg.Billing.Enabled {
		billing = service.NewBillingClient(cfg.Billing.BaseURL, log)
	}

	sketchSvc := service.NewSketchService(st, billing, costCache, log)
	roomSvc := service.NewRoomService(st, costCache, log)
	wallSvc := service.NewWallService(st, costCache, log)
	fixtureSvc := service.NewFixtureService(st, costCache, log)
	measurementSvc := service.NewMeasurementService(st, log)
	costSvc := service.NewCostService(st, costCache, log)
	bulkSvc := service.NewBulkService(st, costCache, log)
	duplicateSvc := service.NewDuplicateService(st, log)

	router := httpapi.NewRouter(log)
	router.RegisterSketchRoutes(httpapi.NewSketchHandler(sketchSvc, roomSvc, measurementSvc, costSvc, duplicateSvc, log))
	router.RegisterEntityRoutes(
		httpapi.NewRoomHandler(roomSvc, wallSvc, fixtureSvc, log),
		httpapi.NewWallHandler(wallSvc, log),
		httpapi.NewFixtureHandler(fixtureSvc, log),
		httpapi.NewMeasurementHandler(measurementSvc, log),
	)
	router.RegisterBulkRoutes(httpapi.NewBulkHandler(bulkSvc, log))
	router.RegisterGeometryRoutes(httpapi.NewGeometryHandler(log))

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		cancel()
	case <-errCh:
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	_ = redisClient.Close()
	if db != nil {
		_ = db.Close()
	}
}

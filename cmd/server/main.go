package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"github.com/gwind/medicoes/internal/bot"
	"github.com/gwind/medicoes/internal/catalog"
	"github.com/gwind/medicoes/internal/config"
	"github.com/gwind/medicoes/internal/domain/consumption"
	"github.com/gwind/medicoes/internal/domain/inventory"
	"github.com/gwind/medicoes/internal/domain/materials"
	"github.com/gwind/medicoes/internal/infra/db"
	httpx "github.com/gwind/medicoes/internal/infra/http"
	"github.com/gwind/medicoes/internal/infra/logger"
	"github.com/gwind/medicoes/internal/infra/smartsheet"
	"github.com/gwind/medicoes/internal/mirror"
	service "github.com/gwind/medicoes/internal/service/consumption"
	"github.com/gwind/medicoes/internal/syncer"
	"github.com/gwind/medicoes/migrations"
)

// submitTimeout bounds the local transaction of one submission.
const submitTimeout = 10 * time.Second

func runMigrations(dsn string) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	sqlDB, err := goose.OpenDBWithDriver("postgres", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()
	return goose.Up(sqlDB, ".")
}

func main() {
	configPath := flag.String("config", "config/example.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.App.Env)
	if cfg.App.Timezone != "" {
		if loc, err := time.LoadLocation(cfg.App.Timezone); err == nil {
			time.Local = loc
		} else {
			log.Warn("unknown timezone, keeping system default", "tz", cfg.App.Timezone, "err", err)
		}
	}

	if err := runMigrations(cfg.Postgres.DSN); err != nil {
		log.Error("migrations failed", "err", err)
		return
	}
	log.Info("migrations applied")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Error("db connect failed", "err", err)
		return
	}
	defer pool.Close()
	log.Info("db connected")

	materialsRepo := materials.NewRepo(pool)
	eventsRepo := consumption.NewRepo(pool)
	inventoryRepo := inventory.NewRepo(pool)
	ledger := inventory.NewLedger(inventoryRepo, log)

	sheets := smartsheet.New(cfg.Smartsheet.BaseURL, cfg.Smartsheet.Token, cfg.Smartsheet.Timeout)
	if !cfg.Smartsheet.Configured() {
		log.Warn("smartsheet not configured: sync and mirroring are disabled")
	}

	publisher := mirror.New(sheets, cfg.Smartsheet.MeasurementsSheetID, cfg.Smartsheet.Timeout, log)
	consumptionSvc := service.NewConsumptionService(materialsRepo, ledger, publisher, log, submitTimeout)
	engine := syncer.NewEngine(sheets, materialsRepo, ledger, cfg.Smartsheet.MeasurementsSheetID, log)
	importer := catalog.NewImporter(materialsRepo, sheets, cfg.Smartsheet.MaterialsSheetID, log)

	var wg sync.WaitGroup

	if cfg.Telegram.Token != "" {
		api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
		if err != nil {
			log.Error("telegram init failed", "err", err)
		} else {
			b := bot.New(api, log, cfg.Telegram.AdminChatID, materialsRepo, engine)
			ledger.OnDepleted(b.NotifyDepleted)
			engine.OnResult(b.NotifySync)

			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := b.Run(ctx, 60); err != nil && !errors.Is(err, context.Canceled) {
					log.Error("bot stopped", "err", err)
				}
			}()
			log.Info("telegram bot started", "user", api.Self.UserName)
		}
	}

	if cfg.Sync.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			engine.Start(ctx, cfg.Sync.InitialDelay, cfg.Sync.Interval)
		}()
	}

	api := httpx.NewAPI(httpx.Deps{
		Materials:   materialsRepo,
		Movements:   inventoryRepo,
		Catalog:     importer,
		Consumption: consumptionSvc,
		Events:      eventsRepo,
		Sync:        engine,
		Token:       sheets,
		Sheets: httpx.SheetsConfig{
			MaterialsSheetID:    cfg.Smartsheet.MaterialsSheetID,
			MeasurementsSheetID: cfg.Smartsheet.MeasurementsSheetID,
		},
		Log: log,
	})
	srv := httpx.New(cfg.HTTP.Addr, cfg.Metrics.Enabled, cfg.HTTP.ReadTimeout, cfg.HTTP.WriteTimeout, api)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", "err", err)
			stop()
		}
	}()
	log.Info("HTTP server started", "addr", cfg.HTTP.Addr)

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)

	wg.Wait()
	publisher.Wait()
	log.Info("graceful shutdown complete")
}

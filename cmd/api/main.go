package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/inventario-stock/internal/application/inventory"
	"github.com/jhoicas/inventario-stock/internal/domain/repository"
	"github.com/jhoicas/inventario-stock/internal/infrastructure/audit"
	"github.com/jhoicas/inventario-stock/internal/infrastructure/catalog"
	"github.com/jhoicas/inventario-stock/internal/infrastructure/memory"
	infranats "github.com/jhoicas/inventario-stock/internal/infrastructure/nats"
	"github.com/jhoicas/inventario-stock/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/inventario-stock/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/inventario-stock/internal/interfaces/http"
	"github.com/jhoicas/inventario-stock/pkg/config"
	"github.com/jhoicas/inventario-stock/pkg/logger"
)

// storage repositorios según el driver configurado.
type storage struct {
	txRunner   inventory.TxRunner
	levels     repository.StockLevelRepository
	history    repository.StockHistoryRepository
	transfers  repository.StockTransferRepository
	alerts     repository.LowStockAlertRepository
	products   repository.ProductRepository
	warehouses repository.WarehouseRepository
	ids        repository.IdentifierStore
	close      func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("storage", cfg.DB.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer store.close()

	var cache inventory.SummaryCache
	if cfg.Redis.Enabled() {
		client, err := infraredis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer client.Close()
		cache = infraredis.NewSummaryCache(client, cfg.Redis.SummaryTTL)
	}

	var publisher inventory.AlertPublisher
	if cfg.NATS.Enabled() {
		conn, err := infranats.Connect(cfg.NATS.URL, cfg.App.Name, log.Component("nats"))
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a NATS")
		}
		defer conn.Drain()
		publisher = infranats.NewAlertPublisher(conn, cfg.NATS.Subject)
	}

	zl := log.Zerolog()
	dispatcher := inventory.NewDispatcher(inventory.DispatcherConfig{
		Workers:     cfg.Stock.DispatchWorkers,
		QueueSize:   cfg.Stock.DispatchQueue,
		TaskTimeout: cfg.Stock.TaskTimeout,
	}, zl)
	auditLogger := audit.NewLogger(log.Component("audit"))

	ledger := inventory.NewStockLedger(store.txRunner, store.history, cache, zl)
	aggregator := inventory.NewStockAggregator(store.levels, store.warehouses, cache, zl)
	allocator := inventory.NewIdAllocator(store.ids, inventory.IdAllocatorConfig{
		Width:       cfg.Stock.IDWidth,
		MaxAttempts: cfg.Stock.IDMaxAttempts,
	}, zl)
	detector := inventory.NewLowStockDetector(inventory.DetectorDeps{
		Products:      store.products,
		Alerts:        store.alerts,
		Aggregator:    aggregator,
		Publisher:     publisher,
		Dispatcher:    dispatcher,
		Audit:         auditLogger,
		CriticalRatio: cfg.Stock.AlertCriticalRatio,
	}, zl)
	adjuster := inventory.NewStockAdjustmentEngine(inventory.AdjustmentDeps{
		Ledger:     ledger,
		Products:   store.products,
		Warehouses: store.warehouses,
		Evaluator:  detector,
		Dispatcher: dispatcher,
		Audit:      auditLogger,
	}, zl)
	workflow := inventory.NewTransferWorkflow(inventory.TransferDeps{
		TxRunner:   store.txRunner,
		Transfers:  store.transfers,
		Products:   store.products,
		Warehouses: store.warehouses,
		Aggregator: aggregator,
		Ledger:     ledger,
		Allocator:  allocator,
		Evaluator:  detector,
		Dispatcher: dispatcher,
		Audit:      auditLogger,
		Prefix:     cfg.Stock.TransferPrefix,
	}, zl)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		// Los ids de ruta y query viajan a tareas en segundo plano.
		Immutable: true,
	})
	app.Use(recover.New())

	httpRouter.Router(app, httpRouter.RouterDeps{
		Aggregator:    aggregator,
		Ledger:        ledger,
		Adjuster:      adjuster,
		Transfers:     workflow,
		Detector:      detector,
		JWTSecret:     cfg.JWT.Secret,
		StorageDriver: cfg.DB.Driver,
		Log:           log.Component("http"),
	})

	// Barrido periódico de alertas cuyo stock ya se recuperó.
	sweepCtx, stopSweep := context.WithCancel(ctx)
	if cfg.Stock.AutoResolveInterval > 0 {
		go autoResolveLoop(sweepCtx, detector, cfg.Stock.AutoResolveInterval, log)
	}

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	stopSweep()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	// Espera las tareas en curso (auditoría, alertas) antes de cerrar conexiones.
	dispatcher.Close()

	log.Info().Msg("aplicación detenida")
}

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.DB.Driver == config.StorageDriverMemory {
		mem := memory.NewStore()
		if cfg.Stock.CatalogFile != "" {
			c, err := catalog.Load(cfg.Stock.CatalogFile)
			if err != nil {
				return nil, err
			}
			for _, w := range c.Warehouses {
				mem.AddWarehouse(w)
			}
			for _, p := range c.Products {
				mem.AddProduct(p)
			}
			log.Info().Int("products", len(c.Products)).Int("warehouses", len(c.Warehouses)).Msg("catálogo cargado")
		}
		return &storage{
			txRunner:   mem,
			levels:     mem.Levels(),
			history:    mem.History(),
			transfers:  mem.Transfers(),
			alerts:     mem.Alerts(),
			products:   mem.Products(),
			warehouses: mem.Warehouses(),
			ids:        mem.TransferIDs(),
			close:      func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB, log.Component("postgres"))
	if err != nil {
		return nil, err
	}
	if cfg.DB.Migrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
	}
	ids, err := postgres.NewIdentifierStore(pool, "stock_transfers")
	if err != nil {
		pool.Close()
		return nil, err
	}
	return &storage{
		txRunner:   postgres.NewTxRunner(pool),
		levels:     postgres.NewStockLevelRepository(pool),
		history:    postgres.NewStockHistoryRepository(pool),
		transfers:  postgres.NewStockTransferRepository(pool),
		alerts:     postgres.NewLowStockAlertRepository(pool),
		products:   postgres.NewProductRepository(pool),
		warehouses: postgres.NewWarehouseRepository(pool),
		ids:        ids,
		close:      pool.Close,
	}, nil
}

func autoResolveLoop(ctx context.Context, detector *inventory.LowStockDetector, every time.Duration, log *logger.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			resolved, err := detector.AutoResolveAlerts(ctx)
			if err != nil {
				log.Error().Err(err).Msg("auto-resolución de alertas")
				continue
			}
			if len(resolved) > 0 {
				log.Info().Int("resolved", len(resolved)).Msg("alertas auto-resueltas")
			}
		}
	}
}

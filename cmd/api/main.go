package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/inventario-tienda/internal/application/inventory"
	"github.com/jhoicas/inventario-tienda/internal/domain/repository"
	"github.com/jhoicas/inventario-tienda/internal/infrastructure/cache"
	"github.com/jhoicas/inventario-tienda/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-tienda/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-tienda/internal/infrastructure/seed"
	httpRouter "github.com/jhoicas/inventario-tienda/internal/interfaces/http"
	"github.com/jhoicas/inventario-tienda/pkg/config"
	"github.com/jhoicas/inventario-tienda/pkg/logger"
)

// stores repositorios y runner transaccional del almacén elegido.
type stores struct {
	txRunner  inventory.TxRunner
	stock     repository.StockRepository
	movements repository.InventoryMovementRepository
	products  repository.ProductRepository
	locations repository.LocationRepository
	transfers repository.TransferRepository
	close     func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Inventory.Store).
		Msg("iniciando aplicación")

	ctx := context.Background()

	var st *stores
	switch cfg.Inventory.Store {
	case config.StoreMemory:
		st, err = memoryStores(cfg)
	default:
		st, err = postgresStores(ctx, cfg)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacén de inventario")
	}
	defer st.close()

	engineOpts := []inventory.Option{inventory.WithLogger(log)}
	var stockCache inventory.StockCache
	if cfg.Redis.Addr != "" {
		client, err := cache.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer client.Close()
		stockCache = cache.NewStockCache(client, cfg.Redis.TTL, cfg.Redis.Prefix)
		engineOpts = append(engineOpts, inventory.WithStockCache(stockCache))
	}

	engine := inventory.NewMovementEngine(st.txRunner, st.products, st.locations, engineOpts...)
	queries := inventory.NewStockQueries(inventory.QueryRepos{
		Stock:     st.stock,
		Movements: st.movements,
		Products:  st.products,
		Locations: st.locations,
		Transfers: st.transfers,
	}, stockCache, log)
	queries.SetCriticalThreshold(cfg.Inventory.CriticalThreshold)

	if cfg.JWT.Secret == "" {
		log.Warn().Msg("JWT_SECRET vacío: rutas de inventario sin autenticación")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "store": cfg.Inventory.Store})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Movements: engine,
		Queries:   queries,
		JWTSecret: cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

func postgresStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if cfg.DB.Migrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
	}
	return &stores{
		txRunner:  postgres.NewTxRunner(pool, cfg.Inventory.LockTimeout),
		stock:     postgres.NewStockRepository(pool),
		movements: postgres.NewInventoryMovementRepository(pool),
		products:  postgres.NewProductRepository(pool),
		locations: postgres.NewLocationRepository(pool),
		transfers: postgres.NewTransferRepository(pool),
		close:     pool.Close,
	}, nil
}

func memoryStores(cfg *config.Config) (*stores, error) {
	store := memory.NewStore(memory.WithLockTimeout(cfg.Inventory.LockTimeout))
	if cfg.Inventory.SeedFile != "" {
		catalog, err := seed.LoadFile(cfg.Inventory.SeedFile)
		if err != nil {
			return nil, err
		}
		for _, l := range catalog.Locations {
			store.AddLocation(l)
		}
		for _, p := range catalog.Products {
			store.AddProduct(p)
		}
	}
	return &stores{
		txRunner:  store,
		stock:     store.Stock(),
		movements: store.Movements(),
		products:  store.Products(),
		locations: store.Locations(),
		transfers: store.Transfers(),
		close:     func() {},
	}, nil
}

// seed carga ubicaciones y productos de referencia en PostgreSQL.
//
// Uso: go run ./cmd/seed -catalog catalogo.json [-products productos.csv -latin1]
// Aplica schema.sql antes de insertar; los registros existentes se actualizan.
// Con -token <empleado> solo imprime un JWT firmado con JWT_SECRET y termina.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jhoicas/inventario-tienda/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-tienda/internal/infrastructure/seed"
	"github.com/jhoicas/inventario-tienda/pkg/config"
	pkgjwt "github.com/jhoicas/inventario-tienda/pkg/jwt"
	"github.com/jhoicas/inventario-tienda/pkg/logger"
)

func main() {
	catalogPath := flag.String("catalog", "", "catálogo JSON con locations y products")
	productsCSV := flag.String("products", "", "CSV de productos (id,sku,name,retail_price,wholesale_price,dozen_price)")
	latin1 := flag.Bool("latin1", false, "el CSV está en ISO-8859-1")
	tokenFor := flag.String("token", "", "emitir un JWT para este empleado y salir")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	if *tokenFor != "" {
		tok, err := pkgjwt.Generate(cfg.JWT.Secret, *tokenFor, cfg.JWT.Issuer, cfg.JWT.Expiration)
		if err != nil {
			log.Fatal().Err(err).Msg("emitir token")
		}
		fmt.Println(tok)
		return
	}

	catalog := &seed.Catalog{}
	if *catalogPath != "" {
		if catalog, err = seed.LoadFile(*catalogPath); err != nil {
			log.Fatal().Err(err).Msg("catálogo")
		}
	}
	if *productsCSV != "" {
		f, err := os.Open(*productsCSV)
		if err != nil {
			log.Fatal().Err(err).Msg("abrir CSV de productos")
		}
		products, err := seed.ReadProductsCSV(f, *latin1)
		_ = f.Close()
		if err != nil {
			log.Fatal().Err(err).Msg("CSV de productos")
		}
		catalog.Products = append(catalog.Products, products...)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("migración")
	}

	locations := postgres.NewLocationRepository(pool)
	for i := range catalog.Locations {
		if err := locations.Upsert(ctx, &catalog.Locations[i]); err != nil {
			log.Fatal().Err(err).Str("location_id", catalog.Locations[i].ID).Msg("ubicación")
		}
	}
	products := postgres.NewProductRepository(pool)
	now := time.Now()
	for i := range catalog.Products {
		p := &catalog.Products[i]
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		if err := products.Upsert(ctx, p); err != nil {
			log.Fatal().Err(err).Str("product_id", p.ID).Msg("producto")
		}
	}

	log.Info().
		Int("locations", len(catalog.Locations)).
		Int("products", len(catalog.Products)).
		Msg("catálogo cargado")
}

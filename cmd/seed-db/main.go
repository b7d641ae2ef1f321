// Command seed-db loads the catalog seed data (products, maintenance
// services), the default store settings row and an admin API key into
// PostgreSQL. Safe to rerun: everything is upserted.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/weenmaint/storefront-api/internal/handler"
	"github.com/weenmaint/storefront-api/internal/storage/postgres"
)

type productJSON struct {
	Name            string           `json:"name"`
	Slug            string           `json:"slug"`
	Description     string           `json:"description"`
	Price           decimal.Decimal  `json:"price"`
	DiscountedPrice *decimal.Decimal `json:"discounted_price"`
	StockQuantity   int              `json:"stock_quantity"`
	InStock         bool             `json:"in_stock"`
	Category        string           `json:"category"`
	ImageURL        string           `json:"image_url"`
	Promo           bool             `json:"promo"`
	Rating          decimal.Decimal  `json:"rating"`
	NumRatings      int              `json:"num_ratings"`
}

type serviceJSON struct {
	Name         string          `json:"name"`
	Slug         string          `json:"slug"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	PriceUnit    string          `json:"price_unit"`
	Availability string          `json:"availability"`
	AvgDuration  int             `json:"avg_duration"`
	ImageURL     string          `json:"image_url"`
	Rating       decimal.Decimal `json:"rating"`
	NumRatings   int             `json:"num_ratings"`
}

const upsertProductSQL = `INSERT INTO products
	(name, slug, description, price, discounted_price, stock_quantity,
	 in_stock, category, image_url, promo, rating, num_ratings)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	ON CONFLICT (slug) DO UPDATE SET
		name = EXCLUDED.name,
		description = EXCLUDED.description,
		price = EXCLUDED.price,
		discounted_price = EXCLUDED.discounted_price,
		stock_quantity = EXCLUDED.stock_quantity,
		in_stock = EXCLUDED.in_stock,
		category = EXCLUDED.category,
		image_url = EXCLUDED.image_url,
		promo = EXCLUDED.promo,
		rating = EXCLUDED.rating,
		num_ratings = EXCLUDED.num_ratings`

const upsertServiceSQL = `INSERT INTO services
	(name, slug, description, price, price_unit, availability,
	 avg_duration, image_url, rating, num_ratings)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (slug) DO UPDATE SET
		name = EXCLUDED.name,
		description = EXCLUDED.description,
		price = EXCLUDED.price,
		price_unit = EXCLUDED.price_unit,
		availability = EXCLUDED.availability,
		avg_duration = EXCLUDED.avg_duration,
		image_url = EXCLUDED.image_url,
		rating = EXCLUDED.rating,
		num_ratings = EXCLUDED.num_ratings`

const upsertAPIKeySQL = `INSERT INTO api_keys (id, key_hash, name, active)
	VALUES ($1, $2, $3, true)
	ON CONFLICT (id) DO UPDATE SET
		key_hash = EXCLUDED.key_hash,
		name = EXCLUDED.name,
		active = true`

func main() {
	var (
		databaseURL  string
		productsFile string
		servicesFile string
		apiKey       string
		apiKeyPepper string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file")
	flag.StringVar(&servicesFile, "services-file", "db/seed/services.json", "path to services JSON file")
	flag.StringVar(&apiKey, "api-key", "", "admin API key to seed (or WEEN_SEED_API_KEY env)")
	flag.StringVar(&apiKeyPepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or WEEN_API_KEY_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if apiKey == "" {
		apiKey = os.Getenv("WEEN_SEED_API_KEY")
	}
	if apiKey == "" {
		slog.Error("API key is required: set --api-key or WEEN_SEED_API_KEY")
		os.Exit(1)
	}
	if apiKeyPepper == "" {
		apiKeyPepper = os.Getenv("WEEN_API_KEY_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile, servicesFile, apiKey, apiKeyPepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile, servicesFile, apiKey, pepper string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedProducts(ctx, pool, productsFile); err != nil {
		return errors.Wrap(err, "seed products")
	}

	if err := seedServices(ctx, pool, servicesFile); err != nil {
		return errors.Wrap(err, "seed services")
	}

	if err := seedAPIKey(ctx, pool, apiKey, pepper); err != nil {
		return errors.Wrap(err, "seed api key")
	}

	return nil
}

func seedProducts(ctx context.Context, pool *pgxpool.Pool, productsFile string) error {
	slog.Info("reading products file", slog.String("path", productsFile))

	data, err := os.ReadFile(productsFile)
	if err != nil {
		return errors.Wrap(err, "read products file")
	}

	var products []productJSON
	if err := json.Unmarshal(data, &products); err != nil {
		return errors.Wrap(err, "parse products JSON")
	}

	slog.Info("upserting products", slog.Int("count", len(products)))

	// Independent rows, bounded concurrency.
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, p := range products {
		g.Go(func() error {
			var discounted decimal.NullDecimal
			if p.DiscountedPrice != nil {
				discounted = decimal.NullDecimal{Decimal: *p.DiscountedPrice, Valid: true}
			}
			_, err := pool.Exec(ctx, upsertProductSQL,
				p.Name, p.Slug, p.Description, p.Price, discounted,
				p.StockQuantity, p.InStock, p.Category, p.ImageURL, p.Promo,
				p.Rating, p.NumRatings,
			)
			if err != nil {
				return errors.Wrapf(err, "upsert product %s", p.Slug)
			}
			slog.Info("upserted product", slog.String("slug", p.Slug), slog.String("name", p.Name))
			return nil
		})
	}
	return g.Wait()
}

func seedServices(ctx context.Context, pool *pgxpool.Pool, servicesFile string) error {
	slog.Info("reading services file", slog.String("path", servicesFile))

	data, err := os.ReadFile(servicesFile)
	if err != nil {
		return errors.Wrap(err, "read services file")
	}

	var services []serviceJSON
	if err := json.Unmarshal(data, &services); err != nil {
		return errors.Wrap(err, "parse services JSON")
	}

	slog.Info("upserting services", slog.Int("count", len(services)))

	for _, s := range services {
		_, err := pool.Exec(ctx, upsertServiceSQL,
			s.Name, s.Slug, s.Description, s.Price, s.PriceUnit,
			s.Availability, s.AvgDuration, s.ImageURL, s.Rating, s.NumRatings,
		)
		if err != nil {
			return errors.Wrapf(err, "upsert service %s", s.Slug)
		}
		slog.Info("upserted service", slog.String("slug", s.Slug), slog.String("name", s.Name))
	}

	return nil
}

func seedAPIKey(ctx context.Context, pool *pgxpool.Pool, apiKey, pepper string) error {
	slog.Info("seeding admin API key")

	keyHash := handler.HashAPIKey(apiKey, []byte(pepper))

	_, err := pool.Exec(ctx, upsertAPIKeySQL, "default", keyHash, "Default admin key")
	if err != nil {
		return errors.Wrap(err, "upsert admin API key")
	}

	slog.Info("upserted API key", slog.String("id", "default"))
	return nil
}

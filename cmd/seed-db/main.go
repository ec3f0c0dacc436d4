// Command seed-db provisions a fresh database with the default admin account
// and a small starter catalog so a new deployment is usable immediately.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/IMAD-HB/ets-louaguef-sayah/internal/domain/auth"
	"github.com/IMAD-HB/ets-louaguef-sayah/internal/domain/brand"
	"github.com/IMAD-HB/ets-louaguef-sayah/internal/domain/product"
	"github.com/IMAD-HB/ets-louaguef-sayah/internal/domain/user"
	"github.com/IMAD-HB/ets-louaguef-sayah/internal/repository"
)

func main() {
	var (
		databaseURL   string
		adminUsername string
		adminPassword string
		withCatalog   bool
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&adminUsername, "admin-username", "admin", "username for the bootstrap admin account")
	flag.StringVar(&adminPassword, "admin-password", "", "password for the bootstrap admin account (or ETS_SEED_ADMIN_PASSWORD env)")
	flag.BoolVar(&withCatalog, "with-catalog", false, "also seed a small sample brand and product catalog")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if adminPassword == "" {
		adminPassword = os.Getenv("ETS_SEED_ADMIN_PASSWORD")
	}
	if adminPassword == "" {
		slog.Error("admin password is required: set --admin-password or ETS_SEED_ADMIN_PASSWORD")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, adminUsername, adminPassword, withCatalog); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, adminUsername, adminPassword string, withCatalog bool) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	users := repository.NewUserRepository(pool)
	if err := seedAdmin(ctx, users, adminUsername, adminPassword); err != nil {
		return errors.Wrap(err, "seed admin")
	}

	if withCatalog {
		brands := repository.NewBrandRepository(pool)
		products := repository.NewProductRepository(pool)
		if err := seedCatalog(ctx, brands, products); err != nil {
			return errors.Wrap(err, "seed catalog")
		}
	}

	return nil
}

func seedAdmin(ctx context.Context, users user.Repository, username, password string) error {
	if _, err := users.GetByUsername(ctx, username); err == nil {
		slog.Info("admin account already exists, skipping", slog.String("username", username))
		return nil
	} else if !errors.Is(err, user.ErrNotFound) {
		return errors.Wrap(err, "check existing admin")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return errors.Wrap(err, "hash admin password")
	}

	admin := &user.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		Name:         "Administrator",
		Tier:         user.TierRetail,
		Role:         user.RoleAdmin,
		CustomPrices: user.CustomPrices{},
		TotalDebt:    decimal.Zero,
	}
	if err := users.Create(ctx, admin); err != nil {
		return errors.Wrap(err, "create admin user")
	}

	slog.Info("created admin account", slog.String("username", username))
	return nil
}

func seedCatalog(ctx context.Context, brands brand.Repository, products product.Repository) error {
	slog.Info("seeding sample catalog")

	b := &brand.Brand{
		ID:   uuid.NewString(),
		Name: "Maison Demo",
	}
	if err := brands.Create(ctx, b); err != nil {
		if errors.Is(err, brand.ErrNameTaken) {
			slog.Info("sample brand already exists, skipping catalog")
			return nil
		}
		return errors.Wrap(err, "create sample brand")
	}

	samples := []product.Product{
		{
			ID:          uuid.NewString(),
			Name:        "Huile de table 5L",
			Description: "Bidon d'huile de table, carton de 4",
			BrandID:     b.ID,
			BasePrices: product.BasePrices{
				Retail:         decimal.NewFromInt(780),
				Wholesale:      decimal.NewFromInt(740),
				SuperWholesale: decimal.NewFromInt(710),
			},
			QuantityAvailable: 120,
		},
		{
			ID:          uuid.NewString(),
			Name:        "Semoule fine 25kg",
			Description: "Sac de semoule fine",
			BrandID:     b.ID,
			BasePrices: product.BasePrices{
				Retail:         decimal.NewFromInt(2100),
				Wholesale:      decimal.NewFromInt(2010),
				SuperWholesale: decimal.NewFromInt(1950),
			},
			QuantityAvailable: 60,
		},
	}

	for i := range samples {
		p := &samples[i]
		if err := products.Create(ctx, p); err != nil {
			return errors.Wrapf(err, "create sample product %s", p.Name)
		}
		slog.Info("created product", slog.String("id", p.ID), slog.String("name", p.Name))
	}

	return nil
}

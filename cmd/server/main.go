package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	storefront "github.com/goliatone/go-storefront"
	"github.com/goliatone/go-storefront/middleware/guard"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("server: %v", err)
	}
}

func run() error {
	cfg, err := storefront.LoadConfig()
	if err != nil {
		return err
	}

	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer sqldb.Close()

	db := bun.NewDB(sqldb, sqlitedialect.New())

	ctx := context.Background()
	if err := storefront.CreateSchema(ctx, db); err != nil {
		return err
	}

	repo := storefront.NewRepositoryManager(db)
	repo.MustValidate()

	provider := storefront.NewUserProvider(repo.Users())
	auther := storefront.NewAuthenticator(provider, cfg)
	httpAuth := storefront.NewHTTPAuthenticator(auther, cfg)

	protected := guard.New(guard.Config{
		CookieName: cfg.CookieName,
		Validator:  auther.TokenService(),
		Resolve: func(ctx context.Context, id string) (*storefront.User, error) {
			return repo.Users().GetByIdentifier(ctx, id)
		},
	})

	app := fiber.New(fiber.Config{
		AppName: "go-storefront",
	})

	controller := storefront.NewController(
		storefront.WithRepository(repo),
		storefront.WithHTTPAuthenticator(httpAuth),
	)
	controller.RegisterRoutes(app, protected)

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(cfg.ListenAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil &&
		!errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	return nil
}

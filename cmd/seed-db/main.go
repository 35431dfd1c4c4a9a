package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/mealbox/internal/domain/addon"
	"github.com/xenking/mealbox/internal/domain/auth"
	"github.com/xenking/mealbox/internal/repository"
)

const upsertConcurrency = 4

func main() {
	var (
		databaseURL string
		mealsFile   string
		development bool
		tokenUser   string
		tokenRole   string
		jwtSecret   string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&mealsFile, "meals-file", "", "path to a meals JSON file, optionally .gz (default: embedded catalog)")
	flag.BoolVar(&development, "dev", false, "human-readable log output")
	flag.StringVar(&tokenUser, "token-user", "", "also print a development access token for this user id")
	flag.StringVar(&tokenRole, "token-role", string(auth.RoleCustomer), "role of the development token (customer or provider)")
	flag.StringVar(&jwtSecret, "jwt-secret", "", "token signing secret (or MEALBOX_JWT_SECRET env)")
	flag.Parse()

	lg, err := newLogger(development)
	if err != nil {
		_, _ = os.Stderr.WriteString("init logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = lg.Sync() }()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		lg.Error("Database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, lg, databaseURL, mealsFile); err != nil {
		lg.Error("Seed failed", zap.Error(err))
		os.Exit(1)
	}

	lg.Info("Seed completed")

	if tokenUser != "" {
		if jwtSecret == "" {
			jwtSecret = os.Getenv("MEALBOX_JWT_SECRET")
		}
		token, err := devToken(jwtSecret, tokenUser, tokenRole)
		if err != nil {
			lg.Error("Issue token failed", zap.Error(err))
			os.Exit(1)
		}
		_, _ = os.Stdout.WriteString(token + "\n")
	}
}

// devToken signs a day-long token for local testing against the API.
func devToken(secret, user, role string) (string, error) {
	if secret == "" {
		return "", errors.New("jwt secret is required: set --jwt-secret or MEALBOX_JWT_SECRET")
	}
	r, err := auth.ParseRole(role)
	if err != nil {
		return "", err
	}
	return auth.NewTokenVerifier([]byte(secret)).Issue(auth.Principal{UserID: user, Role: r}, 24*time.Hour)
}

func newLogger(development bool) (*zap.Logger, error) {
	if development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(ctx context.Context, lg *zap.Logger, databaseURL, mealsFile string) error {
	data, err := readCatalog(mealsFile)
	if err != nil {
		return errors.Wrapf(err, "read catalog %q", mealsFile)
	}
	meals, err := parseCatalog(data)
	if err != nil {
		return err
	}

	lg.Info("Connecting to database")
	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	lg.Info("Running migrations")
	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	addOns := addon.Defaults()
	if err := repository.NewAddOnRepository(pool).Upsert(ctx, addOns); err != nil {
		return errors.Wrap(err, "upsert add-ons")
	}
	lg.Info("Upserted add-ons", zap.Int("count", len(addOns)))

	repo := repository.NewMealRepository(pool)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(upsertConcurrency)
	for _, m := range meals {
		g.Go(func() error {
			if err := repo.Upsert(gctx, m); err != nil {
				return errors.Wrapf(err, "upsert meal %s", m.ID)
			}
			lg.Info("Upserted meal",
				zap.String("id", m.ID),
				zap.String("provider_id", m.ProviderID),
				zap.Int("portions", len(m.Portions)),
			)
			return nil
		})
	}
	return g.Wait()
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/phrazzld/scaffold-api/internal/domain"
	"github.com/phrazzld/scaffold-api/internal/store"
	"github.com/phrazzld/scaffold-api/migrations"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newInitDataCmd(opts *rootOptions) *cobra.Command {
	var seedFile string

	cmd := &cobra.Command{
		Use:   "initdata",
		Short: "Migrate the database and create the first superuser",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, logger, err := loadAppConfig(opts)
			if err != nil {
				return err
			}

			db, dialect, err := openDatabase(ctx, cfg.Database, logger)
			if err != nil {
				return err
			}
			defer db.Close()

			if _, err := migrations.Up(ctx, db, cfg.Database.Driver); err != nil {
				return err
			}

			app, err := newApplication(cfg, logger, db, dialect)
			if err != nil {
				return err
			}
			defer app.cleanup()

			if err := app.ensureFirstSuperuser(ctx); err != nil {
				return err
			}
			if seedFile != "" {
				seed, err := loadSeedFile(seedFile)
				if err != nil {
					return err
				}
				if err := app.applySeed(ctx, seed); err != nil {
					return err
				}
			}
			logger.Info("initial data created")
			return nil
		},
	}
	cmd.Flags().StringVar(&seedFile, "seed", "", "YAML file of users and items to create")
	return cmd
}

// ensureFirstSuperuser creates the configured first superuser unless an
// account with that email already exists.
func (app *application) ensureFirstSuperuser(ctx context.Context) error {
	su := app.config.FirstSuperuser
	if su.Email == "" {
		app.logger.Warn("first_superuser.email is not set; skipping superuser creation")
		return nil
	}

	created, err := app.ensureUser(ctx, domain.UserCreate{
		Email:       su.Email,
		Password:    su.Password,
		IsSuperuser: boolPtr(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create first superuser: %w", err)
	}
	if created != nil {
		app.logger.Info("first superuser created", "user_id", created.ID)
	}
	return nil
}

// ensureUser creates in unless its email is taken. It returns the new user,
// or nil when the user already existed.
func (app *application) ensureUser(ctx context.Context, in domain.UserCreate) (*domain.User, error) {
	_, err := app.userService.GetByEmail(ctx, in.Email)
	if err == nil {
		return nil, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	return app.userService.Create(ctx, in)
}

// seedData is the layout of a --seed file.
type seedData struct {
	Users []seedUser `yaml:"users"`
}

type seedUser struct {
	Email       string     `yaml:"email"`
	Password    string     `yaml:"password"`
	FullName    *string    `yaml:"full_name"`
	IsSuperuser bool       `yaml:"is_superuser"`
	Items       []seedItem `yaml:"items"`
}

type seedItem struct {
	Title       string  `yaml:"title"`
	Description *string `yaml:"description"`
	Price       string  `yaml:"price"`
}

func loadSeedFile(path string) (*seedData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	var seed seedData
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}
	return &seed, nil
}

// applySeed creates the seeded users. Items are only created together with
// a new user, so running the same seed twice adds nothing.
func (app *application) applySeed(ctx context.Context, seed *seedData) error {
	for _, su := range seed.Users {
		user, err := app.ensureUser(ctx, domain.UserCreate{
			Email:       su.Email,
			Password:    su.Password,
			FullName:    su.FullName,
			IsSuperuser: boolPtr(su.IsSuperuser),
		})
		if err != nil {
			return fmt.Errorf("seed user %s: %w", su.Email, err)
		}
		if user == nil {
			app.logger.Debug("seed user exists, skipping", "email", su.Email)
			continue
		}

		for _, si := range su.Items {
			in := domain.ItemCreate{Title: si.Title, Description: si.Description}
			if si.Price != "" {
				price, err := decimal.NewFromString(si.Price)
				if err != nil {
					return fmt.Errorf("seed item %q: invalid price %q: %w", si.Title, si.Price, err)
				}
				in.Price = &price
			}
			if _, err := app.itemService.Create(ctx, user, in); err != nil {
				return fmt.Errorf("seed item %q: %w", si.Title, err)
			}
		}
		app.logger.Info("seed user created", "user_id", user.ID, "items", len(su.Items))
	}
	return nil
}

func boolPtr(b bool) *bool { return &b }

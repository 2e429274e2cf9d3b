// Command seed applies the schema, syncs roles and permissions, and creates
// the administrator account.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Sanilblank/blog-api/internal/app"
	"github.com/Sanilblank/blog-api/internal/platform/db"
	"github.com/Sanilblank/blog-api/internal/rbac"
	"github.com/Sanilblank/blog-api/internal/shared"
	"github.com/Sanilblank/blog-api/internal/users"
	"github.com/Sanilblank/blog-api/migrations"
)

func main() {
	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.AdminPassword == "" {
		log.Fatal("ADMIN_PASSWORD must be set to seed the administrator")
	}

	ctx := context.Background()
	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	fmt.Println("→ Applying migrations...")
	if err := db.Migrate(ctx, pool, migrations.FS); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	fmt.Println("→ Seeding roles and permissions...")
	rbacService := rbac.NewService(pool, rbac.DefaultRegistry())
	if err := rbacService.Sync(ctx); err != nil {
		log.Fatalf("seed rbac: %v", err)
	}

	fmt.Println("→ Seeding administrator...")
	userService := users.NewService(users.NewRepository(pool), cfg.BcryptCost, cfg.DefaultPerPage)
	if err := seedAdmin(ctx, userService, rbacService, cfg); err != nil {
		log.Fatalf("seed admin: %v", err)
	}

	fmt.Println("✓ Seed complete at", time.Now().Format(time.RFC3339))
}

func seedAdmin(ctx context.Context, userService *users.Service, rbacService *rbac.Service, cfg *app.Config) error {
	existing, err := userService.FindByEmail(ctx, cfg.AdminEmail)
	switch {
	case err == nil:
		return rbacService.AssignRole(ctx, existing.ID, rbac.RoleAdmin)
	case !errors.Is(err, shared.ErrNotFound):
		return err
	}
	_, err = userService.Store(ctx, users.CreateRequest{
		Name:                 "Super Admin",
		Email:                cfg.AdminEmail,
		Password:             cfg.AdminPassword,
		PasswordConfirmation: cfg.AdminPassword,
		Role:                 string(rbac.RoleAdmin),
	})
	return err
}

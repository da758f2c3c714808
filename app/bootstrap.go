// app/bootstrap.go
package app

import (
	"context"
	"fmt"

	"invensys/config"
	"invensys/db"

	"go.uber.org/zap"
)

// BootstrapAdmin creates the configured superuser when no admin exists.
func BootstrapAdmin(ctx context.Context, cfg config.Config, repo *db.Repo, log *zap.Logger) error {
	created, err := repo.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	if created {
		log.Warn("[BOOTSTRAP] no admin found, created the configured superuser; change its password",
			zap.String("username", cfg.AdminUsername))
	}
	return nil
}

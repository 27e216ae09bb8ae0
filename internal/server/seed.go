package server

import (
	"context"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// SeedAdmin creates the initial admin account from configuration.
// Idempotent: does nothing if any admin already exists or if no credentials
// are configured.
func SeedAdmin(ctx context.Context, logger *slog.Logger, admin AdminStore, email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	count, err := admin.AdminCount(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := admin.CreateAdmin(ctx, email, string(hash)); err != nil {
		return err
	}

	logger.Info("admin account created", "email", email)
	return nil
}

package db

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/campushub/api/internal/config"
	"github.com/campushub/api/internal/domain/user"
	"github.com/campushub/api/internal/security"
)

// EnsureAdminUser inserts the bootstrap admin if one is configured and
// not already present. Without it nobody can reach the admin-only
// registration route.
func EnsureAdminUser(ctx context.Context, database *mongo.Database, cfg config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	users := database.Collection("users")

	err := users.FindOne(ctx, bson.D{{Key: "email", Value: cfg.AdminEmail}}).Err()

	if err == nil {
		return nil
	}

	if !errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}

	hash, err := security.HashPassword(cfg.AdminPassword)

	if err != nil {
		return err
	}

	now := time.Now().UTC()

	u := user.User{
		UserID:       uuid.NewString(),
		Email:        cfg.AdminEmail,
		PasswordHash: hash,
		Name:         cfg.AdminName,
		Role:         user.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err = users.InsertOne(ctx, u)

	// a concurrently starting replica may have seeded between the
	// FindOne and the insert; the unique email index makes that safe
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}

	return err
}

package db_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campushub/api/internal/config"
	"github.com/campushub/api/internal/db"
	"github.com/campushub/api/internal/domain/user"
)

// these tests need a running mongo; set TEST_MONGO_URI to enable them

func setupSeedDB(t *testing.T) *mongo.Database {
	t.Helper()

	uri := os.Getenv("TEST_MONGO_URI")

	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))

	if err != nil {
		t.Fatalf("mongo connect: %v", err)
	}

	t.Cleanup(func() {
		cctx, ccancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer ccancel()
		_ = client.Disconnect(cctx)
	})

	database := client.Database("campushub_seed_" + uuid.NewString()[:8])

	t.Cleanup(func() {
		cctx, ccancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer ccancel()
		_ = database.Drop(cctx)
	})

	if err := db.EnsureIndexes(ctx, database); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}

	return database
}

func countAdmins(t *testing.T, database *mongo.Database, email string) int64 {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	n, err := database.Collection("users").CountDocuments(ctx, bson.D{{Key: "email", Value: email}})

	if err != nil {
		t.Fatalf("count admins: %v", err)
	}

	return n
}

func TestEnsureAdminUserIdempotent(t *testing.T) {
	database := setupSeedDB(t)

	cfg := config.Config{
		AdminEmail:    "admin@example.com",
		AdminPassword: "admin-password-1",
		AdminName:     "Seed Admin",
	}

	ctx := context.Background()

	if err := db.EnsureAdminUser(ctx, database, cfg); err != nil {
		t.Fatalf("first seed: %v", err)
	}

	// the second call must leave the collection untouched
	if err := db.EnsureAdminUser(ctx, database, cfg); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	if n := countAdmins(t, database, cfg.AdminEmail); n != 1 {
		t.Fatalf("admin documents = %d, want 1", n)
	}

	var u user.User

	err := database.Collection("users").FindOne(ctx, bson.D{{Key: "email", Value: cfg.AdminEmail}}).Decode(&u)

	if err != nil {
		t.Fatalf("load seeded admin: %v", err)
	}

	if u.Role != user.RoleAdmin {
		t.Fatalf("role = %q, want %q", u.Role, user.RoleAdmin)
	}

	if u.PasswordHash == cfg.AdminPassword || u.PasswordHash == "" {
		t.Fatal("seeded admin password is not hashed")
	}
}

func TestEnsureAdminUserConcurrentStartup(t *testing.T) {
	database := setupSeedDB(t)

	cfg := config.Config{
		AdminEmail:    "admin@example.com",
		AdminPassword: "admin-password-1",
		AdminName:     "Seed Admin",
	}

	// two replicas racing on a fresh database; the loser hits the
	// unique email index and must still come up clean
	var wg sync.WaitGroup
	errs := make([]error, 2)

	for i := range errs {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()
			errs[i] = db.EnsureAdminUser(context.Background(), database, cfg)
		}(i)
	}

	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("replica %d seed: %v", i, err)
		}
	}

	if n := countAdmins(t, database, cfg.AdminEmail); n != 1 {
		t.Fatalf("admin documents = %d, want 1", n)
	}
}

func TestEnsureAdminUserSkipsWhenUnconfigured(t *testing.T) {
	database := setupSeedDB(t)

	if err := db.EnsureAdminUser(context.Background(), database, config.Config{}); err != nil {
		t.Fatalf("unconfigured seed: %v", err)
	}

	if n := countAdmins(t, database, "admin@example.com"); n != 0 {
		t.Fatalf("admin documents = %d, want 0", n)
	}
}

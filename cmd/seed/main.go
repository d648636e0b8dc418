// seed creates the initial admin account. Idempotent: exits cleanly when the
// admin already exists. Username and password come from SEED_ADMIN_USERNAME
// and SEED_ADMIN_PASSWORD (defaults: admin, plus a required password).
package main

import (
	"context"
	"log"
	"os"
	"time"

	admindomain "echo-memory/backend/internal/admin/domain"
	adminrepo "echo-memory/backend/internal/admin/repository"
	"echo-memory/backend/internal/config"
	"echo-memory/backend/internal/db"
	"echo-memory/backend/internal/security"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	username := os.Getenv("SEED_ADMIN_USERNAME")
	if username == "" {
		username = "admin"
	}
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if password == "" {
		log.Fatal("SEED_ADMIN_PASSWORD is not set")
	}

	pool, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	ctx := context.Background()
	admins := adminrepo.NewPostgresRepository(pool)

	existing, err := admins.GetByUsername(ctx, username)
	if err != nil {
		log.Fatalf("lookup admin: %v", err)
	}
	if existing != nil {
		log.Printf("admin %q already exists, nothing to do", username)
		return
	}

	hasher := security.NewHasher(cfg.Argon2MemoryKiB, cfg.Argon2Time, cfg.Argon2Parallelism)
	hash, err := hasher.Hash([]byte(password))
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	admin := &admindomain.Admin{
		Username:     username,
		PasswordHash: hash,
		Role:         admindomain.RoleSuperadmin,
		CreatedAt:    time.Now().UTC(),
	}
	if err := admins.Create(ctx, admin); err != nil {
		log.Fatalf("create admin: %v", err)
	}
	log.Printf("admin %q created with id %d", username, admin.ID)
}

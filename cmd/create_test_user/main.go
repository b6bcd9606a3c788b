package main

import (
	"context"
	"log"
	"os"

	"tasktracker/internal/db"
	"tasktracker/internal/domain"
	"tasktracker/internal/repository"
	"tasktracker/internal/service"
)

// Seeds a test account and prints a usable bearer token.
// Expects DATABASE_URL and JWT_SECRET env vars.
func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET not set")
	}

	pool := db.Connect(dsn)
	defer pool.Close()

	repo := repository.NewUserRepository(pool)
	ctx := context.Background()

	email := "test@example.com"

	u, err := repo.GetByEmail(ctx, email)
	if err == nil {
		log.Printf("user already exists id=%d\n", u.ID)
	} else {
		hash, err := service.HashPassword("password123")
		if err != nil {
			log.Fatalf("hash password failed: %v", err)
		}

		u = &domain.User{
			Name:         "Tester",
			Email:        email,
			PasswordHash: hash,
			Role:         domain.RoleUser,
			Organization: "acme",
		}

		if err := repo.Create(ctx, u); err != nil {
			log.Fatalf("create user failed: %v", err)
		}

		log.Printf("user created id=%d\n", u.ID)
	}

	tokens := service.NewTokenService([]byte(secret))
	token, err := tokens.Issue(u.ID, u.Role)
	if err != nil {
		log.Fatalf("failed to issue token: %v", err)
	}

	log.Printf("token: %s\n", token)
}

package main

import (
	"context"
	"errors"
	"flag"
	"log"

	"todo_webapp/internal/config"
	"todo_webapp/internal/db"
	"todo_webapp/internal/domain"
	"todo_webapp/internal/repository"
	"todo_webapp/internal/service"
)

// Creates (or reuses) a demo account straight against the database and prints a token for it.
func main() {
	name := flag.String("name", "Tester", "display name")
	email := flag.String("email", "test@example.com", "email address")
	password := flag.String("password", "password123", "password")
	flag.Parse()

	cfg := config.Load()
	if cfg.StorageDriver != config.StorageDriverPostgres {
		log.Fatal("create_test_user needs STORAGE_DRIVER=postgres")
	}

	pool := db.Connect(cfg.DatabaseURL)
	defer pool.Close()

	users := repository.NewUserRepository(pool)
	audit := service.NewAuditService(repository.NewAuditRepository(pool))
	auth := service.NewAuthService(users, service.NewBcryptHasher(), service.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL), audit)
	ctx := context.Background()

	res, err := auth.Register(ctx, *name, *email, *password)
	switch {
	case errors.Is(err, domain.ErrDuplicateEmail):
		log.Printf("user %s already exists, logging in\n", *email)
		res, err = auth.Login(ctx, *email, *password)
		if err != nil {
			log.Fatalf("login failed: %v", err)
		}
	case err != nil:
		log.Fatalf("register failed: %v", err)
	default:
		log.Printf("user created id=%d\n", res.User.ID)
	}

	// verify read
	u, err := users.GetByID(ctx, res.User.ID)
	if err != nil {
		log.Fatalf("get by id failed: %v", err)
	}
	log.Printf("fetched user id=%d name=%s email=%s created_at=%v\n", u.ID, u.Name, u.Email, u.CreatedAt)
	log.Printf("token=%s\n", res.Token)
}

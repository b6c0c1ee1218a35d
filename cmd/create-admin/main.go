// Command create-admin creates a staff account, or promotes an existing user
// to staff and resets their password.
//
//	create-admin -username admin -password 'long-secret' [-email admin@example.com]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"sweet-shop-api/internal/config"
	"sweet-shop-api/internal/logging"
	"sweet-shop-api/internal/repository"
	"sweet-shop-api/internal/service"
	"sweet-shop-api/pkg/database"
	"sweet-shop-api/pkg/jwt"

	"github.com/joho/godotenv"
)

func main() {
	username := flag.String("username", "", "account username (required)")
	password := flag.String("password", "", "new password, at least 8 characters (required)")
	email := flag.String("email", "", "email address")
	flag.Parse()

	// 1. Load Env
	_ = godotenv.Load()
	cfg := config.Load()
	log := logging.New(cfg.LogLevel)

	// 2. Setup Database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := repository.Migrate(db); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// 3. Create or promote
	auth := service.NewAuthService(repository.NewUserRepo(db), jwt.NewManager(jwt.Config{}))
	ctx := logging.IntoContext(context.Background(), log)

	user, created, err := auth.EnsureAdmin(ctx, *username, *email, *password)
	if err != nil {
		fmt.Fprintln(os.Stderr, "create-admin:", err)
		flag.Usage()
		os.Exit(2)
	}

	if created {
		fmt.Printf("Created staff user %s (%s)\n", user.Username, user.ID)
	} else {
		fmt.Printf("Promoted %s to staff and reset the password\n", user.Username)
	}
}

// Command create_admin seeds an administrator principal and prints its API
// key. The key is shown exactly once; only its hash is stored.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/cmdgate/cmdgate/domain/entity"
	"github.com/cmdgate/cmdgate/infrastructure/config"
	"github.com/cmdgate/cmdgate/infrastructure/persistence/postgres"
	"github.com/cmdgate/cmdgate/infrastructure/service/apikey"
)

func main() {
	credits := flag.Int64("credits", 1000, "initial credit balance")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	keys := apikey.NewService(cfg.Security.BcryptCost)
	plaintext, keyID, hash, err := keys.Generate()
	if err != nil {
		log.Fatalf("failed to generate api key: %v", err)
	}

	admin := entity.NewPrincipal(uuid.New().String(), keyID, hash, entity.RoleAdmin, *credits)
	if err := postgres.NewPrincipalRepository(db).Create(context.Background(), admin); err != nil {
		log.Fatalf("failed to create admin: %v", err)
	}

	fmt.Printf("admin created: %s\napi key (save it, it will not be shown again): %s\n", admin.ID, plaintext)
}

// Command migrate applies the gateway's PostgreSQL schema.
package main

import (
	"database/sql"
	"log"

	_ "github.com/lib/pq"

	"github.com/cmdgate/cmdgate/infrastructure/config"
	"github.com/cmdgate/cmdgate/infrastructure/persistence/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	for _, stmt := range postgres.Migrations() {
		if _, err := db.Exec(stmt); err != nil {
			log.Fatalf("migration failed: %v\nstatement: %s", err, stmt)
		}
	}
	log.Println("migrations applied")
}

package main

import (
	"context"
	"flag"
	"log"

	"fitpro-backend/config"
	"fitpro-backend/repository"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

// Usage: migrate [up|down|status|version|redo|reset] [args...]
func main() {
	flag.Parse()
	command := "up"
	args := flag.Args()
	if len(args) > 0 {
		command, args = args[0], args[1:]
	}

	if !config.LoadDotEnv(".env", "../../.env") {
		log.Println("Warning: No .env file found, using environment variables")
	}
	cfg := config.Load()

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	if err := repository.RunMigrationCommand(ctx, db, command, args...); err != nil {
		log.Fatalf("%v", err)
	}
	log.Printf("✓ migrate %s completed", command)
}

package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"fitpro-backend/config"
	"fitpro-backend/models"
	"fitpro-backend/repository"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/term"
)

func main() {
	email := flag.String("email", "", "account email")
	name := flag.String("name", "", "display name")
	flag.Parse()

	if !config.LoadDotEnv(".env", "../../.env") {
		log.Println("Warning: No .env file found, using environment variables")
	}
	cfg := config.Load()

	reader := bufio.NewReader(os.Stdin)
	if *email == "" {
		*email = prompt(reader, "Email: ")
	}
	if *name == "" {
		*name = prompt(reader, "Name: ")
	}

	fmt.Print("Password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		log.Fatalf("Failed to read password: %v", err)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	identity, err := repository.NewAccountRepository(pool).CreateAccount(ctx, *email, string(password), *name)
	if err != nil {
		if models.KindOf(err) == models.KindConflict {
			log.Printf("Account with email %s already exists", *email)
			return
		}
		log.Fatalf("Failed to create account: %v", err)
	}

	fmt.Printf("✅ Account created successfully!\n")
	fmt.Printf("   ID: %s\n", identity.ID)
	fmt.Printf("   Email: %s\n", identity.Email)
	fmt.Printf("   Name: %s\n", identity.Name)
}

func prompt(r *bufio.Reader, label string) string {
	fmt.Print(label)
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		log.Fatalf("Failed to read input: %v", err)
	}
	return strings.TrimSpace(line)
}

package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/Rrens/studymate/internal/config"
	"github.com/Rrens/studymate/internal/repository"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	fmt.Printf("Migrating postgres at %s:%d...\n", cfg.Database.Host, cfg.Database.Port)
	if err := repository.RunMigrations(repository.DriverPostgres, cfg.Database.DSN()); err != nil {
		fmt.Fprintf(os.Stderr, "postgres: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("postgres schema is up to date")

	if cfg.Storage.MySQL.DSN == "" {
		return
	}

	fmt.Println("Migrating mysql...")
	if err := repository.RunMigrations(repository.DriverMySQL, repository.MySQLMigrationURL(cfg.Storage.MySQL.DSN)); err != nil {
		fmt.Fprintf(os.Stderr, "mysql: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("mysql schema is up to date")
}

package main

import (
	"log"
	"os"

	"wine-cellar-be/internal/model"
	"wine-cellar-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDB(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Step 1: Setting up extensions...")
	setupSQL := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	}
	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}

	log.Println("Step 2: Running AutoMigrate...")
	models := []interface{}{
		&model.User{},
		&model.Region{},
		&model.Producer{},
		&model.Wine{},
		&model.Bottle{},
		&model.EnrichmentCacheEntry{},
	}
	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	log.Println("Step 3: Ensuring foreign keys...")
	fkSQL := []string{
		`ALTER TABLE producers ADD CONSTRAINT fk_producers_region FOREIGN KEY (region_id) REFERENCES regions(id) ON DELETE SET NULL;`,
		`ALTER TABLE wines ADD CONSTRAINT fk_wines_producer FOREIGN KEY (producer_id) REFERENCES producers(id) ON DELETE SET NULL;`,
		`ALTER TABLE wines ADD CONSTRAINT fk_wines_region FOREIGN KEY (region_id) REFERENCES regions(id) ON DELETE SET NULL;`,
		`ALTER TABLE bottles ADD CONSTRAINT fk_bottles_wine FOREIGN KEY (wine_id) REFERENCES wines(id) ON DELETE CASCADE;`,
	}
	for _, sql := range fkSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: FK may already exist: %v", err)
		}
	}

	log.Println("✅ Migration complete")
}

package db

import (
	"log"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"plume/internal/logger"
	"plume/internal/models"
)

// Init opens the database and migrates the schema. Setup failure is
// fatal; nothing works without the row store.
func Init() *gorm.DB {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		// Fallback for local dev if not set
		dsn = "host=localhost user=postgres password=postgres dbname=plume port=5432 sslmode=disable"
	}

	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	logger.L().Info("database connection established")

	if err := Migrate(conn); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	logger.L().Info("database migration completed")

	return conn
}

// Migrate applies the schema; shared with the test databases.
func Migrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
	)
}

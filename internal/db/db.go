package db

import (
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"caspian/internal/models"
)

// Connect opens the database and runs migrations. The handle is returned to
// the caller and threaded through the stores, there is no package-level DB.
func Connect(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	log.Println("Database connection established")

	if err := Migrate(gdb); err != nil {
		return nil, err
	}
	log.Println("Database migration completed")

	return gdb, nil
}

// Migrate creates or updates the schema for all models.
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
	)
}

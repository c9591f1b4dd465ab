package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"failboard/internal/models"
)

// Init opens the PostgreSQL connection and migrates the schema.
// TranslateError is on so the vote unique index violation comes back
// as gorm.ErrDuplicatedKey instead of a driver-specific error.
func Init(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := gdb.AutoMigrate(
		&models.User{},
		&models.Tag{},
		&models.Post{},
		&models.Vote{},
	); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	return gdb, nil
}

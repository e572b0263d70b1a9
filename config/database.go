package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/studysync/studysync-api/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens postgres when DB_URL is set and sqlite otherwise, then migrates every model.
func Connect(env *Environment) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if env.DatabaseURL != "" {
		dialector = postgres.Open(env.DatabaseURL)
	} else {
		dialector = sqlite.Open(env.DatabasePath)
	}

	level := logger.Warn
	if env.DatabaseLogs {
		level = logger.Info
	}

	db, err := Open(dialector, logger.New(log.New(os.Stdout, "\r\n", log.LstdFlags), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	}))
	if err != nil {
		return nil, err
	}
	return db, nil
}

// Open is shared by Connect and the tests, which pass an in-memory sqlite dialector.
func Open(dialector gorm.Dialector, gormLogger logger.Interface) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
		// Documents reference each other loosely; ownership is checked in handlers.
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the schema for every model.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Subject{},
		&models.Flashcard{},
		&models.Note{},
		&models.Group{},
		&models.GroupMember{},
		&models.GroupInvite{},
	)
	if err != nil {
		return fmt.Errorf("failed to auto migrate database: %w", err)
	}
	return nil
}

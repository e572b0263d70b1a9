package main

import (
	"log"

	"github.com/studysync/studysync-api/config"
	"github.com/studysync/studysync-api/models"
	"gorm.io/gorm"
)

// Replaces the default public subjects. Their IDs are fixed, so reseeding keeps references stable.
func main() {
	env, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := config.Connect(env)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	subjects := models.DefaultSubjects()
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("created_by = ?", models.SeedOwnerID).Delete(&models.Subject{}).Error; err != nil {
			return err
		}
		for i := range subjects {
			if err := subjects[i].Validate(); err != nil {
				return err
			}
			if err := tx.Create(&subjects[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Failed to seed subjects: %v", err)
	}

	log.Println("Seeded subjects:")
	for _, s := range subjects {
		log.Printf("- %s (ID: %s)", s.Name, s.ID)
	}
}

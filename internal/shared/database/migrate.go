package database

import (
	"fmt"
	"log"

	"eventx/internal/cancellation"
	"eventx/internal/events"
	"eventx/internal/tickets"

	"gorm.io/gorm"
)

// Migrate runs GORM auto-migration for all persistent models
func Migrate(db *gorm.DB) error {
	log.Println("🔄 Running database migrations...")

	err := db.AutoMigrate(
		&events.Event{},
		&tickets.Ticket{},
		&cancellation.EventCancellation{},
	)
	if err != nil {
		return fmt.Errorf("auto-migration failed: %w", err)
	}

	log.Println("✅ Database migrations completed")
	return nil
}

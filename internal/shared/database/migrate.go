package database

import (
	"clustermap/internal/venues"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	// The venue registry needs uuid_generate_v4 for primary keys.
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		return err
	}

	return db.AutoMigrate(
		&venues.Venue{},
	)
}

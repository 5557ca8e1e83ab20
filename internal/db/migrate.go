package db

import (
	"arbscan/internal/repository"
)

func AutoMigrate(db *DB) error {
	if db == nil || db.Gorm == nil || db.SQL == nil {
		return nil
	}
	return db.Gorm.AutoMigrate(
		&repository.ScanRecord{},
	)
}

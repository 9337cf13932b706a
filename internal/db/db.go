package db

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"
)

// Open opens a sqlite database through the pure-Go modernc driver and
// enables foreign key enforcement.
func Open(path string) (*gorm.DB, error) {
	g, err := gorm.Open(sqlite.New(sqlite.Config{
		DriverName: "sqlite",
		DSN:        path,
	}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	g.Exec("PRAGMA foreign_keys = ON;")
	return g, nil
}

package config

import (
	"fmt"
	"strings"
)

// StoreDriver selects the product store implementation.
type StoreDriver uint8

const (
	StoreDriverPostgres StoreDriver = iota
	StoreDriverGorm
)

// String returns the string representation of the store driver.
func (d StoreDriver) String() string {
	return []string{"postgres", "gorm"}[d]
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (d *StoreDriver) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "postgres", "pgx":
		*d = StoreDriverPostgres
	case "gorm":
		*d = StoreDriverGorm
	default:
		return fmt.Errorf("unknown store driver: %s", text)
	}
	return nil
}

func (d StoreDriver) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

type Store struct {
	Driver StoreDriver `env:"STORE_DRIVER" envDefault:"postgres"`

	// GormDialect is either "postgres" or "sqlite". Only read when Driver is gorm.
	GormDialect string `env:"GORM_DIALECT" envDefault:"sqlite"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"catalog.db"`
}

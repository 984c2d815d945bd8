package database

import (
	"fmt"

	"github.com/panjiggm/syntegra-app-sub003/config"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewDatabase opens the Postgres connection used by every repository.
// TranslateError is enabled so unique-constraint violations surface as
// gorm.ErrDuplicatedKey, which the attempt-number retry loop depends on.
func NewDatabase(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		cfg.Database.Host,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Name,
		cfg.Database.Port,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Error().Err(err).Msg("Failed to connect to database")
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Info().Str("host", cfg.Database.Host).Str("db", cfg.Database.Name).Msg("Database connection established")
	return db, nil
}

package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

type DB struct {
	db     *sql.DB
	logger *zerolog.Logger
}

func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	l := logger.With().Str("component", "database").Logger()
	l.Info().Str("path", path).Msg("база данных инициализирована")

	return &DB{db: db, logger: &l}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		// Заявки на питчинг
		`CREATE TABLE IF NOT EXISTS pitching_requests (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            telegram_id INTEGER NOT NULL,
            username TEXT,
            release_artist TEXT NOT NULL,
            description TEXT NOT NULL,
            photos_link TEXT NOT NULL,
            listen_link TEXT NOT NULL,
            clip_link TEXT,
            socials TEXT NOT NULL,
            extra TEXT,
            status TEXT NOT NULL DEFAULT 'new',
            pdf_path TEXT,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,
		// Бронирования студии
		`CREATE TABLE IF NOT EXISTS bookings (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            telegram_id INTEGER NOT NULL,
            username TEXT,
            date TEXT NOT NULL,
            time_from INTEGER NOT NULL,
            time_to INTEGER NOT NULL,
            confirmed INTEGER NOT NULL DEFAULT 0,
            notified_24h INTEGER NOT NULL DEFAULT 0,
            notified_1h INTEGER NOT NULL DEFAULT 0
        )`,

		`CREATE INDEX IF NOT EXISTS idx_pitching_telegram_id ON pitching_requests(telegram_id)`,
		`CREATE INDEX IF NOT EXISTS idx_pitching_status ON pitching_requests(status)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_confirmed ON bookings(confirmed)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_date ON bookings(date)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

func (db *DB) Close() error {
	return db.db.Close()
}

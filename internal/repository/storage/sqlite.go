package storage

import (
	"context"
	"database/sql"
	"fmt"

	// import the SQLite driver to register it with the database/sql package.
	_ "github.com/mattn/go-sqlite3"
)

const sqliteOptions = "?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on"

type Storage struct {
	Connection *sql.DB
}

func NewSQLiteStorage(path string) (*Storage, error) {
	conn, err := sql.Open("sqlite3", path+sqliteOptions)
	if err != nil {
		return nil, fmt.Errorf("can't open database: %w", err)
	}

	if err = conn.Ping(); err != nil {
		return nil, fmt.Errorf("can't connect to database: %w", err)
	}

	return &Storage{Connection: conn}, nil
}

// Init - creates the players and game_records tables.
func (that *Storage) Init(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS players (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT UNIQUE NOT NULL,
			total_games INTEGER NOT NULL DEFAULT 0,
			wins INTEGER NOT NULL DEFAULT 0,
			losses INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			last_played_at TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS game_records (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			red_player_id INTEGER NOT NULL,
			red_player_name TEXT NOT NULL,
			black_player_id INTEGER NOT NULL,
			black_player_name TEXT NOT NULL,
			winner_id INTEGER NOT NULL,
			winner_name TEXT NOT NULL,
			game_duration INTEGER NOT NULL,
			start_time TIMESTAMP NOT NULL,
			end_time TIMESTAMP NOT NULL,
			FOREIGN KEY(red_player_id) REFERENCES players(id),
			FOREIGN KEY(black_player_id) REFERENCES players(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_game_records_red ON game_records(red_player_id)`,
		`CREATE INDEX IF NOT EXISTS idx_game_records_black ON game_records(black_player_id)`,
	}

	for _, query := range queries {
		if _, err := that.Connection.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("can't create table: %w", err)
		}
	}

	return nil
}

func (that *Storage) Close() error {
	return that.Connection.Close()
}

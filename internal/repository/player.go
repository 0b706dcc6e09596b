package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/rocketscienceinc/xiangqi-backend/internal/apperror"
	"github.com/rocketscienceinc/xiangqi-backend/internal/entity"
)

const playerColumns = `id, name, total_games, wins, losses, created_at, last_played_at`

type PlayerRepository interface {
	Create(ctx context.Context, name string) (*entity.Player, error)
	GetByName(ctx context.Context, name string) (*entity.Player, error)
	Leaderboard(ctx context.Context, limit int) ([]*entity.Player, error)
}

type playerRepository struct {
	conn *sql.DB
}

func NewPlayerRepository(conn *sql.DB) PlayerRepository {
	return &playerRepository{
		conn: conn,
	}
}

func (that *playerRepository) Create(ctx context.Context, name string) (*entity.Player, error) {
	query := `INSERT INTO players (name, created_at) VALUES (?, ?)`

	createdAt := time.Now().UTC().Truncate(time.Second)

	result, err := that.conn.ExecContext(ctx, query, name, createdAt)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return nil, fmt.Errorf("player %q: %w", name, apperror.ErrAlreadyExists)
		}

		return nil, fmt.Errorf("can't save player: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("can't get player id: %w", err)
	}

	return &entity.Player{
		ID:        id,
		Name:      name,
		CreatedAt: createdAt,
	}, nil
}

func (that *playerRepository) GetByName(ctx context.Context, name string) (*entity.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE name = ?`

	return scanPlayer(that.conn.QueryRowContext(ctx, query, name))
}

// Leaderboard - players with at least one game, best win rate first.
func (that *playerRepository) Leaderboard(ctx context.Context, limit int) ([]*entity.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players
		WHERE total_games > 0
		ORDER BY CAST(wins AS REAL) / total_games DESC, wins DESC, name ASC
		LIMIT ?`

	rows, err := that.conn.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("can't query leaderboard: %w", err)
	}
	defer rows.Close()

	players := make([]*entity.Player, 0, limit)
	for rows.Next() {
		player, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, player)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("can't read leaderboard: %w", err)
	}

	return players, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlayer(row rowScanner) (*entity.Player, error) {
	var (
		player     entity.Player
		lastPlayed sql.NullTime
	)

	err := row.Scan(
		&player.ID,
		&player.Name,
		&player.TotalGames,
		&player.Wins,
		&player.Losses,
		&player.CreatedAt,
		&lastPlayed,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("can't find player: %w", err)
	}

	if lastPlayed.Valid {
		player.LastPlayedAt = &lastPlayed.Time
	}

	return &player, nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/xiangqi-backend/internal/entity"
)

const gameRecordColumns = `id, red_player_id, red_player_name, black_player_id, black_player_name,
	winner_id, winner_name, game_duration, start_time, end_time`

type GameRecordRepository interface {
	Save(ctx context.Context, record *entity.GameRecord) error
	ListByPlayer(ctx context.Context, playerID int64, limit int) ([]*entity.GameRecord, error)
}

type gameRecordRepository struct {
	conn *sql.DB
}

func NewGameRecordRepository(conn *sql.DB) GameRecordRepository {
	return &gameRecordRepository{
		conn: conn,
	}
}

// Save - inserts the record and updates both players' stats in one transaction.
func (that *gameRecordRepository) Save(ctx context.Context, record *entity.GameRecord) (err error) {
	tx, err := that.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("can't begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			err = errors.Join(err, tx.Rollback())
		}
	}()

	insert := `INSERT INTO game_records (
		red_player_id, red_player_name, black_player_id, black_player_name,
		winner_id, winner_name, game_duration, start_time, end_time
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := tx.ExecContext(ctx, insert,
		record.RedPlayerID, record.RedPlayerName,
		record.BlackPlayerID, record.BlackPlayerName,
		record.WinnerID, record.WinnerName,
		record.DurationSeconds,
		record.StartTime.UTC(), record.EndTime.UTC(),
	)
	if err != nil {
		return fmt.Errorf("can't save game record: %w", err)
	}

	stats := `UPDATE players SET
		total_games = total_games + 1,
		wins = wins + ?,
		losses = losses + ?,
		last_played_at = ?
	WHERE id = ?`

	if _, err = tx.ExecContext(ctx, stats, 1, 0, record.EndTime.UTC(), record.WinnerID); err != nil {
		return fmt.Errorf("can't update winner stats: %w", err)
	}

	if _, err = tx.ExecContext(ctx, stats, 0, 1, record.EndTime.UTC(), record.LoserID()); err != nil {
		return fmt.Errorf("can't update loser stats: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("can't commit game record: %w", err)
	}

	if record.ID, err = result.LastInsertId(); err != nil {
		return fmt.Errorf("can't get game record id: %w", err)
	}

	return nil
}

// ListByPlayer - the player's games, most recent first.
func (that *gameRecordRepository) ListByPlayer(ctx context.Context, playerID int64, limit int) ([]*entity.GameRecord, error) {
	query := `SELECT ` + gameRecordColumns + ` FROM game_records
		WHERE red_player_id = ? OR black_player_id = ?
		ORDER BY start_time DESC, id DESC
		LIMIT ?`

	rows, err := that.conn.QueryContext(ctx, query, playerID, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("can't query game records: %w", err)
	}
	defer rows.Close()

	records := make([]*entity.GameRecord, 0, limit)
	for rows.Next() {
		var record entity.GameRecord

		if err = rows.Scan(
			&record.ID,
			&record.RedPlayerID,
			&record.RedPlayerName,
			&record.BlackPlayerID,
			&record.BlackPlayerName,
			&record.WinnerID,
			&record.WinnerName,
			&record.DurationSeconds,
			&record.StartTime,
			&record.EndTime,
		); err != nil {
			return nil, fmt.Errorf("can't scan game record: %w", err)
		}

		records = append(records, &record)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("can't read game records: %w", err)
	}

	return records, nil
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/rocketscienceinc/xiangqi-backend/internal/entity"
)

const (
	defaultListLimit = 10
	maxListLimit     = 100
	maxNameLength    = 32
)

var (
	ErrInvalidName   = errors.New("invalid player name")
	ErrInvalidRecord = errors.New("invalid game record")
)

type playerRepo interface {
	Create(ctx context.Context, name string) (*entity.Player, error)
	GetByName(ctx context.Context, name string) (*entity.Player, error)
	Leaderboard(ctx context.Context, limit int) ([]*entity.Player, error)
}

type gameRecordRepo interface {
	Save(ctx context.Context, record *entity.GameRecord) error
	ListByPlayer(ctx context.Context, playerID int64, limit int) ([]*entity.GameRecord, error)
}

// PlayerUseCase - the player record store used by the game server and the REST API.
type PlayerUseCase struct {
	logger *slog.Logger

	players playerRepo
	records gameRecordRepo
}

func NewPlayerUseCase(logger *slog.Logger, players playerRepo, records gameRecordRepo) *PlayerUseCase {
	return &PlayerUseCase{
		logger:  logger.With("component", "player_usecase"),
		players: players,
		records: records,
	}
}

// LookupPlayer - finds a registered player by name.
func (that *PlayerUseCase) LookupPlayer(ctx context.Context, name string) (*entity.Player, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}

	player, err := that.players.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by name: %w", err)
	}

	return player, nil
}

// Register - creates a player with the given display name.
func (that *PlayerUseCase) Register(ctx context.Context, name string) (*entity.Player, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}

	player, err := that.players.Create(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}

	that.logger.Info("player registered", "playerID", player.ID, "name", player.Name)

	return player, nil
}

// RecordFinishedGame - stores a decisive game and updates both players' stats.
func (that *PlayerUseCase) RecordFinishedGame(ctx context.Context, record *entity.GameRecord) error {
	if record == nil || record.RedPlayerID <= 0 || record.BlackPlayerID <= 0 {
		return ErrInvalidRecord
	}

	if record.WinnerID != record.RedPlayerID && record.WinnerID != record.BlackPlayerID {
		return fmt.Errorf("%w: winner %d did not play", ErrInvalidRecord, record.WinnerID)
	}

	if err := that.records.Save(ctx, record); err != nil {
		return fmt.Errorf("failed to save game record: %w", err)
	}

	that.logger.Info("game recorded",
		"recordID", record.ID,
		"winner", record.WinnerName,
		"durationSeconds", record.DurationSeconds,
	)

	return nil
}

// Leaderboard - players ordered by win rate, then wins.
func (that *PlayerUseCase) Leaderboard(ctx context.Context, limit int) ([]*entity.Player, error) {
	players, err := that.players.Leaderboard(ctx, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}

	return players, nil
}

// History - the player's most recent games.
func (that *PlayerUseCase) History(ctx context.Context, name string, limit int) ([]*entity.GameRecord, error) {
	player, err := that.LookupPlayer(ctx, name)
	if err != nil {
		return nil, err
	}

	records, err := that.records.ListByPlayer(ctx, player.ID, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list game records: %w", err)
	}

	return records, nil
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxNameLength {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	return name, nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultListLimit
	case limit > maxListLimit:
		return maxListLimit
	default:
		return limit
	}
}

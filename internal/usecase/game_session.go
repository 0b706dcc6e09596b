package usecase

import (
	"errors"
	"fmt"
	"time"

	"github.com/rocketscienceinc/xiangqi-backend/internal/apperror"
	"github.com/rocketscienceinc/xiangqi-backend/internal/entity"
	"github.com/rocketscienceinc/xiangqi-backend/internal/xiangqi"
)

var (
	ErrSnapshotEnded   = errors.New("snapshot is of a finished game")
	ErrInvalidSnapshot = errors.New("invalid snapshot")
)

// MoveResult - what happened when a move was applied.
type MoveResult struct {
	Snapshot entity.Snapshot
	Mover    entity.Side
	Captured entity.Piece

	// Check is advisory: the side now to move has its general attacked.
	Check bool

	Ended    bool
	Duration time.Duration

	// Record is set for a finished game when both seats were identified.
	Record *entity.GameRecord
}

// GameSession - the authoritative state of the single game hosted by the server.
// It is not safe for concurrent use; the owner serializes access.
type GameSession struct {
	board     *entity.Board
	turn      entity.Side
	startedAt time.Time
	endedAt   time.Time
	ended     bool
	seats     [2]entity.Seat

	now func() time.Time
}

// NewGameSession - creates a session holding the opening position.
// A nil clock means time.Now.
func NewGameSession(now func() time.Time) *GameSession {
	if now == nil {
		now = time.Now
	}

	session := &GameSession{now: now}
	session.reset()

	return session
}

// Reset - restores the opening position with Red to move and restarts the clock.
func (that *GameSession) Reset() error {
	that.reset()

	if err := that.board.CheckStandardLayout(); err != nil {
		return fmt.Errorf("failed to reset game: %w", err)
	}

	return nil
}

// Restore - continues an unfinished game from a saved snapshot. The clock restarts.
func (that *GameSession) Restore(snapshot entity.Snapshot) error {
	if snapshot.Ended {
		return ErrSnapshotEnded
	}

	board := snapshot.Board()
	for _, side := range []entity.Side{entity.Red, entity.Black} {
		if _, ok := board.FindGeneral(side); !ok {
			return fmt.Errorf("%w: %s general is missing", ErrInvalidSnapshot, side)
		}
	}

	that.board = board
	that.turn = snapshot.Turn
	that.startedAt = that.now()
	that.endedAt = time.Time{}
	that.ended = false

	return nil
}

func (that *GameSession) reset() {
	that.board = entity.NewStandardBoard()
	that.turn = entity.Red
	that.startedAt = that.now()
	that.endedAt = time.Time{}
	that.ended = false
}

// SubmitMove - validates and applies a move for mover. Rejected moves leave the session untouched.
func (that *GameSession) SubmitMove(mover entity.Side, move entity.Move) (*MoveResult, error) {
	if that.ended {
		return nil, apperror.ErrGameFinished
	}

	if mover != that.turn {
		return nil, apperror.ErrNotYourTurn
	}

	if !xiangqi.IsLegal(that.board, move, mover) {
		return nil, fmt.Errorf("%w: %s", apperror.ErrIllegalMove, move)
	}

	captured, err := that.board.Apply(move)
	if err != nil {
		return nil, fmt.Errorf("failed to apply move: %w", err)
	}

	result := &MoveResult{
		Mover:    mover,
		Captured: captured,
	}

	if captured.Is(entity.General, mover.Opponent()) {
		that.ended = true
		that.endedAt = that.now()

		result.Ended = true
		result.Duration = that.endedAt.Sub(that.startedAt)
		result.Record = that.buildRecord(mover)
		result.Snapshot = that.Snapshot()

		return result, nil
	}

	that.turn = that.turn.Opponent()

	result.Check = xiangqi.IsInCheck(that.board, that.turn)
	result.Snapshot = that.Snapshot()

	return result, nil
}

func (that *GameSession) buildRecord(winner entity.Side) *entity.GameRecord {
	red, black := that.seats[entity.Red], that.seats[entity.Black]
	if !red.Identified() || !black.Identified() {
		return nil
	}

	winnerSeat := that.seats[winner]

	return &entity.GameRecord{
		RedPlayerID:     red.PlayerID,
		RedPlayerName:   red.Name,
		BlackPlayerID:   black.PlayerID,
		BlackPlayerName: black.Name,
		WinnerID:        winnerSeat.PlayerID,
		WinnerName:      winnerSeat.Name,
		DurationSeconds: int64(that.endedAt.Sub(that.startedAt) / time.Second),
		StartTime:       that.startedAt,
		EndTime:         that.endedAt,
	}
}

// Snapshot - returns a copy of the grid and whose turn it is.
func (that *GameSession) Snapshot() entity.Snapshot {
	return entity.Snapshot{
		Cells: that.board.Cells(),
		Turn:  that.turn,
		Ended: that.ended,
	}
}

func (that *GameSession) Turn() entity.Side {
	return that.turn
}

func (that *GameSession) IsEnded() bool {
	return that.ended
}

func (that *GameSession) StartedAt() time.Time {
	return that.startedAt
}

// Elapsed - game time so far; frozen once the game has ended.
func (that *GameSession) Elapsed() time.Duration {
	if that.ended {
		return that.endedAt.Sub(that.startedAt)
	}
	return that.now().Sub(that.startedAt)
}

// Seat - binds a player identity to a side for reporting.
func (that *GameSession) Seat(side entity.Side, seat entity.Seat) {
	that.seats[side] = seat
}

func (that *GameSession) Unseat(side entity.Side) {
	that.seats[side] = entity.Seat{}
}

func (that *GameSession) SeatOf(side entity.Side) entity.Seat {
	return that.seats[side]
}

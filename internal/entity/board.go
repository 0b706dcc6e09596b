package entity

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/xiangqi-backend/internal/apperror"
)

const (
	Rows = 10
	Cols = 9

	// rows 0-4 are Black's half, rows 5-9 are Red's half.
	RiverRow = 5

	palaceMinCol = 3
	palaceMaxCol = 5

	piecesPerSide = 16
)

var ErrInvalidLayout = errors.New("invalid opening layout")

type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (that Position) InBounds() bool {
	return that.Row >= 0 && that.Row < Rows && that.Col >= 0 && that.Col < Cols
}

func (that Position) String() string {
	return fmt.Sprintf("(%d,%d)", that.Row, that.Col)
}

// OnOwnSide - reports whether the position lies on the given side's half of the river.
func (that Position) OnOwnSide(side Side) bool {
	if side == Red {
		return that.Row >= RiverRow
	}
	return that.Row < RiverRow
}

// InPalace - reports whether the position lies in the given side's palace.
func (that Position) InPalace(side Side) bool {
	if that.Col < palaceMinCol || that.Col > palaceMaxCol {
		return false
	}
	if side == Red {
		return that.Row >= Rows-3
	}
	return that.Row <= 2
}

// Board - a 10x9 grid of pieces. Row 0 is Black's back rank, row 9 is Red's.
type Board struct {
	cells [Rows][Cols]Piece
}

// NewBoard - returns an empty board.
func NewBoard() *Board {
	return &Board{}
}

var backRank = [Cols]Kind{Chariot, Horse, Elephant, Advisor, General, Advisor, Elephant, Horse, Chariot}

// NewStandardBoard - returns a board with the opening position.
func NewStandardBoard() *Board {
	board := NewBoard()

	for col, kind := range backRank {
		board.cells[0][col] = NewPiece(kind, Black)
		board.cells[Rows-1][col] = NewPiece(kind, Red)
	}

	for _, col := range []int{1, 7} {
		board.cells[2][col] = NewPiece(Cannon, Black)
		board.cells[7][col] = NewPiece(Cannon, Red)
	}

	for col := 0; col < Cols; col += 2 {
		board.cells[3][col] = NewPiece(Soldier, Black)
		board.cells[6][col] = NewPiece(Soldier, Red)
	}

	return board
}

// PieceAt - returns the piece at the cell, or apperror.ErrOutOfRange.
func (that *Board) PieceAt(row, col int) (Piece, error) {
	pos := Position{Row: row, Col: col}
	if !pos.InBounds() {
		return Empty, fmt.Errorf("%w: %s", apperror.ErrOutOfRange, pos)
	}

	return that.cells[row][col], nil
}

// At - returns the piece at pos; out-of-range positions read as empty.
func (that *Board) At(pos Position) Piece {
	if !pos.InBounds() {
		return Empty
	}
	return that.cells[pos.Row][pos.Col]
}

func (that *Board) Place(row, col int, piece Piece) error {
	pos := Position{Row: row, Col: col}
	if !pos.InBounds() {
		return fmt.Errorf("%w: %s", apperror.ErrOutOfRange, pos)
	}

	that.cells[row][col] = piece

	return nil
}

func (that *Board) Clear(row, col int) error {
	return that.Place(row, col, Empty)
}

// FindGeneral - locates the side's general.
func (that *Board) FindGeneral(side Side) (Position, bool) {
	for row := range that.cells {
		for col, piece := range that.cells[row] {
			if piece.Is(General, side) {
				return Position{Row: row, Col: col}, true
			}
		}
	}

	return Position{}, false
}

// Apply - moves the piece at move.From onto move.To and returns whatever was captured.
// It performs no legality checking.
func (that *Board) Apply(move Move) (Piece, error) {
	if !move.From.InBounds() || !move.To.InBounds() {
		return Empty, fmt.Errorf("%w: %s", apperror.ErrOutOfRange, move)
	}

	captured := that.cells[move.To.Row][move.To.Col]
	that.cells[move.To.Row][move.To.Col] = that.cells[move.From.Row][move.From.Col]
	that.cells[move.From.Row][move.From.Col] = Empty

	return captured, nil
}

// Cells - returns a copy of the grid.
func (that *Board) Cells() [Rows][Cols]Piece {
	return that.cells
}

// Count - returns the number of pieces the side has on the board.
func (that *Board) Count(side Side) int {
	count := 0
	for row := range that.cells {
		for _, piece := range that.cells[row] {
			if !piece.IsEmpty() && piece.Side == side {
				count++
			}
		}
	}
	return count
}

// CheckStandardLayout - verifies the board holds exactly the opening position:
// 16 pieces per side, mirrored across the river, generals centered on the back ranks.
func (that *Board) CheckStandardLayout() error {
	for _, side := range []Side{Red, Black} {
		if count := that.Count(side); count != piecesPerSide {
			return fmt.Errorf("%w: %s has %d pieces", ErrInvalidLayout, side, count)
		}
	}

	if !that.cells[0][4].Is(General, Black) || !that.cells[Rows-1][4].Is(General, Red) {
		return fmt.Errorf("%w: generals are not centered", ErrInvalidLayout)
	}

	for row := 0; row < RiverRow; row++ {
		for col := 0; col < Cols; col++ {
			black, red := that.cells[row][col], that.cells[Rows-1-row][col]
			if black.IsEmpty() != red.IsEmpty() {
				return fmt.Errorf("%w: %s is not mirrored", ErrInvalidLayout, Position{Row: row, Col: col})
			}
			if black.IsEmpty() {
				continue
			}
			if black.Kind != red.Kind || black.Side != Black || red.Side != Red {
				return fmt.Errorf("%w: %s is not mirrored", ErrInvalidLayout, Position{Row: row, Col: col})
			}
		}
	}

	if *that != *NewStandardBoard() {
		return fmt.Errorf("%w: pieces are misplaced", ErrInvalidLayout)
	}

	return nil
}

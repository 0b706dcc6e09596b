package xiangqi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/xiangqi-backend/internal/entity"
)

// boardWith - builds a board from a placement map.
func boardWith(t *testing.T, pieces map[entity.Position]entity.Piece) *entity.Board {
	t.Helper()

	board := entity.NewBoard()
	for pos, piece := range pieces {
		require.NoError(t, board.Place(pos.Row, pos.Col, piece))
	}

	return board
}

func pos(row, col int) entity.Position {
	return entity.Position{Row: row, Col: col}
}

func legalMoves(board *entity.Board, side entity.Side) []entity.Move {
	var moves []entity.Move

	for fr := 0; fr < entity.Rows; fr++ {
		for fc := 0; fc < entity.Cols; fc++ {
			for tr := 0; tr < entity.Rows; tr++ {
				for tc := 0; tc < entity.Cols; tc++ {
					move := entity.NewMove(fr, fc, tr, tc)
					if IsLegal(board, move, side) {
						moves = append(moves, move)
					}
				}
			}
		}
	}

	return moves
}

func TestIsLegal_Basics(t *testing.T) {
	board := entity.NewStandardBoard()

	t.Run("Out of range endpoints are illegal", func(t *testing.T) {
		assert.False(t, IsLegal(board, entity.NewMove(9, 0, 10, 0), entity.Red))
		assert.False(t, IsLegal(board, entity.NewMove(-1, 0, 0, 0), entity.Black))
	})

	t.Run("Empty source is illegal", func(t *testing.T) {
		assert.False(t, IsLegal(board, entity.NewMove(5, 0, 4, 0), entity.Red))
	})

	t.Run("Moving the opponent's piece is illegal", func(t *testing.T) {
		assert.False(t, IsLegal(board, entity.NewMove(3, 0, 4, 0), entity.Red))
	})

	t.Run("Self capture is illegal", func(t *testing.T) {
		// red chariot onto red horse
		assert.False(t, IsLegal(board, entity.NewMove(9, 0, 9, 1), entity.Red))
	})

	t.Run("Unknown piece kind is illegal", func(t *testing.T) {
		odd := boardWith(t, map[entity.Position]entity.Piece{pos(5, 5): {Kind: entity.Kind(42), Side: entity.Red}})

		assert.False(t, IsLegal(odd, entity.NewMove(5, 5, 4, 5), entity.Red))
	})
}

func TestIsLegal_OpeningMoveCount(t *testing.T) {
	// Given: the opening position
	board := entity.NewStandardBoard()

	// Then: both sides have the well-known 44 opening moves
	assert.Len(t, legalMoves(board, entity.Red), 44)
	assert.Len(t, legalMoves(board, entity.Black), 44)
}

func TestIsLegal_IsPure(t *testing.T) {
	// Given: the opening position and a copy of it
	board := entity.NewStandardBoard()
	before := board.Cells()

	// When: evaluating every possible move twice
	first := legalMoves(board, entity.Red)
	second := legalMoves(board, entity.Red)

	// Then: the answers match and the board is untouched
	assert.Equal(t, first, second)
	assert.Equal(t, before, board.Cells())

	IsInCheck(board, entity.Black)
	assert.Equal(t, before, board.Cells())
}

func TestIsLegal_OrthogonalOnlyPieces(t *testing.T) {
	for _, kind := range []entity.Kind{entity.Chariot, entity.Cannon, entity.General} {
		t.Run(kind.String(), func(t *testing.T) {
			from := pos(8, 4)
			board := boardWith(t, map[entity.Position]entity.Piece{from: entity.NewPiece(kind, entity.Red)})

			for row := 0; row < entity.Rows; row++ {
				for col := 0; col < entity.Cols; col++ {
					if row == from.Row || col == from.Col {
						continue
					}
					move := entity.Move{From: from, To: pos(row, col)}
					assert.False(t, IsLegal(board, move, entity.Red), "%s %s", kind, move)
				}
			}
		})
	}
}

func TestIsLegal_Chariot(t *testing.T) {
	t.Run("Captures along an open rank", func(t *testing.T) {
		// Given: only a red chariot at (9,0) and a black soldier at (9,8)
		board := boardWith(t, map[entity.Position]entity.Piece{
			pos(9, 0): entity.NewPiece(entity.Chariot, entity.Red),
			pos(9, 8): entity.NewPiece(entity.Soldier, entity.Black),
		})

		// Then: the capture across the rank is legal
		assert.True(t, IsLegal(board, entity.NewMove(9, 0, 9, 8), entity.Red))
	})

	t.Run("Blocked by any piece in between", func(t *testing.T) {
		board := boardWith(t, map[entity.Position]entity.Piece{
			pos(9, 0): entity.NewPiece(entity.Chariot, entity.Red),
			pos(9, 4): entity.NewPiece(entity.Soldier, entity.Black),
			pos(5, 0): entity.NewPiece(entity.Soldier, entity.Red),
		})

		assert.False(t, IsLegal(board, entity.NewMove(9, 0, 9, 8), entity.Red))
		assert.True(t, IsLegal(board, entity.NewMove(9, 0, 9, 4), entity.Red))
		assert.False(t, IsLegal(board, entity.NewMove(9, 0, 2, 0), entity.Red))
		assert.True(t, IsLegal(board, entity.NewMove(9, 0, 6, 0), entity.Red))
	})
}

func TestIsLegal_Horse(t *testing.T) {
	from := pos(5, 4)

	targets := []struct {
		to  entity.Position
		leg entity.Position
	}{
		{pos(3, 3), pos(4, 4)},
		{pos(3, 5), pos(4, 4)},
		{pos(7, 3), pos(6, 4)},
		{pos(7, 5), pos(6, 4)},
		{pos(4, 2), pos(5, 3)},
		{pos(6, 2), pos(5, 3)},
		{pos(4, 6), pos(5, 5)},
		{pos(6, 6), pos(5, 5)},
	}

	for _, target := range targets {
		free := boardWith(t, map[entity.Position]entity.Piece{from: entity.NewPiece(entity.Horse, entity.Red)})
		assert.True(t, IsLegal(free, entity.Move{From: from, To: target.to}, entity.Red), "to %s", target.to)

		hobbled := boardWith(t, map[entity.Position]entity.Piece{
			from:       entity.NewPiece(entity.Horse, entity.Red),
			target.leg: entity.NewPiece(entity.Soldier, entity.Black),
		})
		assert.False(t, IsLegal(hobbled, entity.Move{From: from, To: target.to}, entity.Red), "to %s with leg %s", target.to, target.leg)
	}

	board := boardWith(t, map[entity.Position]entity.Piece{from: entity.NewPiece(entity.Horse, entity.Red)})
	assert.False(t, IsLegal(board, entity.Move{From: from, To: pos(3, 4)}, entity.Red))
	assert.False(t, IsLegal(board, entity.Move{From: from, To: pos(6, 5)}, entity.Red))
}

func TestIsLegal_Elephant(t *testing.T) {
	t.Run("Moves two points diagonally when the eye is free", func(t *testing.T) {
		board := boardWith(t, map[entity.Position]entity.Piece{pos(9, 2): entity.NewPiece(entity.Elephant, entity.Red)})

		assert.True(t, IsLegal(board, entity.NewMove(9, 2, 7, 0), entity.Red))
		assert.True(t, IsLegal(board, entity.NewMove(9, 2, 7, 4), entity.Red))
		assert.False(t, IsLegal(board, entity.NewMove(9, 2, 8, 3), entity.Red))
		assert.False(t, IsLegal(board, entity.NewMove(9, 2, 7, 2), entity.Red))
	})

	t.Run("Blocked eye", func(t *testing.T) {
		board := boardWith(t, map[entity.Position]entity.Piece{
			pos(9, 2): entity.NewPiece(entity.Elephant, entity.Red),
			pos(8, 3): entity.NewPiece(entity.Advisor, entity.Red),
		})

		assert.False(t, IsLegal(board, entity.NewMove(9, 2, 7, 4), entity.Red))
		assert.True(t, IsLegal(board, entity.NewMove(9, 2, 7, 0), entity.Red))
	})

	t.Run("Never crosses the river", func(t *testing.T) {
		board := boardWith(t, map[entity.Position]entity.Piece{
			pos(5, 2): entity.NewPiece(entity.Elephant, entity.Red),
			pos(4, 6): entity.NewPiece(entity.Elephant, entity.Black),
		})

		assert.False(t, IsLegal(board, entity.NewMove(5, 2, 3, 4), entity.Red))
		assert.True(t, IsLegal(board, entity.NewMove(5, 2, 7, 4), entity.Red))
		assert.False(t, IsLegal(board, entity.NewMove(4, 6, 6, 8), entity.Black))
		assert.True(t, IsLegal(board, entity.NewMove(4, 6, 2, 8), entity.Black))
	})
}

func TestIsLegal_Advisor(t *testing.T) {
	board := boardWith(t, map[entity.Position]entity.Piece{
		pos(8, 4): entity.NewPiece(entity.Advisor, entity.Red),
		pos(9, 3): entity.NewPiece(entity.Advisor, entity.Red),
		pos(0, 3): entity.NewPiece(entity.Advisor, entity.Black),
	})

	for _, to := range []entity.Position{pos(7, 3), pos(7, 5), pos(9, 5)} {
		assert.True(t, IsLegal(board, entity.Move{From: pos(8, 4), To: to}, entity.Red), "to %s", to)
	}

	assert.False(t, IsLegal(board, entity.NewMove(8, 4, 7, 4), entity.Red))
	assert.False(t, IsLegal(board, entity.NewMove(9, 3, 8, 2), entity.Red))
	assert.True(t, IsLegal(board, entity.NewMove(0, 3, 1, 4), entity.Black))
	assert.False(t, IsLegal(board, entity.NewMove(0, 3, 1, 2), entity.Black))
}

func TestIsLegal_General(t *testing.T) {
	t.Run("One orthogonal step inside the palace", func(t *testing.T) {
		board := boardWith(t, map[entity.Position]entity.Piece{
			pos(9, 3): entity.NewPiece(entity.General, entity.Red),
			pos(0, 5): entity.NewPiece(entity.General, entity.Black),
		})

		assert.True(t, IsLegal(board, entity.NewMove(9, 3, 8, 3), entity.Red))
		assert.True(t, IsLegal(board, entity.NewMove(9, 3, 9, 4), entity.Red))
		assert.False(t, IsLegal(board, entity.NewMove(9, 3, 9, 2), entity.Red))
		assert.False(t, IsLegal(board, entity.NewMove(9, 3, 7, 3), entity.Red))
		assert.False(t, IsLegal(board, entity.NewMove(9, 3, 8, 4), entity.Red))
	})

	t.Run("Flying general captures along an open file", func(t *testing.T) {
		board := boardWith(t, map[entity.Position]entity.Piece{
			pos(9, 4): entity.NewPiece(entity.General, entity.Red),
			pos(0, 4): entity.NewPiece(entity.General, entity.Black),
		})

		assert.True(t, IsLegal(board, entity.NewMove(9, 4, 0, 4), entity.Red))
		assert.True(t, IsLegal(board, entity.NewMove(0, 4, 9, 4), entity.Black))
	})

	t.Run("Flying general is blocked by any piece on the file", func(t *testing.T) {
		board := boardWith(t, map[entity.Position]entity.Piece{
			pos(9, 4): entity.NewPiece(entity.General, entity.Red),
			pos(0, 4): entity.NewPiece(entity.General, entity.Black),
			pos(5, 4): entity.NewPiece(entity.Soldier, entity.Red),
		})

		assert.False(t, IsLegal(board, entity.NewMove(9, 4, 0, 4), entity.Red))
	})
}

func TestIsLegal_Cannon(t *testing.T) {
	t.Run("Moves like a chariot onto empty cells", func(t *testing.T) {
		board := boardWith(t, map[entity.Position]entity.Piece{
			pos(7, 1): entity.NewPiece(entity.Cannon, entity.Red),
			pos(4, 1): entity.NewPiece(entity.Soldier, entity.Red),
		})

		assert.True(t, IsLegal(board, entity.NewMove(7, 1, 5, 1), entity.Red))
		assert.False(t, IsLegal(board, entity.NewMove(7, 1, 3, 1), entity.Red))
	})

	t.Run("Captures over exactly one screen", func(t *testing.T) {
		board := boardWith(t, map[entity.Position]entity.Piece{
			pos(7, 1): entity.NewPiece(entity.Cannon, entity.Red),
			pos(2, 1): entity.NewPiece(entity.Cannon, entity.Black),
			pos(0, 1): entity.NewPiece(entity.Horse, entity.Black),
		})

		assert.True(t, IsLegal(board, entity.NewMove(7, 1, 0, 1), entity.Red))
		assert.False(t, IsLegal(board, entity.NewMove(7, 1, 2, 1), entity.Red), "no screen")
	})

	t.Run("Two screens block the capture", func(t *testing.T) {
		board := boardWith(t, map[entity.Position]entity.Piece{
			pos(7, 1): entity.NewPiece(entity.Cannon, entity.Red),
			pos(5, 1): entity.NewPiece(entity.Soldier, entity.Red),
			pos(2, 1): entity.NewPiece(entity.Cannon, entity.Black),
			pos(0, 1): entity.NewPiece(entity.Horse, entity.Black),
		})

		assert.False(t, IsLegal(board, entity.NewMove(7, 1, 0, 1), entity.Red))
		assert.True(t, IsLegal(board, entity.NewMove(7, 1, 2, 1), entity.Red))
	})
}

func TestIsLegal_Soldier(t *testing.T) {
	t.Run("Opening soldier can't step sideways", func(t *testing.T) {
		board := entity.NewStandardBoard()

		assert.False(t, IsLegal(board, entity.NewMove(6, 0, 6, 1), entity.Red))
		assert.True(t, IsLegal(board, entity.NewMove(6, 0, 5, 0), entity.Red))
		assert.True(t, IsLegal(board, entity.NewMove(3, 0, 4, 0), entity.Black))
	})

	t.Run("Crossed soldier may step sideways", func(t *testing.T) {
		board := boardWith(t, map[entity.Position]entity.Piece{
			pos(4, 4): entity.NewPiece(entity.Soldier, entity.Red),
			pos(5, 4): entity.NewPiece(entity.Soldier, entity.Black),
		})

		assert.True(t, IsLegal(board, entity.NewMove(4, 4, 4, 3), entity.Red))
		assert.True(t, IsLegal(board, entity.NewMove(4, 4, 4, 5), entity.Red))
		assert.True(t, IsLegal(board, entity.NewMove(4, 4, 3, 4), entity.Red))
		assert.True(t, IsLegal(board, entity.NewMove(5, 4, 5, 3), entity.Black))
		assert.True(t, IsLegal(board, entity.NewMove(5, 4, 6, 4), entity.Black))
	})

	t.Run("Never backward or diagonal anywhere", func(t *testing.T) {
		for _, side := range []entity.Side{entity.Red, entity.Black} {
			backward := 1
			if side == entity.Black {
				backward = -1
			}

			for row := 0; row < entity.Rows; row++ {
				for col := 0; col < entity.Cols; col++ {
					from := pos(row, col)
					board := boardWith(t, map[entity.Position]entity.Piece{from: entity.NewPiece(entity.Soldier, side)})

					illegal := []entity.Position{
						pos(row+backward, col),
						pos(row-1, col-1), pos(row-1, col+1),
						pos(row+1, col-1), pos(row+1, col+1),
					}
					for _, to := range illegal {
						assert.False(t, IsLegal(board, entity.Move{From: from, To: to}, side), "%s soldier %s -> %s", side, from, to)
					}
				}
			}
		}
	})
}

func TestIsInCheck(t *testing.T) {
	t.Run("Chariot on the general's open file gives check", func(t *testing.T) {
		// Given: a red chariot that just moved onto the black general's file
		board := boardWith(t, map[entity.Position]entity.Piece{
			pos(0, 4): entity.NewPiece(entity.General, entity.Black),
			pos(9, 3): entity.NewPiece(entity.General, entity.Red),
			pos(5, 0): entity.NewPiece(entity.Chariot, entity.Red),
		})
		_, err := board.Apply(entity.NewMove(5, 0, 5, 4))
		require.NoError(t, err)

		// Then: black is in check, red is not
		assert.True(t, IsInCheck(board, entity.Black))
		assert.False(t, IsInCheck(board, entity.Red))

		// When: a piece is interposed
		require.NoError(t, board.Place(3, 4, entity.NewPiece(entity.Advisor, entity.Black)))

		// Then: the check is gone
		assert.False(t, IsInCheck(board, entity.Black))
	})

	t.Run("Opening position is not check", func(t *testing.T) {
		board := entity.NewStandardBoard()

		assert.False(t, IsInCheck(board, entity.Red))
		assert.False(t, IsInCheck(board, entity.Black))
	})

	t.Run("Facing generals count as check", func(t *testing.T) {
		board := boardWith(t, map[entity.Position]entity.Piece{
			pos(0, 4): entity.NewPiece(entity.General, entity.Black),
			pos(9, 4): entity.NewPiece(entity.General, entity.Red),
		})

		assert.True(t, IsInCheck(board, entity.Red))
	})

	t.Run("Missing general is never in check", func(t *testing.T) {
		board := boardWith(t, map[entity.Position]entity.Piece{pos(5, 0): entity.NewPiece(entity.Chariot, entity.Red)})

		assert.False(t, IsInCheck(board, entity.Black))
	})
}

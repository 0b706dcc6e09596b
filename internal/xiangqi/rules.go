// Package xiangqi holds the move legality rules. Every function here only reads the board.
package xiangqi

import "github.com/rocketscienceinc/xiangqi-backend/internal/entity"

// IsLegal - reports whether mover may play move on board.
func IsLegal(board *entity.Board, move entity.Move, mover entity.Side) bool {
	if !move.From.InBounds() || !move.To.InBounds() {
		return false
	}

	piece := board.At(move.From)
	if piece.IsEmpty() || piece.Side != mover {
		return false
	}

	target := board.At(move.To)
	if !target.IsEmpty() && target.Side == mover {
		return false
	}

	switch piece.Kind {
	case entity.Chariot:
		return isValidChariotMove(board, move)
	case entity.Horse:
		return isValidHorseMove(board, move)
	case entity.Elephant:
		return isValidElephantMove(board, move, mover)
	case entity.Advisor:
		return isValidAdvisorMove(move, mover)
	case entity.General:
		return isValidGeneralMove(board, move, mover)
	case entity.Cannon:
		return isValidCannonMove(board, move)
	case entity.Soldier:
		return isValidSoldierMove(move, mover)
	default:
		return false
	}
}

// IsInCheck - reports whether any enemy piece can reach side's general.
func IsInCheck(board *entity.Board, side entity.Side) bool {
	general, ok := board.FindGeneral(side)
	if !ok {
		return false
	}

	enemy := side.Opponent()
	cells := board.Cells()

	for row := range cells {
		for col, piece := range cells[row] {
			if piece.IsEmpty() || piece.Side != enemy {
				continue
			}

			move := entity.Move{From: entity.Position{Row: row, Col: col}, To: general}
			if IsLegal(board, move, enemy) {
				return true
			}
		}
	}

	return false
}

func isValidChariotMove(board *entity.Board, move entity.Move) bool {
	between, ok := countBetween(board, move)
	return ok && between == 0
}

func isValidCannonMove(board *entity.Board, move entity.Move) bool {
	between, ok := countBetween(board, move)
	if !ok {
		return false
	}

	if board.At(move.To).IsEmpty() {
		return between == 0
	}

	// capturing needs exactly one screen
	return between == 1
}

func isValidHorseMove(board *entity.Board, move entity.Move) bool {
	dRow, dCol := move.To.Row-move.From.Row, move.To.Col-move.From.Col
	rowDiff, colDiff := abs(dRow), abs(dCol)

	leg := move.From
	switch {
	case rowDiff == 2 && colDiff == 1:
		leg.Row += dRow / 2
	case rowDiff == 1 && colDiff == 2:
		leg.Col += dCol / 2
	default:
		return false
	}

	return board.At(leg).IsEmpty()
}

func isValidElephantMove(board *entity.Board, move entity.Move, mover entity.Side) bool {
	if abs(move.To.Row-move.From.Row) != 2 || abs(move.To.Col-move.From.Col) != 2 {
		return false
	}

	if !move.To.OnOwnSide(mover) {
		return false
	}

	eye := entity.Position{
		Row: (move.From.Row + move.To.Row) / 2,
		Col: (move.From.Col + move.To.Col) / 2,
	}

	return board.At(eye).IsEmpty()
}

func isValidAdvisorMove(move entity.Move, mover entity.Side) bool {
	if abs(move.To.Row-move.From.Row) != 1 || abs(move.To.Col-move.From.Col) != 1 {
		return false
	}

	return move.To.InPalace(mover)
}

func isValidGeneralMove(board *entity.Board, move entity.Move, mover entity.Side) bool {
	// flying general: generals may capture each other along an open file
	if board.At(move.To).Is(entity.General, mover.Opponent()) && move.From.Col == move.To.Col {
		if between, _ := countBetween(board, move); between == 0 {
			return true
		}
	}

	if abs(move.To.Row-move.From.Row)+abs(move.To.Col-move.From.Col) != 1 {
		return false
	}

	return move.To.InPalace(mover)
}

func isValidSoldierMove(move entity.Move, mover entity.Side) bool {
	dRow := move.To.Row - move.From.Row
	colDiff := abs(move.To.Col - move.From.Col)

	forward := -1
	if mover == entity.Black {
		forward = 1
	}

	if dRow == forward && colDiff == 0 {
		return true
	}

	crossed := !move.From.OnOwnSide(mover)

	return crossed && dRow == 0 && colDiff == 1
}

// countBetween - counts pieces strictly between the endpoints of a straight move.
// ok is false when the move is not along a single row or column.
func countBetween(board *entity.Board, move entity.Move) (int, bool) {
	from, to := move.From, move.To

	switch {
	case from == to:
		return 0, false
	case from.Row == to.Row:
		count := 0
		for col := min(from.Col, to.Col) + 1; col < max(from.Col, to.Col); col++ {
			if !board.At(entity.Position{Row: from.Row, Col: col}).IsEmpty() {
				count++
			}
		}
		return count, true
	case from.Col == to.Col:
		count := 0
		for row := min(from.Row, to.Row) + 1; row < max(from.Row, to.Row); row++ {
			if !board.At(entity.Position{Row: row, Col: from.Col}).IsEmpty() {
				count++
			}
		}
		return count, true
	default:
		return 0, false
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

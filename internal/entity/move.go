package entity

import "fmt"

type Move struct {
	From Position `json:"from"`
	To   Position `json:"to"`
}

func NewMove(fromRow, fromCol, toRow, toCol int) Move {
	return Move{
		From: Position{Row: fromRow, Col: fromCol},
		To:   Position{Row: toRow, Col: toCol},
	}
}

func (that Move) String() string {
	return fmt.Sprintf("%d,%d,%d,%d", that.From.Row, that.From.Col, that.To.Row, that.To.Col)
}

// Snapshot - the full grid plus whose turn it is.
type Snapshot struct {
	Cells [Rows][Cols]Piece `json:"cells"`
	Turn  Side              `json:"turn"`
	Ended bool              `json:"ended"`
}

// Board - rebuilds a board from the snapshot.
func (that Snapshot) Board() *Board {
	return &Board{cells: that.Cells}
}

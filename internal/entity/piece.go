package entity

import (
	"errors"
	"fmt"
)

// Side - one of the two armies.
type Side int8

const (
	Red Side = iota
	Black
)

const (
	redLabel   = "红"
	blackLabel = "黑"
)

var ErrUnknownSide = errors.New("unknown side")

// Opponent - returns the other side.
func (that Side) Opponent() Side {
	if that == Red {
		return Black
	}
	return Red
}

// String - returns the wire label of the side.
func (that Side) String() string {
	if that == Red {
		return redLabel
	}
	return blackLabel
}

func (that Side) MarshalText() ([]byte, error) {
	return []byte(that.String()), nil
}

func (that *Side) UnmarshalText(text []byte) error {
	side, err := ParseSide(string(text))
	if err != nil {
		return err
	}

	*that = side

	return nil
}

// ParseSide - parses a wire label into a Side.
func ParseSide(label string) (Side, error) {
	switch label {
	case redLabel:
		return Red, nil
	case blackLabel:
		return Black, nil
	default:
		return Red, fmt.Errorf("%w: %q", ErrUnknownSide, label)
	}
}

type Kind int8

const (
	KindNone Kind = iota
	General
	Advisor
	Elephant
	Horse
	Chariot
	Cannon
	Soldier
)

var kindNames = [...]string{"none", "general", "advisor", "elephant", "horse", "chariot", "cannon", "soldier"}

func (that Kind) String() string {
	if that < 0 || int(that) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", that)
	}
	return kindNames[that]
}

// EmptyGlyph is the wire token of an empty cell.
const EmptyGlyph = "  "

// glyphs is indexed by side, then kind.
var glyphs = [2][8]string{
	Red:   {"", "帅", "仕", "相", "马", "车", "砲", "兵"},
	Black: {"", "將", "士", "象", "馬", "車", "炮", "卒"},
}

var ErrUnknownGlyph = errors.New("unknown piece glyph")

// Piece - a tagged (kind, side) pair. The zero value is an empty cell.
type Piece struct {
	Kind Kind
	Side Side
}

var Empty = Piece{}

func NewPiece(kind Kind, side Side) Piece {
	return Piece{Kind: kind, Side: side}
}

func (that Piece) IsEmpty() bool {
	return that.Kind == KindNone
}

// Is - reports whether the piece is of the given kind and side.
func (that Piece) Is(kind Kind, side Side) bool {
	return that.Kind == kind && that.Side == side
}

// Glyph - returns the wire token of the piece.
func (that Piece) Glyph() string {
	if that.IsEmpty() || that.Kind < 0 || int(that.Kind) >= len(glyphs[0]) || that.Side < Red || that.Side > Black {
		return EmptyGlyph
	}
	return glyphs[that.Side][that.Kind]
}

func (that Piece) String() string {
	if that.IsEmpty() {
		return "empty"
	}
	return that.Side.String() + " " + that.Kind.String()
}

// ParseGlyph - parses a wire token into a Piece.
func ParseGlyph(glyph string) (Piece, error) {
	if glyph == EmptyGlyph || glyph == "" {
		return Empty, nil
	}

	for side, row := range glyphs {
		for kind, candidate := range row {
			if kind != int(KindNone) && candidate == glyph {
				return NewPiece(Kind(kind), Side(side)), nil
			}
		}
	}

	return Empty, fmt.Errorf("%w: %q", ErrUnknownGlyph, glyph)
}

func (that Piece) MarshalText() ([]byte, error) {
	if that.IsEmpty() {
		return []byte{}, nil
	}
	return []byte(that.Glyph()), nil
}

func (that *Piece) UnmarshalText(text []byte) error {
	piece, err := ParseGlyph(string(text))
	if err != nil {
		return err
	}

	*that = piece

	return nil
}

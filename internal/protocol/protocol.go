// Package protocol encodes and decodes the newline-delimited text protocol
// spoken between the server and its clients.
package protocol

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rocketscienceinc/xiangqi-backend/internal/entity"
)

// client -> server tags.
const (
	TagLogin    = "LOGIN"
	TagGetBoard = "GET_BOARD"
	TagMove     = "MOVE"
	TagChat     = "CHAT"
	TagVoice    = "VOICE"
)

// server -> client tags.
const (
	TagColor = "COLOR"
	TagBoard = "BOARD"
	TagTime  = "TIME"
	TagError = "ERROR"

	LoginOK     = "LOGIN_OK"
	LoginFailed = "LOGIN_FAILED"
)

const separator = ":"

var (
	ErrMalformed  = errors.New("malformed line")
	ErrUnknownTag = errors.New("unknown tag")
)

// Command - a decoded client line.
type Command struct {
	Tag  string
	Body string
}

// Parse - decodes one client line. A trailing carriage return is ignored.
func Parse(line string) (Command, error) {
	line = strings.TrimSuffix(line, "\r")

	if line == TagGetBoard {
		return Command{Tag: TagGetBoard}, nil
	}

	tag, body, found := strings.Cut(line, separator)
	if !found {
		return Command{}, fmt.Errorf("%w: %q", ErrMalformed, line)
	}

	switch tag {
	case TagLogin, TagMove, TagChat, TagVoice:
		return Command{Tag: tag, Body: body}, nil
	default:
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownTag, tag)
	}
}

// ParseMove - decodes a MOVE body: fromRow,fromCol,toRow,toCol.
func ParseMove(body string) (entity.Move, error) {
	parts := strings.Split(body, ",")
	if len(parts) != 4 {
		return entity.Move{}, fmt.Errorf("%w: move %q", ErrMalformed, body)
	}

	var coords [4]int
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return entity.Move{}, fmt.Errorf("%w: move %q: %w", ErrMalformed, body, err)
		}
		coords[i] = n
	}

	return entity.NewMove(coords[0], coords[1], coords[2], coords[3]), nil
}

func EncodeColor(role entity.Role) string {
	return TagColor + separator + role.String()
}

// EncodeBoard - 90 comma-terminated cells in row-major order followed by the turn label.
func EncodeBoard(snapshot entity.Snapshot) string {
	var sb strings.Builder

	sb.WriteString(TagBoard + separator)
	for row := range snapshot.Cells {
		for _, piece := range snapshot.Cells[row] {
			sb.WriteString(piece.Glyph())
			sb.WriteByte(',')
		}
	}
	sb.WriteString(snapshot.Turn.String())

	return sb.String()
}

// DecodeBoard - parses a BOARD line back into a snapshot.
func DecodeBoard(line string) (entity.Snapshot, error) {
	body, found := strings.CutPrefix(line, TagBoard+separator)
	if !found {
		return entity.Snapshot{}, fmt.Errorf("%w: not a board line", ErrMalformed)
	}

	cells := strings.Split(body, ",")
	if len(cells) != entity.Rows*entity.Cols+1 {
		return entity.Snapshot{}, fmt.Errorf("%w: board has %d fields", ErrMalformed, len(cells))
	}

	var snapshot entity.Snapshot
	for i, glyph := range cells[:entity.Rows*entity.Cols] {
		piece, err := entity.ParseGlyph(glyph)
		if err != nil {
			return entity.Snapshot{}, fmt.Errorf("%w: cell %d: %w", ErrMalformed, i, err)
		}
		snapshot.Cells[i/entity.Cols][i%entity.Cols] = piece
	}

	turn, err := entity.ParseSide(cells[len(cells)-1])
	if err != nil {
		return entity.Snapshot{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	snapshot.Turn = turn

	return snapshot, nil
}

// EncodeTime - formats elapsed game time as TIME:MM:SS.
func EncodeTime(elapsed time.Duration) string {
	seconds := int(elapsed / time.Second)
	return fmt.Sprintf("%s%s%02d:%02d", TagTime, separator, seconds/60, seconds%60)
}

func EncodeChat(sender, text string) string {
	return TagChat + separator + sender + ": " + text
}

func EncodeError(message string) string {
	return TagError + separator + message
}

func EncodeVoice(payload string) string {
	return TagVoice + separator + payload
}

package hub

import (
	"crypto/rand"
	"encoding/base64"
	"sync"

	"github.com/rocketscienceinc/xiangqi-backend/internal/entity"
)

// Participant - one connected client as seen by the game.
type Participant struct {
	id         string
	role       entity.Role
	remoteAddr string

	out       chan string
	done      chan struct{}
	closeOnce sync.Once
}

func newParticipant(role entity.Role, remoteAddr string, bufferSize int) *Participant {
	return &Participant{
		id:         newParticipantID(),
		role:       role,
		remoteAddr: remoteAddr,
		out:        make(chan string, bufferSize),
		done:       make(chan struct{}),
	}
}

func (that *Participant) ID() string {
	return that.id
}

func (that *Participant) Role() entity.Role {
	return that.role
}

func (that *Participant) RemoteAddr() string {
	return that.remoteAddr
}

// Outbound - lines waiting to be written to the connection.
func (that *Participant) Outbound() <-chan string {
	return that.out
}

// Done - closed once the participant has been removed from the game.
func (that *Participant) Done() <-chan struct{} {
	return that.done
}

// enqueue - never blocks. Returns false when the buffer is full or the participant is gone.
func (that *Participant) enqueue(line string) bool {
	select {
	case <-that.done:
		return false
	default:
	}

	select {
	case that.out <- line:
		return true
	default:
		return false
	}
}

func (that *Participant) close() {
	that.closeOnce.Do(func() {
		close(that.done)
	})
}

// newParticipantID - generates a random url-safe id.
func newParticipantID() string {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		return "error-generating-participant-id"
	}

	return base64.RawURLEncoding.EncodeToString(b)
}

package hub

import (
	"log/slog"

	"github.com/rocketscienceinc/xiangqi-backend/internal/entity"
)

// Registry - the set of connected participants and the roles they hold.
// It is not safe for concurrent use; Hub serializes access.
type Registry struct {
	logger     *slog.Logger
	bufferSize int

	participants map[string]*Participant
}

func NewRegistry(logger *slog.Logger, bufferSize int) *Registry {
	if bufferSize < 1 {
		bufferSize = 1
	}

	return &Registry{
		logger:       logger.With("component", "registry"),
		bufferSize:   bufferSize,
		participants: make(map[string]*Participant),
	}
}

// Register - adds a participant. Red goes to the first free seat, then Black, then spectators.
func (that *Registry) Register(remoteAddr string) *Participant {
	role := entity.RoleSpectator
	switch {
	case that.holder(entity.RoleRed) == nil:
		role = entity.RoleRed
	case that.holder(entity.RoleBlack) == nil:
		role = entity.RoleBlack
	}

	participant := newParticipant(role, remoteAddr, that.bufferSize)
	that.participants[participant.id] = participant

	that.logger.Info("participant registered",
		"participantID", participant.id,
		"role", role.String(),
		"remoteAddr", remoteAddr,
	)

	return participant
}

// Unregister - removes the participant. Returns false if it was already gone.
func (that *Registry) Unregister(participant *Participant) bool {
	if _, ok := that.participants[participant.id]; !ok {
		return false
	}

	delete(that.participants, participant.id)
	participant.close()

	that.logger.Info("participant unregistered", "participantID", participant.id, "role", participant.role.String())

	return true
}

func (that *Registry) Contains(participant *Participant) bool {
	_, ok := that.participants[participant.id]
	return ok
}

func (that *Registry) Len() int {
	return len(that.participants)
}

// Broadcast - queues line for every participant. Participants that can't keep up are
// unregistered and returned.
func (that *Registry) Broadcast(line string) []*Participant {
	var dropped []*Participant

	for _, participant := range that.participants {
		if participant.enqueue(line) {
			continue
		}

		that.logger.Warn("outbound buffer overflow, dropping participant",
			"participantID", participant.id,
			"role", participant.role.String(),
		)

		dropped = append(dropped, participant)
	}

	for _, participant := range dropped {
		that.Unregister(participant)
	}

	return dropped
}

// SendTo - queues line for whoever holds role. Returns false if nobody does or the buffer is full.
func (that *Registry) SendTo(role entity.Role, line string) bool {
	participant := that.holder(role)
	if participant == nil {
		return false
	}

	return participant.enqueue(line)
}

// CloseAll - unregisters everyone.
func (that *Registry) CloseAll() {
	for _, participant := range that.participants {
		that.Unregister(participant)
	}
}

func (that *Registry) holder(role entity.Role) *Participant {
	if role == entity.RoleSpectator {
		return nil
	}

	for _, participant := range that.participants {
		if participant.role == role {
			return participant
		}
	}

	return nil
}

package hub

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rocketscienceinc/xiangqi-backend/internal/apperror"
	"github.com/rocketscienceinc/xiangqi-backend/internal/entity"
	"github.com/rocketscienceinc/xiangqi-backend/internal/protocol"
	"github.com/rocketscienceinc/xiangqi-backend/internal/usecase"
)

const (
	systemSender  = "系统"
	summarySender = "游戏结束"

	persistTimeout = 5 * time.Second
)

var generalNames = map[entity.Side]string{
	entity.Red:   "帅",
	entity.Black: "将",
}

var errorMessages = map[error]string{
	apperror.ErrGameFinished: "游戏已结束，请等待重新开始!",
	apperror.ErrNotSeated:    "观战者不能走棋!",
	apperror.ErrNotYourTurn:  "不是你的回合!",
	apperror.ErrIllegalMove:  "无效的移动!",
}

type playerLookup interface {
	LookupPlayer(ctx context.Context, name string) (*entity.Player, error)
}

type gameRecorder interface {
	RecordFinishedGame(ctx context.Context, record *entity.GameRecord) error
}

type snapshotPublisher interface {
	Publish(ctx context.Context, snapshot entity.Snapshot) error
}

type Config struct {
	ResetDelay     time.Duration
	ClockInterval  time.Duration
	OutboundBuffer int
	WriteTimeout   time.Duration
}

// Hub - owns the game session and the registry and serializes every change to them.
// Socket and storage I/O never happen while its lock is held.
type Hub struct {
	logger *slog.Logger
	conf   Config

	players   playerLookup
	recorder  gameRecorder
	publisher snapshotPublisher

	handlers map[string]func(ctx context.Context, participant *Participant, body string)

	mu         sync.Mutex
	session    *usecase.GameSession
	registry   *Registry
	resetTimer *time.Timer
	closed     bool

	// version numbers snapshots under mu; publishMu keeps the publisher from going back in time.
	version   uint64
	publishMu sync.Mutex
	published uint64
}

// New - creates a hub. publisher may be nil.
func New(
	logger *slog.Logger,
	conf Config,
	session *usecase.GameSession,
	players playerLookup,
	recorder gameRecorder,
	publisher snapshotPublisher,
) *Hub {
	hub := &Hub{
		logger:    logger.With("component", "hub"),
		conf:      conf,
		players:   players,
		recorder:  recorder,
		publisher: publisher,
		session:   session,
		registry:  NewRegistry(logger, conf.OutboundBuffer),

		handlers: make(map[string]func(context.Context, *Participant, string)),
	}

	hub.handlers[protocol.TagLogin] = hub.handleLogin
	hub.handlers[protocol.TagGetBoard] = hub.handleGetBoard
	hub.handlers[protocol.TagMove] = hub.handleMove
	hub.handlers[protocol.TagChat] = hub.handleChat
	hub.handlers[protocol.TagVoice] = hub.handleVoice

	return hub
}

// Join - registers a new connection, tells it its role and announces it to everyone.
func (that *Hub) Join(remoteAddr string) *Participant {
	that.mu.Lock()
	defer that.mu.Unlock()

	participant := that.registry.Register(remoteAddr)
	if that.closed {
		that.registry.Unregister(participant)
		return participant
	}

	participant.enqueue(protocol.EncodeColor(participant.role))
	that.broadcast(protocol.EncodeBoard(that.session.Snapshot()))
	that.broadcast(protocol.EncodeChat(systemSender, participant.role.String()+"方玩家已加入"))

	return participant
}

// Leave - removes the participant and frees its seat.
func (that *Hub) Leave(participant *Participant) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if !that.registry.Unregister(participant) {
		return
	}

	that.vacate(participant)
}

// Handle - dispatches one client line. Unknown and malformed lines are ignored.
func (that *Hub) Handle(ctx context.Context, participant *Participant, line string) {
	log := that.logger.With("method", "Handle", "participantID", participant.id)

	command, err := protocol.Parse(line)
	if err != nil {
		log.Debug("ignoring line", "error", err)
		return
	}

	handler, ok := that.handlers[command.Tag]
	if !ok {
		log.Debug("no handler for tag", "tag", command.Tag)
		return
	}

	handler(ctx, participant, command.Body)
}

func (that *Hub) handleLogin(ctx context.Context, participant *Participant, name string) {
	log := that.logger.With("method", "handleLogin", "participantID", participant.id)

	player, err := that.players.LookupPlayer(ctx, name)
	if err != nil {
		if !errors.Is(err, apperror.ErrNotFound) && !errors.Is(err, usecase.ErrInvalidName) {
			log.Error("failed to look up player", "error", err)
		}

		participant.enqueue(protocol.LoginFailed)
		return
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	if !that.registry.Contains(participant) {
		return
	}

	if side, seated := participant.role.Side(); seated {
		that.session.Seat(side, entity.Seat{PlayerID: player.ID, Name: player.Name})
	}

	participant.enqueue(protocol.LoginOK)

	log.Info("player logged in", "playerID", player.ID, "role", participant.role.String())
}

func (that *Hub) handleGetBoard(_ context.Context, participant *Participant, _ string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	participant.enqueue(protocol.EncodeBoard(that.session.Snapshot()))
}

func (that *Hub) handleMove(ctx context.Context, participant *Participant, body string) {
	log := that.logger.With("method", "handleMove", "participantID", participant.id)

	move, err := protocol.ParseMove(body)
	if err != nil {
		log.Debug("ignoring move", "error", err)
		return
	}

	that.mu.Lock()

	result, err := that.submitMove(participant, move)
	if err != nil {
		participant.enqueue(protocol.EncodeError(errorMessage(err)))
		that.mu.Unlock()

		log.Debug("move rejected", "move", move.String(), "error", err)
		return
	}

	version := that.nextVersion()
	that.broadcast(protocol.EncodeBoard(result.Snapshot))

	mover := result.Mover.String()
	if result.Ended {
		that.broadcast(protocol.EncodeChat(systemSender, mover+"方获胜!"))
		that.broadcast(protocol.EncodeChat(summarySender, fmt.Sprintf(
			"%s方吃掉了对方的%s，用时%d秒", mover, generalNames[result.Captured.Side], int64(result.Duration/time.Second),
		)))
		that.scheduleReset()
	} else {
		that.broadcast(protocol.EncodeChat(systemSender, mover+"方移动了棋子"))
		if result.Check {
			that.broadcast(protocol.EncodeChat(systemSender, result.Snapshot.Turn.String()+"方被将军!"))
		}
	}

	that.mu.Unlock()

	log.Info("move applied", "move", move.String(), "side", mover, "ended", result.Ended)

	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	if result.Record != nil {
		if err = that.recorder.RecordFinishedGame(persistCtx, result.Record); err != nil {
			log.Error("failed to record finished game", "error", err)
		}
	}

	that.publish(persistCtx, version, result.Snapshot)
}

func (that *Hub) submitMove(participant *Participant, move entity.Move) (*usecase.MoveResult, error) {
	if that.session.IsEnded() {
		return nil, apperror.ErrGameFinished
	}

	side, seated := participant.role.Side()
	if !seated {
		return nil, apperror.ErrNotSeated
	}

	return that.session.SubmitMove(side, move)
}

func (that *Hub) handleChat(_ context.Context, participant *Participant, text string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.broadcast(protocol.EncodeChat(participant.role.String(), text))
}

func (that *Hub) handleVoice(_ context.Context, participant *Participant, payload string) {
	opponent, ok := participant.role.Opponent()
	if !ok {
		return
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	if !that.registry.SendTo(opponent, protocol.EncodeVoice(payload)) {
		that.logger.Debug("voice not delivered", "participantID", participant.id, "to", opponent.String())
	}
}

// RunClock - broadcasts the elapsed game time every tick until ctx is done.
func (that *Hub) RunClock(ctx context.Context) error {
	ticker := time.NewTicker(that.conf.ClockInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			that.tick()
		}
	}
}

func (that *Hub) tick() {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.closed || that.session.IsEnded() {
		return
	}

	that.broadcast(protocol.EncodeTime(that.session.Elapsed()))
}

// Snapshot - the current board for read-only callers.
func (that *Hub) Snapshot() entity.Snapshot {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.session.Snapshot()
}

func (that *Hub) Elapsed() time.Duration {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.session.Elapsed()
}

func (that *Hub) Participants() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.registry.Len()
}

// PublishSnapshot - pushes the current board to the snapshot publisher, if any.
func (that *Hub) PublishSnapshot(ctx context.Context) {
	that.mu.Lock()
	version := that.nextVersion()
	snapshot := that.session.Snapshot()
	that.mu.Unlock()

	that.publish(ctx, version, snapshot)
}

// Close - stops a pending reset and disconnects everyone.
func (that *Hub) Close() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.closed = true

	if that.resetTimer != nil {
		that.resetTimer.Stop()
		that.resetTimer = nil
	}

	that.registry.CloseAll()
}

// scheduleReset - must be called with the lock held.
func (that *Hub) scheduleReset() {
	if that.closed || that.resetTimer != nil {
		return
	}

	that.resetTimer = time.AfterFunc(that.conf.ResetDelay, that.reset)
}

func (that *Hub) reset() {
	log := that.logger.With("method", "reset")

	that.mu.Lock()

	if that.closed {
		that.mu.Unlock()
		return
	}

	that.resetTimer = nil

	if err := that.session.Reset(); err != nil {
		that.mu.Unlock()
		log.Error("failed to reset game", "error", err)
		return
	}

	version := that.nextVersion()
	snapshot := that.session.Snapshot()
	that.broadcast(protocol.EncodeBoard(snapshot))
	that.broadcast(protocol.EncodeChat(systemSender, "新游戏开始！红方先走。"))

	that.mu.Unlock()

	log.Info("new game started")

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	that.publish(ctx, version, snapshot)
}

// broadcast - must be called with the lock held.
func (that *Hub) broadcast(line string) {
	for _, participant := range that.registry.Broadcast(line) {
		that.vacate(participant)
	}
}

// vacate - frees the seat of a participant that is no longer registered and tells the others.
func (that *Hub) vacate(participant *Participant) {
	if side, seated := participant.role.Side(); seated {
		that.session.Unseat(side)
	}

	that.broadcast(protocol.EncodeChat(systemSender, participant.role.String()+"方玩家已离开"))
}

// nextVersion - must be called with the lock held, in the same critical section that reads the snapshot.
func (that *Hub) nextVersion() uint64 {
	that.version++
	return that.version
}

// publish - sends the snapshot unless a newer one has already gone out.
func (that *Hub) publish(ctx context.Context, version uint64, snapshot entity.Snapshot) {
	if that.publisher == nil {
		return
	}

	that.publishMu.Lock()
	defer that.publishMu.Unlock()

	if version <= that.published {
		that.logger.Debug("skipping stale snapshot", "version", version, "published", that.published)
		return
	}

	if err := that.publisher.Publish(ctx, snapshot); err != nil {
		that.logger.Error("failed to publish snapshot", "error", err)
		return
	}

	that.published = version
}

func errorMessage(err error) string {
	for target, message := range errorMessages {
		if errors.Is(err, target) {
			return message
		}
	}

	return errorMessages[apperror.ErrIllegalMove]
}

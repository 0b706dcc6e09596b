package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/rocketscienceinc/xiangqi-backend/internal/apperror"
	"github.com/rocketscienceinc/xiangqi-backend/internal/config"
	"github.com/rocketscienceinc/xiangqi-backend/internal/hub"
	"github.com/rocketscienceinc/xiangqi-backend/internal/repository"
	"github.com/rocketscienceinc/xiangqi-backend/internal/repository/storage"
	"github.com/rocketscienceinc/xiangqi-backend/internal/usecase"
	"github.com/rocketscienceinc/xiangqi-backend/transport/rest"
	"github.com/rocketscienceinc/xiangqi-backend/transport/tcp"
	"github.com/rocketscienceinc/xiangqi-backend/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sqliteStorage, err := storage.NewSQLiteStorage(conf.SQLiteStoragePath)
	if err != nil {
		return fmt.Errorf("could not open sqlite storage: %w", err)
	}

	defer func() {
		if err = sqliteStorage.Close(); err != nil {
			log.Error("could not close sqlite storage", "error", err)
		}
	}()

	if err = sqliteStorage.Init(ctx); err != nil {
		return fmt.Errorf("could not init sqlite storage: %w", err)
	}

	playerRepo := repository.NewPlayerRepository(sqliteStorage.Connection)
	gameRecordRepo := repository.NewGameRecordRepository(sqliteStorage.Connection)
	playerUseCase := usecase.NewPlayerUseCase(logger, playerRepo, gameRecordRepo)

	session := usecase.NewGameSession(nil)

	var snapshotRepo repository.SnapshotRepository
	if conf.Redis.Enabled {
		redisAddrString := conf.Redis.GetRedisAddr()
		if redisAddrString == "" {
			return ErrAddrNotFound
		}

		redisStorage, err := storage.NewRedisStorage(ctx, redisAddrString)
		if err != nil {
			return fmt.Errorf("could not connect to redis storage: %w", err)
		}

		defer func() {
			if err := redisStorage.Close(); err != nil {
				log.Error("could not close redis storage", "error", err)
			}
		}()

		snapshotRepo = repository.NewSnapshotRepository(redisStorage.Connection)
		restoreSession(ctx, log, session, snapshotRepo)
	}

	gameHub := hub.New(logger, hub.Config{
		ResetDelay:     conf.Game.ResetDelay,
		ClockInterval:  conf.Game.ClockInterval,
		OutboundBuffer: conf.Game.OutboundBuffer,
		WriteTimeout:   conf.Game.WriteTimeout,
	}, session, playerUseCase, playerUseCase, snapshotRepo)
	defer gameHub.Close()

	gameHub.PublishSnapshot(ctx)

	tcpServer := tcp.New(logger, gameHub, conf.Game.MaxLineBytes)
	wsServer := websocket.New(logger, gameHub, conf.Game.MaxLineBytes)
	restServer := rest.New(logger, gameHub, playerUseCase)

	group, groupCtx := errgroup.WithContext(ctx)

	// run TCP server
	group.Go(func() error {
		log.Info("Starting TCP server", "port", conf.SocketPort)
		if err := tcpServer.Start(groupCtx, conf.SocketPort); err != nil {
			return fmt.Errorf("TCP server error: %w", err)
		}
		return nil
	})

	// run Websocket server
	group.Go(func() error {
		log.Info("Starting WebSocket server", "port", conf.WSPort)
		if err := wsServer.Start(groupCtx, conf.WSPort); err != nil {
			return fmt.Errorf("WebSocket server error: %w", err)
		}
		return nil
	})

	// run HTTP server
	group.Go(func() error {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if err := restServer.Start(groupCtx, conf.HTTPPort); err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		return gameHub.RunClock(groupCtx)
	})

	// disconnect clients once any server stops so the TCP accept loop can drain
	group.Go(func() error {
		<-groupCtx.Done()
		gameHub.Close()
		return nil
	})

	if err = group.Wait(); err != nil {
		return err
	}

	log.Info("Application context canceled, shutting down")

	return nil
}

// restoreSession - continues the last unfinished game published to redis, if any.
func restoreSession(ctx context.Context, log *slog.Logger, session *usecase.GameSession, snapshots repository.SnapshotRepository) {
	snapshot, err := snapshots.Get(ctx)
	if errors.Is(err, apperror.ErrNotFound) {
		return
	}
	if err != nil {
		log.Warn("could not load last board", "error", err)
		return
	}

	if err = session.Restore(snapshot); err != nil {
		log.Info("starting a new game instead of the saved one", "reason", err)
		return
	}

	log.Info("continuing saved game", "turn", snapshot.Turn.String())
}

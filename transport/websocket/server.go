package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/xiangqi-backend/internal/hub"
)

const shutdownTimeout = 5 * time.Second

type connHandler interface {
	Serve(ctx context.Context, conn hub.LineConn)
}

// Server - serves the line protocol to browsers, one text frame per line.
type Server struct {
	logger       *slog.Logger
	handler      connHandler
	maxLineBytes int64

	upgrader websocket.Upgrader
}

func New(logger *slog.Logger, handler connHandler, maxLineBytes int) *Server {
	return &Server{
		logger:       logger.With("component", "websocket"),
		handler:      handler,
		maxLineBytes: int64(maxLineBytes),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Handler - the /ws endpoint. Connections live until the client leaves or ctx is done.
func (that *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.upgradeToWebSocket(ctx, w, r)
	})

	return mux
}

// Start - starts WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.Handler(ctx),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down WebSocket server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// upgradeToWebSocket - upgrades the connection to WebSocket.
func (that *Server) upgradeToWebSocket(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "upgradeToWebSocket")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	conn.SetReadLimit(that.maxLineBytes)

	log.Info("WebSocket connection established", "remoteAddr", conn.RemoteAddr().String())

	that.handler.Serve(ctx, &lineConn{conn: conn})
}

type lineConn struct {
	conn *websocket.Conn
}

// ReadLine - returns the next text or binary frame as one line.
func (that *lineConn) ReadLine() (string, error) {
	for {
		messageType, data, err := that.conn.ReadMessage()
		if err != nil {
			return "", fmt.Errorf("failed to read message: %w", err)
		}

		if messageType != websocket.TextMessage && messageType != websocket.BinaryMessage {
			continue
		}

		return strings.TrimRight(string(data), "\r\n"), nil
	}
}

func (that *lineConn) WriteLine(line string) error {
	if err := that.conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

func (that *lineConn) SetWriteDeadline(t time.Time) error {
	return that.conn.SetWriteDeadline(t)
}

func (that *lineConn) RemoteAddr() string {
	return that.conn.RemoteAddr().String()
}

func (that *lineConn) Close() error {
	return that.conn.Close()
}

package tcp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/rocketscienceinc/xiangqi-backend/internal/hub"
)

const initialLineBuffer = 4 * 1024

type connHandler interface {
	Serve(ctx context.Context, conn hub.LineConn)
}

// Server - accepts raw TCP clients speaking the newline-delimited protocol.
type Server struct {
	logger       *slog.Logger
	handler      connHandler
	maxLineBytes int
}

func New(logger *slog.Logger, handler connHandler, maxLineBytes int) *Server {
	return &Server{
		logger:       logger.With("component", "tcp"),
		handler:      handler,
		maxLineBytes: maxLineBytes,
	}
}

// Start - listens on port and serves clients until ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	var lc net.ListenConfig

	listener, err := lc.Listen(ctx, "tcp", ":"+port)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	return that.Serve(ctx, listener)
}

// Serve - accepts connections from listener until ctx is done. It closes the listener.
func (that *Server) Serve(ctx context.Context, listener net.Listener) error {
	log := that.logger.With("method", "Serve", "addr", listener.Addr().String())

	go func() {
		<-ctx.Done()
		_ = listener.Close()
	}()

	var wg sync.WaitGroup
	defer wg.Wait()

	log.Info("accepting connections")

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}

			if errors.Is(err, net.ErrClosed) {
				return nil
			}

			return fmt.Errorf("failed to accept connection: %w", err)
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			that.handler.Serve(ctx, newLineConn(conn, that.maxLineBytes))
		}()
	}
}

type lineConn struct {
	conn    net.Conn
	scanner *bufio.Scanner
	writer  *bufio.Writer
}

func newLineConn(conn net.Conn, maxLineBytes int) *lineConn {
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, min(initialLineBuffer, maxLineBytes)), maxLineBytes)

	return &lineConn{
		conn:    conn,
		scanner: scanner,
		writer:  bufio.NewWriter(conn),
	}
}

func (that *lineConn) ReadLine() (string, error) {
	if that.scanner.Scan() {
		return that.scanner.Text(), nil
	}

	if err := that.scanner.Err(); err != nil {
		return "", fmt.Errorf("failed to read line: %w", err)
	}

	return "", io.EOF
}

func (that *lineConn) WriteLine(line string) error {
	if _, err := that.writer.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("failed to write line: %w", err)
	}

	if err := that.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush line: %w", err)
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

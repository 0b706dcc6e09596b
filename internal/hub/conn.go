package hub

import (
	"context"
	"sync"
	"time"
)

// LineConn - a transport that carries one protocol line per read or write.
// WriteLine is only ever called from a single goroutine.
type LineConn interface {
	ReadLine() (string, error)
	WriteLine(line string) error
	SetWriteDeadline(t time.Time) error
	RemoteAddr() string
	Close() error
}

// Serve - runs the connection until the client goes away, the participant is dropped or ctx is done.
func (that *Hub) Serve(ctx context.Context, conn LineConn) {
	participant := that.Join(conn.RemoteAddr())

	log := that.logger.With("method", "Serve", "participantID", participant.id, "remoteAddr", conn.RemoteAddr())
	log.Info("connection established", "role", participant.role.String())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		that.writePump(participant, conn)
	}()
	go func() {
		defer wg.Done()

		select {
		case <-ctx.Done():
		case <-participant.Done():
		}

		// unblocks ReadLine
		_ = conn.Close()
	}()

	for {
		line, err := conn.ReadLine()
		if err != nil {
			log.Debug("read loop finished", "error", err)
			break
		}

		that.Handle(ctx, participant, line)
	}

	that.Leave(participant)
	cancel()
	wg.Wait()

	log.Info("connection closed")
}

func (that *Hub) writePump(participant *Participant, conn LineConn) {
	log := that.logger.With("method", "writePump", "participantID", participant.id)

	for {
		select {
		case <-participant.Done():
			return
		case line := <-participant.Outbound():
			if that.conf.WriteTimeout > 0 {
				if err := conn.SetWriteDeadline(time.Now().Add(that.conf.WriteTimeout)); err != nil {
					log.Debug("failed to set write deadline", "error", err)
				}
			}

			if err := conn.WriteLine(line); err != nil {
				log.Debug("failed to write line", "error", err)
				_ = conn.Close()
				return
			}
		}
	}
}

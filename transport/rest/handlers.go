package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rocketscienceinc/xiangqi-backend/internal/apperror"
	"github.com/rocketscienceinc/xiangqi-backend/internal/entity"
	"github.com/rocketscienceinc/xiangqi-backend/internal/protocol"
	"github.com/rocketscienceinc/xiangqi-backend/internal/usecase"
)

type boardResponse struct {
	entity.Snapshot

	Line           string `json:"line"`
	ElapsedSeconds int64  `json:"elapsed_seconds"`
	Participants   int    `json:"participants"`
}

type leaderboardEntry struct {
	*entity.Player

	WinRate float64 `json:"win_rate"`
}

type registerRequest struct {
	Name string `json:"name"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (that *Server) handleBoard(w http.ResponseWriter, _ *http.Request) {
	snapshot := that.board.Snapshot()

	writeJSON(w, http.StatusOK, boardResponse{
		Snapshot:       snapshot,
		Line:           protocol.EncodeBoard(snapshot),
		ElapsedSeconds: int64(that.board.Elapsed().Seconds()),
		Participants:   that.board.Participants(),
	})
}

func (that *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	players, err := that.players.Leaderboard(r.Context(), queryLimit(r))
	if err != nil {
		that.fail(w, r, err)
		return
	}

	entries := make([]leaderboardEntry, 0, len(players))
	for _, player := range players {
		entries = append(entries, leaderboardEntry{Player: player, WinRate: player.WinRate()})
	}

	writeJSON(w, http.StatusOK, entries)
}

func (that *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	player, err := that.players.Register(r.Context(), req.Name)
	if err != nil {
		that.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, player)
}

func (that *Server) handleGetPlayer(w http.ResponseWriter, r *http.Request) {
	player, err := that.players.LookupPlayer(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		that.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, player)
}

func (that *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	records, err := that.players.History(r.Context(), chi.URLParam(r, "name"), queryLimit(r))
	if err != nil {
		that.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, records)
}

// fail - maps domain errors onto status codes.
func (that *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		writeError(w, http.StatusNotFound, "player not found")
	case errors.Is(err, apperror.ErrAlreadyExists):
		writeError(w, http.StatusConflict, "player already exists")
	case errors.Is(err, usecase.ErrInvalidName):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		that.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func queryLimit(r *http.Request) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		return 0
	}
	return limit
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

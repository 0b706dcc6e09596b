package entity

import "time"

// GameRecord - a finished, decisive game.
type GameRecord struct {
	ID              int64     `json:"id"`
	RedPlayerID     int64     `json:"red_player_id"`
	RedPlayerName   string    `json:"red_player_name"`
	BlackPlayerID   int64     `json:"black_player_id"`
	BlackPlayerName string    `json:"black_player_name"`
	WinnerID        int64     `json:"winner_id"`
	WinnerName      string    `json:"winner_name"`
	DurationSeconds int64     `json:"duration_seconds"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
}

// LoserID - returns the id of the player who did not win.
func (that *GameRecord) LoserID() int64 {
	if that.WinnerID == that.RedPlayerID {
		return that.BlackPlayerID
	}
	return that.RedPlayerID
}

package entity

import "time"

type Player struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	TotalGames   int       `json:"total_games"`
	Wins         int       `json:"wins"`
	Losses       int       `json:"losses"`
	CreatedAt    time.Time `json:"created_at"`
	LastPlayedAt *time.Time `json:"last_played_at,omitempty"`
}

func (that *Player) WinRate() float64 {
	if that.TotalGames == 0 {
		return 0
	}
	return float64(that.Wins) / float64(that.TotalGames)
}

// Seat - the identity bound to a side for reporting a finished game.
type Seat struct {
	PlayerID int64
	Name     string
}

func (that Seat) Identified() bool {
	return that.PlayerID > 0
}

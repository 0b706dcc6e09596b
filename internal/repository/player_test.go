package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/xiangqi-backend/internal/apperror"
	"github.com/rocketscienceinc/xiangqi-backend/internal/entity"
	"github.com/rocketscienceinc/xiangqi-backend/internal/repository/storage"
)

func newTestDB(t *testing.T) (context.Context, *sql.DB) {
	t.Helper()

	ctx := context.Background()

	st, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "xiangqi.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Close()
	})

	require.NoError(t, st.Init(ctx))

	return ctx, st.Connection
}

func TestPlayerRepository_Create(t *testing.T) {
	t.Run("Create_Success", func(t *testing.T) {
		ctx, conn := newTestDB(t)
		playerRepo := NewPlayerRepository(conn)

		// When: a new name is registered
		player, err := playerRepo.Create(ctx, "alice")

		// Then: the player gets an id and zero stats
		require.NoError(t, err)
		assert.Positive(t, player.ID)
		assert.Equal(t, "alice", player.Name)
		assert.Zero(t, player.TotalGames)
	})

	t.Run("Create_Duplicate", func(t *testing.T) {
		ctx, conn := newTestDB(t)
		playerRepo := NewPlayerRepository(conn)

		// Given: alice is already registered
		_, err := playerRepo.Create(ctx, "alice")
		require.NoError(t, err)

		// When: registering the same name again
		_, err = playerRepo.Create(ctx, "alice")

		// Then: ErrAlreadyExists is returned
		require.ErrorIs(t, err, apperror.ErrAlreadyExists)
	})
}

func TestPlayerRepository_Get(t *testing.T) {
	ctx, conn := newTestDB(t)
	playerRepo := NewPlayerRepository(conn)

	created, err := playerRepo.Create(ctx, "帅哥")
	require.NoError(t, err)

	t.Run("GetByName_Success", func(t *testing.T) {
		player, err := playerRepo.GetByName(ctx, "帅哥")

		require.NoError(t, err)
		assert.Equal(t, created.ID, player.ID)
		assert.Nil(t, player.LastPlayedAt)
	})

	t.Run("GetByName_NotFound", func(t *testing.T) {
		player, err := playerRepo.GetByName(ctx, "nobody")

		require.ErrorIs(t, err, apperror.ErrNotFound)
		assert.Nil(t, player)
	})
}

func TestGameRecordRepository_Save(t *testing.T) {
	ctx, conn := newTestDB(t)
	playerRepo := NewPlayerRepository(conn)
	recordRepo := NewGameRecordRepository(conn)

	red, err := playerRepo.Create(ctx, "red")
	require.NoError(t, err)
	black, err := playerRepo.Create(ctx, "black")
	require.NoError(t, err)

	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	// Given: black wins the first game and red the second
	first := &entity.GameRecord{
		RedPlayerID: red.ID, RedPlayerName: red.Name,
		BlackPlayerID: black.ID, BlackPlayerName: black.Name,
		WinnerID: black.ID, WinnerName: black.Name,
		DurationSeconds: 90,
		StartTime:       start,
		EndTime:         start.Add(90 * time.Second),
	}
	second := &entity.GameRecord{
		RedPlayerID: red.ID, RedPlayerName: red.Name,
		BlackPlayerID: black.ID, BlackPlayerName: black.Name,
		WinnerID: red.ID, WinnerName: red.Name,
		DurationSeconds: 30,
		StartTime:       start.Add(time.Hour),
		EndTime:         start.Add(time.Hour + 30*time.Second),
	}

	// When: both records are saved
	require.NoError(t, recordRepo.Save(ctx, first))
	require.NoError(t, recordRepo.Save(ctx, second))

	// Then: ids are assigned and stats are updated
	assert.Positive(t, first.ID)
	assert.Greater(t, second.ID, first.ID)

	redAfter, err := playerRepo.GetByName(ctx, red.Name)
	require.NoError(t, err)
	assert.Equal(t, 2, redAfter.TotalGames)
	assert.Equal(t, 1, redAfter.Wins)
	assert.Equal(t, 1, redAfter.Losses)
	require.NotNil(t, redAfter.LastPlayedAt)
	assert.True(t, second.EndTime.Equal(*redAfter.LastPlayedAt))

	// And: history lists the most recent game first
	history, err := recordRepo.ListByPlayer(ctx, black.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, second.ID, history[0].ID)
	assert.Equal(t, int64(90), history[1].DurationSeconds)
	assert.True(t, start.Equal(history[1].StartTime))

	limited, err := recordRepo.ListByPlayer(ctx, red.ID, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestPlayerRepository_Leaderboard(t *testing.T) {
	ctx, conn := newTestDB(t)
	playerRepo := NewPlayerRepository(conn)
	recordRepo := NewGameRecordRepository(conn)

	names := []string{"a", "b", "c", "idle"}
	players := make(map[string]*entity.Player, len(names))
	for _, name := range names {
		player, err := playerRepo.Create(ctx, name)
		require.NoError(t, err)
		players[name] = player
	}

	play := func(winner, loser string) {
		now := time.Now().UTC()
		require.NoError(t, recordRepo.Save(ctx, &entity.GameRecord{
			RedPlayerID: players[winner].ID, RedPlayerName: winner,
			BlackPlayerID: players[loser].ID, BlackPlayerName: loser,
			WinnerID: players[winner].ID, WinnerName: winner,
			StartTime: now, EndTime: now,
		}))
	}

	// Given: a wins twice, b wins once and loses once, c only loses
	play("a", "c")
	play("a", "b")
	play("b", "c")

	// When: the leaderboard is requested
	top, err := playerRepo.Leaderboard(ctx, 10)
	require.NoError(t, err)

	// Then: players are ordered by win rate and idle players are left out
	require.Len(t, top, 3)
	assert.Equal(t, "a", top[0].Name)
	assert.Equal(t, "b", top[1].Name)
	assert.Equal(t, "c", top[2].Name)
	assert.InDelta(t, 0.5, top[1].WinRate(), 0.0001)
}

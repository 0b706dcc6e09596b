package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/xiangqi-backend/internal/apperror"
	"github.com/rocketscienceinc/xiangqi-backend/internal/entity"
)

const (
	snapshotKey     = "board:current"
	snapshotChannel = "xiangqi:board"
)

type SnapshotRepository interface {
	Publish(ctx context.Context, snapshot entity.Snapshot) error
	Get(ctx context.Context) (entity.Snapshot, error)
}

type dbSnapshot struct {
	client *redis.Client
}

func NewSnapshotRepository(client *redis.Client) SnapshotRepository {
	return &dbSnapshot{
		client: client,
	}
}

// Publish - stores the latest board and announces it to subscribers.
func (that *dbSnapshot) Publish(ctx context.Context, snapshot entity.Snapshot) error {
	snapshotJSON, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("could not marshal snapshot: %w", err)
	}

	_, err = that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, snapshotKey, snapshotJSON, 0)
		pipe.Publish(ctx, snapshotChannel, snapshotJSON)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to publish snapshot: %w", err)
	}

	return nil
}

func (that *dbSnapshot) Get(ctx context.Context) (entity.Snapshot, error) {
	response, err := that.client.Get(ctx, snapshotKey).Result()

	if errors.Is(err, redis.Nil) {
		return entity.Snapshot{}, apperror.ErrNotFound
	}

	if err != nil {
		return entity.Snapshot{}, fmt.Errorf("failed to get snapshot: %w", err)
	}

	var snapshot entity.Snapshot
	if err = json.Unmarshal([]byte(response), &snapshot); err != nil {
		return entity.Snapshot{}, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}

	return snapshot, nil
}

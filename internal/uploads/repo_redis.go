package uploads

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRepo stores files in Redis so several API instances can share them.
// Bytes live under <prefix>data:<id>, metadata in the hash <prefix>meta:<id>,
// and upload order in the sorted set <prefix>index.
type RedisRepo struct {
	Client redis.Cmdable
	Prefix string
}

// NewRedisRepo constructs a RedisRepo.
func NewRedisRepo(client redis.Cmdable, prefix string) *RedisRepo {
	return &RedisRepo{Client: client, Prefix: prefix}
}

func (r *RedisRepo) dataKey(id string) string { return r.Prefix + "data:" + id }
func (r *RedisRepo) metaKey(id string) string { return r.Prefix + "meta:" + id }
func (r *RedisRepo) indexKey() string         { return r.Prefix + "index" }
func (r *RedisRepo) seqKey() string           { return r.Prefix + "seq" }

// Put stores f and appends it to the upload index.
func (r *RedisRepo) Put(ctx context.Context, f File) error {
	seq, err := r.Client.Incr(ctx, r.seqKey()).Result()
	if err != nil {
		return fmt.Errorf("redis put %s: seq: %w", f.ID, err)
	}

	_, err = r.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.dataKey(f.ID), f.Data, 0)
		pipe.HSet(ctx, r.metaKey(f.ID), map[string]any{
			"name":      f.Name,
			"mimetype":  f.MimeType,
			"size":      f.Size(),
			"createdAt": f.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
		pipe.ZAdd(ctx, r.indexKey(), redis.Z{Score: float64(seq), Member: f.ID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis put %s: %w", f.ID, err)
	}
	return nil
}

// Get returns the file with id.
func (r *RedisRepo) Get(ctx context.Context, id string) (File, error) {
	var (
		dataCmd *redis.StringCmd
		metaCmd *redis.MapStringStringCmd
	)
	_, err := r.Client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		dataCmd = pipe.Get(ctx, r.dataKey(id))
		metaCmd = pipe.HGetAll(ctx, r.metaKey(id))
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return File{}, fmt.Errorf("redis get %s: %w", id, err)
	}

	data, err := dataCmd.Bytes()
	if errors.Is(err, redis.Nil) {
		return File{}, ErrNotFound
	}
	if err != nil {
		return File{}, fmt.Errorf("redis get %s: %w", id, err)
	}

	s := summaryFromMeta(id, metaCmd.Val())
	return File{
		ID:        id,
		Name:      s.Name,
		MimeType:  s.MimeType,
		Data:      data,
		CreatedAt: s.CreatedAt,
	}, nil
}

// List returns summaries of all stored files, oldest upload first.
func (r *RedisRepo) List(ctx context.Context) ([]Summary, error) {
	ids, err := r.Client.ZRange(ctx, r.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list: %w", err)
	}
	if len(ids) == 0 {
		return []Summary{}, nil
	}

	cmds := make([]*redis.MapStringStringCmd, len(ids))
	_, err = r.Client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGetAll(ctx, r.metaKey(id))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("redis list: %w", err)
	}

	out := make([]Summary, 0, len(ids))
	for i, id := range ids {
		meta := cmds[i].Val()
		if len(meta) == 0 {
			continue
		}
		out = append(out, summaryFromMeta(id, meta))
	}
	return out, nil
}

// Delete removes the file with id.
func (r *RedisRepo) Delete(ctx context.Context, id string) error {
	var del *redis.IntCmd
	_, err := r.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, r.dataKey(id), r.metaKey(id))
		pipe.ZRem(ctx, r.indexKey(), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis delete %s: %w", id, err)
	}
	if del.Val() == 0 {
		return ErrNotFound
	}
	return nil
}

// Ping checks connectivity.
func (r *RedisRepo) Ping(ctx context.Context) error {
	return r.Client.Ping(ctx).Err()
}

func summaryFromMeta(id string, meta map[string]string) Summary {
	size, _ := strconv.ParseInt(meta["size"], 10, 64)
	createdAt, _ := time.Parse(time.RFC3339Nano, meta["createdAt"])
	return Summary{
		ID:        id,
		Name:      meta["name"],
		MimeType:  meta["mimetype"],
		Size:      size,
		CreatedAt: createdAt,
	}
}

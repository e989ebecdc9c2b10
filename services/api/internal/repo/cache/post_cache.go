package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"unievent/services/api/internal/entity"

	"github.com/redis/go-redis/v9"
)

// generationTTL bounds how long an untouched post keeps its generation
// counter. It only has to outlive a single read-through.
const generationTTL = 24 * time.Hour

// NoGeneration is returned by Get when redis could not be read. Set ignores
// it.
const NoGeneration int64 = -1

// PostCache is a read-through cache of single posts. A nil client turns
// every method into a no-op so redis stays optional.
//
// Every post has a generation counter that Invalidate bumps. A reader takes
// the generation on its miss and Set writes only if it is unchanged, so a
// copy read before a concurrent mutation committed is never stored after
// that mutation's invalidation.
type PostCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewPostCache(client *redis.Client, ttl time.Duration) *PostCache {
	return &PostCache{client: client, ttl: ttl}
}

func postKey(postID string) string {
	return fmt.Sprintf("post:%s", postID)
}

func generationKey(postID string) string {
	return fmt.Sprintf("post:%s:gen", postID)
}

// Get returns the cached post. On a miss it returns the generation to hand
// to Set. Any redis failure is a miss with NoGeneration; the caller falls
// back to storage.
func (c *PostCache) Get(ctx context.Context, postID string) (*entity.Post, int64, bool) {
	if c == nil || c.client == nil {
		return nil, NoGeneration, false
	}
	values, err := c.client.MGet(ctx, postKey(postID), generationKey(postID)).Result()
	if err != nil || len(values) != 2 {
		return nil, NoGeneration, false
	}

	gen, err := parseGeneration(values[1])
	if err != nil {
		return nil, NoGeneration, false
	}
	data, ok := values[0].(string)
	if !ok {
		return nil, gen, false
	}
	var post entity.Post
	if err := json.Unmarshal([]byte(data), &post); err != nil {
		return nil, gen, false
	}
	return &post, gen, true
}

// Set stores post unless its generation moved past gen since the miss.
func (c *PostCache) Set(ctx context.Context, post *entity.Post, gen int64) error {
	if c == nil || c.client == nil || gen == NoGeneration {
		return nil
	}
	data, err := json.Marshal(post)
	if err != nil {
		return err
	}

	genKey := generationKey(post.ID)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		stored, err := tx.Get(ctx, genKey).Int64()
		if errors.Is(err, redis.Nil) {
			stored, err = 0, nil
		}
		if err != nil {
			return err
		}
		if stored != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, postKey(post.ID), data, c.ttl)
			return nil
		})
		return err
	}, genKey)
	if errors.Is(err, redis.TxFailedErr) {
		// Invalidated between the check and the write.
		return nil
	}
	return err
}

func (c *PostCache) Invalidate(ctx context.Context, postIDs ...string) error {
	if c == nil || c.client == nil || len(postIDs) == 0 {
		return nil
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range postIDs {
			pipe.Incr(ctx, generationKey(id))
			pipe.Expire(ctx, generationKey(id), generationTTL)
			pipe.Del(ctx, postKey(id))
		}
		return nil
	})
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

func parseGeneration(v interface{}) (int64, error) {
	switch s := v.(type) {
	case nil:
		return 0, nil
	case string:
		return strconv.ParseInt(s, 10, 64)
	default:
		return 0, fmt.Errorf("unexpected generation %T", v)
	}
}

package cache

import (
	"context"
	"encoding/json"
	"epsg-map-service/internal/platform/obs"
	"epsg-map-service/internal/ports"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisTransformCache keeps transform results in Redis with an expiry.
type RedisTransformCache struct {
	Client *redis.Client
	TTL    time.Duration
	Prefix string
}

func NewRedisTransformCache(client *redis.Client, ttl time.Duration) *RedisTransformCache {
	return &RedisTransformCache{Client: client, TTL: ttl, Prefix: "trans"}
}

type redisEntry struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Key is "<prefix>:<direction>:<srs>:<x>:<y>" with shortest float formatting.
func (r *RedisTransformCache) Key(req ports.TransformRequest) string {
	return strings.Join([]string{
		r.Prefix,
		string(req.Direction),
		req.SRS,
		strconv.FormatFloat(req.X, 'g', -1, 64),
		strconv.FormatFloat(req.Y, 'g', -1, 64),
	}, ":")
}

// Fetch the cached result for one request.
func (r *RedisTransformCache) Get(
	ctx context.Context,
	req ports.TransformRequest,
) (_ ports.TransformResult, _ bool, err error) {
	defer obs.Time(ctx, "transform.redis.Get")(&err)

	if r.Client == nil {
		return ports.TransformResult{}, false, errors.New("transform cache: redis client is nil")
	}

	raw, err := r.Client.Get(ctx, r.Key(req)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ports.TransformResult{}, false, nil
	}
	if err != nil {
		return ports.TransformResult{}, false, fmt.Errorf("get transform cache: redis get: %w", err)
	}

	var e redisEntry
	if err := json.Unmarshal(raw, &e); err != nil {
		return ports.TransformResult{}, false, fmt.Errorf("get transform cache: decode entry: %w", err)
	}

	return ports.TransformResult{X: e.X, Y: e.Y}, true, nil
}

// Store one transform result with the configured TTL.
func (r *RedisTransformCache) Put(
	ctx context.Context,
	req ports.TransformRequest,
	res ports.TransformResult,
) error {
	if r.Client == nil {
		return errors.New("transform cache: redis client is nil")
	}

	payload, err := json.Marshal(redisEntry{X: res.X, Y: res.Y})
	if err != nil {
		return fmt.Errorf("insert transform cache: encode entry: %w", err)
	}

	if err := r.Client.Set(ctx, r.Key(req), payload, r.TTL).Err(); err != nil {
		return fmt.Errorf("insert transform cache: redis set: %w", err)
	}

	return nil
}

package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultKey is the sorted set holding request timestamps.
const DefaultKey = "autoscribe:ratelimit:requests"

// slidingWindow prunes, counts and (optionally) records a request in one
// round trip. Scores are unix milliseconds.
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local member = ARGV[4]
local consume = ARGV[5] == "1"

redis.call("ZREMRANGEBYSCORE", key, "-inf", tostring(now - window))
local count = redis.call("ZCARD", key)
local allowed = 0
if count < limit then
	allowed = 1
	if consume then
		redis.call("ZADD", key, tostring(now), member)
		redis.call("PEXPIRE", key, tostring(window))
		count = count + 1
	end
end

local oldest = -1
local first = redis.call("ZRANGE", key, "0", "0", "WITHSCORES")
if #first > 0 then
	oldest = tonumber(first[2])
end
return {allowed, count, oldest}
`)

// Redis is a sliding-window limiter shared by every process using the same
// key.
type Redis struct {
	client *redis.Client
	key    string
	limit  int
	window time.Duration
	now    func() time.Time
}

// NewRedis connects to url and verifies the server answers. url is either
// a redis:// or rediss:// URL or a bare host:port.
func NewRedis(ctx context.Context, url string, limit int, window time.Duration) (*Redis, error) {
	opt, err := redisOptions(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return NewRedisWithClient(client, limit, window), nil
}

func redisOptions(url string) (*redis.Options, error) {
	if !strings.Contains(url, "://") {
		return &redis.Options{Addr: url}, nil
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	return opt, nil
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(client *redis.Client, limit int, window time.Duration) *Redis {
	return &Redis{
		client: client,
		key:    DefaultKey,
		limit:  max(limit, 1),
		window: window,
		now:    time.Now,
	}
}

// WithClock replaces the clock; tests use it.
func (r *Redis) WithClock(now func() time.Time) *Redis {
	r.now = now
	return r
}

// Close releases the connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}

// Allow records a request if the shared window has room.
func (r *Redis) Allow(ctx context.Context) (Status, error) {
	return r.run(ctx, true)
}

// Status reports usage without recording a request.
func (r *Redis) Status(ctx context.Context) (Status, error) {
	return r.run(ctx, false)
}

func (r *Redis) run(ctx context.Context, consume bool) (Status, error) {
	now := r.now()
	flag := "0"
	if consume {
		flag = "1"
	}
	res, err := slidingWindow.Run(ctx, r.client, []string{r.key},
		now.UnixMilli(),
		r.window.Milliseconds(),
		r.limit,
		strconv.FormatInt(now.UnixNano(), 10)+"-"+uuid.NewString(),
		flag,
	).Int64Slice()
	if err != nil {
		return Status{}, fmt.Errorf("running rate limit script: %w", err)
	}
	if len(res) != 3 {
		return Status{}, fmt.Errorf("unexpected rate limit reply of length %d", len(res))
	}

	made := int(res[1])
	st := Status{
		Allowed:   res[0] == 1,
		Made:      made,
		Limit:     r.limit,
		Remaining: max(r.limit-made, 0),
		ResetAt:   now,
	}
	if res[2] >= 0 {
		st.ResetAt = time.UnixMilli(res[2]).Add(r.window)
	}
	return st, nil
}

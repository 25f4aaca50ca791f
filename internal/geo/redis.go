package geo

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"sulytrack/internal/logx"
)

const (
	// VisibleKey is the GEO set of visible drivers.
	VisibleKey = "sulytrack:drivers:visible"
	// CategoryKey maps driver id to vehicle type for the members of VisibleKey.
	CategoryKey = "sulytrack:drivers:category"
)

// RedisIndex is an Index backed by a Redis GEO set.
type RedisIndex struct {
	rdb goredis.Cmdable
}

// NewRedisIndex wraps a client or pipeline-capable Cmdable.
func NewRedisIndex(rdb goredis.Cmdable) *RedisIndex { return &RedisIndex{rdb: rdb} }

// Connect opens a Redis client and waits until it answers PING.
func Connect(ctx context.Context, opts *goredis.Options, attempts int, logger logx.Logger) (*goredis.Client, error) {
	rdb := goredis.NewClient(opts)
	var err error
	for i := 1; i <= attempts; i++ {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err = rdb.Ping(pingCtx).Err()
		cancel()
		if err == nil {
			logger.Info("redis connected", logx.String("addr", opts.Addr))
			return rdb, nil
		}
		logger.Warn("waiting for redis", logx.Int("attempt", i), logx.Err(err))
		select {
		case <-ctx.Done():
			_ = rdb.Close()
			return nil, ctx.Err()
		case <-time.After(time.Second):
		}
	}
	_ = rdb.Close()
	return nil, fmt.Errorf("redis %s: %w", opts.Addr, err)
}

// Replace rewrites the whole index in one MULTI/EXEC so readers never see a partial set.
func (r *RedisIndex) Replace(ctx context.Context, members []Member) error {
	_, err := r.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Del(ctx, VisibleKey, CategoryKey)
		if len(members) == 0 {
			return nil
		}
		locs := make([]*goredis.GeoLocation, 0, len(members))
		cats := make(map[string]any, len(members))
		for _, m := range members {
			locs = append(locs, &goredis.GeoLocation{Name: m.ID, Longitude: m.Point.Lng, Latitude: m.Point.Lat})
			cats[m.ID] = m.Category
		}
		pipe.GeoAdd(ctx, VisibleKey, locs...)
		pipe.HSet(ctx, CategoryKey, cats)
		return nil
	})
	if err != nil {
		return fmt.Errorf("replace geo index: %w", err)
	}
	return nil
}

// Nearby runs GEOSEARCH around q.Center and filters by category.
func (r *RedisIndex) Nearby(ctx context.Context, q Query) ([]Hit, error) {
	search := &goredis.GeoSearchLocationQuery{
		GeoSearchQuery: goredis.GeoSearchQuery{
			Longitude:  q.Center.Lng,
			Latitude:   q.Center.Lat,
			Radius:     q.RadiusKm,
			RadiusUnit: "km",
			Sort:       "ASC",
		},
		WithDist: true,
	}
	// The category filter runs after the search, so only cap the count when it cannot drop hits.
	if !q.filtered() && q.Limit > 0 {
		search.Count = q.Limit
	}
	locs, err := r.rdb.GeoSearchLocation(ctx, VisibleKey, search).Result()
	if err != nil {
		return nil, fmt.Errorf("geo search: %w", err)
	}
	if len(locs) == 0 {
		return []Hit{}, nil
	}

	ids := make([]string, len(locs))
	for i, l := range locs {
		ids[i] = l.Name
	}
	cats, err := r.rdb.HMGet(ctx, CategoryKey, ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("geo categories: %w", err)
	}

	hits := make([]Hit, 0, len(locs))
	for i, l := range locs {
		cat, _ := cats[i].(string)
		if !q.matches(cat) {
			continue
		}
		hits = append(hits, Hit{ID: l.Name, Category: cat, DistanceKm: l.Dist})
		if q.Limit > 0 && len(hits) == q.Limit {
			break
		}
	}
	return hits, nil
}

func (q Query) filtered() bool {
	return !q.matches("")
}

package api

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"pagsusi/internal/grouping"
	"pagsusi/internal/logger"
	"pagsusi/internal/mapview"
	"pagsusi/internal/metrics"
)

const defaultGeoJSONTTL = time.Hour

// geoJSONKey is the cache key for a dataset. Datasets with equal records share a key.
func geoJSONKey(digest string) string { return "geojson:" + digest }

// encodeGeoJSON returns the group feature collection for the dataset identified by digest,
// serving it from redis when rc is set and the entry is present.
func encodeGeoJSON(ctx context.Context, rc *redis.Client, ttl time.Duration, digest string, groups []grouping.Group) ([]byte, error) {
	key := geoJSONKey(digest)
	if rc != nil {
		if s, _ := rc.Get(ctx, key).Result(); s != "" {
			metrics.GeoJSONCacheHitsTotal.Inc()
			return []byte(s), nil
		}
	}
	metrics.GeoJSONCacheMissesTotal.Inc()
	b, err := json.Marshal(mapview.FeatureCollection(groups))
	if err != nil {
		return nil, err
	}
	if rc != nil {
		if ttl <= 0 {
			ttl = defaultGeoJSONTTL
		}
		if err := rc.Set(ctx, key, string(b), ttl).Err(); err != nil {
			logger.L().Warn("geojson_cache_set_error", "key", key, "err", err)
		}
	}
	return b, nil
}

package location

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/example/transit-messaging/internal/models"
)

// RedisStore keeps vehicle positions in Redis GEO plus a metadata hash, so
// a separate query side can also do radius lookups.
type RedisStore struct {
	client *redis.Client
	key    string
	ctx    context.Context
}

func NewRedisStore(addr, password, key string) *RedisStore {
	c := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	return &RedisStore{client: c, key: key, ctx: context.Background()}
}

func (r *RedisStore) Upsert(s models.VehicleLocationSample) error {
	name := strconv.FormatInt(s.BusID, 10)
	if _, err := r.client.GeoAdd(r.ctx, r.key, &redis.GeoLocation{Longitude: s.Lng, Latitude: s.Lat, Name: name}).Result(); err != nil {
		return err
	}
	return r.client.HSet(r.ctx, metaKey(s.BusID), map[string]interface{}{
		"lat":     fmt.Sprintf("%f", s.Lat),
		"lng":     fmt.Sprintf("%f", s.Lng),
		"updated": s.At.Format(time.RFC3339),
	}).Err()
}

func (r *RedisStore) Last(busID int64) (models.VehicleLocationSample, bool) {
	m, err := r.client.HGetAll(r.ctx, metaKey(busID)).Result()
	if err != nil || len(m) == 0 {
		return models.VehicleLocationSample{}, false
	}
	s := models.VehicleLocationSample{BusID: busID}
	if v, err := strconv.ParseFloat(m["lat"], 64); err == nil {
		s.Lat = v
	}
	if v, err := strconv.ParseFloat(m["lng"], 64); err == nil {
		s.Lng = v
	}
	if ts, err := time.Parse(time.RFC3339, m["updated"]); err == nil {
		s.At = ts
	}
	return s, true
}

func (r *RedisStore) Close() error { return r.client.Close() }

func metaKey(busID int64) string { return "bus:meta:" + strconv.FormatInt(busID, 10) }

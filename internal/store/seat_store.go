// Package store implements the seat grid and hold registry on Redis.
// Seat state lives in one hash per event; every mutation goes through a
// Lua script so concurrent callers observe each batch as a single atomic
// compare-and-set, never a torn mix.
package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/lmoretti/event-seat-reservation/internal/domain"
)

// Batch compare-and-set over seat fields of a single event hash. A missing
// field means FREE. Either every field matches the expected status and all
// of them are rewritten, or nothing is mutated and the conflicting fields
// are returned.
var compareAndSetScript = redis.NewScript(`
	-- KEYS[1] = seat hash (seats:<eventId>)
	-- ARGV[1] = expected status, ARGV[2] = next status, ARGV[3..] = seat fields

	local conflicts = {}

	for i = 3, #ARGV do
		local current = redis.call("HGET", KEYS[1], ARGV[i])
		if not current then
			current = "FREE"
		end
		if current ~= ARGV[1] then
			table.insert(conflicts, ARGV[i])
		end
	end

	if #conflicts > 0 then
		return conflicts
	end

	for i = 3, #ARGV do
		if ARGV[2] == "FREE" then
			redis.call("HDEL", KEYS[1], ARGV[i])
		else
			redis.call("HSET", KEYS[1], ARGV[i], ARGV[2])
		end
	end

	return {}
`)

type RedisSeatStore struct {
	rdb redis.UniversalClient
}

func NewRedisSeatStore(rdb redis.UniversalClient) *RedisSeatStore {
	return &RedisSeatStore{rdb: rdb}
}

func seatHashKey(eventID int64) string {
	return fmt.Sprintf("seats:%d", eventID)
}

func (s *RedisSeatStore) GetSeatStatuses(ctx context.Context, eventID int64) (map[domain.SeatKey]domain.SeatStatus, error) {
	fields, err := s.rdb.HGetAll(ctx, seatHashKey(eventID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read seat hash for event %d: %w", eventID, err)
	}

	statuses := make(map[domain.SeatKey]domain.SeatStatus, len(fields))

	for field, status := range fields {
		key, err := domain.ParseSeatKey(field)
		if err != nil {
			return nil, err
		}
		statuses[key] = domain.SeatStatus(status)
	}

	return statuses, nil
}

func (s *RedisSeatStore) CompareAndSetSeats(
	ctx context.Context,
	eventID int64,
	keys []domain.SeatKey,
	expected, next domain.SeatStatus) ([]domain.SeatKey, error) {

	args := make([]interface{}, 0, len(keys)+2)
	args = append(args, string(expected), string(next))
	for _, k := range keys {
		args = append(args, k.String())
	}

	fields, err := compareAndSetScript.Run(ctx, s.rdb, []string{seatHashKey(eventID)}, args...).StringSlice()
	if err != nil {
		return nil, fmt.Errorf("failed to run seat compare-and-set script: %w", err)
	}

	if len(fields) == 0 {
		return nil, nil
	}

	conflicts := make([]domain.SeatKey, 0, len(fields))
	for _, field := range fields {
		key, err := domain.ParseSeatKey(field)
		if err != nil {
			return nil, err
		}
		conflicts = append(conflicts, key)
	}

	return conflicts, nil
}

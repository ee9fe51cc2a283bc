package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lmoretti/event-seat-reservation/internal/domain"
)

// consumedHoldRetention keeps consumed hold records around for audit before
// Redis reclaims them. Expiry of ACTIVE holds is never delegated to Redis:
// the expiresAt timestamp inside the record is authoritative.
const consumedHoldRetention = 24 * time.Hour

// Reclaims every expired, non-consumed hold of one event: frees the seats
// that are still HELD and deletes the hold record. Seats that were already
// sold (or re-held) in the meantime are left untouched, which is what makes
// a sweep racing a sale confirmation safe without extra locking.
var expireHoldsScript = redis.NewScript(`
	-- KEYS[1] = hold token set (holds:<eventId>)
	-- KEYS[2] = seat hash (seats:<eventId>)
	-- ARGV[1] = now (unix seconds), ARGV[2] = hold key prefix (hold:<eventId>:)

	local reclaimed = 0
	local tokens = redis.call("SMEMBERS", KEYS[1])

	for _, token in ipairs(tokens) do
		local raw = redis.call("GET", ARGV[2] .. token)
		if not raw then
			redis.call("SREM", KEYS[1], token)
		else
			local hold = cjson.decode(raw)
			if hold.consumed ~= true and hold.expiresAt <= tonumber(ARGV[1]) then
				for _, field in ipairs(hold.seats) do
					if redis.call("HGET", KEYS[2], field) == "HELD" then
						redis.call("HDEL", KEYS[2], field)
					end
				end
				redis.call("DEL", ARGV[2] .. token)
				redis.call("SREM", KEYS[1], token)
				reclaimed = reclaimed + 1
			end
		end
	end

	return reclaimed
`)

// Drops an event from the hold_events index only while its token set is
// empty. Checking and removing in one script keeps a concurrent Put (which
// adds the token and the index entry atomically) from being unindexed.
var pruneEventIndexScript = redis.NewScript(`
	-- KEYS[1] = hold token set (holds:<eventId>)
	-- KEYS[2] = event index (hold_events)
	-- ARGV[1] = event id

	if redis.call("SCARD", KEYS[1]) == 0 then
		redis.call("SREM", KEYS[2], ARGV[1])
		return 1
	end

	return 0
`)

// holdRecord is the persistence model of a hold. Timestamps are unix seconds
// so the expiry script can compare them without parsing dates.
type holdRecord struct {
	ID          string   `json:"id"`
	EventID     int64    `json:"eventId"`
	HolderToken string   `json:"holderToken"`
	Seats       []string `json:"seats"`
	CreatedAt   int64    `json:"createdAt"`
	ExpiresAt   int64    `json:"expiresAt"`
	Consumed    bool     `json:"consumed"`
	SaleID      int64    `json:"saleId"`
}

func toHoldRecord(hold *domain.Hold) holdRecord {
	seats := make([]string, len(hold.Seats))
	for i, k := range hold.Seats {
		seats[i] = k.String()
	}

	return holdRecord{
		ID:          hold.ID,
		EventID:     hold.EventID,
		HolderToken: hold.HolderToken,
		Seats:       seats,
		CreatedAt:   hold.CreatedAt.Unix(),
		ExpiresAt:   hold.ExpiresAt.Unix(),
		Consumed:    hold.Consumed,
		SaleID:      hold.SaleID,
	}
}

func (r holdRecord) toDomain() (*domain.Hold, error) {
	seats := make([]domain.SeatKey, len(r.Seats))
	for i, s := range r.Seats {
		key, err := domain.ParseSeatKey(s)
		if err != nil {
			return nil, err
		}
		seats[i] = key
	}

	return &domain.Hold{
		ID:          r.ID,
		EventID:     r.EventID,
		HolderToken: r.HolderToken,
		Seats:       seats,
		CreatedAt:   time.Unix(r.CreatedAt, 0).UTC(),
		ExpiresAt:   time.Unix(r.ExpiresAt, 0).UTC(),
		Consumed:    r.Consumed,
		SaleID:      r.SaleID,
	}, nil
}

type RedisHoldStore struct {
	rdb redis.UniversalClient
}

func NewRedisHoldStore(rdb redis.UniversalClient) *RedisHoldStore {
	return &RedisHoldStore{rdb: rdb}
}

const holdEventsKey = "hold_events"

func holdKey(eventID int64, holderToken string) string {
	return fmt.Sprintf("hold:%d:%s", eventID, holderToken)
}

func holdKeyPrefix(eventID int64) string {
	return fmt.Sprintf("hold:%d:", eventID)
}

func holdSetKey(eventID int64) string {
	return fmt.Sprintf("holds:%d", eventID)
}

func (s *RedisHoldStore) Put(ctx context.Context, hold *domain.Hold) error {
	raw, err := json.Marshal(toHoldRecord(hold))
	if err != nil {
		return fmt.Errorf("failed to marshal hold record: %w", err)
	}

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, holdKey(hold.EventID, hold.HolderToken), raw, 0)
	pipe.SAdd(ctx, holdSetKey(hold.EventID), hold.HolderToken)
	pipe.SAdd(ctx, holdEventsKey, hold.EventID)

	_, err = pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to store hold record: %w", err)
	}

	return nil
}

func (s *RedisHoldStore) GetByHolder(ctx context.Context, eventID int64, holderToken string) (*domain.Hold, error) {
	raw, err := s.rdb.Get(ctx, holdKey(eventID, holderToken)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to read hold record: %w", err)
	}

	var record holdRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal hold record: %w", err)
	}

	return record.toDomain()
}

func (s *RedisHoldStore) Delete(ctx context.Context, eventID int64, holderToken string) error {
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, holdKey(eventID, holderToken))
	pipe.SRem(ctx, holdSetKey(eventID), holderToken)

	_, err := pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete hold record: %w", err)
	}

	return nil
}

func (s *RedisHoldStore) MarkConsumed(ctx context.Context, hold *domain.Hold, saleID int64) error {
	consumed := *hold
	consumed.Consumed = true
	consumed.SaleID = saleID

	raw, err := json.Marshal(toHoldRecord(&consumed))
	if err != nil {
		return fmt.Errorf("failed to marshal consumed hold record: %w", err)
	}

	err = s.rdb.Set(ctx, holdKey(hold.EventID, hold.HolderToken), raw, consumedHoldRetention).Err()
	if err != nil {
		return fmt.Errorf("failed to mark hold consumed: %w", err)
	}

	return nil
}

func (s *RedisHoldStore) ActiveByEvent(ctx context.Context, eventID int64, now time.Time) ([]domain.Hold, error) {
	tokens, err := s.rdb.SMembers(ctx, holdSetKey(eventID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list hold tokens for event %d: %w", eventID, err)
	}

	if len(tokens) == 0 {
		return []domain.Hold{}, nil
	}

	keys := make([]string, len(tokens))
	for i, token := range tokens {
		keys[i] = holdKey(eventID, token)
	}

	raws, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch hold records for event %d: %w", eventID, err)
	}

	holds := make([]domain.Hold, 0, len(raws))

	for _, raw := range raws {
		str, ok := raw.(string)
		if !ok {
			// token indexed but record gone, the next sweep cleans it up
			continue
		}

		var record holdRecord
		if err := json.Unmarshal([]byte(str), &record); err != nil {
			return nil, fmt.Errorf("failed to unmarshal hold record: %w", err)
		}

		hold, err := record.toDomain()
		if err != nil {
			return nil, err
		}

		if hold.Consumed || hold.Expired(now) {
			continue
		}

		holds = append(holds, *hold)
	}

	return holds, nil
}

func (s *RedisHoldStore) ExpireEvent(ctx context.Context, eventID int64, now time.Time) (int, error) {
	keys := []string{holdSetKey(eventID), seatHashKey(eventID)}

	reclaimed, err := expireHoldsScript.Run(ctx, s.rdb, keys, now.Unix(), holdKeyPrefix(eventID)).Int()
	if err != nil {
		return 0, fmt.Errorf("failed to run hold expiry script for event %d: %w", eventID, err)
	}

	return reclaimed, nil
}

func (s *RedisHoldStore) ExpireAll(ctx context.Context, now time.Time) (int, error) {
	members, err := s.rdb.SMembers(ctx, holdEventsKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to list events with holds: %w", err)
	}

	total := 0

	for _, member := range members {
		eventID, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			return total, fmt.Errorf("malformed event id %q in hold index: %w", member, err)
		}

		reclaimed, err := s.ExpireEvent(ctx, eventID, now)
		if err != nil {
			return total, err
		}
		total += reclaimed

		keys := []string{holdSetKey(eventID), holdEventsKey}
		if err := pruneEventIndexScript.Run(ctx, s.rdb, keys, eventID).Err(); err != nil {
			return total, err
		}
	}

	return total, nil
}

package worker

// Sends and jobs that exhaust their retries are moved here for manual
// inspection. One redis list per source: dlq:{channel or queue}

import (
	"context"
	"encoding/json"
	"time"

	"github.com/leodymann/wi-api/internal/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const DLQPrefix = "dlq:"

// DLQEntry wraps a failed item with metadata for debugging.
type DLQEntry struct {
	OriginalQueue string          `json:"original_queue"`
	JobType       string          `json:"job_type"`
	Payload       json.RawMessage `json:"payload"`
	Reason        string          `json:"reason"`
	FailedAt      string          `json:"failed_at"` // ISO 8601
	Attempts      int             `json:"attempts"`
}

// DeadLetters stores parked items in redis lists.
type DeadLetters struct {
	rdb *redis.Client
	now func() time.Time
}

func NewDeadLetters(rdb *redis.Client) *DeadLetters {
	return &DeadLetters{rdb: rdb, now: time.Now}
}

// DeadLetter records a notification whose send retries ran out.
func (d *DeadLetters) DeadLetter(ctx context.Context, ch model.Channel, id uuid.UUID, st model.SendState) error {
	payload, err := json.Marshal(map[string]any{"id": id.String(), "table": ch.Table})
	if err != nil {
		return err
	}
	reason := ""
	if st.LastError != nil {
		reason = *st.LastError
	}
	return d.push(ctx, ch.Name, DLQEntry{
		OriginalQueue: ch.Name,
		JobType:       "notification",
		Payload:       payload,
		Reason:        reason,
		FailedAt:      d.now().UTC().Format(time.RFC3339),
		Attempts:      st.Tries,
	})
}

// Push moves a failed queue job to the dead letter list. Errors are logged.
func (d *DeadLetters) Push(ctx context.Context, queue, jobType string, payload json.RawMessage, reason string, attempts int) {
	entry := DLQEntry{
		OriginalQueue: queue,
		JobType:       jobType,
		Payload:       payload,
		Reason:        reason,
		FailedAt:      d.now().UTC().Format(time.RFC3339),
		Attempts:      attempts,
	}
	if err := d.push(ctx, queue, entry); err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: failed to push to DLQ")
		return
	}
	log.Warn().
		Str("queue", queue).
		Str("job_type", jobType).
		Str("reason", reason).
		Int("attempts", attempts).
		Msg("dlq: job moved to dead letter queue")
}

func (d *DeadLetters) push(ctx context.Context, queue string, entry DLQEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, DLQPrefix+queue, data).Err()
}

// Length returns the number of entries in a DLQ for monitoring.
func (d *DeadLetters) Length(ctx context.Context, queue string) (int64, error) {
	return d.rdb.LLen(ctx, DLQPrefix+queue).Result()
}

// Recent returns up to n newest entries of a DLQ.
func (d *DeadLetters) Recent(ctx context.Context, queue string, n int64) ([]DLQEntry, error) {
	if n <= 0 {
		return nil, nil
	}
	raw, err := d.rdb.LRange(ctx, DLQPrefix+queue, 0, n-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]DLQEntry, 0, len(raw))
	for _, s := range raw {
		var e DLQEntry
		if err := json.Unmarshal([]byte(s), &e); err != nil {
			log.Warn().Err(err).Str("queue", queue).Msg("dlq: unreadable entry skipped")
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

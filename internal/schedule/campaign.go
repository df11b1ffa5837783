package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// OffersStateKey holds the hourly offer campaign state.
const OffersStateKey = "offers_hourly_state"

// CampaignState is persisted after every successful send.
type CampaignState struct {
	Date         string    `json:"date"`
	LastHourSent *int      `json:"last_hour_sent"`
	SentAt       time.Time `json:"sent_at"`
	SentItemIDs  []string  `json:"sent_item_ids"`
	LastItemID   string    `json:"last_item_id,omitempty"`
}

// CampaignLimiter allows at most one campaign send per clock hour inside a
// daily window and remembers which items went out today.
type CampaignLimiter struct {
	store StateStore
	key   string
	// MinSpacing additionally requires this much time since the last send.
	MinSpacing time.Duration
}

func NewCampaignLimiter(store StateStore, minSpacing time.Duration) *CampaignLimiter {
	return &CampaignLimiter{store: store, key: OffersStateKey, MinSpacing: minSpacing}
}

func dayKey(t time.Time) string { return t.Format("2006-01-02") }

func (l *CampaignLimiter) load(ctx context.Context) (*CampaignState, error) {
	b, ok, err := l.store.Get(ctx, l.key)
	if err != nil || !ok {
		return &CampaignState{}, err
	}
	var st CampaignState
	if err := json.Unmarshal(b, &st); err != nil {
		// corrupt state resets the day
		return &CampaignState{}, nil
	}
	return &st, nil
}

// CanSendNow reports whether now (local time) is inside [startHour, endHour]
// and no send happened during the current hour of the current day.
func (l *CampaignLimiter) CanSendNow(ctx context.Context, now time.Time, startHour, endHour int) (bool, error) {
	h := now.Hour()
	if h < startHour || h > endHour {
		return false, nil
	}
	st, err := l.load(ctx)
	if err != nil {
		return false, err
	}
	if st.Date != dayKey(now) {
		return true, nil
	}
	if st.LastHourSent != nil && *st.LastHourSent == h {
		return false, nil
	}
	if l.MinSpacing > 0 && !st.SentAt.IsZero() && now.Sub(st.SentAt) < l.MinSpacing {
		return false, nil
	}
	return true, nil
}

// SentToday returns the item ids already sent on now's calendar day.
func (l *CampaignLimiter) SentToday(ctx context.Context, now time.Time) (map[string]bool, error) {
	st, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool)
	if st.Date != dayKey(now) {
		return out, nil
	}
	for _, id := range st.SentItemIDs {
		out[id] = true
	}
	return out, nil
}

// MarkSent records a send for now's hour and adds itemID to today's set.
func (l *CampaignLimiter) MarkSent(ctx context.Context, now time.Time, itemID string) error {
	st, err := l.load(ctx)
	if err != nil {
		return err
	}
	today := dayKey(now)
	if st.Date != today {
		st = &CampaignState{Date: today}
	}
	h := now.Hour()
	st.LastHourSent = &h
	st.SentAt = now
	if itemID != "" {
		seen := false
		for _, id := range st.SentItemIDs {
			if id == itemID {
				seen = true
				break
			}
		}
		if !seen {
			st.SentItemIDs = append(st.SentItemIDs, itemID)
		}
		st.LastItemID = itemID
	}
	b, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("schedule: encode campaign state: %w", err)
	}
	return l.store.Put(ctx, l.key, b)
}

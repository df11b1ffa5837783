package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/leodymann/wi-api/internal/infra"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	to    []string
	files []infra.Attachment
	err   error
}

func (m *fakeMailer) Send(to []string, _, _ string, files ...infra.Attachment) error {
	m.to, m.files = to, files
	return m.err
}

func TestEmailWorker_ProcessAttachesPDF(t *testing.T) {
	mailer := &fakeMailer{}
	raw, err := json.Marshal(EmailJobPayload{To: []string{"dono@wimotos.com"}, Subject: "s", Filename: "r.pdf", PDF: []byte("pdf")})
	require.NoError(t, err)

	require.NoError(t, NewEmailWorker(mailer).Process(context.Background(), raw))
	assert.Equal(t, []string{"dono@wimotos.com"}, mailer.to)
	require.Len(t, mailer.files, 1)
	assert.Equal(t, "r.pdf", mailer.files[0].Filename)
	assert.Equal(t, []byte("pdf"), mailer.files[0].Data)

	assert.Error(t, NewEmailWorker(mailer).Process(context.Background(), json.RawMessage("{")))
	mailer.err = errors.New("smtp down")
	assert.Error(t, NewInlineEmail(NewEmailWorker(mailer)).EnqueueEmail(context.Background(), EmailJobPayload{To: []string{"x@y"}}))
}

type fakeReaper struct{ cutoff, now time.Time }

func (f *fakeReaper) ReapStale(_ context.Context, cutoff, now time.Time) (int64, error) {
	f.cutoff, f.now = cutoff, now
	return 2, nil
}

func TestReaper_UsesStaleWindow(t *testing.T) {
	repo := &fakeReaper{}
	r := NewReaper(repo, 15*time.Minute)
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	n, err := r.Reap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, now.Add(-15*time.Minute), repo.cutoff)
	assert.Equal(t, now, repo.now)
}

func TestReaper_StartRejectsBadSchedule(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	assert.Error(t, NewReaper(&fakeReaper{}, 0).Start(ctx, "not a schedule"))
	assert.NoError(t, NewReaper(&fakeReaper{}, 0).Start(ctx, "@every 1h"))
}

func TestIsoWeekday(t *testing.T) {
	assert.Equal(t, time.Monday, isoWeekday(0))
	assert.Equal(t, time.Saturday, isoWeekday(5))
	assert.Equal(t, time.Sunday, isoWeekday(6))
}

package maintenance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	expired      int64
	pruned       int64
	prunedEvents int64
	pruneCutoff  time.Time
	expireErr    error
}

func (m *memStore) DeactivateExpiredLinks(_ context.Context, _ time.Time) (int64, error) {
	if m.expireErr != nil {
		return 0, m.expireErr
	}
	return m.expired, nil
}

func (m *memStore) PruneAnalytics(_ context.Context, before time.Time) (int64, error) {
	m.pruneCutoff = before
	return m.pruned, nil
}

func (m *memStore) PruneActivityEvents(_ context.Context, _ time.Time) (int64, error) {
	return m.prunedEvents, nil
}

type memPublisher struct {
	counts []int64
}

func (m *memPublisher) PublishLinksExpired(_ context.Context, count int64) error {
	m.counts = append(m.counts, count)
	return nil
}

func TestRunNowSweepsAndPrunes(t *testing.T) {
	store := &memStore{expired: 2, pruned: 10, prunedEvents: 4}
	pub := &memPublisher{}
	s := NewScheduler(store, pub, 90, zerolog.Nop())

	s.RunNow()

	assert.Equal(t, []int64{2}, pub.counts)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, -90), store.pruneCutoff, time.Minute)
}

func TestNoFeedEventWhenNothingExpired(t *testing.T) {
	store := &memStore{expired: 0}
	pub := &memPublisher{}
	s := NewScheduler(store, pub, 90, zerolog.Nop())

	s.RunNow()
	assert.Empty(t, pub.counts)
}

func TestExpiryErrorDoesNotPublish(t *testing.T) {
	store := &memStore{expireErr: errors.New("database down")}
	pub := &memPublisher{}
	s := NewScheduler(store, pub, 90, zerolog.Nop())

	s.runLinkExpiry()
	assert.Empty(t, pub.counts)
}

func TestStartStop(t *testing.T) {
	s := NewScheduler(&memStore{}, nil, 90, zerolog.Nop())

	require.NoError(t, s.Start())
	assert.Error(t, s.Start(), "double start should fail")

	ctx := s.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop in time")
	}

	// Stopping again is harmless.
	<-s.Stop().Done()
}

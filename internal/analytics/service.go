package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ironcrest/sigforge/internal/metrics"
	"github.com/ironcrest/sigforge/internal/models"
	"github.com/rs/zerolog"
)

// DefaultWindowDays is the rollup window used when a request does not name
// one.
const DefaultWindowDays = 30

// Store is the persistence interface the service needs.
type Store interface {
	InsertView(ctx context.Context, v *models.SignatureView) error
	InsertClick(ctx context.Context, c *models.LinkClick) error
	GetSignatureAnalytics(ctx context.Context, signatureID uuid.UUID, since time.Time) (*models.SignatureAnalytics, error)
	GetUserAnalytics(ctx context.Context, userID uuid.UUID, since time.Time) (*models.UserAnalytics, error)
}

// Publisher pushes engagement events onto the live activity feed.
type Publisher interface {
	PublishSignatureViewed(ctx context.Context, userID *uuid.UUID, signatureID uuid.UUID, deviceType, emailClient string) error
	PublishLinkClicked(ctx context.Context, userID, signatureID uuid.UUID, linkType string) error
}

// RequestInfo carries the client-facing request attributes an engagement
// record is derived from.
type RequestInfo struct {
	IP        string
	UserAgent string
	Referer   string
}

// Service records engagement events and serves aggregated rollups.
type Service struct {
	store   Store
	feed    Publisher
	metrics *metrics.Metrics
	ipSalt  string
	logger  zerolog.Logger
}

// NewService creates an analytics Service. feed and m may be nil, in which
// case the corresponding side effects are skipped.
func NewService(store Store, feed Publisher, m *metrics.Metrics, ipSalt string, logger zerolog.Logger) *Service {
	return &Service{
		store:   store,
		feed:    feed,
		metrics: m,
		ipSalt:  ipSalt,
		logger:  logger.With().Str("component", "analytics").Logger(),
	}
}

// RecordView persists one pixel hit. The feed publish is best effort; only
// the insert can fail the call.
func (s *Service) RecordView(ctx context.Context, signatureID uuid.UUID, userID *uuid.UUID, info RequestInfo) error {
	view := &models.SignatureView{
		ID:          uuid.New(),
		SignatureID: signatureID,
		UserID:      userID,
		IPHash:      HashIP(info.IP, s.ipSalt),
		UserAgent:   info.UserAgent,
		DeviceType:  DetectDeviceType(info.UserAgent),
		EmailClient: DetectEmailClient(info.UserAgent),
		Referer:     info.Referer,
		ViewedAt:    time.Now(),
	}

	if err := s.store.InsertView(ctx, view); err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.ViewsTotal.Inc()
	}
	if s.feed != nil {
		if err := s.feed.PublishSignatureViewed(ctx, userID, signatureID, view.DeviceType, view.EmailClient); err != nil {
			s.logger.Warn().Err(err).Msg("failed to publish view event")
		}
	}
	return nil
}

// RecordClick persists one click-through on a tracking link.
func (s *Service) RecordClick(ctx context.Context, link *models.TrackingLink, info RequestInfo) error {
	click := &models.LinkClick{
		ID:             uuid.New(),
		TrackingLinkID: link.ID,
		SignatureID:    link.SignatureID,
		IPHash:         HashIP(info.IP, s.ipSalt),
		UserAgent:      info.UserAgent,
		DeviceType:     DetectDeviceType(info.UserAgent),
		Referer:        info.Referer,
		ClickedAt:      time.Now(),
	}

	if err := s.store.InsertClick(ctx, click); err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.ClicksTotal.WithLabelValues(link.LinkType).Inc()
	}
	if s.feed != nil {
		if err := s.feed.PublishLinkClicked(ctx, link.UserID, link.SignatureID, link.LinkType); err != nil {
			s.logger.Warn().Err(err).Msg("failed to publish click event")
		}
	}
	return nil
}

// window converts a day count to the rollup start time, applying the
// default for out-of-range values.
func window(days int) time.Time {
	if days <= 0 || days > 365 {
		days = DefaultWindowDays
	}
	return time.Now().AddDate(0, 0, -days)
}

// SignatureSummary returns the engagement rollup for one signature over the
// last N days.
func (s *Service) SignatureSummary(ctx context.Context, signatureID uuid.UUID, days int) (*models.SignatureAnalytics, error) {
	return s.store.GetSignatureAnalytics(ctx, signatureID, window(days))
}

// UserSummary returns the engagement rollup across all of a user's
// signatures over the last N days.
func (s *Service) UserSummary(ctx context.Context, userID uuid.UUID, days int) (*models.UserAnalytics, error) {
	return s.store.GetUserAnalytics(ctx, userID, window(days))
}

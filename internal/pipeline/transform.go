package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/aloft-etl/internal/alerts"
	"github.com/couchcryptid/aloft-etl/internal/domain"
	"github.com/couchcryptid/aloft-etl/internal/observability"
	"github.com/couchcryptid/aloft-etl/internal/windsaloft"
)

// AlertSet is the correlated alert output for one point.
type AlertSet struct {
	Latitude    float64        `json:"latitude"`
	Longitude   float64        `json:"longitude"`
	GeneratedAt time.Time      `json:"generated_at"`
	Alerts      []alerts.Entry `json:"alerts"`
}

// AloftTransformer implements Transformer: gridded and sounding envelopes
// become WindsAloftReports, alert envelopes become a correlated AlertSet.
type AloftTransformer struct {
	assembler *windsaloft.Assembler
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewTransformer creates an AloftTransformer around an assembler.
func NewTransformer(assembler *windsaloft.Assembler, logger *slog.Logger, metrics *observability.Metrics) *AloftTransformer {
	return &AloftTransformer{
		assembler: assembler,
		logger:    logger,
		metrics:   metrics,
	}
}

func (t *AloftTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	env, err := DecodeEnvelope(raw.Value)
	if err != nil {
		return domain.OutputEvent{}, err
	}

	now := domain.Now()
	var (
		lat, lon float64
		payload  any
	)
	switch env.Kind {
	case domain.FeedGridded:
		fetchedAt := now
		if !raw.Timestamp.IsZero() {
			fetchedAt = raw.Timestamp.UTC()
		}
		report, err := t.assembler.AssembleGridded(*env.Gridded, fetchedAt)
		if err != nil {
			return domain.OutputEvent{}, err
		}
		lat, lon, payload = report.Latitude, report.Longitude, report

	case domain.FeedSounding:
		report, err := t.assembler.AssembleSoundings(ctx, env.Soundings, env.Latitude, env.Longitude)
		if err != nil {
			return domain.OutputEvent{}, err
		}
		lat, lon, payload = report.Latitude, report.Longitude, report

	case domain.FeedAlerts:
		entries := alerts.Correlate(*env.Alerts, env.ReadState, now)
		for _, e := range entries {
			t.metrics.AlertsCorrelated.WithLabelValues(string(e.Alert.Kind())).Inc()
		}
		t.logger.Debug("alerts correlated",
			"lat", env.Latitude,
			"lon", env.Longitude,
			"input", env.Alerts.Len(),
			"entries", len(entries),
		)
		lat, lon = env.Latitude, env.Longitude
		payload = AlertSet{Latitude: lat, Longitude: lon, GeneratedAt: now, Alerts: entries}

	default:
		return domain.OutputEvent{}, fmt.Errorf("unsupported feed kind %q", env.Kind)
	}

	return serialize(env.Kind, lat, lon, now, payload)
}

// serialize builds the sink message: keyed by point, with kind and
// processed_at headers.
func serialize(kind domain.FeedKind, lat, lon float64, processedAt time.Time, payload any) (domain.OutputEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return domain.OutputEvent{}, fmt.Errorf("serialize %s output: %w", kind, err)
	}
	return domain.OutputEvent{
		Key:   []byte(PointKey(lat, lon)),
		Value: data,
		Headers: map[string]string{
			"kind":         string(kind),
			"processed_at": processedAt.Format(time.RFC3339),
		},
	}, nil
}

// PointKey is the sink message key for a point.
func PointKey(lat, lon float64) string {
	return fmt.Sprintf("%.4f,%.4f", lat, lon)
}

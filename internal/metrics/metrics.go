package metrics

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	registrationsSubmitted metric.Int64Counter
	registrationsRejected  metric.Int64Counter
	documentsRendered      metric.Int64Counter
	listingsViewed         metric.Int64Counter
	staffLogins            metric.Int64Counter
}

func New(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.registrationsSubmitted, err = meter.Int64Counter(
		"inscription.registrations.submitted",
		metric.WithDescription("Total number of registrations accepted and stored"),
		metric.WithUnit("{registration}"),
	)
	if err != nil {
		return nil, err
	}

	m.registrationsRejected, err = meter.Int64Counter(
		"inscription.registrations.rejected",
		metric.WithDescription("Total number of registrations rejected, by reason"),
		metric.WithUnit("{registration}"),
	)
	if err != nil {
		return nil, err
	}

	m.documentsRendered, err = meter.Int64Counter(
		"inscription.documents.rendered",
		metric.WithDescription("Total number of PDF documents rendered"),
		metric.WithUnit("{document}"),
	)
	if err != nil {
		return nil, err
	}

	m.listingsViewed, err = meter.Int64Counter(
		"inscription.listings.viewed",
		metric.WithDescription("Total number of times a category listing was viewed"),
		metric.WithUnit("{view}"),
	)
	if err != nil {
		return nil, err
	}

	m.staffLogins, err = meter.Int64Counter(
		"inscription.staff.logins",
		metric.WithDescription("Staff login attempts, by outcome"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Metrics) RecordRegistration(ctx context.Context, category string) {
	if m != nil && m.registrationsSubmitted != nil {
		m.registrationsSubmitted.Add(ctx, 1, metric.WithAttributes(attribute.String("category", category)))
	}
}

func (m *Metrics) RecordRejection(ctx context.Context, reason string) {
	if m != nil && m.registrationsRejected != nil {
		m.registrationsRejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
	}
}

func (m *Metrics) RecordDocumentRendered(ctx context.Context, document string) {
	if m != nil && m.documentsRendered != nil {
		m.documentsRendered.Add(ctx, 1, metric.WithAttributes(attribute.String("document", document)))
	}
}

func (m *Metrics) RecordListingViewed(ctx context.Context, category string) {
	if m != nil && m.listingsViewed != nil {
		m.listingsViewed.Add(ctx, 1, metric.WithAttributes(attribute.String("category", category)))
	}
}

func (m *Metrics) RecordLogin(ctx context.Context, success bool) {
	if m != nil && m.staffLogins != nil {
		m.staffLogins.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", success)))
	}
}

// NewMock creates a no-op Metrics instance for testing
// The returned Metrics will safely ignore all Record* calls
func NewMock() *Metrics {
	return &Metrics{}
}

// Package xsync submits planned mutation sets to the document store.
package xsync

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/garrettladley/shopsync/internal/apperr"
	"github.com/garrettladley/shopsync/internal/mutation"
	"github.com/garrettladley/shopsync/internal/storage"
	"github.com/garrettladley/shopsync/internal/telemetry"
	"github.com/garrettladley/shopsync/internal/xcontext"
	"github.com/garrettladley/shopsync/internal/xslog"
)

// Committer is the part of storage.DocumentStore the executor needs.
type Committer interface {
	Commit(ctx context.Context, set mutation.Set) (storage.CommitResult, error)
}

// Outcome is a successful sync: the store transaction id and every document
// key the set addressed.
type Outcome struct {
	TransactionID string
	Keys          []string
}

type Executor struct {
	store       Committer
	timeout     time.Duration
	instruments *telemetry.Instruments
	tracer      trace.Tracer
}

func NewExecutor(store Committer, timeout time.Duration, instruments *telemetry.Instruments) *Executor {
	if instruments == nil {
		instruments = telemetry.Noop()
	}
	return &Executor{
		store:       store,
		timeout:     timeout,
		instruments: instruments,
		tracer:      otel.Tracer(telemetry.ScopeName),
	}
}

// Execute commits set as one transaction bounded by the executor timeout.
// It never retries; every failure is an *apperr.Error of KindStorage and
// nothing is persisted.
func (e *Executor) Execute(ctx context.Context, set mutation.Set) (Outcome, error) {
	if err := set.Validate(); err != nil {
		return Outcome{}, apperr.Storage(apperr.ReasonMalformedMutation, err)
	}

	ctx, span := e.tracer.Start(ctx, "store.commit", trace.WithAttributes(
		attribute.Int("mutations", set.Len()),
	))
	defer span.End()
	if id, ok := xcontext.GetWebhookID(ctx); ok {
		span.SetAttributes(attribute.String("shopify.webhook_id", id))
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	result, err := e.store.Commit(ctx, set)
	elapsed := time.Since(start)

	if err != nil {
		classified := classify(ctx, err)
		e.instruments.RecordCommit(ctx, elapsed, telemetry.OutcomeFailed)
		span.RecordError(classified)
		span.SetStatus(codes.Error, string(classified.Reason))

		xslog.FromContext(ctx).WarnContext(ctx, "store commit failed",
			xslog.Reason(string(classified.Reason)),
			xslog.Duration(elapsed),
			xslog.Error(err),
		)
		return Outcome{}, classified
	}

	e.instruments.RecordCommit(ctx, elapsed, telemetry.OutcomeSucceeded)
	span.SetAttributes(attribute.String("transaction_id", result.TransactionID))

	return Outcome{TransactionID: result.TransactionID, Keys: result.Keys}, nil
}

func classify(ctx context.Context, err error) *apperr.Error {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return apperr.Storage(apperr.ReasonTimeout, err)
	case errors.Is(err, storage.ErrConflict):
		return apperr.Storage(apperr.ReasonConflict, err)
	case errors.Is(err, mutation.ErrMalformed):
		return apperr.Storage(apperr.ReasonMalformedMutation, err)
	default:
		return apperr.Storage(apperr.ReasonUnavailable, err)
	}
}

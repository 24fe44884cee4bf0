// Package webhook runs the product sync pipeline for one inbound delivery.
package webhook

import (
	"context"
	"mime"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/garrettladley/shopsync/internal/apperr"
	"github.com/garrettladley/shopsync/internal/catalog"
	"github.com/garrettladley/shopsync/internal/mutation"
	"github.com/garrettladley/shopsync/internal/signature"
	"github.com/garrettladley/shopsync/internal/telemetry"
	"github.com/garrettladley/shopsync/internal/xslog"
	"github.com/garrettladley/shopsync/internal/xsync"
)

const mediaTypeJSON = "application/json"

// Executor commits a mutation set. *xsync.Executor satisfies it.
type Executor interface {
	Execute(ctx context.Context, set mutation.Set) (xsync.Outcome, error)
}

type Processor struct {
	verifier    *signature.Verifier
	executor    Executor
	instruments *telemetry.Instruments
	tracer      trace.Tracer
}

var _ Service = (*Processor)(nil)

func NewProcessor(verifier *signature.Verifier, executor Executor, instruments *telemetry.Instruments) *Processor {
	if instruments == nil {
		instruments = telemetry.Noop()
	}
	return &Processor{
		verifier:    verifier,
		executor:    executor,
		instruments: instruments,
		tracer:      otel.Tracer(telemetry.ScopeName),
	}
}

func (p *Processor) ProcessWebhook(ctx context.Context, req ProcessRequest) (Result, error) {
	ctx, span := p.tracer.Start(ctx, "webhook.process", trace.WithAttributes(
		attribute.String("shopify.topic", req.Topic),
		attribute.String("shopify.webhook_id", req.WebhookID),
		attribute.String("shopify.shop_domain", req.ShopDomain),
	))
	defer span.End()

	result, err := p.process(ctx, req)
	if err != nil {
		e := apperr.As(err)
		if e == nil {
			e = apperr.Storage(apperr.ReasonUnavailable, err)
		}
		outcome := telemetry.OutcomeRejected
		if apperr.IsRetryable(e) {
			outcome = telemetry.OutcomeFailed
		}
		p.instruments.RecordDelivery(ctx, outcome, string(e.Reason))
		span.SetStatus(codes.Error, string(e.Reason))
		if e.Kind == apperr.KindValidation {
			xslog.FromContext(ctx).DebugContext(ctx, "rejected product payload",
				xslog.Reason(string(e.Reason)),
				xslog.Field(e.Field),
			)
		}
		return Result{}, e
	}

	p.instruments.RecordDelivery(ctx, telemetry.OutcomeSucceeded, "")
	span.SetAttributes(attribute.String("transaction_id", result.TransactionID))

	xslog.FromContext(ctx).InfoContext(ctx, "synced product",
		xslog.ProductID(result.ProductID),
		xslog.DocumentKeys(result.Keys),
		xslog.TransactionID(result.TransactionID),
	)
	return result, nil
}

func (p *Processor) process(ctx context.Context, req ProcessRequest) (Result, error) {
	if err := p.verify(ctx, req); err != nil {
		return Result{}, err
	}

	if err := checkContentType(req.ContentType); err != nil {
		return Result{}, err
	}

	product, err := p.normalize(ctx, req.Body)
	if err != nil {
		return Result{}, err
	}

	xslog.FromContext(ctx).DebugContext(ctx, "normalized product",
		xslog.ProductID(product.ID),
		xslog.VariantCount(len(product.Variants)),
	)

	set := mutation.Plan(product)

	outcome, err := p.executor.Execute(ctx, set)
	if err != nil {
		return Result{}, err
	}

	return Result{
		ProductID:     product.ID,
		TransactionID: outcome.TransactionID,
		Keys:          outcome.Keys,
	}, nil
}

func (p *Processor) verify(ctx context.Context, req ProcessRequest) error {
	_, span := p.tracer.Start(ctx, "webhook.verify")
	defer span.End()

	if err := p.verifier.Verify(req.Method, req.Body, req.Signature); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func (p *Processor) normalize(ctx context.Context, body []byte) (catalog.Product, error) {
	_, span := p.tracer.Start(ctx, "webhook.normalize")
	defer span.End()

	product, err := catalog.Normalize(body)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return catalog.Product{}, err
	}
	span.SetAttributes(
		attribute.String("product.id", product.ID),
		attribute.Int("product.variants", len(product.Variants)),
	)
	return product, nil
}

// checkContentType accepts application/json with any parameters. A missing
// header is accepted.
func checkContentType(contentType string) error {
	if contentType == "" {
		return nil
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || mediaType != mediaTypeJSON {
		return apperr.Validation(apperr.ReasonUnsupportedContentType, "", nil)
	}
	return nil
}

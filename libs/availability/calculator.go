package availability

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/md-rashed-zaman/consultslots/libs/availability"

// CalculatorConfig holds the dependencies of a Calculator. The zero value is usable.
type CalculatorConfig struct {
	Logger *zap.Logger
	// If nil, the global tracer provider is used.
	TracerProvider trace.TracerProvider
	Options        []Option
}

// Calculator runs Calculate inside a span and logs the outcome.
// It is safe for concurrent use.
type Calculator struct {
	logger *zap.Logger
	tracer trace.Tracer
	opts   []Option
}

// NewCalculator returns a Calculator; a nil Logger logs nothing.
func NewCalculator(cfg CalculatorConfig) *Calculator {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	tp := cfg.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &Calculator{
		logger: logger,
		tracer: tp.Tracer(tracerName),
		opts:   cfg.Options,
	}
}

func (c *Calculator) Calculate(ctx context.Context, bookings []Booking, window Window, slotLength int) ([]Slot, error) {
	o := buildOptions(c.opts)
	_, span := c.tracer.Start(ctx, "availability.Calculate", trace.WithAttributes(
		attribute.Int("availability.bookings", len(bookings)),
		attribute.String("availability.window", window.String()),
		attribute.Int("availability.slot_minutes", slotLength),
		attribute.String("availability.overlaps", o.overlaps.String()),
		attribute.String("availability.remainder", o.remainder.String()),
	))
	defer span.End()

	slots, err := Calculate(bookings, window, slotLength, c.opts...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Warn("availability rejected",
			zap.String("kind", kindOf(err)),
			zap.Error(err),
			zap.String("trace_id", span.SpanContext().TraceID().String()),
		)
		return nil, err
	}

	span.SetAttributes(attribute.Int("availability.slots", len(slots)))
	c.logger.Debug("availability calculated",
		zap.Int("bookings", len(bookings)),
		zap.Stringer("window", window),
		zap.Int("slot_minutes", slotLength),
		zap.Int("slots", len(slots)),
	)
	return slots, nil
}

func kindOf(err error) string {
	var verr *ValidationError
	if errors.As(err, &verr) && verr.Kind != nil {
		return verr.Kind.Error()
	}
	return "unknown"
}

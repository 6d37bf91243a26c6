package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/md-rashed-zaman/consultslots/libs/availability"
	"github.com/md-rashed-zaman/consultslots/libs/config"
	otelx "github.com/md-rashed-zaman/consultslots/libs/otel"
	"github.com/md-rashed-zaman/consultslots/libs/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

const service = "slotcalc"

type settings struct {
	input     string
	begin     string
	end       string
	slot      int
	overlaps  string
	remainder string
	asJSON    bool
}

func parseFlags(args []string) (settings, error) {
	defaultSlot, err := config.Int("SLOT_MINUTES", 60)
	if err != nil {
		return settings{}, err
	}

	var s settings
	fs := flag.NewFlagSet(service, flag.ContinueOnError)
	fs.StringVar(&s.input, "in", config.String("SLOTCALC_INPUT", "-"), "request JSON file, - for stdin")
	fs.StringVar(&s.begin, "begin", config.String("WORKDAY_BEGIN", "09:00"), "working day begin (HH:mm)")
	fs.StringVar(&s.end, "end", config.String("WORKDAY_END", "17:00"), "working day end (HH:mm)")
	fs.IntVar(&s.slot, "slot", defaultSlot, "slot length in minutes")
	fs.StringVar(&s.overlaps, "overlaps", config.String("OVERLAP_POLICY", "merge"), "overlapping consultations: merge or reject")
	fs.StringVar(&s.remainder, "remainder", config.String("REMAINDER_POLICY", "keep"), "short tail of a free gap: keep or drop")
	fs.BoolVar(&s.asJSON, "json", false, "print a JSON array instead of one slot per line")
	if err := fs.Parse(args); err != nil {
		return settings{}, err
	}
	return s, nil
}

func main() {
	ctx, stop := runtime.SignalContext(context.Background())
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fatal(err.Error())
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	s, err := parseFlags(args)
	if err != nil {
		return err
	}

	logger, err := runtime.NewLogger(service, config.String("LOG_LEVEL", "info"))
	if err != nil {
		return fmt.Errorf("logger init: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", zap.Error(err))
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	runID := uuid.NewString()
	logger = logger.With(zap.String("run_id", runID))
	ctx, span := otel.Tracer(service).Start(otelx.ContextFromEnv(ctx), "slotcalc.run")
	defer span.End()
	span.SetAttributes(attribute.String("slotcalc.run_id", runID))
	if traceparent := otelx.TraceParent(ctx); traceparent != "" {
		logger = logger.With(zap.String("traceparent", traceparent))
	}

	slots, err := compute(ctx, s, stdin, logger)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	logger.Info("slots computed", zap.Int("slots", len(slots)))
	return writeSlots(stdout, slots, s.asJSON)
}

func compute(ctx context.Context, s settings, stdin io.Reader, logger *zap.Logger) ([]availability.Slot, error) {
	overlaps, err := availability.ParseOverlapPolicy(s.overlaps)
	if err != nil {
		return nil, err
	}
	remainder, err := availability.ParseRemainderPolicy(s.remainder)
	if err != nil {
		return nil, err
	}

	in, closeIn, err := openInput(s.input, stdin)
	if err != nil {
		return nil, err
	}
	defer closeIn()

	req, err := decodeRequest(in, newValidator())
	if err != nil {
		return nil, err
	}

	if req.Begin != "" {
		s.begin = req.Begin
	}
	if req.End != "" {
		s.end = req.End
	}
	if req.SlotMinutes > 0 {
		s.slot = req.SlotMinutes
	}

	begin, err := availability.ParseTimeOfDay(s.begin)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	end, err := availability.ParseTimeOfDay(s.end)
	if err != nil {
		return nil, fmt.Errorf("end: %w", err)
	}
	bookings, err := req.bookings()
	if err != nil {
		return nil, err
	}

	calc := availability.NewCalculator(availability.CalculatorConfig{
		Logger: logger,
		Options: []availability.Option{
			availability.WithOverlapPolicy(overlaps),
			availability.WithRemainderPolicy(remainder),
		},
	})
	return calc.Calculate(ctx, bookings, availability.Window{Begin: begin, End: end}, s.slot)
}

func openInput(path string, stdin io.Reader) (io.Reader, func(), error) {
	if path == "" || path == "-" {
		return stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}

func writeSlots(w io.Writer, slots []availability.Slot, asJSON bool) error {
	formatted := availability.FormatSlots(slots)
	if asJSON {
		return json.NewEncoder(w).Encode(formatted)
	}
	for _, line := range formatted {
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return err
		}
	}
	return nil
}

func fatal(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(2)
}

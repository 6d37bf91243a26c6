package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/md-rashed-zaman/consultslots/libs/availability"
)

type consultation struct {
	Start    string `json:"start" validate:"required,hhmm"`
	Duration int    `json:"duration" validate:"gte=1"`
}

// request is the JSON document read by slotcalc. Empty window fields fall back to flags.
type request struct {
	Begin         string         `json:"begin" validate:"omitempty,hhmm"`
	End           string         `json:"end" validate:"omitempty,hhmm"`
	SlotMinutes   int            `json:"slot_minutes" validate:"gte=0"`
	Consultations []consultation `json:"consultations" validate:"dive"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		_, err := availability.ParseTimeOfDay(fl.Field().String())
		return err == nil
	}); err != nil {
		panic(fmt.Sprintf("register hhmm validation: %v", err))
	}
	return v
}

func decodeRequest(r io.Reader, v *validator.Validate) (request, error) {
	var req request
	data, err := io.ReadAll(r)
	if err != nil {
		return req, fmt.Errorf("read request: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return req, errors.New("empty input: expected a JSON request")
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return req, fmt.Errorf("invalid request JSON: %w", err)
	}
	if err := v.Struct(req); err != nil {
		return req, formatValidationError(err)
	}
	return req, nil
}

func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "hhmm":
			msgs = append(msgs, fmt.Sprintf("%s must be a HH:mm time (got %q)", fe.Namespace(), fe.Value()))
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Namespace()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s (got %v)", fe.Namespace(), fe.Tag(), fe.Param(), fe.Value()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}

// bookings converts consultations; times were already checked by the validator.
func (r request) bookings() ([]availability.Booking, error) {
	out := make([]availability.Booking, 0, len(r.Consultations))
	for i, c := range r.Consultations {
		start, err := availability.ParseTimeOfDay(c.Start)
		if err != nil {
			return nil, fmt.Errorf("consultations[%d]: %w", i, err)
		}
		out = append(out, availability.Booking{Start: start, Duration: c.Duration})
	}
	return out, nil
}

package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/md-rashed-zaman/consultslots/libs/availability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietEnv(t *testing.T) {
	t.Helper()
	t.Setenv("OTEL_ENABLED", "false")
	t.Setenv("LOG_LEVEL", "error")
	for _, k := range []string{"SLOTCALC_INPUT", "WORKDAY_BEGIN", "WORKDAY_END", "SLOT_MINUTES", "OVERLAP_POLICY", "REMAINDER_POLICY", "TRACEPARENT"} {
		t.Setenv(k, "")
	}
}

func runTool(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), args, strings.NewReader(input), &out)
	return out.String(), err
}

func TestRun_MultipleConsultations(t *testing.T) {
	quietEnv(t)
	out, err := runTool(t, `{"consultations":[{"start":"14:00","duration":90},{"start":"10:00","duration":60}]}`)
	require.NoError(t, err)
	assert.Equal(t, "09:00-10:00\n11:00-12:00\n12:00-13:00\n13:00-14:00\n15:30-16:30\n16:30-17:00\n", out)
}

func TestRun_JSONOutputAndDrop(t *testing.T) {
	quietEnv(t)
	out, err := runTool(t, `{"begin":"10:00","end":"12:30","slot_minutes":60}`, "-json", "-remainder", "drop")
	require.NoError(t, err)
	assert.JSONEq(t, `["10:00-11:00","11:00-12:00"]`, out)
}

func TestRun_EmptyResultIsEmptyArray(t *testing.T) {
	quietEnv(t)
	out, err := runTool(t, `{"begin":"09:00","end":"09:30"}`, "-json")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, out)
}

func TestRun_Precedence(t *testing.T) {
	quietEnv(t)
	t.Setenv("WORKDAY_BEGIN", "08:00")
	t.Setenv("SLOT_MINUTES", "30")

	// env sets begin and slot length, the flag overrides the end
	out, err := runTool(t, `{}`, "-end", "09:00")
	require.NoError(t, err)
	assert.Equal(t, "08:00-08:30\n08:30-09:00\n", out)

	// request fields override both
	out, err = runTool(t, `{"begin":"12:00","slot_minutes":60}`, "-end", "13:00")
	require.NoError(t, err)
	assert.Equal(t, "12:00-13:00\n", out)
}

func TestRun_ReadsFile(t *testing.T) {
	quietEnv(t)
	path := filepath.Join(t.TempDir(), "day.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"consultations":[{"start":"09:00","duration":420}]}`), 0o600))

	out, err := runTool(t, "", "-in", path)
	require.NoError(t, err)
	assert.Equal(t, "16:00-17:00\n", out)
}

func TestRun_Errors(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		args    []string
		kind    error
		message string
	}{
		{name: "empty input", input: "", message: "empty input"},
		{name: "malformed json", input: `{"consultations":`, message: "invalid request JSON"},
		{name: "unknown field", input: `{"room":"A"}`, message: "invalid request JSON"},
		{name: "bad start", input: `{"consultations":[{"start":"9am","duration":30}]}`, message: "must be a HH:mm time"},
		{name: "missing start", input: `{"consultations":[{"duration":30}]}`, message: "is required"},
		{name: "zero duration", input: `{"consultations":[{"start":"10:00","duration":0}]}`, message: "gte=1"},
		{name: "bad policy", input: `{}`, args: []string{"-overlaps", "ignore"}, message: "unknown overlap policy"},
		{name: "outside hours", input: `{"consultations":[{"start":"08:00","duration":30}]}`, kind: availability.ErrOutOfRange},
		{name: "reversed window", input: `{"begin":"17:00","end":"09:00"}`, kind: availability.ErrOutOfRange},
		{name: "huge duration", input: `{"consultations":[{"start":"10:00","duration":9223372036854775807}]}`, kind: availability.ErrOutOfRange},
		{name: "duration too large for int", input: `{"consultations":[{"start":"10:00","duration":9223372036854775808}]}`, message: "invalid request JSON"},
		{name: "zero slot flag", input: `{}`, args: []string{"-slot", "0"}, kind: availability.ErrInvalidArgument},
		{
			name:  "rejected overlap",
			input: `{"consultations":[{"start":"10:00","duration":60},{"start":"10:30","duration":60}]}`,
			args:  []string{"-overlaps", "reject"},
			kind:  availability.ErrInvalidArgument,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			quietEnv(t)
			out, err := runTool(t, c.input, c.args...)
			require.Error(t, err)
			assert.Empty(t, out)
			if c.kind != nil {
				assert.True(t, errors.Is(err, c.kind), "expected %v, got %v", c.kind, err)
			}
			if c.message != "" {
				assert.Contains(t, err.Error(), c.message)
			}
		})
	}
}

func TestParseFlags_InvalidEnvSlot(t *testing.T) {
	quietEnv(t)
	t.Setenv("SLOT_MINUTES", "hour")
	_, err := parseFlags(nil)
	require.Error(t, err)
}

func TestNewValidator_HHMM(t *testing.T) {
	var v *validator.Validate
	require.NotPanics(t, func() { v = newValidator() })

	require.NoError(t, v.Struct(consultation{Start: "23:59", Duration: 1}))
	require.NoError(t, v.Struct(request{Begin: "00:00", End: "24:00"}))
	require.Error(t, v.Struct(consultation{Start: "24:01", Duration: 1}))
	require.Error(t, v.Struct(request{End: "9:60"}))
}

package otelx

import (
	"context"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
)

// Trace context crosses process boundaries as environment variables, the same
// way a shell script or a job runner hands it to slotcalc.
var envKeys = []string{"traceparent", "tracestate", "baggage"}

// EnvCarrier is a propagation.TextMapCarrier keyed by environment variable
// name: the traceparent field is stored under TRACEPARENT.
type EnvCarrier map[string]string

func envName(key string) string { return strings.ToUpper(key) }

func (c EnvCarrier) Get(key string) string { return c[envName(key)] }

func (c EnvCarrier) Set(key, value string) { c[envName(key)] = value }

func (c EnvCarrier) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, strings.ToLower(k))
	}
	return keys
}

// Environ renders the carrier as KEY=value pairs for exec.Cmd.Env.
func (c EnvCarrier) Environ() []string {
	out := make([]string, 0, len(c))
	for _, k := range envKeys {
		if v := c.Get(k); v != "" {
			out = append(out, envName(k)+"="+v)
		}
	}
	return out
}

// CarrierFromEnv collects the non-empty trace variables of this process.
func CarrierFromEnv() EnvCarrier {
	c := EnvCarrier{}
	for _, k := range envKeys {
		if v := os.Getenv(envName(k)); v != "" {
			c.Set(k, v)
		}
	}
	return c
}

// ContextFromEnv continues the caller's trace when TRACEPARENT is set.
func ContextFromEnv(ctx context.Context) context.Context {
	c := CarrierFromEnv()
	if len(c) == 0 {
		return ctx
	}
	return otel.GetTextMapPropagator().Extract(ctx, c)
}

// CarrierFromContext captures the active span of ctx for a child process.
func CarrierFromContext(ctx context.Context) EnvCarrier {
	c := EnvCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, c)
	return c
}

// TraceParent returns the W3C traceparent of ctx, or "" without a valid span.
func TraceParent(ctx context.Context) string {
	return CarrierFromContext(ctx).Get("traceparent")
}

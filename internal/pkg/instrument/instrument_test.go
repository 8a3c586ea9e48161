package instrument

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrelationID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetCorrelationID(ctx))

	ctx = SetCorrelationID(ctx, "c-1")
	assert.Equal(t, "c-1", GetCorrelationID(ctx))
}

func TestMasker(t *testing.T) {
	m := NewMasker([]string{"OTP", " token ", ""})

	assert.True(t, m.Sensitive("otp"))
	assert.True(t, m.Sensitive("Token"))
	assert.False(t, m.Sensitive("email"))

	got, ok := m.JSON([]byte(`{"email":"a@b.c","otp":"482193","nested":[{"token":"x"}]}`))
	require.True(t, ok)
	assert.Equal(t, map[string]any{
		"email":  "a@b.c",
		"otp":    "***",
		"nested": []any{map[string]any{"token": "***"}},
	}, got)

	_, ok = m.JSON([]byte("plain"))
	assert.False(t, ok)

	h := http.Header{"Token": {"abc"}, "Accept": {"*/*"}}
	mh := m.Headers(h)
	assert.Equal(t, "***", mh.Get("Token"))
	assert.Equal(t, "abc", h.Get("Token"))

	var empty *Masker
	assert.True(t, empty.Empty())
	assert.Equal(t, h, empty.Headers(h))
}

func TestLoggingHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newHandler(&buf, "safestreet", nil, NewMasker([]string{"otp"})))

	ctx := SetCorrelationID(context.Background(), "cid-42")
	logger.InfoContext(ctx, "otp issued", "email", "user@example.com", "otp", "482193",
		"body", `{"otp":"1","email":"x"}`)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))

	assert.Equal(t, "otp issued", rec["msg"])
	assert.Equal(t, "INFO", rec["severity"])
	assert.Equal(t, "cid-42", rec["_cID"])
	assert.Equal(t, "safestreet", rec["service"])
	assert.Equal(t, "***", rec["otp"])
	assert.Equal(t, "user@example.com", rec["email"])
	assert.JSONEq(t, `{"otp":"***","email":"x"}`, rec["body"].(string))
	assert.Contains(t, rec, "ts")
	assert.Contains(t, rec["file"], "internal/pkg/instrument/instrument_test.go:")
}

func TestNew_Disabled(t *testing.T) {
	old := slog.Default()
	t.Cleanup(func() { slog.SetDefault(old) })

	var buf bytes.Buffer
	ins, err := New(context.Background(), &Config{ServiceName: "svc", LogOutput: &buf})
	require.NoError(t, err)

	_, span := ins.Tracer("t").Start(context.Background(), "noop")
	span.End()
	assert.NoError(t, ins.Shutdown(context.Background()))

	slog.Info("hello")
	assert.Contains(t, buf.String(), `"service":"svc"`)
}

func TestClampRatio(t *testing.T) {
	assert.Equal(t, 0.0, clampRatio(-1))
	assert.Equal(t, 0.25, clampRatio(0.25))
	assert.Equal(t, 1.0, clampRatio(3))
}

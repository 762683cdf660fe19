package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrelationTransport(t *testing.T) {
	var got string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get(CorrelationHeader)
	}))
	defer ts.Close()

	client := &http.Client{Transport: NewCorrelationTransport(nil)}
	ctx := WithCorrelationID(context.Background(), "run-42")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL, nil)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "run-42", got)
	assert.Empty(t, req.Header.Get(CorrelationHeader), "caller request must not be mutated")
}

func TestCorrelationTransport_NoID(t *testing.T) {
	var got string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get(CorrelationHeader)
	}))
	defer ts.Close()

	client := &http.Client{Transport: NewCorrelationTransport(http.DefaultTransport)}
	resp, err := client.Get(ts.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Empty(t, got)
}

func TestGetCorrelationID(t *testing.T) {
	assert.Equal(t, "unknown", GetCorrelationID(context.Background()))

	id := NewCorrelationID()
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
	assert.Equal(t, id, GetCorrelationID(WithCorrelationID(context.Background(), id)))
}

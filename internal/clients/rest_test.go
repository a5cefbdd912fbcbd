package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hodlboard/hodlboard/internal/domain"
)

func TestRESTClientDo(t *testing.T) {
	t.Run("success returns the body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "value", r.Header.Get("X-Test"))
			w.Write([]byte(`{"ok":true}`))
		}))
		defer srv.Close()

		c := NewRESTClient("test", 100, zap.NewNop())
		body, err := c.Do(context.Background(), http.MethodGet, srv.URL, nil, Header{"X-Test", "value"})
		require.NoError(t, err)
		assert.JSONEq(t, `{"ok":true}`, string(body))
	})

	t.Run("unauthorized is permanent", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		c := NewRESTClient("test", 100, zap.NewNop())
		_, err := c.Do(context.Background(), http.MethodGet, srv.URL, nil)

		var authErr *domain.AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, "test", authErr.Source)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("not found is permanent", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		c := NewRESTClient("test", 100, zap.NewNop())
		_, err := c.Do(context.Background(), http.MethodGet, srv.URL, nil)

		var trErr *domain.TransportError
		require.ErrorAs(t, err, &trErr)
		assert.Equal(t, http.StatusNotFound, trErr.Status)
		assert.Equal(t, int32(1), calls.Load())
	})
}

func TestRESTClientGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name":"BTC","value":42}`))
	}))
	defer srv.Close()

	var dst struct {
		Name  string `json:"name"`
		Value int    `json:"value"`
	}
	c := NewRESTClient("test", 100, zap.NewNop())
	require.NoError(t, c.Get(context.Background(), srv.URL, &dst))
	assert.Equal(t, "BTC", dst.Name)
	assert.Equal(t, 42, dst.Value)
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"rate limit", &domain.RateLimitError{Source: "test"}, true},
		{"network failure", &domain.TransportError{Endpoint: "u"}, true},
		{"server error", &domain.TransportError{Endpoint: "u", Status: 502}, true},
		{"client error", &domain.TransportError{Endpoint: "u", Status: 404}, false},
		{"auth", &domain.AuthError{Source: "test"}, false},
		{"venue reported", &domain.ExchangeReportedError{Source: "test"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, retryable(tt.err))
		})
	}
}

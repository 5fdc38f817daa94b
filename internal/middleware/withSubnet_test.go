package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/atinyakov/utm-manager/internal/middleware"
)

func TestWithSubnet(t *testing.T) {
	tests := []struct {
		name           string
		subnet         string
		realIP         string
		expectedStatus int
	}{
		{name: "allowed", subnet: "192.168.0.0/24", realIP: "192.168.0.45", expectedStatus: http.StatusOK},
		{name: "forbidden", subnet: "10.0.0.0/8", realIP: "192.168.0.1", expectedStatus: http.StatusForbidden},
		{name: "single host", subnet: "203.0.113.5/32", realIP: "203.0.113.5", expectedStatus: http.StatusOK},
		{name: "missing header", subnet: "192.168.1.0/24", realIP: "", expectedStatus: http.StatusForbidden},
		{name: "no trusted subnet", subnet: "", realIP: "192.168.1.1", expectedStatus: http.StatusForbidden},
		{name: "invalid subnet", subnet: "192.168.1", realIP: "192.168.1.1", expectedStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := middleware.WithSubnet(tt.subnet)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Equal(t, tt.expectedStatus == http.StatusOK, called)
		})
	}
}

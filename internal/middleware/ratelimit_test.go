package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRateLimit(t *testing.T) {
	lim, err := NewLimiter("2-M")
	if err != nil {
		t.Fatalf("NewLimiter(2-M) returned error: %v", err)
	}

	gin.SetMode(gin.TestMode)
	server := gin.New()
	server.POST("/login", RateLimit(lim), func(gctx *gin.Context) {
		gctx.Status(http.StatusOK)
	})

	wantCodes := []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}

	for i, want := range wantCodes {
		request := httptest.NewRequest(http.MethodPost, "/login", nil)
		request.Header.Set("Accept", "application/json")

		recorder := httptest.NewRecorder()
		server.ServeHTTP(recorder, request)

		if recorder.Code != want {
			t.Errorf("request %d: recorder.Code = %v, want %v", i+1, recorder.Code, want)
		}
	}
}

func TestRateLimitForwardedHeaders(t *testing.T) {
	testCases := []struct {
		name           string
		trustedProxies []string
		wantCodes      []int
	}{
		{
			name:           "UntrustedPeerCannotSpoof",
			trustedProxies: nil,
			wantCodes:      []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests, http.StatusTooManyRequests},
		},
		{
			name:           "TrustedProxyForwardsClientIP",
			trustedProxies: []string{"192.0.2.1"},
			wantCodes:      []int{http.StatusOK, http.StatusOK, http.StatusOK, http.StatusOK},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			lim, err := NewLimiter("2-M")
			if err != nil {
				t.Fatalf("NewLimiter(2-M) returned error: %v", err)
			}

			gin.SetMode(gin.TestMode)
			server := gin.New()
			if err := server.SetTrustedProxies(tc.trustedProxies); err != nil {
				t.Fatalf("SetTrustedProxies(%v) returned error: %v", tc.trustedProxies, err)
			}

			server.POST("/login", RateLimit(lim), func(gctx *gin.Context) {
				gctx.Status(http.StatusOK)
			})

			for i, want := range tc.wantCodes {
				// httptest requests all come from 192.0.2.1.
				request := httptest.NewRequest(http.MethodPost, "/login", nil)
				request.Header.Set("Accept", "application/json")
				request.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i+1))
				request.Header.Set("X-Real-IP", fmt.Sprintf("203.0.113.%d", i+1))

				recorder := httptest.NewRecorder()
				server.ServeHTTP(recorder, request)

				if recorder.Code != want {
					t.Errorf("request %d: recorder.Code = %v, want %v", i+1, recorder.Code, want)
				}
			}
		})
	}
}

func TestNewLimiterBadRate(t *testing.T) {
	if _, err := NewLimiter("ten per minute"); err == nil {
		t.Error("NewLimiter(\"ten per minute\") returned nil error")
	}
}

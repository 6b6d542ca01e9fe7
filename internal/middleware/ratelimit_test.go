package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"taskmanager/internal/config"

	"github.com/gin-gonic/gin"
)

func testRateLimitConfig() config.RateLimitConfig {
	return config.RateLimitConfig{
		Enabled:         true,
		RequestsPerMin:  60,
		BurstSize:       2,
		CleanupInterval: time.Minute,
	}
}

func TestRateLimiter_BlocksAfterBurst(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rl := NewRateLimiter(testRateLimitConfig())
	defer rl.Stop()

	router := gin.New()
	router.Use(rl.Middleware())
	router.GET("/ping", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Errorf("Expected the burst to pass, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Errorf("Expected status 429 past the burst, got %d", codes[2])
	}
}

func TestRateLimiter_EvictIdleClients(t *testing.T) {
	rl := NewRateLimiter(testRateLimitConfig())
	defer rl.Stop()

	rl.getLimiter("10.0.0.1")
	rl.getLimiter("10.0.0.2")

	rl.mu.Lock()
	rl.clients["10.0.0.1"].lastSeen = time.Now().Add(-2 * time.Minute)
	rl.mu.Unlock()

	rl.evictIdle(time.Now().Add(-time.Minute))

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if _, exists := rl.clients["10.0.0.1"]; exists {
		t.Error("Expected the idle client to be evicted")
	}
	if _, exists := rl.clients["10.0.0.2"]; !exists {
		t.Error("Expected the recent client to survive eviction")
	}
}

func TestRateLimiter_StopIsIdempotent(t *testing.T) {
	rl := NewRateLimiter(testRateLimitConfig())

	rl.Stop()
	rl.Stop()
}

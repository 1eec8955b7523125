package middlewares

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"datagen/internal/responses"
)

type RateLimiterConfig struct {
	// Requests per minute
	RPM   int
	Burst int
	// Clients idle for longer than this are forgotten
	CleanupInterval time.Duration
}

// RateLimiter throttles each client IP with its own token bucket.
type RateLimiter struct {
	config  RateLimiterConfig
	clients map[string]*clientLimiter
	mutex   sync.Mutex
	now     func() time.Time
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.RPM <= 0 {
		config.RPM = 30
	}
	if config.Burst <= 0 {
		config.Burst = 5
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = 5 * time.Minute
	}

	return &RateLimiter{
		config:  config,
		clients: make(map[string]*clientLimiter),
		now:     time.Now,
	}
}

func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		client := rl.client(c.ClientIP())

		if !client.limiter.Allow() {
			c.Header("Retry-After", "60")
			responses.Fail(c, http.StatusTooManyRequests, nil,
				fmt.Sprintf("Rate limit exceeded. Maximum %d requests per minute allowed.", rl.config.RPM))
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.config.RPM))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(int(client.limiter.Tokens())))

		c.Next()
	}
}

func (rl *RateLimiter) client(ip string) *clientLimiter {
	if ip == "" {
		ip = "unknown"
	}

	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	client, ok := rl.clients[ip]
	if !ok {
		client = &clientLimiter{
			limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(rl.config.RPM)), rl.config.Burst),
		}
		rl.clients[ip] = client
	}
	client.lastSeen = rl.now()
	return client
}

// Cleanup forgets idle clients until stop is closed.
func (rl *RateLimiter) Cleanup(stop <-chan struct{}) {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			rl.sweep()
		}
	}
}

func (rl *RateLimiter) sweep() {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	for ip, client := range rl.clients {
		if now.Sub(client.lastSeen) > rl.config.CleanupInterval {
			delete(rl.clients, ip)
		}
	}
}

func (rl *RateLimiter) ActiveClients() int {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()
	return len(rl.clients)
}

package weather

import (
	"fmt"
	"sync"
	"time"

	"github.com/vgogokhia/StrelokAI/internal/config"
	"github.com/vgogokhia/StrelokAI/pkg/logger"
)

// Cache holds fetched conditions per coordinate with TTL expiry
type Cache struct {
	config  config.WeatherConfig
	logger  *logger.Logger
	entries map[string]*cacheEntry
	mu      sync.RWMutex
}

type cacheEntry struct {
	conditions *Conditions
	expiresAt  time.Time
}

// NewCache creates a new weather cache
func NewCache(cfg config.WeatherConfig, log *logger.Logger) *Cache {
	return &Cache{
		config:  cfg,
		logger:  log.Named("weather-cache"),
		entries: make(map[string]*cacheEntry),
	}
}

// Coordinates within ~1km share a cache slot.
func cacheKey(lat, lon float64) string {
	return fmt.Sprintf("%.2f,%.2f", lat, lon)
}

// Get returns cached conditions for a coordinate, or nil if absent or stale
func (c *Cache) Get(lat, lon float64) *Conditions {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[cacheKey(lat, lon)]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil
	}
	return entry.conditions
}

// Set stores conditions for a coordinate
func (c *Cache) Set(lat, lon float64, conditions *Conditions) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiryDuration := time.Duration(c.config.CacheExpiryMinutes) * time.Minute
	c.entries[cacheKey(lat, lon)] = &cacheEntry{
		conditions: conditions,
		expiresAt:  time.Now().Add(expiryDuration),
	}

	c.logger.Debug("Weather conditions cached",
		logger.String("key", cacheKey(lat, lon)),
		logger.String("expires_in", expiryDuration.String()))
}

// Invalidate clears all cached conditions
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*cacheEntry)
	c.logger.Info("Weather cache invalidated")
}

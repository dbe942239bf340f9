/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package cache serves a previously computed inventory document while it
// is still fresh, using the cache file's mtime as the freshness signal.
//
// The cache is an optimization, not a source of truth: every I/O failure
// degrades (read failure acts as a miss, write failure as a no-op) and
// concurrent runs may race on the file, last writer wins.
package cache

import (
	"os"
	"time"

	"github.com/carverauto/azure-inventory/pkg/logger"
)

const (
	// DefaultTTL is the freshness window for a cached document.
	DefaultTTL = 300 * time.Second

	cacheFileMode = 0o600
)

// Clock abstracts time for freshness checks so expiry is testable.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

// Cache is a single-file freshness cache.
type Cache struct {
	path   string
	ttl    time.Duration
	clock  Clock
	logger logger.Logger
}

// New creates a Cache at the given path. A nil clock means wall-clock
// time; a non-positive ttl means DefaultTTL.
func New(path string, ttl time.Duration, clock Clock, log logger.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	if clock == nil {
		clock = realClock{}
	}

	return &Cache{
		path:   path,
		ttl:    ttl,
		clock:  clock,
		logger: log.WithComponent("cache"),
	}
}

// Load returns the cached document verbatim if the cache file exists and
// its age is strictly less than the TTL. The second return value is
// false on a miss, including every read failure.
func (c *Cache) Load() ([]byte, bool) {
	info, err := os.Stat(c.path)
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Warn().Err(err).Str("path", c.path).Msg("Failed to stat cache file, treating as miss")
		}

		return nil, false
	}

	age := c.clock.Now().Sub(info.ModTime())
	if age >= c.ttl {
		c.logger.Debug().
			Dur("age", age).
			Dur("ttl", c.ttl).
			Msg("Cache expired")

		return nil, false
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		c.logger.Warn().Err(err).Str("path", c.path).Msg("Failed to read cache file, treating as miss")
		return nil, false
	}

	c.logger.Debug().Dur("age", age).Int("bytes", len(data)).Msg("Cache hit")

	return data, true
}

// Save overwrites the cache file unconditionally. A write failure is
// logged and swallowed: the freshly computed document has already been
// produced and must still be emitted.
func (c *Cache) Save(data []byte) {
	if err := os.WriteFile(c.path, data, cacheFileMode); err != nil {
		c.logger.Warn().Err(err).Str("path", c.path).Msg("Failed to write cache file")
		return
	}

	c.logger.Debug().Str("path", c.path).Int("bytes", len(data)).Msg("Cache written")
}

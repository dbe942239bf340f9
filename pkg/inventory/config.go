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

package inventory

import (
	"errors"
	"fmt"

	"github.com/carverauto/azure-inventory/pkg/logger"
)

const (
	defaultCacheTTLSeconds = 300
	defaultPageSize        = 1000
	defaultTimeoutSeconds  = 30
	defaultMaxPages        = 100
)

var errInvalidDefaultOSGroup = errors.New("default_os_group must be 'windows' or 'linux'")

// Config is the tool configuration. All tunables default to values that
// match the documented behavior of this inventory; a missing config file
// therefore behaves identically to an empty one.
type Config struct {
	// CachePath is the inventory cache file. When empty, the entrypoint
	// resolves it to ~/.azure_inventory_cache.json; the engine itself
	// never touches home-directory state.
	CachePath string `json:"cache_path"`

	CacheTTLSeconds int `json:"cache_ttl_seconds"`
	PageSize        int `json:"page_size"`
	TimeoutSeconds  int `json:"timeout_seconds"`
	MaxPages        int `json:"max_pages"`

	// AzureBinary overrides the az executable, mainly for tests.
	AzureBinary string `json:"azure_binary"`

	AppliancePublishers []string `json:"appliance_publishers"`
	DefaultOSGroup      string   `json:"default_os_group"`

	Logging logger.Config `json:"logging"`
}

// Validate fills defaults and rejects contradictory settings.
func (c *Config) Validate() error {
	if c.CacheTTLSeconds <= 0 {
		c.CacheTTLSeconds = defaultCacheTTLSeconds
	}

	if c.PageSize <= 0 {
		c.PageSize = defaultPageSize
	}

	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = defaultTimeoutSeconds
	}

	if c.MaxPages <= 0 {
		c.MaxPages = defaultMaxPages
	}

	if len(c.AppliancePublishers) == 0 {
		c.AppliancePublishers = DefaultAppliancePublishers()
	}

	switch c.DefaultOSGroup {
	case "", "windows", "linux":
	default:
		return fmt.Errorf("%w: got '%s'", errInvalidDefaultOSGroup, c.DefaultOSGroup)
	}

	return nil
}

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

// Package resourcegraph queries Azure Resource Graph through the az CLI,
// following skipToken pagination until the result set is exhausted.
//
// Every failure mode (timeout, non-zero exit, blank output, unparsable
// payload) degrades to an empty record list. Callers must treat an empty
// result as "this source produced nothing usable this run", never as
// proof of zero real records.
package resourcegraph

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/carverauto/azure-inventory/pkg/azcli"
	"github.com/carverauto/azure-inventory/pkg/logger"
	"github.com/carverauto/azure-inventory/pkg/models"
)

const (
	defaultPageSize = 1000

	// defaultMaxPages caps the pagination loop so a misbehaving backend
	// that keeps handing out continuation tokens cannot hold the run
	// forever.
	defaultMaxPages = 100
)

// vmQuery projects the VM attributes the inventory needs, including the
// resource id used for the MDE onboarding test.
const vmQuery = `Resources
| where type == 'microsoft.compute/virtualmachines'
| project
    id,
    name,
    resourceGroup,
    location,
    osType = tostring(properties.storageProfile.osDisk.osType),
    publisher = tostring(properties.storageProfile.imageReference.publisher),
    offer     = tostring(properties.storageProfile.imageReference.offer),
    sku       = tostring(properties.storageProfile.imageReference.sku),
    nicId  = tostring(properties.networkProfile.networkInterfaces[0].id)`

const nicQuery = `Resources
| where type == 'microsoft.network/networkinterfaces'
| project
    id,
    privateIp = tostring(properties.ipConfigurations[0].properties.privateIPAddress)`

// Client fetches paged Resource Graph results through an azcli.Runner.
type Client struct {
	Runner   azcli.Runner
	PageSize int
	MaxPages int
	Logger   logger.Logger
}

// NewClient creates a Resource Graph client with spec defaults filled in.
func NewClient(runner azcli.Runner, pageSize, maxPages int, log logger.Logger) *Client {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}

	return &Client{
		Runner:   runner,
		PageSize: pageSize,
		MaxPages: maxPages,
		Logger:   log.WithComponent("resourcegraph"),
	}
}

// VirtualMachines returns every VM row, or an empty slice on any failure.
func (c *Client) VirtualMachines(ctx context.Context) []models.VirtualMachine {
	return collect[models.VirtualMachine](ctx, c, vmQuery)
}

// NetworkInterfaces returns every NIC row, or an empty slice on any failure.
func (c *Client) NetworkInterfaces(ctx context.Context) []models.NetworkInterface {
	return collect[models.NetworkInterface](ctx, c, nicQuery)
}

// page is the az graph query response envelope. The CLI has shipped the
// continuation token under two different key names.
type page[T any] struct {
	Data         []T    `json:"data"`
	SkipToken    string `json:"skipToken"`
	AltSkipToken string `json:"skip_token"`
}

func (p *page[T]) token() string {
	if p.SkipToken != "" {
		return p.SkipToken
	}

	return p.AltSkipToken
}

// collect runs the query and accumulates all pages in order. Any failure
// on any page discards the whole result set.
func collect[T any](ctx context.Context, c *Client, query string) []T {
	var (
		results   []T
		skipToken string
	)

	start := time.Now()

	for pages := 0; ; pages++ {
		if pages >= c.MaxPages {
			c.Logger.Warn().
				Int("max_pages", c.MaxPages).
				Int("records_discarded", len(results)).
				Msg("Pagination cap reached, treating result set as unusable")

			return nil
		}

		args := []string{"graph", "query", "-q", query, "--first", strconv.Itoa(c.PageSize), "-o", "json"}
		if skipToken != "" {
			args = append(args, "--skip-token", skipToken)
		}

		result, err := c.Runner.Run(ctx, args...)
		if err != nil {
			c.Logger.Warn().Err(err).Int("page", pages).Msg("Resource Graph query failed")
			return nil
		}

		if result.ExitCode != 0 {
			c.Logger.Warn().
				Int("exit_code", result.ExitCode).
				Int("page", pages).
				Str("stderr", strings.TrimSpace(string(result.Stderr))).
				Msg("Resource Graph query exited non-zero")

			return nil
		}

		if strings.TrimSpace(string(result.Stdout)) == "" {
			c.Logger.Warn().Int("page", pages).Msg("Resource Graph query produced no output")
			return nil
		}

		var p page[T]

		if err := json.Unmarshal(result.Stdout, &p); err != nil {
			c.Logger.Warn().Err(err).Int("page", pages).Msg("Failed to parse Resource Graph response")
			return nil
		}

		results = append(results, p.Data...)

		skipToken = p.token()
		if skipToken == "" {
			break
		}
	}

	c.Logger.Debug().
		Int("records", len(results)).
		Dur("elapsed", time.Since(start)).
		Msg("Resource Graph query complete")

	return results
}

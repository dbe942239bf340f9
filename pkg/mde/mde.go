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

// Package mde resolves which Windows machines are onboarded to
// Microsoft Defender for Endpoint, via the Microsoft Graph
// security-machines endpoint.
package mde

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/carverauto/azure-inventory/pkg/azcli"
	"github.com/carverauto/azure-inventory/pkg/logger"
)

const (
	machinesURL = "https://graph.microsoft.com/v1.0/security/machines"

	defaultPageSize = 1000
	defaultMaxPages = 100
)

// KeySet is a set of normalized identity keys for onboarded Windows
// machines. A key is either a lower-cased Azure VM id or a lower-cased
// short hostname; membership of either counts as onboarded.
type KeySet map[string]struct{}

// Add inserts a key after lower-casing it. Empty keys are ignored.
func (s KeySet) Add(key string) {
	if key == "" {
		return
	}

	s[strings.ToLower(key)] = struct{}{}
}

// Contains reports whether the lower-cased key is in the set.
func (s KeySet) Contains(key string) bool {
	_, ok := s[strings.ToLower(key)]
	return ok
}

// machinesPage is the Microsoft Graph list-machines response envelope.
type machinesPage struct {
	Value    []machine `json:"value"`
	NextLink string    `json:"@odata.nextLink"`
}

type machine struct {
	OSPlatform      string `json:"osPlatform"`
	AzureVMID       string `json:"azureVmId"`
	ComputerDNSName string `json:"computerDnsName"`
}

// Resolver fetches the onboarding key set through an azcli.Runner.
type Resolver struct {
	Runner   azcli.Runner
	PageSize int
	MaxPages int
	Logger   logger.Logger
}

// NewResolver creates a Resolver with spec defaults filled in.
func NewResolver(runner azcli.Runner, pageSize, maxPages int, log logger.Logger) *Resolver {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}

	return &Resolver{
		Runner:   runner,
		PageSize: pageSize,
		MaxPages: maxPages,
		Logger:   log.WithComponent("mde"),
	}
}

// WindowsMachineKeys returns the key set for Defender-onboarded Windows
// machines, following @odata.nextLink pagination until none remains.
//
// Unlike the Resource Graph client, a mid-pagination failure keeps the
// keys collected so far: the key set only adds onboarding detail to
// hosts that already exist in the inventory, so partial data degrades a
// field, not the host list.
func (r *Resolver) WindowsMachineKeys(ctx context.Context) KeySet {
	keys := make(KeySet)
	url := fmt.Sprintf("%s?$top=%d", machinesURL, r.PageSize)

	for pages := 0; url != ""; pages++ {
		if pages >= r.MaxPages {
			r.Logger.Warn().
				Int("max_pages", r.MaxPages).
				Msg("Pagination cap reached while listing Defender machines")

			break
		}

		page, ok := r.fetchPage(ctx, url, pages)
		if !ok {
			break
		}

		for i := range page.Value {
			m := &page.Value[i]

			if m.OSPlatform != "Windows" {
				continue
			}

			keys.Add(m.AzureVMID)

			if m.ComputerDNSName != "" {
				shortName, _, _ := strings.Cut(m.ComputerDNSName, ".")
				keys.Add(shortName)
			}
		}

		url = page.NextLink
	}

	r.Logger.Debug().Int("keys", len(keys)).Msg("Resolved Defender onboarding keys")

	return keys
}

func (r *Resolver) fetchPage(ctx context.Context, url string, page int) (*machinesPage, bool) {
	result, err := r.Runner.Run(ctx,
		"rest",
		"--method", "GET",
		"--url", url,
		"--headers", "ConsistencyLevel=eventual")
	if err != nil {
		r.Logger.Warn().Err(err).Int("page", page).Msg("Defender machines request failed")
		return nil, false
	}

	if result.ExitCode != 0 {
		r.Logger.Warn().
			Int("exit_code", result.ExitCode).
			Int("page", page).
			Str("stderr", strings.TrimSpace(string(result.Stderr))).
			Msg("Defender machines request exited non-zero")

		return nil, false
	}

	if strings.TrimSpace(string(result.Stdout)) == "" {
		r.Logger.Warn().Int("page", page).Msg("Defender machines request produced no output")
		return nil, false
	}

	var p machinesPage

	if err := json.Unmarshal(result.Stdout, &p); err != nil {
		r.Logger.Warn().Err(err).Int("page", page).Msg("Failed to parse Defender machines response")
		return nil, false
	}

	return &p, true
}

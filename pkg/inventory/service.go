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
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/carverauto/azure-inventory/pkg/logger"
)

// Service runs one inventory assembly pass: cache check, the two
// Resource Graph queries, the Defender key query, the join, and the
// cache write. Everything is sequential; each external call is bounded
// by its own timeout and nothing is retried.
type Service struct {
	Graph   GraphSource
	Keys    KeySource
	Store   Store
	Options Options
	Logger  logger.Logger
}

// NewService wires a Service.
func NewService(graph GraphSource, keys KeySource, store Store, opts Options, log logger.Logger) *Service {
	if len(opts.AppliancePublishers) == 0 {
		opts.AppliancePublishers = DefaultAppliancePublishers()
	}

	return &Service{
		Graph:   graph,
		Keys:    keys,
		Store:   store,
		Options: opts,
		Logger:  log.WithComponent("inventory"),
	}
}

// Run returns the serialized inventory document. A fresh cached
// document is returned verbatim unless refresh is set; otherwise the
// document is recomputed and cached. The only error path is
// serialization of the freshly built document.
func (s *Service) Run(ctx context.Context, refresh bool) ([]byte, error) {
	runID := uuid.NewString()
	log := s.Logger.With().Str("run_id", runID).Logger()

	if !refresh {
		if data, ok := s.Store.Load(); ok {
			log.Debug().Msg("Serving inventory from cache")
			return data, nil
		}
	}

	start := time.Now()

	vms := s.Graph.VirtualMachines(ctx)
	nics := s.Graph.NetworkInterfaces(ctx)
	keys := s.Keys.WindowsMachineKeys(ctx)

	if len(vms) == 0 {
		log.Warn().Msg("VM query returned nothing usable, emitting empty inventory")
	}

	doc := Build(vms, nics, keys, s.Options)

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize inventory document: %w", err)
	}

	s.Store.Save(data)

	log.Info().
		Int("hosts", len(doc.All.Hosts)).
		Int("windows", len(doc.Windows.Hosts)).
		Int("linux", len(doc.Linux.Hosts)).
		Int("network_appliances", len(doc.NetworkAppliances.Hosts)).
		Dur("elapsed", time.Since(start)).
		Msg("Inventory assembled")

	return data, nil
}

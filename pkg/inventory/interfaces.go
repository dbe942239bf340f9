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

	"github.com/carverauto/azure-inventory/pkg/mde"
	"github.com/carverauto/azure-inventory/pkg/models"
)

// GraphSource supplies the two Resource Graph datasets. Implementations
// return empty slices on failure, never errors.
type GraphSource interface {
	VirtualMachines(ctx context.Context) []models.VirtualMachine
	NetworkInterfaces(ctx context.Context) []models.NetworkInterface
}

// KeySource supplies the Defender onboarding key set.
type KeySource interface {
	WindowsMachineKeys(ctx context.Context) mde.KeySet
}

// Store is the freshness cache seen by the service.
type Store interface {
	Load() ([]byte, bool)
	Save(data []byte)
}

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

package azcli

import (
	"context"
)

//go:generate mockgen -destination=mock_azcli.go -package=azcli github.com/carverauto/azure-inventory/pkg/azcli Runner

// Runner executes one Azure CLI invocation. It is the only point in the
// engine where the process boundary is crossed; every query client goes
// through it.
type Runner interface {
	Run(ctx context.Context, args ...string) (*Result, error)
}

// Result is the captured outcome of one CLI invocation.
type Result struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

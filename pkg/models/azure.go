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

// Package models holds the shared data model for the inventory engine.
package models

// Operating system families as reported by Azure Resource Graph.
const (
	OSTypeLinux   = "Linux"
	OSTypeWindows = "Windows"
)

// VirtualMachine is one row of the Resource Graph VM projection.
// Records are immutable once fetched; they only live for the duration of
// a single inventory run.
type VirtualMachine struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	ResourceGroup string `json:"resourceGroup"`
	Location      string `json:"location"`
	OSType        string `json:"osType"`
	Publisher     string `json:"publisher"`
	Offer         string `json:"offer"`
	SKU           string `json:"sku"`
	NicID         string `json:"nicId"`
}

// NetworkInterface is one row of the Resource Graph NIC projection. NICs
// are only used as a lookup table keyed by ID during the join.
type NetworkInterface struct {
	ID        string `json:"id"`
	PrivateIP string `json:"privateIp"`
}

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

package models

// Document is the Ansible dynamic-inventory document emitted on stdout
// and stored in the freshness cache. The JSON key names are a
// compatibility contract with Ansible's dynamic-inventory protocol and
// must not change.
type Document struct {
	Meta                   Meta  `json:"_meta"`
	All                    Group `json:"all"`
	Linux                  Group `json:"linux"`
	Windows                Group `json:"windows"`
	NetworkAppliances      Group `json:"network_appliances"`
	WindowsMDEOnboarded    Group `json:"windows_mde_onboarded"`
	WindowsMDENotOnboarded Group `json:"windows_mde_not_onboarded"`
}

// Meta carries per-host variables keyed by host name.
type Meta struct {
	HostVars map[string]*HostVars `json:"hostvars"`
}

// Group is one inventory group.
type Group struct {
	Hosts []string `json:"hosts"`
}

// HostVars is the per-host metadata attached under _meta.hostvars.
// AnsibleHost and PrivateIP are nil when the NIC join produced no
// address; MDEOnboarded is only set for hosts in the windows group.
type HostVars struct {
	AnsibleHost   *string `json:"ansible_host"`
	PrivateIP     *string `json:"private_ip"`
	ResourceGroup string  `json:"resource_group"`
	Location      string  `json:"location"`
	OSType        string  `json:"os_type"`
	NicID         string  `json:"nic_id"`
	MDEOnboarded  *bool   `json:"mde_onboarded,omitempty"`
}

// NewEmptyDocument returns a schema-valid document with all six groups
// present and empty. An upstream VM query failure degrades to this
// rather than an error: a broken inventory is strictly worse for
// Ansible than an empty one.
func NewEmptyDocument() *Document {
	return &Document{
		Meta:                   Meta{HostVars: map[string]*HostVars{}},
		All:                    Group{Hosts: []string{}},
		Linux:                  Group{Hosts: []string{}},
		Windows:                Group{Hosts: []string{}},
		NetworkAppliances:      Group{Hosts: []string{}},
		WindowsMDEOnboarded:    Group{Hosts: []string{}},
		WindowsMDENotOnboarded: Group{Hosts: []string{}},
	}
}

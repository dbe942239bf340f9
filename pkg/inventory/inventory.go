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

// Package inventory joins VM, NIC, and Defender onboarding data into an
// Ansible dynamic-inventory document and classifies hosts into groups.
package inventory

import (
	"strings"

	"github.com/carverauto/azure-inventory/pkg/mde"
	"github.com/carverauto/azure-inventory/pkg/models"
)

// Options tunes host classification.
type Options struct {
	// AppliancePublishers is the denylist of image-publisher substrings
	// (matched case-insensitively) that reclassify a Linux VM as a
	// network appliance.
	AppliancePublishers []string

	// DefaultOSGroup receives VMs whose OS type is neither Linux nor
	// Windows. Defaults to the windows group for compatibility with the
	// consumers of this inventory.
	DefaultOSGroup string
}

// DefaultAppliancePublishers is the stock vendor denylist.
func DefaultAppliancePublishers() []string {
	return []string{
		"citrix",
		"barracudanetworks",
		"f5-networks",
		"paloaltonetworks",
		"fortinet",
		"sophos",
		"checkpoint",
		"cisco",
	}
}

// Build combines the three datasets into the inventory document.
//
// An empty VM dataset short-circuits to the canonical empty document:
// upstream failure degrades to "nothing to do" rather than an error.
// VMs with a blank name are silently skipped.
func Build(vms []models.VirtualMachine, nics []models.NetworkInterface, keys mde.KeySet, opts Options) *models.Document {
	doc := models.NewEmptyDocument()

	if len(vms) == 0 {
		return doc
	}

	// One pass over the NICs gives O(1) IP lookups during the join; both
	// sides can be thousands of records.
	nicIPs := make(map[string]string, len(nics))

	for i := range nics {
		if nics[i].ID == "" {
			continue
		}

		nicIPs[nics[i].ID] = strings.TrimSpace(nics[i].PrivateIP)
	}

	for i := range vms {
		vm := &vms[i]

		name := strings.TrimSpace(vm.Name)
		if name == "" {
			continue
		}

		var ip *string
		if addr := nicIPs[vm.NicID]; addr != "" {
			ip = &addr
		}

		doc.All.Hosts = append(doc.All.Hosts, name)
		doc.Meta.HostVars[name] = &models.HostVars{
			AnsibleHost:   ip,
			PrivateIP:     ip,
			ResourceGroup: vm.ResourceGroup,
			Location:      vm.Location,
			OSType:        vm.OSType,
			NicID:         vm.NicID,
		}

		classify(doc, vm, name, keys, &opts)
	}

	return doc
}

// classify assigns the host to exactly one OS group, in precedence
// order: appliance-publisher Linux, plain Linux, Windows (with the MDE
// onboarding split), then the configured fallback group for anything
// unrecognized.
func classify(doc *models.Document, vm *models.VirtualMachine, name string, keys mde.KeySet, opts *Options) {
	switch {
	case vm.OSType == models.OSTypeLinux && isAppliance(vm.Publisher, opts.AppliancePublishers):
		doc.NetworkAppliances.Hosts = append(doc.NetworkAppliances.Hosts, name)

	case vm.OSType == models.OSTypeLinux:
		doc.Linux.Hosts = append(doc.Linux.Hosts, name)

	case vm.OSType == models.OSTypeWindows:
		doc.Windows.Hosts = append(doc.Windows.Hosts, name)

		// Either key source may be missing on either side, so onboarding
		// is an OR over the VM id and the host name.
		onboarded := keys.Contains(vm.ID) || keys.Contains(name)
		doc.Meta.HostVars[name].MDEOnboarded = &onboarded

		if onboarded {
			doc.WindowsMDEOnboarded.Hosts = append(doc.WindowsMDEOnboarded.Hosts, name)
		} else {
			doc.WindowsMDENotOnboarded.Hosts = append(doc.WindowsMDENotOnboarded.Hosts, name)
		}

	default:
		// Unrecognized or unset OS type. No MDE annotation: the machine
		// is not a confirmed Windows host.
		if opts.DefaultOSGroup == "linux" {
			doc.Linux.Hosts = append(doc.Linux.Hosts, name)
		} else {
			doc.Windows.Hosts = append(doc.Windows.Hosts, name)
		}
	}
}

func isAppliance(publisher string, denylist []string) bool {
	if publisher == "" {
		return false
	}

	p := strings.ToLower(publisher)

	for _, vendor := range denylist {
		if strings.Contains(p, strings.ToLower(vendor)) {
			return true
		}
	}

	return false
}

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

import "time"

// IntuneDevice is a managed-device record from the endpoint management
// catalog. AzureADDeviceID is the identity key used to join against the
// security catalog; the catalog does not guarantee it is populated.
type IntuneDevice struct {
	DeviceID        string    `json:"id"`
	AzureADDeviceID string    `json:"azureADDeviceId,omitempty"`
	DeviceName      string    `json:"deviceName,omitempty"`
	OperatingSystem string    `json:"operatingSystem,omitempty"`
	OSVersion       string    `json:"osVersion,omitempty"`
	UserPrincipal   string    `json:"userPrincipalName,omitempty"`
	ComplianceState string    `json:"complianceState,omitempty"`
	LastSyncTime    time.Time `json:"lastSyncDateTime,omitempty"`
}

// DefenderDevice is a machine record from the endpoint security catalog.
// AADDeviceID is the identity key; onboarded machines that never joined the
// directory carry an empty value.
type DefenderDevice struct {
	MachineID     string    `json:"id"`
	AADDeviceID   string    `json:"aadDeviceId,omitempty"`
	DNSName       string    `json:"computerDnsName,omitempty"`
	OSPlatform    string    `json:"osPlatform,omitempty"`
	RiskScore     string    `json:"riskScore,omitempty"`
	ExposureLevel string    `json:"exposureLevel,omitempty"`
	LastSeen      time.Time `json:"lastSeen,omitempty"`
}

// IdentityKey returns the join key for the device, empty when absent.
func (d *IntuneDevice) IdentityKey() string { return d.AzureADDeviceID }

// IdentityKey returns the join key for the machine, empty when absent.
func (d *DefenderDevice) IdentityKey() string { return d.AADDeviceID }

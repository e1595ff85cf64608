// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "encoding/json"

// ConnectionProfile is the typed view of an [EntityConnection] payload.
//
// Password and SSHKey are kept on the device only; the sanitizer redacts them
// before any upload.
type ConnectionProfile struct {
	Name     string            `json:"name" validate:"required"`
	Driver   string            `json:"driver" validate:"required"`
	Host     string            `json:"host,omitempty"`
	Port     int               `json:"port,omitempty" validate:"gte=0,lte=65535"`
	Database string            `json:"database,omitempty"`
	Username string            `json:"username,omitempty"`
	Password string            `json:"password,omitempty"`
	DSN      string            `json:"dsn,omitempty"`
	UseSSH   bool              `json:"use_ssh,omitempty"`
	SSHHost  string            `json:"ssh_host,omitempty"`
	SSHPort  int               `json:"ssh_port,omitempty" validate:"gte=0,lte=65535"`
	SSHUser  string            `json:"ssh_user,omitempty"`
	SSHKey   string            `json:"ssh_key,omitempty"`
	Color    string            `json:"color,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// SavedQuery is the typed view of an [EntitySavedQuery] payload.
type SavedQuery struct {
	Title        string            `json:"title" validate:"required"`
	Description  string            `json:"description,omitempty"`
	Query        string            `json:"query" validate:"required"`
	ConnectionID string            `json:"connection_id,omitempty"`
	Tags         []string          `json:"tags,omitempty"`
	Favorite     bool              `json:"favorite,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// ToPayload converts any JSON-encodable typed view into a [Payload].
func ToPayload(v any) (Payload, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return UnmarshalPayload(data)
}

// FromPayload decodes p into the typed view pointed to by target.
func FromPayload(p Payload, target any) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, target)
}

// Copyright (C) 2024, Forge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/forgelabs/payloadd/archive"
	"github.com/forgelabs/payloadd/consts"
	"github.com/forgelabs/payloadd/job"
	"github.com/forgelabs/payloadd/scheduler"
	"github.com/forgelabs/payloadd/server"
	"github.com/forgelabs/payloadd/trace"
)

// Allocation seeds an account balance in every parent view served by the
// built-in state source.
type Allocation struct {
	Address ids.ShortID `json:"address"`
	Balance uint64      `json:"balance"`
}

type Config struct {
	LogLevel string `json:"logLevel"`
	LogDir   string `json:"logDir"`

	HTTPHost       string            `json:"httpHost"`
	HTTPPort       int               `json:"httpPort"`
	AllowedOrigins []string          `json:"allowedOrigins"`
	AllowedHosts   []string          `json:"allowedHosts"`
	HTTP           server.HTTPConfig `json:"http"`

	MempoolSize        int      `json:"mempoolSize"`
	MempoolSponsorSize int      `json:"mempoolSponsorSize"`
	ExemptSponsors     []string `json:"exemptSponsors"`

	Allocations []Allocation `json:"allocations"`

	Scheduler scheduler.Config `json:"scheduler"`
	Job       job.Config       `json:"job"`
	Trace     trace.Config     `json:"trace"`

	ArchiveEnabled bool           `json:"archiveEnabled"`
	ArchiveDir     string         `json:"archiveDir"`
	Archive        archive.Config `json:"archive"`
}

func NewDefaultConfig() Config {
	return Config{
		LogLevel: "info",

		HTTPHost:       "127.0.0.1",
		HTTPPort:       9650,
		AllowedOrigins: []string{"*"},
		HTTP:           server.NewDefaultHTTPConfig(),

		MempoolSize:        4096,
		MempoolSponsorSize: 32,

		Scheduler: scheduler.NewDefaultConfig(),
		Job:       job.NewDefaultConfig(),
		Trace: trace.Config{
			AppName: consts.Name,
			Agent:   consts.Name,
			Version: consts.Version,
		},

		ArchiveDir: "payload-archive",
		Archive:    archive.NewDefaultConfig(),
	}
}

// LoadConfig returns the defaults overlaid with the JSON file at [path],
// when one is given.
func LoadConfig(path string) (Config, error) {
	cfg := NewDefaultConfig()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("unable to read config %q: %w", path, err)
	}
	if err := json.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("unable to parse config %q: %w", path, err)
	}
	return cfg, nil
}

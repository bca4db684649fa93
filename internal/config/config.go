// Copyright 2024 The powchain Authors
// This file is part of the powchain library.
//
// The powchain library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The powchain library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the powchain library. If not, see <http://www.gnu.org/licenses/>.

// Package config holds the node's on-disk TOML configuration, loaded with
// naoina/toml the way go-ethereum loads its own node config.
package config

import (
	"os"

	"github.com/naoina/toml"
)

// Config is the full set of knobs a node operator can set in powchain.toml.
type Config struct {
	// ListenAddr is the host:port the transport listens for inbound peers on.
	ListenAddr string

	// Peers lists outbound addresses to dial at startup.
	Peers []string

	// GossipWorkers sizes the gossip dispatch pool.
	GossipWorkers int

	// MinerLambda is the microsecond delay between PoW attempts; 0 mines at
	// full speed.
	MinerLambda uint64

	// TxGenTheta paces the synthetic transaction generator; 0 disables the
	// inter-transaction delay.
	TxGenTheta uint64

	// LogLevel is one of debug, info, warn, error.
	LogLevel string
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		ListenAddr:    ":30303",
		GossipWorkers: 8,
		MinerLambda:   0,
		TxGenTheta:    0,
		LogLevel:      "info",
	}
}

// Load reads and parses a TOML config file at path, starting from Default
// and overlaying whatever fields the file sets.
func Load(path string) (Config, error) {
	cfg := Default()
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()

	if err := toml.NewDecoder(f).Decode(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

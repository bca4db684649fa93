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

// Command powchain runs a single proof-of-work node: chain store, mempool,
// miner, synthetic transaction generator, and gossip transport.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/chaintutor/powchain/internal/chain"
	"github.com/chaintutor/powchain/internal/config"
	"github.com/chaintutor/powchain/internal/node"
	"github.com/chaintutor/powchain/internal/powchainlog"
)

var (
	configFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "path to a powchain.toml configuration file",
	}
	listenFlag = &cli.StringFlag{
		Name:  "listen",
		Usage: "override the configured listen address (host:port)",
	}
	lambdaFlag = &cli.Uint64Flag{
		Name:  "miner-lambda",
		Usage: "microseconds to sleep between PoW attempts; 0 mines at full speed",
	}
	thetaFlag = &cli.Uint64Flag{
		Name:  "txgen-theta",
		Usage: "pacing factor for the synthetic transaction generator; 0 disables pacing",
	}
)

func main() {
	if _, err := maxprocs.Set(maxprocs.Logger(func(string, ...any) {})); err != nil {
		powchainlog.Warn("failed to set GOMAXPROCS", "err", err)
	}

	app := &cli.App{
		Name:  "powchain",
		Usage: "a teaching proof-of-work blockchain node",
		Commands: []*cli.Command{
			startCommand,
			genesisHashCommand,
			versionCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		powchainlog.Crit("fatal error", "err", err)
	}
}

var startCommand = &cli.Command{
	Name:  "start",
	Usage: "run a node",
	Flags: []cli.Flag{configFlag, listenFlag, lambdaFlag, thetaFlag},
	Action: func(c *cli.Context) error {
		cfg := config.Default()
		if path := c.String(configFlag.Name); path != "" {
			loaded, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			cfg = loaded
		}
		if v := c.String(listenFlag.Name); v != "" {
			cfg.ListenAddr = v
		}
		if c.IsSet(lambdaFlag.Name) {
			cfg.MinerLambda = c.Uint64(lambdaFlag.Name)
		}
		if c.IsSet(thetaFlag.Name) {
			cfg.TxGenTheta = c.Uint64(thetaFlag.Name)
		}

		applyLogLevel(cfg.LogLevel)

		n := node.New(cfg)
		ctx, err := n.Start(context.Background())
		if err != nil {
			return fmt.Errorf("starting node: %w", err)
		}
		n.Miner.Start(cfg.MinerLambda)
		n.TxGen.Start(cfg.TxGenTheta)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		select {
		case <-sigCh:
			powchainlog.Info("received shutdown signal")
		case <-ctx.Done():
			powchainlog.Warn("a node worker exited unexpectedly")
		}
		n.Stop()
		return nil
	},
}

var genesisHashCommand = &cli.Command{
	Name:  "genesis-hash",
	Usage: "print the network's genesis block hash",
	Action: func(c *cli.Context) error {
		fmt.Println(chain.Genesis().Hash().Hex())
		return nil
	},
}

var versionCommand = &cli.Command{
	Name:  "version",
	Usage: "print the node version",
	Action: func(c *cli.Context) error {
		fmt.Println("powchain/v0 (teaching node)")
		return nil
	},
}

func applyLogLevel(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	powchainlog.SetRoot(powchainlog.NewWithHandler(powchainlog.NewTerminalHandler(os.Stderr, lvl)))
}

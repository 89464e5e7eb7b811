// Copyright 2024 Alexandre Mahdhaoui
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cli provides common CLI bootstrapping: version flag handling,
// MCP server mode (--mcp), and standardized error handling and exit
// codes.
package cli

import (
	"log"
	"os"

	"github.com/alexandremahdhaoui/shipforge/internal/version"
)

// Config configures Bootstrap.
type Config struct {
	// Name of the binary.
	Name string
	// Version, CommitSHA, and BuildTimestamp are set via ldflags.
	Version        string
	CommitSHA      string
	BuildTimestamp string

	// RunCLI handles regular invocations; it receives os.Args[1:].
	RunCLI func(args []string) error
	// RunMCP handles --mcp invocations (stdio MCP server).
	RunMCP func() error
}

// Bootstrap dispatches to version printing, MCP server mode, or the CLI
// handler. It exits the process with code 1 on error.
func Bootstrap(cfg Config) {
	info := version.New(cfg.Name)
	info.Version = cfg.Version
	info.CommitSHA = cfg.CommitSHA
	info.BuildTimestamp = cfg.BuildTimestamp

	args := os.Args[1:]

	if len(args) >= 1 {
		switch args[0] {
		case "version", "--version", "-v":
			info.Print()
			return
		case "--mcp":
			if cfg.RunMCP == nil {
				log.Printf("%s: MCP mode not supported", cfg.Name)
				os.Exit(1)
			}
			if err := cfg.RunMCP(); err != nil {
				log.Printf("%s: MCP server failed: %v", cfg.Name, err)
				os.Exit(1)
			}
			return
		}
	}

	if cfg.RunCLI == nil {
		log.Printf("%s: no CLI handler configured", cfg.Name)
		os.Exit(1)
	}

	if err := cfg.RunCLI(args); err != nil {
		log.Printf("%s: %v", cfg.Name, err)
		os.Exit(1)
	}
}

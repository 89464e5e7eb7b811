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

package main

import (
	"fmt"
	"os"

	"github.com/alexandremahdhaoui/shipforge/internal/cli"
)

// Version information (set via ldflags during build)
var (
	Version        = "dev"
	CommitSHA      = "unknown"
	BuildTimestamp = "unknown"
)

func main() {
	if len(os.Args) >= 2 && (os.Args[1] == "help" || os.Args[1] == "--help" || os.Args[1] == "-h") {
		printUsage()
		return
	}

	cli.Bootstrap(cli.Config{
		Name:           "shipforge",
		Version:        Version,
		CommitSHA:      CommitSHA,
		BuildTimestamp: BuildTimestamp,
		RunCLI:         runCLI,
		RunMCP:         runMCPServer,
	})
}

func runCLI(args []string) error {
	if len(args) < 1 {
		printUsage()
		return fmt.Errorf("subcommand required")
	}

	switch args[0] {
	case "next-version":
		return runNextVersion()
	case "branch":
		return runBranch(args[1:])
	case "bump":
		return runBump(args[1:])
	case "catalog":
		return runCatalog(args[1:])
	case "publish":
		return runPublish(args[1:])
	case "upload":
		return runUpload(args[1:])
	case "upload-run":
		return runUploadRun(args[1:])
	case "download-run":
		return runDownloadRun(args[1:])
	case "finalize":
		return runFinalize(args[1:])
	case "run":
		return runPipeline()
	default:
		return fmt.Errorf("unknown subcommand: %s (see `shipforge help`)", args[0])
	}
}

func printUsage() {
	fmt.Print(`shipforge - release pipeline for a cross-platform binary

Each subcommand is one pipeline step, designed to be invoked as its own
CI job and safe to re-run after a partial failure (except finalize).
Steps print the release version to stdout so they can be chained.

Usage:
  shipforge next-version               Infer the next version from the
                                       latest tag and the manifest
  shipforge branch <version>           Reconcile the release/<version>
                                       branch and check it out
  shipforge bump <version>             Set the manifest version, refresh
                                       the lockfile, commit and push
  shipforge catalog <version>          Generate data/<platform>.json
                                       descriptors, commit and push
  shipforge publish <version>          Create the v<version> release
  shipforge upload <version> <file>... Upload assets to the release
  shipforge upload-run <file>...       Upload files to CI-run storage
  shipforge download-run <run-id> <pattern>
                                       Download run artifacts matching
                                       the glob into the artifacts root
  shipforge finalize <version>         Squash-merge the release branch
                                       into trunk and delete it
  shipforge run                        next-version + branch + bump in
                                       one invocation
  shipforge --mcp                      Run as MCP server
  shipforge version                    Show version information
  shipforge help                       Show this help message

Configuration is read from release.yaml (override with SHIPFORGE_CONFIG).
`)
}

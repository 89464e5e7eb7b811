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
	"context"
	"fmt"

	"github.com/alexandremahdhaoui/shipforge/internal/catalog"
	"github.com/alexandremahdhaoui/shipforge/internal/mcpserver"
	"github.com/alexandremahdhaoui/shipforge/internal/release"
	"github.com/alexandremahdhaoui/shipforge/internal/semvercalc"
	"github.com/alexandremahdhaoui/shipforge/pkg/mcputil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// CalculateNextVersionInput is the input for the calculate-next-version
// tool.
type CalculateNextVersionInput struct {
	// LatestTagVersion is the most recent released version, or "" when
	// no release exists yet.
	LatestTagVersion string `json:"latestTagVersion"`
	// CurrentVersion is the version currently in the manifest.
	CurrentVersion string `json:"currentVersion"`
}

// VersionPayload reports the version a step settled on.
type VersionPayload struct {
	Version string `json:"version"`
}

// EnsureBranchInput is the input for the ensure-release-branch tool.
type EnsureBranchInput struct {
	Version string `json:"version"`
}

// BumpManifestInput is the input for the bump-manifest tool.
type BumpManifestInput struct {
	Version string `json:"version"`
}

// CatalogInput is the input for the catalog-artifacts tool.
type CatalogInput struct {
	Version string `json:"version"`
}

// CatalogPayload lists the descriptor files a catalog run produced.
type CatalogPayload struct {
	Files []string `json:"files"`
}

// PublishReleaseInput is the input for the publish-release tool.
type PublishReleaseInput struct {
	Version string `json:"version"`
}

// FinalizeInput is the input for the finalize-release tool.
type FinalizeInput struct {
	Version string `json:"version"`
}

func runMCPServer() error {
	server := mcpserver.New("shipforge", Version)

	mcpserver.RegisterTool(server, &mcp.Tool{
		Name:        "calculate-next-version",
		Description: "Compute the next release version from the latest tag and the manifest version",
	}, handleCalculateNextVersion)

	mcpserver.RegisterTool(server, &mcp.Tool{
		Name:        "ensure-release-branch",
		Description: "Reconcile the release/<version> branch and leave the workspace on it",
	}, handleEnsureBranch)

	mcpserver.RegisterTool(server, &mcp.Tool{
		Name:        "bump-manifest",
		Description: "Set the manifest version, refresh the lockfile, commit and push",
	}, handleBumpManifest)

	mcpserver.RegisterTool(server, &mcp.Tool{
		Name:        "catalog-artifacts",
		Description: "Generate per-platform descriptor records from built archives, commit and push",
	}, handleCatalog)

	mcpserver.RegisterTool(server, &mcp.Tool{
		Name:        "publish-release",
		Description: "Create the hosting-service release for a version",
	}, handlePublishRelease)

	mcpserver.RegisterTool(server, &mcp.Tool{
		Name:        "finalize-release",
		Description: "Squash-merge the release branch into trunk and delete it",
	}, handleFinalize)

	return server.RunDefault()
}

func handleCalculateNextVersion(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input CalculateNextVersionInput,
) (*mcp.CallToolResult, any, error) {
	next, err := semvercalc.Next(input.LatestTagVersion, input.CurrentVersion)
	if err != nil {
		return mcputil.ErrorResult(fmt.Sprintf("calculate-next-version failed: %v", err)), nil, nil
	}

	result, payload := mcputil.SuccessResultWithPayload(
		fmt.Sprintf("Next version: %s", next),
		VersionPayload{Version: next},
	)
	return result, payload, nil
}

func handleEnsureBranch(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input EnsureBranchInput,
) (*mcp.CallToolResult, any, error) {
	spec, err := loadSpec()
	if err != nil {
		return mcputil.ErrorResult(fmt.Sprintf("failed to load release spec: %v", err)), nil, nil
	}

	version, err := release.EnsureBranch(newGit(), spec.Remote, input.Version)
	if err != nil {
		return mcputil.ErrorResult(fmt.Sprintf("ensure-release-branch failed: %v", err)), nil, nil
	}

	result, payload := mcputil.SuccessResultWithPayload(
		fmt.Sprintf("Workspace is on %s", release.BranchName(version)),
		VersionPayload{Version: version},
	)
	return result, payload, nil
}

func handleBumpManifest(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input BumpManifestInput,
) (*mcp.CallToolResult, any, error) {
	spec, err := loadSpec()
	if err != nil {
		return mcputil.ErrorResult(fmt.Sprintf("failed to load release spec: %v", err)), nil, nil
	}

	if err := bump(newGit(), spec, input.Version); err != nil {
		return mcputil.ErrorResult(fmt.Sprintf("bump-manifest failed: %v", err)), nil, nil
	}

	result, payload := mcputil.SuccessResultWithPayload(
		fmt.Sprintf("Manifest bumped to %s", input.Version),
		VersionPayload{Version: input.Version},
	)
	return result, payload, nil
}

func handleCatalog(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input CatalogInput,
) (*mcp.CallToolResult, any, error) {
	spec, err := loadSpec()
	if err != nil {
		return mcputil.ErrorResult(fmt.Sprintf("failed to load release spec: %v", err)), nil, nil
	}

	files, err := catalog.Generate(catalog.Input{
		Version:       input.Version,
		ProjectName:   spec.Name,
		ArtifactsRoot: spec.Artifacts.Root,
		DataDir:       spec.Artifacts.DataDir,
		ArchiveExt:    spec.Artifacts.ArchiveExt,
		HashSuffix:    spec.Artifacts.HashSuffix,
	})
	if err != nil {
		return mcputil.ErrorResult(fmt.Sprintf("catalog-artifacts failed: %v", err)), nil, nil
	}

	result, payload := mcputil.SuccessResultWithPayload(
		fmt.Sprintf("Cataloged %d platform(s)", len(files)),
		CatalogPayload{Files: files},
	)
	return result, payload, nil
}

func handlePublishRelease(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input PublishReleaseInput,
) (*mcp.CallToolResult, any, error) {
	if err := release.PublishRelease(newHosting(), input.Version); err != nil {
		return mcputil.ErrorResult(fmt.Sprintf("publish-release failed: %v", err)), nil, nil
	}

	result, payload := mcputil.SuccessResultWithPayload(
		fmt.Sprintf("Created release %s", release.Tag(input.Version)),
		VersionPayload{Version: input.Version},
	)
	return result, payload, nil
}

func handleFinalize(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input FinalizeInput,
) (*mcp.CallToolResult, any, error) {
	spec, err := loadSpec()
	if err != nil {
		return mcputil.ErrorResult(fmt.Sprintf("failed to load release spec: %v", err)), nil, nil
	}

	if err := release.Finalize(newGit(), spec.Remote, spec.Trunk, input.Version); err != nil {
		return mcputil.ErrorResult(fmt.Sprintf("finalize-release failed: %v", err)), nil, nil
	}

	result, payload := mcputil.SuccessResultWithPayload(
		fmt.Sprintf("Release %s merged into %s", input.Version, spec.Trunk),
		VersionPayload{Version: input.Version},
	)
	return result, payload, nil
}

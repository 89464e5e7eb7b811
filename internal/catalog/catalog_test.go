//go:build unit

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

package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestGenerate(t *testing.T) {
	root := t.TempDir()
	artifacts := filepath.Join(root, "artifacts")
	dataDir := filepath.Join(root, "data")

	// Artifact download steps produce per-job subdirectories.
	writeFile(t, filepath.Join(artifacts, "darwin-job", "c67-mcp-0.2.2-aarch64-darwin.tgz"), "archive")
	writeFile(t, filepath.Join(artifacts, "darwin-job", "c67-mcp-0.2.2-aarch64-darwin-nix.sha256"), "abc123\n")
	writeFile(t, filepath.Join(artifacts, "linux-job", "c67-mcp-0.2.2-x86_64-linux.tgz"), "archive")
	writeFile(t, filepath.Join(artifacts, "linux-job", "c67-mcp-0.2.2-x86_64-linux-nix.sha256"), "def456")

	files, err := Generate(Input{
		Version:       "0.2.2",
		ProjectName:   "c67-mcp",
		ArtifactsRoot: artifacts,
		DataDir:       dataDir,
		Repository:    "example/c67-mcp",
	})
	require.NoError(t, err)
	require.Len(t, files, 2)

	raw, err := os.ReadFile(filepath.Join(dataDir, "aarch64-darwin.json"))
	require.NoError(t, err)
	assert.Equal(t,
		`{"url":"https://github.com/example/c67-mcp/releases/download/v0.2.2/c67-mcp-0.2.2-aarch64-darwin.tgz","hash":"abc123"}`,
		string(raw))

	raw, err = os.ReadFile(filepath.Join(dataDir, "x86_64-linux.json"))
	require.NoError(t, err)
	assert.Equal(t,
		`{"url":"https://github.com/example/c67-mcp/releases/download/v0.2.2/c67-mcp-0.2.2-x86_64-linux.tgz","hash":"def456"}`,
		string(raw))
}

func TestGenerate_MissingHashFileIsFatal(t *testing.T) {
	root := t.TempDir()
	artifacts := filepath.Join(root, "artifacts")
	writeFile(t, filepath.Join(artifacts, "c67-mcp-0.2.2-aarch64-darwin.tgz"), "archive")

	_, err := Generate(Input{
		Version:       "0.2.2",
		ProjectName:   "c67-mcp",
		ArtifactsRoot: artifacts,
		DataDir:       filepath.Join(root, "data"),
		Repository:    "example/c67-mcp",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingHashFile)
}

func TestDiscover_RepositoryFromEnv(t *testing.T) {
	root := t.TempDir()
	artifacts := filepath.Join(root, "artifacts")
	writeFile(t, filepath.Join(artifacts, "c67-mcp-0.2.2-aarch64-darwin.tgz"), "archive")
	writeFile(t, filepath.Join(artifacts, "c67-mcp-0.2.2-aarch64-darwin-nix.sha256"), "abc123")

	t.Setenv("GITHUB_REPOSITORY", "example/c67-mcp")

	descriptors, err := Discover(Input{
		Version:       "0.2.2",
		ProjectName:   "c67-mcp",
		ArtifactsRoot: artifacts,
	})
	require.NoError(t, err)
	require.Len(t, descriptors, 1)
	assert.Equal(t, "aarch64-darwin", descriptors[0].PlatformKey)
	assert.Equal(t,
		"https://github.com/example/c67-mcp/releases/download/v0.2.2/c67-mcp-0.2.2-aarch64-darwin.tgz",
		descriptors[0].URL)
}

func TestDiscover_MissingRepositoryEnvIsFatal(t *testing.T) {
	root := t.TempDir()
	artifacts := filepath.Join(root, "artifacts")
	writeFile(t, filepath.Join(artifacts, "c67-mcp-0.2.2-aarch64-darwin.tgz"), "archive")
	writeFile(t, filepath.Join(artifacts, "c67-mcp-0.2.2-aarch64-darwin-nix.sha256"), "abc123")

	t.Setenv("GITHUB_REPOSITORY", "")

	_, err := Discover(Input{
		Version:       "0.2.2",
		ProjectName:   "c67-mcp",
		ArtifactsRoot: artifacts,
	})
	require.Error(t, err)
}

func TestDiscover_SkipsForeignArchives(t *testing.T) {
	root := t.TempDir()
	artifacts := filepath.Join(root, "artifacts")
	writeFile(t, filepath.Join(artifacts, "c67-mcp-0.2.2-aarch64-darwin.tgz"), "archive")
	writeFile(t, filepath.Join(artifacts, "c67-mcp-0.2.2-aarch64-darwin-nix.sha256"), "abc123")
	writeFile(t, filepath.Join(artifacts, "other-tool-1.0.0-x86_64-linux.tgz"), "archive")

	descriptors, err := Discover(Input{
		Version:       "0.2.2",
		ProjectName:   "c67-mcp",
		ArtifactsRoot: artifacts,
		Repository:    "example/c67-mcp",
	})
	require.NoError(t, err)
	require.Len(t, descriptors, 1)
	assert.Equal(t, "aarch64-darwin", descriptors[0].PlatformKey)
}

func TestWriteDescriptors_PrunesStaleRecords(t *testing.T) {
	dataDir := t.TempDir()
	writeFile(t, filepath.Join(dataDir, "dropped-platform.json"), `{"url":"old","hash":"old"}`)

	files, err := WriteDescriptors(dataDir, []Descriptor{
		{PlatformKey: "aarch64-darwin", URL: "https://example.invalid/a.tgz", Hash: "abc123"},
	})
	require.NoError(t, err)

	assert.NoFileExists(t, filepath.Join(dataDir, "dropped-platform.json"))
	assert.FileExists(t, filepath.Join(dataDir, "aarch64-darwin.json"))

	// The pruned record must be part of the files to commit: staging the
	// deleted path is what removes it from the published descriptor set.
	require.Len(t, files, 2)
	assert.Contains(t, files, filepath.Join(dataDir, "dropped-platform.json"))
	assert.Contains(t, files, filepath.Join(dataDir, "aarch64-darwin.json"))
}

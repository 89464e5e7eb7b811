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

// Package catalog turns built platform archives into per-platform
// descriptor records consumed by downstream packaging definitions
// (Homebrew formula, Nix flake).
//
// For each archive `<project>-<version>-<platform>.tgz` discovered under
// the artifacts root it reads the sibling `<...>-nix.sha256` hash file
// and writes `data/<platform>.json` with the release download URL and
// content hash. An archive without a verifiable hash is never cataloged:
// a missing hash file fails the step.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/caarlos0/env/v11"
)

const (
	// DefaultArchiveExt is the archive extension produced by the build
	// matrix.
	DefaultArchiveExt = ".tgz"
	// DefaultHashSuffix is the suffix of the sibling hash file.
	DefaultHashSuffix = "-nix.sha256"
	// DefaultDataDir is where descriptor records are written.
	DefaultDataDir = "data"
)

// ErrMissingHashFile indicates an archive was discovered without its
// sibling hash file.
var ErrMissingHashFile = errors.New("catalog: missing hash file for archive")

// Envs holds the environment variables required by the cataloger.
type Envs struct {
	// Repository is the `owner/name` identifier used to construct
	// download URLs. Provided by the CI environment.
	Repository string `env:"GITHUB_REPOSITORY,notEmpty"`
}

// Descriptor is one per-platform install-metadata record.
type Descriptor struct {
	// PlatformKey identifies the build target, e.g. "aarch64-darwin".
	PlatformKey string `json:"-"`

	URL  string `json:"url"`
	Hash string `json:"hash"`
}

// Input configures a catalog run.
type Input struct {
	// Version being released, without v prefix.
	Version string
	// ProjectName is the distributed binary's project name, used as the
	// archive filename prefix.
	ProjectName string
	// ArtifactsRoot is searched recursively: artifact download steps
	// place each job's files in their own subdirectory.
	ArtifactsRoot string
	// DataDir is where descriptor records are written.
	DataDir string
	// ArchiveExt and HashSuffix default to DefaultArchiveExt and
	// DefaultHashSuffix.
	ArchiveExt string
	HashSuffix string
	// Repository overrides the GITHUB_REPOSITORY env var; used by tests
	// and by MCP callers that already resolved it.
	Repository string
}

func (in *Input) applyDefaults() {
	if in.ArchiveExt == "" {
		in.ArchiveExt = DefaultArchiveExt
	}
	if in.HashSuffix == "" {
		in.HashSuffix = DefaultHashSuffix
	}
	if in.DataDir == "" {
		in.DataDir = DefaultDataDir
	}
}

// Discover enumerates archives under the artifacts root and derives one
// Descriptor per platform. It does not touch the data directory.
func Discover(input Input) ([]Descriptor, error) {
	input.applyDefaults()

	repo := input.Repository
	if repo == "" {
		var envs Envs
		if err := env.Parse(&envs); err != nil {
			return nil, fmt.Errorf("catalog: repository identifier: %w", err)
		}
		repo = envs.Repository
	}

	var archives []string
	err := filepath.WalkDir(input.ArtifactsRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), input.ArchiveExt) {
			archives = append(archives, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate artifacts under %s: %w", input.ArtifactsRoot, err)
	}
	sort.Strings(archives)

	prefix := input.ProjectName + "-" + input.Version + "-"
	descriptors := make([]Descriptor, 0, len(archives))

	for _, archive := range archives {
		name := filepath.Base(archive)
		if !strings.HasPrefix(name, prefix) {
			log.Printf("Skipping archive %s: name does not match %s<platform>%s", name, prefix, input.ArchiveExt)
			continue
		}

		platformKey := strings.TrimSuffix(strings.TrimPrefix(name, prefix), input.ArchiveExt)

		hashPath := strings.TrimSuffix(archive, input.ArchiveExt) + input.HashSuffix
		rawHash, err := os.ReadFile(hashPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrMissingHashFile, hashPath, err)
		}

		descriptors = append(descriptors, Descriptor{
			PlatformKey: platformKey,
			URL: fmt.Sprintf("https://github.com/%s/releases/download/v%s/%s",
				repo, input.Version, name),
			Hash: strings.TrimSpace(string(rawHash)),
		})
	}

	return descriptors, nil
}

// WriteDescriptors writes one `<dataDir>/<platform_key>.json` record per
// descriptor and prunes records for platforms that are no longer built.
// Returns the written and pruned file paths, for the commit step:
// staging a pruned path is what records its deletion.
func WriteDescriptors(dataDir string, descriptors []Descriptor) ([]string, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	keep := make(map[string]bool, len(descriptors))
	for _, d := range descriptors {
		keep[d.PlatformKey+".json"] = true
	}

	// The descriptor set is derived state, regenerated from scratch each
	// cycle: records for platforms absent from this build are removed.
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read data directory: %w", err)
	}
	files := make([]string, 0, len(descriptors))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") || keep[entry.Name()] {
			continue
		}
		stale := filepath.Join(dataDir, entry.Name())
		log.Printf("Pruning stale descriptor %s", stale)
		if err := os.Remove(stale); err != nil {
			return nil, fmt.Errorf("failed to prune stale descriptor: %w", err)
		}
		// The pruned path goes into the commit list: staging the deleted
		// file removes it from the published descriptor set.
		files = append(files, stale)
	}
	for _, d := range descriptors {
		raw, err := json.Marshal(d)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal descriptor for %s: %w", d.PlatformKey, err)
		}

		path := filepath.Join(dataDir, d.PlatformKey+".json")
		if err := os.WriteFile(path, raw, 0o644); err != nil {
			return nil, fmt.Errorf("failed to write descriptor %s: %w", path, err)
		}

		log.Printf("Cataloged platform %s -> %s", d.PlatformKey, path)
		files = append(files, path)
	}

	return files, nil
}

// Generate discovers archives and writes their descriptor records.
// Returns the written file paths.
func Generate(input Input) ([]string, error) {
	input.applyDefaults()

	descriptors, err := Discover(input)
	if err != nil {
		return nil, err
	}
	return WriteDescriptors(input.DataDir, descriptors)
}

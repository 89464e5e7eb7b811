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

// Package shipforge defines the release.yaml specification: what project
// is being released, where its manifest and artifacts live, and which
// remote/trunk the pipeline reconciles against.
package shipforge

import (
	"fmt"
	"os"

	"sigs.k8s.io/yaml"
)

// DefaultSpecPath is the release configuration read from the repository
// root.
const DefaultSpecPath = "release.yaml"

// Spec is the release.yaml document.
type Spec struct {
	// Name is the distributed binary's project name, used as the
	// archive filename prefix (e.g. "c67-mcp").
	Name string `json:"name"`

	// Trunk is the branch releases are merged back into. Defaults to
	// "main".
	Trunk string `json:"trunk,omitempty"`

	// Remote is the git remote name. Defaults to "origin".
	Remote string `json:"remote,omitempty"`

	// Manifest locates the build manifest and its lockfile.
	Manifest ManifestSpec `json:"manifest"`

	// Artifacts configures archive discovery and descriptor output.
	Artifacts ArtifactsSpec `json:"artifacts,omitempty"`

	// RunStore configures the S3-compatible CI-run artifact storage.
	// Optional: without it, run-artifact transport goes through the
	// hosting service's own run storage.
	RunStore *RunStoreSpec `json:"runStore,omitempty"`
}

// ManifestSpec locates the version manifest.
type ManifestSpec struct {
	// Path to the manifest. Defaults to "Cargo.toml".
	Path string `json:"path,omitempty"`
	// Lockfile derived from the manifest. Defaults to "Cargo.lock".
	Lockfile string `json:"lockfile,omitempty"`
	// Resolver is the dependency-resolver invocation that regenerates
	// the lockfile. Defaults to ["cargo", "update", "--workspace"].
	Resolver []string `json:"resolver,omitempty"`
}

// ArtifactsSpec configures the platform artifact cataloger.
type ArtifactsSpec struct {
	// Root is where built archives are read from. Defaults to
	// "./artifacts".
	Root string `json:"root,omitempty"`
	// DataDir is where descriptor records are written. Always "./data"
	// by convention; configurable for tests.
	DataDir string `json:"dataDir,omitempty"`
	// ArchiveExt defaults to ".tgz".
	ArchiveExt string `json:"archiveExt,omitempty"`
	// HashSuffix defaults to "-nix.sha256".
	HashSuffix string `json:"hashSuffix,omitempty"`
}

// RunStoreSpec configures S3-compatible CI-run storage. Credentials are
// not part of the spec: they come from the CI environment.
type RunStoreSpec struct {
	Endpoint string `json:"endpoint"`
	Region   string `json:"region,omitempty"`
	Bucket   string `json:"bucket"`
}

// ReadSpec reads and validates release.yaml from the default path.
func ReadSpec() (Spec, error) {
	return ReadSpecFromPath(DefaultSpecPath)
}

// ReadSpecFromPath reads and validates a release spec, applying
// defaults.
func ReadSpecFromPath(path string) (Spec, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Spec{}, fmt.Errorf("failed to read release spec %s: %w", path, err)
	}

	var spec Spec
	if err := yaml.UnmarshalStrict(raw, &spec); err != nil {
		return Spec{}, fmt.Errorf("failed to parse release spec %s: %w", path, err)
	}

	spec.ApplyDefaults()
	if err := spec.Validate(); err != nil {
		return Spec{}, fmt.Errorf("invalid release spec %s: %w", path, err)
	}

	return spec, nil
}

// ApplyDefaults fills the optional fields.
func (s *Spec) ApplyDefaults() {
	if s.Trunk == "" {
		s.Trunk = "main"
	}
	if s.Remote == "" {
		s.Remote = "origin"
	}
	if s.Manifest.Path == "" {
		s.Manifest.Path = "Cargo.toml"
	}
	if s.Manifest.Lockfile == "" {
		s.Manifest.Lockfile = "Cargo.lock"
	}
	if len(s.Manifest.Resolver) == 0 {
		s.Manifest.Resolver = []string{"cargo", "update", "--workspace"}
	}
	if s.Artifacts.Root == "" {
		s.Artifacts.Root = "./artifacts"
	}
	if s.Artifacts.DataDir == "" {
		s.Artifacts.DataDir = "./data"
	}
	if s.Artifacts.ArchiveExt == "" {
		s.Artifacts.ArchiveExt = ".tgz"
	}
	if s.Artifacts.HashSuffix == "" {
		s.Artifacts.HashSuffix = "-nix.sha256"
	}
}

// Validate validates the Spec.
func (s *Spec) Validate() error {
	errs := NewValidationErrors()

	if err := ValidateRequired(s.Name, "name", "Spec"); err != nil {
		errs.Add(err)
	}
	if err := ValidateRequired(s.Trunk, "trunk", "Spec"); err != nil {
		errs.Add(err)
	}
	if err := ValidateRequired(s.Remote, "remote", "Spec"); err != nil {
		errs.Add(err)
	}
	if err := ValidateRequired(s.Manifest.Path, "manifest.path", "Spec"); err != nil {
		errs.Add(err)
	}
	if err := ValidateRequired(s.Manifest.Lockfile, "manifest.lockfile", "Spec"); err != nil {
		errs.Add(err)
	}
	if len(s.Manifest.Resolver) == 0 {
		errs.AddErrorf("Spec: manifest.resolver must not be empty")
	}

	if s.RunStore != nil {
		if err := ValidateRequired(s.RunStore.Endpoint, "runStore.endpoint", "Spec"); err != nil {
			errs.Add(err)
		}
		if err := ValidateRequired(s.RunStore.Bucket, "runStore.bucket", "Spec"); err != nil {
			errs.Add(err)
		}
	}

	return errs.ErrorOrNil()
}

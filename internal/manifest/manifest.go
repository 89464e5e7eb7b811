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

// Package manifest mutates the version field of a Cargo-style TOML build
// manifest and revalidates the lockfile against it.
//
// The manifest is the single source of truth for "the version being
// released". The version rewrite is a targeted line edit, not a
// decode/encode round trip: every byte outside the [package] version
// line must survive untouched. The TOML library is used to read and to
// re-verify, never to serialize.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/alexandremahdhaoui/shipforge/internal/cmdutil"
)

// ErrVersionLineNotFound indicates the manifest has no version line in
// its [package] section.
var ErrVersionLineNotFound = errors.New("manifest: no version line in [package] section")

// ErrResolverFailed indicates the dependency resolver rejected the
// updated manifest. The release aborts rather than committing an
// inconsistent manifest/lockfile pair.
var ErrResolverFailed = errors.New("manifest: dependency resolution failed")

type document struct {
	Package struct {
		Name    string `toml:"name"`
		Version string `toml:"version"`
	} `toml:"package"`
}

var versionLine = regexp.MustCompile(`^(\s*version\s*=\s*)"[^"]*"(.*)$`)

// ReadVersion returns the package.version field of the manifest.
func ReadVersion(path string) (string, error) {
	var doc document
	if _, err := toml.DecodeFile(path, &doc); err != nil {
		return "", fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	if doc.Package.Version == "" {
		return "", fmt.Errorf("manifest %s: package.version is empty", path)
	}
	return doc.Package.Version, nil
}

// SetVersion rewrites the package.version line in place, then re-parses
// the file to confirm the manifest still decodes and carries the new
// version.
func SetVersion(path, version string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read manifest: %w", err)
	}

	lines := strings.Split(string(raw), "\n")
	section := ""
	replaced := false

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			section = strings.Trim(trimmed, "[]")
			continue
		}
		if section != "package" || replaced {
			continue
		}
		if m := versionLine.FindStringSubmatch(line); m != nil {
			lines[i] = fmt.Sprintf("%s%q%s", m[1], version, m[2])
			replaced = true
		}
	}

	if !replaced {
		return fmt.Errorf("%w: %s", ErrVersionLineNotFound, path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat manifest: %w", err)
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), info.Mode()); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	got, err := ReadVersion(path)
	if err != nil {
		return err
	}
	if got != version {
		return fmt.Errorf("manifest %s: wrote version %q but read back %q", path, version, got)
	}

	return nil
}

// Updater bumps the manifest version and keeps the lockfile consistent.
type Updater struct {
	// ManifestPath is the build manifest, e.g. Cargo.toml.
	ManifestPath string
	// LockPath is the derived lockfile, e.g. Cargo.lock.
	LockPath string
	// Resolver is the dependency-resolver invocation that regenerates
	// the lockfile, e.g. ["cargo", "update", "--workspace"].
	Resolver []string

	Runner cmdutil.Runner
}

// Update sets the manifest version, runs the dependency resolver so the
// lockfile is regenerated consistently, and returns the files that must
// be committed. A resolver failure is fatal.
func (u Updater) Update(version string) ([]string, error) {
	if err := SetVersion(u.ManifestPath, version); err != nil {
		return nil, err
	}

	if len(u.Resolver) == 0 {
		return nil, fmt.Errorf("manifest: no resolver command configured")
	}

	out := u.Runner.Run(cmdutil.ExecuteInput{
		Command: u.Resolver[0],
		Args:    u.Resolver[1:],
	})
	if out.Error != "" {
		return nil, fmt.Errorf("%w: %s: %s", ErrResolverFailed, u.Resolver[0], out.Error)
	}
	if out.ExitCode != 0 {
		return nil, fmt.Errorf("%w: %s exit %d: %s",
			ErrResolverFailed, strings.Join(u.Resolver, " "), out.ExitCode,
			strings.TrimSpace(out.Stderr))
	}

	return []string{u.ManifestPath, u.LockPath}, nil
}

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

// Package semvercalc computes the next release version from the latest
// released tag and the version currently in the manifest.
package semvercalc

import (
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// ErrMalformedVersion indicates a version string that is not exactly
// three dot-separated integer components. This is a configuration error:
// the release aborts instead of retrying.
var ErrMalformedVersion = errors.New("malformed version: want major.minor.patch")

// Next returns the version to release.
//
// Rules, evaluated in order:
//  1. No tag yet (latestTag == "") -> current, first-ever release.
//  2. Major or minor differ -> current, an explicit bump in the manifest
//     is respected as-is.
//  3. Both versions equal -> current with patch incremented, so
//     re-releasing an unbumped manifest still produces a new version.
//  4. Same major/minor, manifest patch already ahead (or behind) -> current.
//
// Next is a pure function: it never consults git or the manifest itself.
func Next(latestTag, current string) (string, error) {
	if latestTag == "" {
		return current, nil
	}

	tag, err := parseStrict(latestTag)
	if err != nil {
		return "", fmt.Errorf("latest tag %q: %w", latestTag, err)
	}

	cur, err := parseStrict(current)
	if err != nil {
		return "", fmt.Errorf("current version %q: %w", current, err)
	}

	if tag.Major() != cur.Major() || tag.Minor() != cur.Minor() {
		return current, nil
	}

	if tag.Equal(cur) {
		next := cur.IncPatch()
		return next.String(), nil
	}

	return current, nil
}

// parseStrict parses a version and rejects anything beyond the plain
// major.minor.patch triple (prerelease tags, build metadata, v prefix).
func parseStrict(raw string) (*semver.Version, error) {
	v, err := semver.StrictNewVersion(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedVersion, err)
	}
	if v.Prerelease() != "" || v.Metadata() != "" {
		return nil, fmt.Errorf("%w: extra components in %q", ErrMalformedVersion, raw)
	}
	return v, nil
}

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

package release

import (
	"errors"
	"fmt"
	"log"

	"github.com/alexandremahdhaoui/shipforge/internal/ghcli"
)

// ErrReleaseExists indicates a release object for this version already
// exists. The branch name and the tag together are the mutual-exclusion
// key for a version: a second invocation targeting the same version must
// surface a clear conflict instead of relying on the underlying create
// call to fail.
var ErrReleaseExists = errors.New("release already exists")

// Tag returns the hosting-service tag for a version.
func Tag(version string) string {
	return "v" + version
}

// PublishRelease creates the hosting-service release for a version,
// tagged v<version>, titled "Release v<version>", targeted at the
// release branch.
func PublishRelease(hosting ghcli.Hosting, version string) error {
	tag := Tag(version)

	exists, err := hosting.ReleaseExists(tag)
	if err != nil {
		return fmt.Errorf("failed to query release %s: %w", tag, err)
	}
	if exists {
		return fmt.Errorf("%w: tag %s", ErrReleaseExists, tag)
	}

	title := "Release " + tag
	if err := hosting.CreateRelease(tag, title, BranchName(version)); err != nil {
		return fmt.Errorf("failed to create release %s: %w", tag, err)
	}

	log.Printf("Created release %s targeting %s", tag, BranchName(version))
	return nil
}

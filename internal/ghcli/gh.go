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

// Package ghcli shells out to the gh binary for hosting-service
// operations: release objects, release assets, and CI-run artifact
// downloads. Authentication is assumed to come from the CI environment.
package ghcli

import (
	"fmt"
	"strings"

	"github.com/alexandremahdhaoui/shipforge/internal/cmdutil"
)

// Hosting is the hosting-service capability surface the release steps
// need.
type Hosting interface {
	// ReleaseExists reports whether a release object with the given tag
	// already exists. A non-zero exit from `gh release view` is the
	// expected-absence path.
	ReleaseExists(tag string) (bool, error)
	// CreateRelease creates a release with the given tag and title
	// targeting the given branch.
	CreateRelease(tag, title, targetBranch string) error
	// UploadReleaseAssets uploads local files to an existing release.
	// All listed files are present at the destination on success; the
	// first failure aborts the batch.
	UploadReleaseAssets(tag string, files []string) error
	// DownloadRunArtifacts downloads artifacts whose name matches the
	// glob pattern from a CI run into destDir.
	DownloadRunArtifacts(runID, pattern, destDir string) error
}

// CLI implements Hosting by invoking the gh binary through a Runner.
type CLI struct {
	runner cmdutil.Runner
}

// New returns a Hosting backed by the given runner.
func New(runner cmdutil.Runner) *CLI {
	return &CLI{runner: runner}
}

func (c *CLI) run(args ...string) error {
	out := c.runner.Run(cmdutil.ExecuteInput{Command: "gh", Args: args})
	if out.Error != "" {
		return fmt.Errorf("gh %s: %s", strings.Join(args, " "), out.Error)
	}
	if out.ExitCode != 0 {
		return fmt.Errorf("gh %s: exit %d: %s",
			strings.Join(args, " "), out.ExitCode, strings.TrimSpace(out.Stderr))
	}
	return nil
}

// ReleaseExists implements Hosting.
func (c *CLI) ReleaseExists(tag string) (bool, error) {
	out := c.runner.Run(cmdutil.ExecuteInput{
		Command: "gh",
		Args:    []string{"release", "view", tag},
	})
	if out.Error != "" {
		return false, fmt.Errorf("gh release view: %s", out.Error)
	}
	return out.ExitCode == 0, nil
}

// CreateRelease implements Hosting.
func (c *CLI) CreateRelease(tag, title, targetBranch string) error {
	return c.run("release", "create", tag,
		"--title", title,
		"--target", targetBranch,
	)
}

// UploadReleaseAssets implements Hosting.
func (c *CLI) UploadReleaseAssets(tag string, files []string) error {
	if len(files) == 0 {
		return fmt.Errorf("gh release upload: no files given")
	}
	return c.run(append([]string{"release", "upload", tag}, files...)...)
}

// DownloadRunArtifacts implements Hosting.
func (c *CLI) DownloadRunArtifacts(runID, pattern, destDir string) error {
	return c.run("run", "download", runID,
		"--pattern", pattern,
		"--dir", destDir,
	)
}

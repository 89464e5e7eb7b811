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

// Package release contains the orchestration steps of the pipeline:
// branch reconciliation, commit publishing, release publication, and the
// terminal squash-merge back into trunk.
//
// Each step is invoked as its own CI job, so no state crosses step
// boundaries in memory: every step queries refs and hosting-service
// objects, decides, and acts. All steps except Finalize are idempotent
// and safe to re-run after a partial failure.
package release

import (
	"fmt"
	"log"

	"github.com/alexandremahdhaoui/shipforge/internal/gitcli"
)

// BranchName returns the release branch name for a version.
func BranchName(version string) string {
	return "release/" + version
}

// EnsureBranch reconciles the release branch for the given version and
// leaves the workspace on it, tracking the remote:
//
//  1. branch exists locally            -> check it out; push with
//     upstream when the remote branch is missing
//  2. branch exists only on the remote -> create a local tracking branch
//  3. branch absent everywhere         -> create it and push with upstream
//
// Re-running from any starting state converges on the same branch with
// no duplicate-branch error. Returns the version unchanged so steps can
// be chained through stdout.
func EnsureBranch(git gitcli.Git, remote, version string) (string, error) {
	branch := BranchName(version)

	localExists, err := git.LocalBranchExists(branch)
	if err != nil {
		return "", fmt.Errorf("failed to query local branch %s: %w", branch, err)
	}
	remoteExists, err := git.RemoteBranchExists(remote, branch)
	if err != nil {
		return "", fmt.Errorf("failed to query remote branch %s: %w", branch, err)
	}

	if localExists {
		log.Printf("Branch %s exists locally, checking out", branch)
		if err := git.Checkout(branch); err != nil {
			return "", err
		}
		if !remoteExists {
			// A prior run died between creating the branch and pushing
			// it; re-establish the remote side and tracking.
			log.Printf("Branch %s missing on %s, pushing with upstream", branch, remote)
			if err := git.PushSetUpstream(remote, branch); err != nil {
				return "", err
			}
		}
		return version, nil
	}

	if remoteExists {
		log.Printf("Branch %s exists on %s, creating local tracking branch", branch, remote)
		if err := git.CheckoutTrack(remote, branch); err != nil {
			return "", err
		}
		return version, nil
	}

	log.Printf("Creating branch %s and pushing to %s", branch, remote)
	if err := git.CreateBranch(branch); err != nil {
		return "", err
	}
	if err := git.PushSetUpstream(remote, branch); err != nil {
		return "", err
	}

	return version, nil
}

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
	"fmt"
	"log"

	"github.com/alexandremahdhaoui/shipforge/internal/gitcli"
)

// Finalize squash-merges the release branch into trunk and deletes the
// remote branch. This is the terminal step and the one step that is not
// idempotent: once the remote branch is gone, a re-run fails at the
// fetch.
func Finalize(git gitcli.Git, remote, trunk, version string) error {
	branch := BranchName(version)

	if err := git.Checkout(trunk); err != nil {
		return fmt.Errorf("failed to check out %s: %w", trunk, err)
	}
	if err := git.Fetch(remote, branch); err != nil {
		return fmt.Errorf("failed to fetch %s: %w", branch, err)
	}
	if err := git.SquashMerge(remote + "/" + branch); err != nil {
		return fmt.Errorf("failed to squash-merge %s: %w", branch, err)
	}
	if err := git.Commit("Release " + version); err != nil {
		return fmt.Errorf("failed to commit merge: %w", err)
	}
	if err := git.Push(remote, trunk); err != nil {
		return fmt.Errorf("failed to push %s: %w", trunk, err)
	}
	if err := git.DeleteRemoteBranch(remote, branch); err != nil {
		return fmt.Errorf("failed to delete remote branch %s: %w", branch, err)
	}

	log.Printf("Merged %s into %s and deleted the remote branch", branch, trunk)
	return nil
}

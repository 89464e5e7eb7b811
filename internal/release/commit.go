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

// PublishCommit stages exactly the given files, then commits and pushes
// them. When the staged state already matches HEAD (a re-run after the
// commit landed, or the files did not change) it logs a no-op and
// returns without committing or pushing.
//
// The push uses --force-with-lease so a stale local branch cannot
// silently clobber newer remote history.
func PublishCommit(git gitcli.Git, remote string, files []string, message string) error {
	if err := git.Add(files); err != nil {
		return fmt.Errorf("failed to stage files: %w", err)
	}

	clean, err := git.StagedMatchesHead()
	if err != nil {
		return fmt.Errorf("failed to compare index with HEAD: %w", err)
	}
	if clean {
		log.Printf("Nothing to commit for %q, skipping commit and push", message)
		return nil
	}

	if err := git.Commit(message); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	if err := git.PushHeadWithLease(remote); err != nil {
		return fmt.Errorf("failed to push: %w", err)
	}

	log.Printf("Committed and pushed %d file(s): %s", len(files), message)
	return nil
}

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

package release

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFinalize(t *testing.T) {
	git := newFakeGit()
	git.local["release/0.2.2"] = true
	git.remote["release/0.2.2"] = true
	git.head = "release/0.2.2"

	require.NoError(t, Finalize(git, "origin", "main", "0.2.2"))

	assert.Equal(t, []string{
		"checkout main",
		"fetch origin release/0.2.2",
		"squash-merge origin/release/0.2.2",
		`commit "Release 0.2.2"`,
		"push origin main",
		"delete-remote-branch origin release/0.2.2",
	}, git.ops)
	assert.False(t, git.remote["release/0.2.2"])
}

// Finalize is the terminal, non-idempotent step: once the remote branch
// is gone a re-run fails at the fetch.
func TestFinalize_RerunFailsAfterBranchDeleted(t *testing.T) {
	git := newFakeGit()
	git.local["release/0.2.2"] = true
	git.remote["release/0.2.2"] = true

	require.NoError(t, Finalize(git, "origin", "main", "0.2.2"))

	err := Finalize(git, "origin", "main", "0.2.2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch")
}

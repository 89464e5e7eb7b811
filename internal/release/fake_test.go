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

import "fmt"

// fakeGit is an in-memory Git that tracks branch state so reconciliation
// steps can be exercised across repeated invocations.
type fakeGit struct {
	latestTag     string
	local         map[string]bool
	remote        map[string]bool
	head          string
	stagedMatches bool

	ops []string
}

func newFakeGit() *fakeGit {
	return &fakeGit{
		local:         map[string]bool{"main": true},
		remote:        map[string]bool{"main": true},
		head:          "main",
		stagedMatches: true,
	}
}

func (g *fakeGit) record(format string, args ...any) {
	g.ops = append(g.ops, fmt.Sprintf(format, args...))
}

func (g *fakeGit) LatestTag() (string, error) {
	return g.latestTag, nil
}

func (g *fakeGit) LocalBranchExists(branch string) (bool, error) {
	return g.local[branch], nil
}

func (g *fakeGit) RemoteBranchExists(remote, branch string) (bool, error) {
	return g.remote[branch], nil
}

func (g *fakeGit) Checkout(branch string) error {
	if !g.local[branch] {
		return fmt.Errorf("checkout %s: branch does not exist", branch)
	}
	g.head = branch
	g.record("checkout %s", branch)
	return nil
}

func (g *fakeGit) CheckoutTrack(remote, branch string) error {
	if !g.remote[branch] {
		return fmt.Errorf("checkout --track %s/%s: no remote branch", remote, branch)
	}
	if g.local[branch] {
		return fmt.Errorf("checkout --track %s/%s: branch already exists locally", remote, branch)
	}
	g.local[branch] = true
	g.head = branch
	g.record("checkout-track %s/%s", remote, branch)
	return nil
}

func (g *fakeGit) CreateBranch(branch string) error {
	if g.local[branch] {
		return fmt.Errorf("checkout -b %s: branch already exists", branch)
	}
	g.local[branch] = true
	g.head = branch
	g.record("create-branch %s", branch)
	return nil
}

func (g *fakeGit) PushSetUpstream(remote, branch string) error {
	g.remote[branch] = true
	g.record("push-set-upstream %s %s", remote, branch)
	return nil
}

func (g *fakeGit) Push(remote, branch string) error {
	g.record("push %s %s", remote, branch)
	return nil
}

func (g *fakeGit) PushHeadWithLease(remote string) error {
	g.record("push-head-with-lease %s", remote)
	return nil
}

func (g *fakeGit) Add(files []string) error {
	g.record("add %v", files)
	return nil
}

func (g *fakeGit) StagedMatchesHead() (bool, error) {
	return g.stagedMatches, nil
}

func (g *fakeGit) Commit(message string) error {
	g.record("commit %q", message)
	return nil
}

func (g *fakeGit) Fetch(remote, branch string) error {
	if !g.remote[branch] {
		return fmt.Errorf("fetch %s %s: couldn't find remote ref", remote, branch)
	}
	g.record("fetch %s %s", remote, branch)
	return nil
}

func (g *fakeGit) SquashMerge(ref string) error {
	g.record("squash-merge %s", ref)
	return nil
}

func (g *fakeGit) DeleteRemoteBranch(remote, branch string) error {
	if !g.remote[branch] {
		return fmt.Errorf("push %s --delete %s: no remote branch", remote, branch)
	}
	delete(g.remote, branch)
	g.record("delete-remote-branch %s %s", remote, branch)
	return nil
}

// fakeHosting is an in-memory Hosting tracking release objects.
type fakeHosting struct {
	releases map[string]string // tag -> target branch
	uploads  map[string][]string
}

func newFakeHosting() *fakeHosting {
	return &fakeHosting{
		releases: map[string]string{},
		uploads:  map[string][]string{},
	}
}

func (h *fakeHosting) ReleaseExists(tag string) (bool, error) {
	_, ok := h.releases[tag]
	return ok, nil
}

func (h *fakeHosting) CreateRelease(tag, title, targetBranch string) error {
	if _, ok := h.releases[tag]; ok {
		return fmt.Errorf("release create %s: already exists", tag)
	}
	h.releases[tag] = targetBranch
	return nil
}

func (h *fakeHosting) UploadReleaseAssets(tag string, files []string) error {
	if _, ok := h.releases[tag]; !ok {
		return fmt.Errorf("release upload %s: release not found", tag)
	}
	h.uploads[tag] = append(h.uploads[tag], files...)
	return nil
}

func (h *fakeHosting) DownloadRunArtifacts(runID, pattern, destDir string) error {
	return nil
}

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

// Package gitcli shells out to the git binary.
//
// The release pipeline holds no state of its own: every decision is
// recovered from refs, so this package is a thin state-query/state-change
// surface over the git CLI. Exit status distinguishes expected absence
// (no tags yet, branch not found, nothing staged) from fatal errors.
package gitcli

import (
	"fmt"
	"strings"

	"github.com/alexandremahdhaoui/shipforge/internal/cmdutil"
	"golang.org/x/mod/semver"
)

// Git is the version-control capability surface the release steps need.
type Git interface {
	// LatestTag returns the most recent tag reachable from HEAD with any
	// leading "v" stripped, or "" when the repository has no tag.
	LatestTag() (string, error)

	LocalBranchExists(branch string) (bool, error)
	RemoteBranchExists(remote, branch string) (bool, error)
	Checkout(branch string) error
	CheckoutTrack(remote, branch string) error
	CreateBranch(branch string) error
	PushSetUpstream(remote, branch string) error
	Push(remote, branch string) error
	// PushHeadWithLease pushes HEAD with --force-with-lease so a stale
	// local branch cannot clobber newer remote history.
	PushHeadWithLease(remote string) error

	Add(files []string) error
	// StagedMatchesHead reports whether the index is identical to HEAD,
	// i.e. whether a commit would be empty.
	StagedMatchesHead() (bool, error)
	Commit(message string) error

	Fetch(remote, branch string) error
	SquashMerge(ref string) error
	DeleteRemoteBranch(remote, branch string) error
}

// CLI implements Git by invoking the git binary through a Runner.
type CLI struct {
	runner cmdutil.Runner
}

// New returns a Git backed by the given runner. Pass cmdutil.ExecRunner{}
// for the real binary.
func New(runner cmdutil.Runner) *CLI {
	return &CLI{runner: runner}
}

// run invokes git and converts a non-zero exit into an error carrying
// stderr. Callers that treat non-zero exit as expected absence use
// c.runner directly instead.
func (c *CLI) run(args ...string) (cmdutil.ExecuteOutput, error) {
	out := c.runner.Run(cmdutil.ExecuteInput{Command: "git", Args: args})
	if out.Error != "" {
		return out, fmt.Errorf("git %s: %s", strings.Join(args, " "), out.Error)
	}
	if out.ExitCode != 0 {
		return out, fmt.Errorf("git %s: exit %d: %s",
			strings.Join(args, " "), out.ExitCode, strings.TrimSpace(out.Stderr))
	}
	return out, nil
}

// LatestTag implements Git. A non-zero exit from git describe means no
// tag is reachable, which is the expected first-release condition, not an
// error. A reachable tag that is not a valid semver tag is a
// configuration error.
func (c *CLI) LatestTag() (string, error) {
	out := c.runner.Run(cmdutil.ExecuteInput{
		Command: "git",
		Args:    []string{"describe", "--tags", "--abbrev=0"},
	})
	if out.Error != "" {
		return "", fmt.Errorf("git describe: %s", out.Error)
	}
	if out.ExitCode != 0 {
		return "", nil
	}

	tag := strings.TrimSpace(out.Stdout)
	if !semver.IsValid("v" + strings.TrimPrefix(tag, "v")) {
		return "", fmt.Errorf("latest tag %q is not a semver tag", tag)
	}

	return strings.TrimPrefix(tag, "v"), nil
}

// LocalBranchExists implements Git.
func (c *CLI) LocalBranchExists(branch string) (bool, error) {
	out := c.runner.Run(cmdutil.ExecuteInput{
		Command: "git",
		Args:    []string{"show-ref", "--verify", "--quiet", "refs/heads/" + branch},
	})
	if out.Error != "" {
		return false, fmt.Errorf("git show-ref: %s", out.Error)
	}
	return out.ExitCode == 0, nil
}

// RemoteBranchExists implements Git.
func (c *CLI) RemoteBranchExists(remote, branch string) (bool, error) {
	out := c.runner.Run(cmdutil.ExecuteInput{
		Command: "git",
		Args:    []string{"ls-remote", "--exit-code", "--heads", remote, branch},
	})
	if out.Error != "" {
		return false, fmt.Errorf("git ls-remote: %s", out.Error)
	}
	// ls-remote exits 2 when no matching ref exists.
	if out.ExitCode == 2 {
		return false, nil
	}
	if out.ExitCode != 0 {
		return false, fmt.Errorf("git ls-remote %s %s: exit %d: %s",
			remote, branch, out.ExitCode, strings.TrimSpace(out.Stderr))
	}
	return true, nil
}

// Checkout implements Git.
func (c *CLI) Checkout(branch string) error {
	_, err := c.run("checkout", branch)
	return err
}

// CheckoutTrack implements Git.
func (c *CLI) CheckoutTrack(remote, branch string) error {
	_, err := c.run("checkout", "--track", remote+"/"+branch)
	return err
}

// CreateBranch implements Git.
func (c *CLI) CreateBranch(branch string) error {
	_, err := c.run("checkout", "-b", branch)
	return err
}

// PushSetUpstream implements Git.
func (c *CLI) PushSetUpstream(remote, branch string) error {
	_, err := c.run("push", "--set-upstream", remote, branch)
	return err
}

// Push implements Git.
func (c *CLI) Push(remote, branch string) error {
	_, err := c.run("push", remote, branch)
	return err
}

// PushHeadWithLease implements Git.
func (c *CLI) PushHeadWithLease(remote string) error {
	_, err := c.run("push", "--force-with-lease", remote, "HEAD")
	return err
}

// Add implements Git.
func (c *CLI) Add(files []string) error {
	if len(files) == 0 {
		return fmt.Errorf("git add: no files given")
	}
	_, err := c.run(append([]string{"add", "--"}, files...)...)
	return err
}

// StagedMatchesHead implements Git. `git diff --cached --quiet` exits 0
// when the index matches HEAD and 1 when it differs; anything else is a
// real failure.
func (c *CLI) StagedMatchesHead() (bool, error) {
	out := c.runner.Run(cmdutil.ExecuteInput{
		Command: "git",
		Args:    []string{"diff", "--cached", "--quiet"},
	})
	if out.Error != "" {
		return false, fmt.Errorf("git diff --cached: %s", out.Error)
	}
	switch out.ExitCode {
	case 0:
		return true, nil
	case 1:
		return false, nil
	default:
		return false, fmt.Errorf("git diff --cached: exit %d: %s",
			out.ExitCode, strings.TrimSpace(out.Stderr))
	}
}

// Commit implements Git.
func (c *CLI) Commit(message string) error {
	_, err := c.run("commit", "-m", message)
	return err
}

// Fetch implements Git.
func (c *CLI) Fetch(remote, branch string) error {
	_, err := c.run("fetch", remote, branch)
	return err
}

// SquashMerge implements Git.
func (c *CLI) SquashMerge(ref string) error {
	_, err := c.run("merge", "--squash", ref)
	return err
}

// DeleteRemoteBranch implements Git.
func (c *CLI) DeleteRemoteBranch(remote, branch string) error {
	_, err := c.run("push", remote, "--delete", branch)
	return err
}

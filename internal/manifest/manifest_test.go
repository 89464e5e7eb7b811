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

package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alexandremahdhaoui/shipforge/internal/cmdutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleManifest = `[package]
name = "c67-mcp"
version = "0.2.1"
edition = "2021"
license = "MIT"

# runtime dependencies
[dependencies]
serde = { version = "1.0", features = ["derive"] }
tokio = { version = "1", features = ["full"] }

[profile.release]
lto = true
`

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Cargo.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadVersion(t *testing.T) {
	path := writeManifest(t, sampleManifest)

	got, err := ReadVersion(path)
	require.NoError(t, err)
	assert.Equal(t, "0.2.1", got)
}

func TestSetVersion_PreservesUnrelatedContent(t *testing.T) {
	path := writeManifest(t, sampleManifest)

	require.NoError(t, SetVersion(path, "0.2.2"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	got := string(raw)

	assert.Contains(t, got, `version = "0.2.2"`)
	assert.NotContains(t, got, `version = "0.2.1"`)

	// Everything outside the version line round-trips byte for byte,
	// including comments, formatting, and version strings of deps.
	assert.Contains(t, got, `name = "c67-mcp"`)
	assert.Contains(t, got, "# runtime dependencies")
	assert.Contains(t, got, `serde = { version = "1.0", features = ["derive"] }`)
	assert.Contains(t, got, "[profile.release]\nlto = true")
}

func TestSetVersion_OnlyTouchesPackageSection(t *testing.T) {
	// A version line in another section must not be rewritten even when
	// it appears before [package].
	content := `[badges]
version = "ignored"

[package]
name = "c67-mcp"
version = "0.2.1"
`
	path := writeManifest(t, content)

	require.NoError(t, SetVersion(path, "0.3.0"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `version = "ignored"`)
	assert.Contains(t, string(raw), `version = "0.3.0"`)
}

func TestSetVersion_NoVersionLine(t *testing.T) {
	path := writeManifest(t, "[package]\nname = \"c67-mcp\"\n")

	err := SetVersion(path, "0.2.2")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrVersionLineNotFound)
}

func TestUpdate(t *testing.T) {
	path := writeManifest(t, sampleManifest)
	lockPath := filepath.Join(filepath.Dir(path), "Cargo.lock")

	var gotCommand string
	var gotArgs []string
	runner := cmdutil.RunnerFunc(func(input cmdutil.ExecuteInput) cmdutil.ExecuteOutput {
		gotCommand = input.Command
		gotArgs = input.Args
		return cmdutil.ExecuteOutput{}
	})

	files, err := Updater{
		ManifestPath: path,
		LockPath:     lockPath,
		Resolver:     []string{"cargo", "update", "--workspace"},
		Runner:       runner,
	}.Update("0.2.2")
	require.NoError(t, err)

	assert.Equal(t, []string{path, lockPath}, files)
	assert.Equal(t, "cargo", gotCommand)
	assert.Equal(t, []string{"update", "--workspace"}, gotArgs)

	got, err := ReadVersion(path)
	require.NoError(t, err)
	assert.Equal(t, "0.2.2", got)
}

func TestUpdate_ResolverFailureIsFatal(t *testing.T) {
	path := writeManifest(t, sampleManifest)

	runner := cmdutil.RunnerFunc(func(cmdutil.ExecuteInput) cmdutil.ExecuteOutput {
		return cmdutil.ExecuteOutput{ExitCode: 101, Stderr: "error: failed to select a version"}
	})

	_, err := Updater{
		ManifestPath: path,
		LockPath:     "Cargo.lock",
		Resolver:     []string{"cargo", "update", "--workspace"},
		Runner:       runner,
	}.Update("0.2.2")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrResolverFailed)
	assert.Contains(t, err.Error(), "failed to select a version")
}

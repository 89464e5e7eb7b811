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

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireVersionArg(t *testing.T) {
	version, err := requireVersionArg([]string{"0.2.2"}, "branch")
	require.NoError(t, err)
	assert.Equal(t, "0.2.2", version)

	_, err = requireVersionArg(nil, "branch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "branch: version argument required")

	_, err = requireVersionArg([]string{""}, "publish")
	require.Error(t, err)
}

func TestRunCLI_UnknownSubcommand(t *testing.T) {
	err := runCLI([]string{"frobnicate"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown subcommand: frobnicate")
}

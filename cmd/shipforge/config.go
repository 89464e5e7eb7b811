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
	"fmt"

	"github.com/alexandremahdhaoui/shipforge/pkg/shipforge"
	"github.com/caarlos0/env/v11"
)

// Envs holds the environment variables read by the shipforge CLI.
type Envs struct {
	// ConfigPath overrides the default release.yaml location.
	ConfigPath string `env:"SHIPFORGE_CONFIG"`

	// RunID identifies the current CI run for run-artifact uploads.
	// Generated when absent.
	RunID string `env:"GITHUB_RUN_ID"`

	// RunStoreAccessKeyID and RunStoreSecretAccessKey carry explicit
	// credentials for the S3-compatible run store. When empty, the
	// default AWS credential chain is used.
	RunStoreAccessKeyID     string `env:"RUNSTORE_ACCESS_KEY_ID"`
	RunStoreSecretAccessKey string `env:"RUNSTORE_SECRET_ACCESS_KEY"`
}

func parseEnvs() (Envs, error) {
	var envs Envs
	if err := env.Parse(&envs); err != nil {
		return Envs{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	return envs, nil
}

// loadSpec loads the release configuration from release.yaml or the
// SHIPFORGE_CONFIG override.
func loadSpec() (shipforge.Spec, error) {
	envs, err := parseEnvs()
	if err != nil {
		return shipforge.Spec{}, err
	}
	if envs.ConfigPath != "" {
		return shipforge.ReadSpecFromPath(envs.ConfigPath)
	}
	return shipforge.ReadSpec()
}

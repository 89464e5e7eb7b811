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

package cmdutil

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
)

// ExecRunner runs commands with os/exec. It is the Runner used in
// production; tests substitute a fake.
type ExecRunner struct{}

// Run executes a command with the given parameters.
//
// Inline env vars (input.Env) are appended to the system environment and
// take precedence. Stdout and stderr are captured rather than streamed:
// callers decide what to surface, and several of them parse stdout.
func (ExecRunner) Run(input ExecuteInput) ExecuteOutput {
	cmd := exec.Command(input.Command, input.Args...)

	if input.WorkDir != "" {
		cmd.Dir = input.WorkDir
	}

	env := os.Environ()
	for key, value := range input.Env {
		env = append(env, fmt.Sprintf("%s=%s", key, value))
	}
	cmd.Env = env

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	output := ExecuteOutput{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			output.ExitCode = exitErr.ExitCode()
		} else {
			output.ExitCode = -1
			output.Error = err.Error()
		}
	}

	return output
}

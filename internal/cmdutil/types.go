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

// ExecuteInput contains the parameters for command execution.
type ExecuteInput struct {
	Command string            // Command to execute
	Args    []string          // Command arguments
	Env     map[string]string // Additional environment variables
	WorkDir string            // Working directory (optional)
}

// ExecuteOutput contains the result of command execution.
type ExecuteOutput struct {
	ExitCode int    // Command exit code
	Stdout   string // Standard output
	Stderr   string // Standard error
	Error    string // Error message if the command could not be started
}

// Runner executes an external command. Release steps depend on this
// interface rather than on os/exec directly so the orchestration logic
// can be tested with fakes, independent of the real git and gh binaries.
type Runner interface {
	Run(input ExecuteInput) ExecuteOutput
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(input ExecuteInput) ExecuteOutput

// Run implements Runner.
func (f RunnerFunc) Run(input ExecuteInput) ExecuteOutput {
	return f(input)
}

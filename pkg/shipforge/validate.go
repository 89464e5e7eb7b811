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

package shipforge

import (
	"fmt"

	"github.com/alexandremahdhaoui/shipforge/pkg/flaterrors"
)

// ValidationErrors accumulates validation failures so a spec is reported
// with every problem at once instead of one per invocation.
type ValidationErrors struct {
	errs []error
}

// NewValidationErrors creates an empty accumulator.
func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{}
}

// Add appends a non-nil error.
func (v *ValidationErrors) Add(err error) {
	if err != nil {
		v.errs = append(v.errs, err)
	}
}

// AddErrorf appends a formatted error.
func (v *ValidationErrors) AddErrorf(format string, args ...any) {
	v.errs = append(v.errs, fmt.Errorf(format, args...))
}

// ErrorOrNil returns all accumulated errors joined flat, or nil.
func (v *ValidationErrors) ErrorOrNil() error {
	return flaterrors.Join(v.errs...)
}

// ValidateRequired returns an error when a required string field is
// empty.
func ValidateRequired(value, field, context string) error {
	if value == "" {
		return fmt.Errorf("%s: %s is required", context, field)
	}
	return nil
}

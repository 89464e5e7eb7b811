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

// Package flaterrors joins errors into a single flat error.
//
// Unlike errors.Join, nesting Join calls never produces a tree: joined
// errors are flattened into one level, so errors.Is works across any
// number of Join layers and the message stays a simple newline list.
package flaterrors

import "errors"

// Join returns an error wrapping the given non-nil errors as a single
// flat list. Errors that are themselves the result of a Join (anything
// implementing `Unwrap() []error`) are flattened into the list.
// Returns nil if every argument is nil.
func Join(errs ...error) error {
	flat := make([]error, 0, len(errs))
	for _, err := range errs {
		flat = appendFlat(flat, err)
	}
	if len(flat) == 0 {
		return nil
	}
	return errors.Join(flat...)
}

func appendFlat(dst []error, err error) []error {
	if err == nil {
		return dst
	}
	if multi, ok := err.(interface{ Unwrap() []error }); ok {
		for _, sub := range multi.Unwrap() {
			dst = appendFlat(dst, sub)
		}
		return dst
	}
	return append(dst, err)
}

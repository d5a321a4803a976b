/*
Copyright © 2026 Red Hat, Inc.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package calculator

import "fmt"

// StorageError represents an error when reading from or writing into the
// calculation history storage
type StorageError struct {
	Msg string
	Err error
}

func (e *StorageError) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return e.Msg + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ProducerError represents an error when calculation event can not be
// published
type ProducerError struct {
	Msg string
	Err error
}

func (e *ProducerError) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return e.Msg + ": " + e.Err.Error()
}

func (e *ProducerError) Unwrap() error {
	return e.Err
}

// ConfigurationError is related to wrong or missing configuration
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string {
	return e.Msg
}

// ExpressionTooLongError is returned for expressions exceeding the
// configured max length
type ExpressionTooLongError struct {
	Length int
	Limit  int
}

func (e *ExpressionTooLongError) Error() string {
	return fmt.Sprintf("expression is too long (%d characters, limit is %d)", e.Length, e.Limit)
}

// Copyright 2026 Ewout Prangsma
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
//
// Author Ewout Prangsma
//

package model

import (
	"github.com/pkg/errors"
)

var (
	ValidationError       = errors.New("validation failed")
	IsValidation          = isErrorFunc(ValidationError)
	InvalidArgumentError  = errors.New("invalid argument")
	IsInvalidArgument     = isErrorFunc(InvalidArgumentError)
	InvalidPinError       = errors.New("invalid pin")
	IsInvalidPin          = isErrorFunc(InvalidPinError)
	InvalidDirectionError = errors.New("invalid direction")
	IsInvalidDirection    = isErrorFunc(InvalidDirectionError)
	ProviderClosedError   = errors.New("provider closed")
	IsProviderClosed      = isErrorFunc(ProviderClosedError)
	NotFoundError         = errors.New("not found")
	IsNotFound            = isErrorFunc(NotFoundError)

	maskAny = errors.WithStack
)

func isErrorFunc(typeOfError error) func(err error) bool {
	return func(err error) bool {
		return err == typeOfError || errors.Cause(err) == typeOfError
	}
}

// InvalidArgument creates a new error that is a cause of InvalidArgumentError.
func InvalidArgument(msg string, args ...interface{}) error {
	return errors.Wrapf(InvalidArgumentError, msg, args...)
}

// NotFound creates a new error that is a cause of NotFoundError.
func NotFound(msg string, args ...interface{}) error {
	return errors.Wrapf(NotFoundError, msg, args...)
}

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

package mocks

import (
	types "github.com/RedHatInsights/rpn-calculator/types"
	mock "github.com/stretchr/testify/mock"
)

// Storage is a mock type for the Storage type
type Storage struct {
	mock.Mock
}

// Close provides a mock function with given fields:
func (_m *Storage) Close() error {
	ret := _m.Called()

	var r0 error
	if rf, ok := ret.Get(0).(func() error); ok {
		r0 = rf()
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// Init provides a mock function with given fields:
func (_m *Storage) Init() error {
	ret := _m.Called()

	var r0 error
	if rf, ok := ret.Get(0).(func() error); ok {
		r0 = rf()
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// WriteCalculationRecord provides a mock function with given fields: record
func (_m *Storage) WriteCalculationRecord(record types.CalculationRecord) error {
	ret := _m.Called(record)

	var r0 error
	if rf, ok := ret.Get(0).(func(types.CalculationRecord) error); ok {
		r0 = rf(record)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// ReadLatestCalculations provides a mock function with given fields: limit
func (_m *Storage) ReadLatestCalculations(limit int) ([]types.CalculationRecord, error) {
	ret := _m.Called(limit)

	var r0 []types.CalculationRecord
	if rf, ok := ret.Get(0).(func(int) []types.CalculationRecord); ok {
		r0 = rf(limit)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]types.CalculationRecord)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(int) error); ok {
		r1 = rf(limit)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// PrintOldCalculationsForCleanup provides a mock function with given fields: maxAge
func (_m *Storage) PrintOldCalculationsForCleanup(maxAge string) error {
	ret := _m.Called(maxAge)

	var r0 error
	if rf, ok := ret.Get(0).(func(string) error); ok {
		r0 = rf(maxAge)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// CleanupOldCalculations provides a mock function with given fields: maxAge
func (_m *Storage) CleanupOldCalculations(maxAge string) (int, error) {
	ret := _m.Called(maxAge)

	var r0 int
	if rf, ok := ret.Get(0).(func(string) int); ok {
		r0 = rf(maxAge)
	} else {
		r0 = ret.Get(0).(int)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(string) error); ok {
		r1 = rf(maxAge)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

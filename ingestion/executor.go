// Copyright 2025 Studium Labs
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


package ingestion

import (
	"github.com/panjf2000/ants/v2"
)

// Executor schedules background tasks for the pipeline. The default
// implementation is backed by a bounded goroutine pool; tests substitute a
// synchronous executor to make processing deterministic.
type Executor interface {
	// Submit schedules task for execution. Returns an error if the task
	// cannot be scheduled.
	Submit(task func()) error

	// Release stops the executor and frees its resources.
	Release()
}

// PoolExecutor is an Executor backed by an ants goroutine pool.
type PoolExecutor struct {
	pool *ants.Pool
}

var _ Executor = (*PoolExecutor)(nil)

// NewPoolExecutor creates an executor with the given number of workers.
func NewPoolExecutor(size int) (*PoolExecutor, error) {
	if size < 1 {
		size = 1
	}
	pool, err := ants.NewPool(size)
	if err != nil {
		return nil, err
	}
	return &PoolExecutor{pool: pool}, nil
}

// Submit schedules task on the pool.
func (e *PoolExecutor) Submit(task func()) error {
	return e.pool.Submit(task)
}

// Release stops the pool. Pending tasks are abandoned.
func (e *PoolExecutor) Release() {
	e.pool.Release()
}

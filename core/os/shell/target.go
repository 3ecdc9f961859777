// Copyright (C) 2017 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package shell

import "context"

// Target is the abstraction of a place a Cmd can be run.
type Target interface {
	// Start begins executing cmd on this target, returning a handle to the
	// running process.
	Start(cmd Cmd) (Process, error)
}

// Process is a handle to a command running on a Target.
type Process interface {
	// Wait blocks until the process exits or ctx is cancelled, in which case
	// the process is killed and ctx.Err() is returned.
	Wait(ctx context.Context) error
	// Kill terminates the process immediately.
	Kill() error
}

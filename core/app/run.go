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

// Package app provides the common bootstrap used by the command line tools:
// panic-safe startup, a cancellable root context and Ctrl-C handling.
package app

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/evangelionxyz/ShaderMake/core/app/crash"
	"github.com/evangelionxyz/ShaderMake/core/log"
)

func init() {
	crash.Register(onCrash)
}

// Main is the entry point of a command line tool. It receives a cancellable
// root context that is closed when the process receives an interrupt signal.
type Main func(ctx context.Context) error

// Run performs the common startup of a command line tool: it installs a
// panic handler, builds a logging context tagged with the process name, and
// wires SIGINT (os.Interrupt) into context cancellation before invoking main.
//
// If main returns a non-nil error, it is logged at Error severity and the
// process exits with status 1.
func Run(main Main) {
	defer func() {
		if e := recover(); e != nil {
			crash.Crash(e)
		}
	}()

	ctx := context.Background()
	ctx = log.PutProcess(ctx, filepath.Base(os.Args[0]))

	ctx, cancel := context.WithCancel(ctx)
	sigchan := make(chan os.Signal, 1)
	signal.Notify(sigchan, os.Interrupt)
	crash.Go(func() {
		if _, ok := <-sigchan; ok {
			log.W(ctx, "Interrupted, shutting down")
			cancel()
		}
	})
	defer func() {
		signal.Stop(sigchan)
		close(sigchan)
		cancel()
	}()

	if err := main(ctx); err != nil {
		log.E(ctx, "%v", err)
		os.Exit(1)
	}
}

/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package azcli runs Azure CLI commands under a hard wall-clock timeout.
package azcli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/carverauto/azure-inventory/pkg/logger"
)

const defaultTimeout = 30 * time.Second

// ErrTimeout reports that a CLI invocation hit its wall-clock cap. It is
// a distinguishable condition rather than a hang: callers degrade, they
// never wait past the deadline.
var ErrTimeout = errors.New("az command timed out")

// CLIRunner is the production Runner. Timeout applies per invocation;
// there are no retries.
type CLIRunner struct {
	Binary  string
	Timeout time.Duration
	Logger  logger.Logger
}

// NewCLIRunner creates a Runner that shells out to the given binary
// (normally "az") with the given per-call timeout.
func NewCLIRunner(binary string, timeout time.Duration, log logger.Logger) *CLIRunner {
	if binary == "" {
		binary = "az"
	}

	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &CLIRunner{
		Binary:  binary,
		Timeout: timeout,
		Logger:  log,
	}
}

// Run executes the command and returns its exit status and captured
// output. A non-zero exit is reported through Result.ExitCode, not as an
// error; the returned error is reserved for the timeout condition and
// failures to start the process at all.
func (r *CLIRunner) Run(ctx context.Context, args ...string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.Binary, args...)

	// If a child of az survives the kill and keeps the output pipes
	// open, give up on them instead of waiting past the deadline.
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if ctx.Err() == context.DeadlineExceeded {
		r.Logger.Warn().
			Str("binary", r.Binary).
			Dur("elapsed", elapsed).
			Msg("Command timed out")

		return nil, fmt.Errorf("%w after %s", ErrTimeout, r.Timeout)
	}

	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("failed to run %s: %w", r.Binary, err)
		}

		r.Logger.Debug().
			Int("exit_code", exitErr.ExitCode()).
			Dur("elapsed", elapsed).
			Msg("Command exited non-zero")

		return &Result{
			ExitCode: exitErr.ExitCode(),
			Stdout:   stdout.Bytes(),
			Stderr:   stderr.Bytes(),
		}, nil
	}

	return &Result{
		ExitCode: 0,
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
	}, nil
}

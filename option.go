/*
 * Copyright 2025 The RuleGo Authors.
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

package batchops

import (
	"io"
	"time"

	"github.com/rulego/batchops/condition"
	"github.com/rulego/batchops/host"
	"github.com/rulego/batchops/logger"
	"github.com/rulego/batchops/types"
)

// Option configures a Batch.
type Option func(*Batch)

// WithLogger sets the logger used by the categories and their operations.
//
// Example:
//
//	b, err := batchops.New(h, batchops.WithLogger(logger.NewLogger(logger.DEBUG, os.Stderr)))
func WithLogger(log logger.Logger) Option {
	return func(b *Batch) {
		b.log = log
	}
}

// WithLogLevel sets the level of the default logger.
func WithLogLevel(level logger.Level) Option {
	return func(b *Batch) {
		logger.GetDefault().SetLevel(level)
	}
}

// WithLogOutput writes logs to output at level.
func WithLogOutput(output io.Writer, level logger.Level) Option {
	return func(b *Batch) {
		b.log = logger.NewLogger(level, output)
	}
}

// WithDiscardLog disables logging.
func WithDiscardLog() Option {
	return func(b *Batch) {
		b.log = logger.NewDiscardLogger()
	}
}

// WithPreferences shares prefs with the batch. Edits made through the pointer
// later are seen by every category.
//
// Example:
//
//	prefs, err := types.LoadPreferences("batchops.yaml")
//	if err != nil {
//		return err
//	}
//	b, err := batchops.New(h, batchops.WithPreferences(&prefs))
func WithPreferences(prefs *types.Preferences) Option {
	return func(b *Batch) {
		b.prefs = prefs
	}
}

// WithClock replaces time.Now in the refresh throttle.
func WithClock(now func() time.Time) Option {
	return func(b *Batch) {
		b.now = now
	}
}

// WithFilter restricts the rows of one category to entities accepted by cond.
//
// Example:
//
//	cond, err := condition.NewExprCondition(`like_match(name, "Wood%")`)
//	if err != nil {
//		return err
//	}
//	b, err := batchops.New(h, batchops.WithFilter(host.Material, cond))
func WithFilter(kind host.Kind, cond condition.Condition) Option {
	return func(b *Batch) {
		b.filters[kind] = cond
	}
}

// WithSyncHook registers a callback run whenever synchronization changes the
// options of a category. The UI uses it to redraw; calling back into
// SyncOptions from it is a no-op.
func WithSyncHook(fn func(b *Batch, kind host.Kind)) Option {
	return func(b *Batch) {
		b.onSync = fn
	}
}

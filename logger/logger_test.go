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

package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelString(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{DEBUG, "DEBUG"},
		{INFO, "INFO"},
		{WARN, "WARN"},
		{ERROR, "ERROR"},
		{OFF, "OFF"},
		{Level(999), "UNKNOWN"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.level.String())
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLevel("debug"))
	assert.Equal(t, WARN, ParseLevel(" Warning "))
	assert.Equal(t, ERROR, ParseLevel("ERROR"))
	assert.Equal(t, OFF, ParseLevel("none"))
	assert.Equal(t, INFO, ParseLevel("verbose"))
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WARN, &buf)

	l.Debug("debug %d", 1)
	l.Info("info %d", 2)
	assert.Empty(t, buf.String())

	l.Warn("skipped %s", "Cube")
	assert.Contains(t, buf.String(), "[WARN] skipped Cube")

	buf.Reset()
	l.SetLevel(OFF)
	l.Error("boom")
	assert.Empty(t, buf.String())
}

func TestNamedLogger(t *testing.T) {
	var buf bytes.Buffer
	l := Named(NewLogger(DEBUG, &buf), "materials")
	l.Info("purged %d", 3)
	assert.True(t, strings.Contains(buf.String(), "[INFO] [materials] purged 3"))

	d := NewDiscardLogger()
	assert.Same(t, d, Named(d, "x"))
}

func TestDefaultLogger(t *testing.T) {
	prev := GetDefault()
	defer SetDefault(prev)

	var buf bytes.Buffer
	SetDefault(NewLogger(DEBUG, &buf))
	Debug("a")
	Info("b")
	Warn("c")
	Error("d")
	out := buf.String()
	for _, s := range []string{"[DEBUG] a", "[INFO] b", "[WARN] c", "[ERROR] d"} {
		assert.Contains(t, out, s)
	}
}

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

package types

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/rulego/batchops/host"
	"github.com/rulego/batchops/operations"
	"github.com/rulego/batchops/utils/cast"
)

// EnvPrefix prefixes every environment override read by ApplyEnv.
const EnvPrefix = "BATCHOPS_"

// Preferences holds the settings shared by all categories
type Preferences struct {
	RefreshInterval    float64 `json:"refresh_interval" yaml:"refresh_interval"`         // auto-refresh interval in seconds
	AutoRefresh        bool    `json:"autorefresh" yaml:"autorefresh"`                   // throttled refresh on redraw
	DefaultSelectState bool    `json:"default_select_state" yaml:"default_select_state"` // row inclusion after the idname set changes
	UseRenamePopup     bool    `json:"use_rename_popup" yaml:"use_rename_popup"`         // rename in a separate dialog
	LogLevel           string  `json:"log_level" yaml:"log_level"`                       // when set, the batch logs to stderr at this level

	Modifiers Options `json:"modifiers" yaml:"modifiers"`
	Materials Options `json:"materials" yaml:"materials"`
	Groups    Options `json:"groups" yaml:"groups"`
}

// Options holds the per-category settings
type Options struct {
	SearchIn             string `json:"search_in" yaml:"search_in"`                         // scope name, see host.ParseScope
	PasteMode            string `json:"paste_mode" yaml:"paste_mode"`                       // SET, OR or AND
	Synchronized         bool   `json:"synchronized" yaml:"synchronized"`                   // share copy, paste and options
	SynchronizeSelection bool   `json:"synchronize_selection" yaml:"synchronize_selection"` // select across the whole file
	PrioritizeSelection  bool   `json:"prioritize_selection" yaml:"prioritize_selection"`
	AutoRefresh          bool   `json:"autorefresh" yaml:"autorefresh"`
	RemoveDisabled       bool   `json:"remove_disabled" yaml:"remove_disabled"` // drop disabled modifiers on apply
}

// DefaultOptions returns the settings a category starts with
func DefaultOptions() Options {
	return Options{
		SearchIn:    host.Selection.String(),
		PasteMode:   string(operations.PasteSet),
		AutoRefresh: true,
	}
}

// DefaultPreferences returns the default preferences
func DefaultPreferences() Preferences {
	modifiers := DefaultOptions()
	modifiers.RemoveDisabled = true
	return Preferences{
		RefreshInterval:    0.5,
		AutoRefresh:        true,
		DefaultSelectState: true,
		UseRenamePopup:     true,
		Modifiers:          modifiers,
		Materials:          DefaultOptions(),
		Groups:             DefaultOptions(),
	}
}

// ManualRefreshPreferences disables auto-refresh; categories rescan only
// when forced or tagged.
func ManualRefreshPreferences() Preferences {
	p := DefaultPreferences()
	p.AutoRefresh = false
	return p
}

// SynchronizedPreferences links all three categories so that copy, paste
// and option changes propagate between them.
func SynchronizedPreferences() Preferences {
	p := DefaultPreferences()
	for _, kind := range host.Kinds() {
		p.Options(kind).Synchronized = true
	}
	return p
}

// Interval returns RefreshInterval as a duration
func (p *Preferences) Interval() time.Duration {
	return time.Duration(p.RefreshInterval * float64(time.Second))
}

// Options returns the options of a category. It never returns nil for a
// known kind.
func (p *Preferences) Options(kind host.Kind) *Options {
	switch kind {
	case host.Modifier:
		return &p.Modifiers
	case host.Material:
		return &p.Materials
	case host.Group:
		return &p.Groups
	}
	return nil
}

// Validate checks ranges and enum values.
func (p *Preferences) Validate() error {
	if p.RefreshInterval < 0 {
		return fmt.Errorf("refresh_interval must not be negative, got %v", p.RefreshInterval)
	}
	for _, kind := range host.Kinds() {
		if err := p.Options(kind).Validate(); err != nil {
			return fmt.Errorf("%s: %w", kind.Plural(), err)
		}
	}
	return nil
}

// Validate checks that SearchIn and PasteMode name known values.
func (o *Options) Validate() error {
	if _, err := o.Scope(); err != nil {
		return err
	}
	if _, err := operations.ParsePasteMode(o.PasteMode); err != nil {
		return err
	}
	return nil
}

// Scope parses SearchIn.
func (o *Options) Scope() (host.Scope, error) {
	return host.ParseScope(o.SearchIn)
}

// Paste parses PasteMode, falling back to SET.
func (o *Options) Paste() operations.PasteMode {
	m, err := operations.ParsePasteMode(o.PasteMode)
	if err != nil {
		return operations.PasteSet
	}
	return m
}

// CopySyncFields copies the fields that synchronized categories share.
func (o *Options) CopySyncFields(src Options) {
	o.SynchronizeSelection = src.SynchronizeSelection
	o.PrioritizeSelection = src.PrioritizeSelection
	o.AutoRefresh = src.AutoRefresh
	o.PasteMode = src.PasteMode
	o.SearchIn = src.SearchIn
}

// LoadPreferences reads a YAML or JSON file over the defaults. Both formats
// use the same snake_case keys.
func LoadPreferences(path string) (Preferences, error) {
	p := DefaultPreferences()
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("load preferences: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse preferences %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return p, fmt.Errorf("invalid preferences %s: %w", path, err)
	}
	return p, nil
}

// ApplyEnv loads the given .env files (".env" when none is given; missing
// files are ignored) and overrides preferences from BATCHOPS_* variables.
// Per-category variables are prefixed with the category name, e.g.
// BATCHOPS_MATERIALS_PASTE_MODE.
func (p *Preferences) ApplyEnv(envFiles ...string) error {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load env: %w", err)
	}
	var errs []error
	setFloat(&errs, "REFRESH_INTERVAL", &p.RefreshInterval)
	setBool(&errs, "AUTOREFRESH", &p.AutoRefresh)
	setBool(&errs, "DEFAULT_SELECT_STATE", &p.DefaultSelectState)
	setBool(&errs, "USE_RENAME_POPUP", &p.UseRenamePopup)
	setString("LOG_LEVEL", &p.LogLevel)
	for _, kind := range host.Kinds() {
		o := p.Options(kind)
		prefix := strings.ToUpper(kind.Plural()) + "_"
		setString(prefix+"SEARCH_IN", &o.SearchIn)
		setString(prefix+"PASTE_MODE", &o.PasteMode)
		setBool(&errs, prefix+"SYNCHRONIZED", &o.Synchronized)
		setBool(&errs, prefix+"SYNCHRONIZE_SELECTION", &o.SynchronizeSelection)
		setBool(&errs, prefix+"PRIORITIZE_SELECTION", &o.PrioritizeSelection)
		setBool(&errs, prefix+"AUTOREFRESH", &o.AutoRefresh)
		setBool(&errs, prefix+"REMOVE_DISABLED", &o.RemoveDisabled)
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	return p.Validate()
}

func setString(name string, dst *string) {
	if v, ok := os.LookupEnv(EnvPrefix + name); ok {
		*dst = v
	}
}

func setBool(errs *[]error, name string, dst *bool) {
	v, ok := os.LookupEnv(EnvPrefix + name)
	if !ok {
		return
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
		return
	}
	*dst = b
}

func setFloat(errs *[]error, name string, dst *float64) {
	v, ok := os.LookupEnv(EnvPrefix + name)
	if !ok {
		return
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
		return
	}
	*dst = f
}

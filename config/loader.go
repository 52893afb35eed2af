/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

package config

import (
	"io"
)

// Loader reads configuration data into its DataProvider and populates
// configuration objects from it, applying their defaults first.
type Loader struct {
	DataProvider DataProvider
}

// NewDefaultLoader creates a new configuration loader on top of ViperAdapter
// with reading from environment variables enabled.
func NewDefaultLoader(envVarsPrefix string) *Loader {
	va := NewViperAdapter()
	va.UseEnvVars(envVarsPrefix)
	return NewLoader(va)
}

// NewLoader creates a new configuration loader.
func NewLoader(dp DataProvider) *Loader {
	return &Loader{dp}
}

// LoadFromFile reads configuration data from the file and populates the passed configuration objects.
func (l *Loader) LoadFromFile(path string, dataType DataType, cfg Config, cfgs ...Config) error {
	if err := l.DataProvider.SetFromFile(path, dataType); err != nil {
		return err
	}
	return l.load(append([]Config{cfg}, cfgs...))
}

// LoadFromReader reads configuration data from the reader and populates the passed configuration objects.
func (l *Loader) LoadFromReader(reader io.Reader, dataType DataType, cfg Config, cfgs ...Config) error {
	if err := l.DataProvider.SetFromReader(reader, dataType); err != nil {
		return err
	}
	return l.load(append([]Config{cfg}, cfgs...))
}

// load applies defaults for all objects before any Set call.
func (l *Loader) load(cfgs []Config) error {
	dps := make([]DataProvider, len(cfgs))
	for i, cfg := range cfgs {
		dps[i] = l.providerFor(cfg)
		cfg.SetProviderDefaults(dps[i])
	}
	for i, cfg := range cfgs {
		if err := cfg.Set(dps[i]); err != nil {
			return err
		}
	}
	return nil
}

func (l *Loader) providerFor(cfg Config) DataProvider {
	if kpp, ok := cfg.(KeyPrefixProvider); ok && kpp.KeyPrefix() != "" {
		return NewKeyPrefixedDataProvider(l.DataProvider, kpp.KeyPrefix())
	}
	return l.DataProvider
}

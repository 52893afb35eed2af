/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

package config

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"code.cloudfoundry.org/bytefmt"
	"gopkg.in/yaml.v3"
)

// TimeDuration is a time duration for configuration structures.
// It unmarshals from a bare number of milliseconds as well as from
// human-readable strings like "30s" or "1h30m", and marshals back
// to the human-readable form. Negative durations are rejected.
type TimeDuration time.Duration

// UnmarshalJSON implements the json.Unmarshaler interface.
func (d *TimeDuration) UnmarshalJSON(data []byte) error {
	return d.set(strings.Trim(string(data), `"`))
}

// UnmarshalYAML implements the yaml.Unmarshaler interface.
func (d *TimeDuration) UnmarshalYAML(value *yaml.Node) error {
	var num int64
	if err := value.Decode(&num); err == nil {
		return d.setMillis(num)
	}
	var raw string
	if err := value.Decode(&raw); err == nil {
		return d.setString(raw)
	}
	return fmt.Errorf("invalid time duration format: %v", value)
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
// It makes the type compatible with mapstructure.TextUnmarshallerHookFunc.
func (d *TimeDuration) UnmarshalText(text []byte) error {
	return d.set(string(text))
}

func (d *TimeDuration) set(raw string) error {
	if num, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return d.setMillis(num)
	}
	return d.setString(raw)
}

func (d *TimeDuration) setMillis(num int64) error {
	if num < 0 {
		return fmt.Errorf("negative value is not allowed: %d", num)
	}
	*d = TimeDuration(time.Duration(num) * time.Millisecond)
	return nil
}

func (d *TimeDuration) setString(raw string) error {
	dur, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid time duration format (%s): %w", raw, err)
	}
	*d = TimeDuration(dur)
	return nil
}

// String implements the fmt.Stringer interface.
func (d TimeDuration) String() string {
	return time.Duration(d).String()
}

// MarshalJSON implements the json.Marshaler interface.
// The duration is encoded in the human-readable form.
func (d TimeDuration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// MarshalYAML implements the yaml.Marshaler interface.
// The duration is encoded in the human-readable form.
func (d TimeDuration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

// MarshalText implements the encoding.TextMarshaler interface.
// The duration is encoded in the human-readable form.
func (d TimeDuration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// BytesCount is a byte size for configuration structures.
// It unmarshals from a bare number of bytes as well as from human-readable
// strings like "256M" or "16Mi", and marshals back to the human-readable form.
type BytesCount uint64

// UnmarshalJSON implements the json.Unmarshaler interface.
func (b *BytesCount) UnmarshalJSON(data []byte) error {
	return b.set(strings.Trim(string(data), `"`))
}

// UnmarshalYAML implements the yaml.Unmarshaler interface.
func (b *BytesCount) UnmarshalYAML(value *yaml.Node) error {
	var num uint64
	if err := value.Decode(&num); err == nil {
		*b = BytesCount(num)
		return nil
	}
	var raw string
	if err := value.Decode(&raw); err == nil {
		parsed, parseErr := parseBytesCountFromString(raw)
		if parseErr != nil {
			return parseErr
		}
		*b = parsed
		return nil
	}
	return fmt.Errorf("invalid byte size format: %v", value)
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
// It makes the type compatible with mapstructure.TextUnmarshallerHookFunc.
func (b *BytesCount) UnmarshalText(text []byte) error {
	return b.set(string(text))
}

func (b *BytesCount) set(raw string) error {
	if num, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if num < 0 {
			return fmt.Errorf("negative value is not allowed: %d", num)
		}
		*b = BytesCount(num)
		return nil
	}
	parsed, err := parseBytesCountFromString(raw)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// String implements the fmt.Stringer interface.
func (b BytesCount) String() string {
	return bytefmt.ByteSize(uint64(b))
}

// MarshalJSON implements the json.Marshaler interface.
// The size is encoded in the human-readable form.
func (b BytesCount) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

// MarshalYAML implements the yaml.Marshaler interface.
// The size is encoded in the human-readable form.
func (b BytesCount) MarshalYAML() (interface{}, error) {
	return b.String(), nil
}

// MarshalText implements the encoding.TextMarshaler interface.
// The size is encoded in the human-readable form.
func (b *BytesCount) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// k8sSizeSuffixes are the power-of-two units with a trailing "i" (as in "64Mi").
// bytefmt understands the plain forms, so the "i" is dropped before parsing.
var k8sSizeSuffixes = [...]string{"Ki", "Mi", "Gi", "Ti", "Pi", "Ei"}

func parseBytesCountFromString(s string) (BytesCount, error) {
	v := strings.TrimSpace(s)
	for _, suffix := range k8sSizeSuffixes {
		if strings.HasSuffix(v, suffix) {
			v = strings.TrimSuffix(v, "i")
			break
		}
	}

	num, err := bytefmt.ToBytes(v)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size format (%s): %w", s, err)
	}
	return BytesCount(num), nil
}

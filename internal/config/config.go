// Package config manages the two on-disk configuration surfaces the
// engine reads: the plain-text key/value process settings file and the
// JSON catalog-credentials file.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"shortcircuitcalc/internal/errs"
	"shortcircuitcalc/internal/numeric"
)

// Decimal is re-exported so callers of this package never need to
// import internal/numeric directly for config values.
type Decimal = numeric.Decimal

// Value is a config value round-tripped through the literal conventions
// of spec.md §4.1/§6.2: bare "True"/"False" for booleans, a bare
// integer for ints, `Decimal('…')` for decimals, and a quoted string
// otherwise.
type Value struct {
	raw string
	// exactly one of the following is meaningful, selected by kind.
	kind    valueKind
	boolV   bool
	intV    int64
	decV    Decimal
	stringV string
}

type valueKind int

const (
	kindString valueKind = iota
	kindBool
	kindInt
	kindDecimal
)

var decimalLiteral = regexp.MustCompile(`^Decimal\('([^']*)'\)$`)

func parseValue(token string) Value {
	token = strings.TrimSpace(token)

	if m := decimalLiteral.FindStringSubmatch(token); m != nil {
		if d, err := numeric.NewFromString(m[1]); err == nil {
			return Value{raw: token, kind: kindDecimal, decV: d}
		}
	}

	switch token {
	case "True", "true":
		return Value{raw: token, kind: kindBool, boolV: true}
	case "False", "false":
		return Value{raw: token, kind: kindBool, boolV: false}
	}

	if i, err := strconv.ParseInt(token, 10, 64); err == nil {
		return Value{raw: token, kind: kindInt, intV: i}
	}

	unquoted := token
	if len(token) >= 2 {
		if (token[0] == '\'' && token[len(token)-1] == '\'') ||
			(token[0] == '"' && token[len(token)-1] == '"') {
			unquoted = token[1 : len(token)-1]
		}
	}
	return Value{raw: token, kind: kindString, stringV: unquoted}
}

// Bool returns the value as a bool and whether it was stored as one.
func (v Value) Bool() (bool, bool) { return v.boolV, v.kind == kindBool }

// Int returns the value as an int64 and whether it was stored as one.
func (v Value) Int() (int64, bool) { return v.intV, v.kind == kindInt }

// Dec returns the value as a Decimal and whether it was stored as one.
func (v Value) Dec() (Decimal, bool) { return v.decV, v.kind == kindDecimal }

// String returns the value's string form regardless of kind.
func (v Value) String() string {
	switch v.kind {
	case kindBool:
		if v.boolV {
			return "True"
		}
		return "False"
	case kindInt:
		return strconv.FormatInt(v.intV, 10)
	case kindDecimal:
		return v.decV.String()
	default:
		return v.stringV
	}
}

// literal renders v back into the file's literal syntax.
func (v Value) literal() string {
	switch v.kind {
	case kindBool, kindInt:
		return v.String()
	case kindDecimal:
		return fmt.Sprintf("Decimal('%s')", v.decV.String())
	default:
		return "'" + v.stringV + "'"
	}
}

// BoolValue, IntValue, DecValue and StringValue build literal Values
// for Set, mirroring how the process constructs new config entries.
func BoolValue(b bool) Value   { return Value{kind: kindBool, boolV: b} }
func IntValue(i int64) Value   { return Value{kind: kindInt, intV: i} }
func DecValue(d Decimal) Value { return Value{kind: kindDecimal, decV: d} }
func StringValue(s string) Value {
	return Value{kind: kindString, stringV: s}
}

// ConfigStore is a plain-text key/value configuration file where each
// line matches `NAME = value`. Reads and writes preserve unrelated
// lines byte-for-byte (spec.md §4.1, §6.2).
type ConfigStore struct {
	path string
}

// NewConfigStore opens (without reading) the config file at path.
func NewConfigStore(path string) *ConfigStore {
	return &ConfigStore{path: path}
}

func lineMatcher(key string) *regexp.Regexp {
	return regexp.MustCompile(`(?m)^(` + regexp.QuoteMeta(key) + `) = (.+)$`)
}

// Get returns the current value of key, or ok=false if the key is
// absent from the file.
func (c *ConfigStore) Get(key string) (Value, bool, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return Value{}, false, errs.Wrap(errs.ConfigError, err, "read config %q", c.path)
	}
	m := lineMatcher(key).FindStringSubmatch(string(data))
	if m == nil {
		return Value{}, false, nil
	}
	return parseValue(m[2]), true, nil
}

// Set writes a new value for key, replacing only that line and leaving
// every other byte of the file untouched. The key must already exist
// in the file.
func (c *ConfigStore) Set(key string, val Value) error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return errs.Wrap(errs.ConfigError, err, "read config %q", c.path)
	}
	content := string(data)
	re := lineMatcher(key)
	m := re.FindStringSubmatch(content)
	if m == nil {
		return errs.New(errs.ConfigError, "config key %q not found in %q", key, c.path)
	}
	replacement := fmt.Sprintf("%s = %s", key, val.literal())
	updated := strings.Replace(content, m[0], replacement, 1)
	if err := os.WriteFile(c.path, []byte(updated), 0o644); err != nil {
		return errs.Wrap(errs.ConfigError, err, "write config %q", c.path)
	}
	return nil
}

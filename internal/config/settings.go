package config

import (
	"shortcircuitcalc/internal/errs"
	"shortcircuitcalc/internal/numeric"
)

// Recognized configuration keys (spec.md §3.5). Names are preserved
// verbatim for compatibility with the catalog/CSV collaborators.
const (
	KeySQLiteDBName             = "SQLITE_DB_NAME"
	KeyDBExistingConnection     = "DB_EXISTING_CONNECTION"
	KeyDBTablesClearInstall     = "DB_TABLES_CLEAR_INSTALL"
	KeyEngineEcho               = "ENGINE_ECHO"
	KeySystemPhases             = "SYSTEM_PHASES"
	KeySystemVoltageInKilovolts = "SYSTEM_VOLTAGE_IN_KILOVOLTS"
	KeyCalculationsAccuracy     = "CALCULATIONS_ACCURACY"
)

// BackendKind identifies which catalog backend DB_EXISTING_CONNECTION
// selects. "false" (the Python sentinel for "no backend bound yet") is
// preserved as BackendNone.
type BackendKind string

const (
	BackendMySQL  BackendKind = "MySQL"
	BackendSQLite BackendKind = "SQLite"
	BackendNone   BackendKind = "false"
)

// Settings is a typed view over a ConfigStore, exposing the recognized
// keys of spec.md §3.5 with their declared Go types instead of the
// generic Value wrapper.
type Settings struct {
	store *ConfigStore
}

// NewSettings wraps the config file at path.
func NewSettings(path string) *Settings {
	return &Settings{store: NewConfigStore(path)}
}

func (s *Settings) stringOf(key string) (string, error) {
	v, ok, err := s.store.Get(key)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errs.New(errs.ConfigError, "config key %q not set", key)
	}
	return v.String(), nil
}

// Backend returns the configured DB_EXISTING_CONNECTION.
func (s *Settings) Backend() (BackendKind, error) {
	raw, err := s.stringOf(KeyDBExistingConnection)
	if err != nil {
		return "", err
	}
	switch raw {
	case string(BackendMySQL), string(BackendSQLite), string(BackendNone):
		return BackendKind(raw), nil
	case "False":
		return BackendNone, nil
	default:
		return "", errs.New(errs.ConfigError, "unrecognized %s %q", KeyDBExistingConnection, raw)
	}
}

// SQLiteDBName returns SQLITE_DB_NAME.
func (s *Settings) SQLiteDBName() (string, error) {
	return s.stringOf(KeySQLiteDBName)
}

func (s *Settings) boolOf(key string) (bool, error) {
	v, ok, err := s.store.Get(key)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, errs.New(errs.ConfigError, "config key %q not set", key)
	}
	b, isBool := v.Bool()
	if !isBool {
		return false, errs.New(errs.ConfigError, "config key %q is not a bool", key)
	}
	return b, nil
}

// ClearInstall returns DB_TABLES_CLEAR_INSTALL.
func (s *Settings) ClearInstall() (bool, error) { return s.boolOf(KeyDBTablesClearInstall) }

// EngineEcho returns ENGINE_ECHO.
func (s *Settings) EngineEcho() (bool, error) { return s.boolOf(KeyEngineEcho) }

func (s *Settings) intOf(key string) (int64, error) {
	v, ok, err := s.store.Get(key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, errs.New(errs.ConfigError, "config key %q not set", key)
	}
	i, isInt := v.Int()
	if !isInt {
		return 0, errs.New(errs.ConfigError, "config key %q is not an int", key)
	}
	return i, nil
}

// SystemPhases returns SYSTEM_PHASES (1 or 3).
func (s *Settings) SystemPhases() (int, error) {
	i, err := s.intOf(KeySystemPhases)
	return int(i), err
}

// CalculationsAccuracy returns CALCULATIONS_ACCURACY.
func (s *Settings) CalculationsAccuracy() (int32, error) {
	i, err := s.intOf(KeyCalculationsAccuracy)
	return int32(i), err
}

// SystemVoltageInKilovolts returns SYSTEM_VOLTAGE_IN_KILOVOLTS.
func (s *Settings) SystemVoltageInKilovolts() (numeric.Decimal, error) {
	v, ok, err := s.store.Get(KeySystemVoltageInKilovolts)
	if err != nil {
		return numeric.Decimal{}, err
	}
	if !ok {
		return numeric.Decimal{}, errs.New(errs.ConfigError, "config key %q not set", KeySystemVoltageInKilovolts)
	}
	d, isDec := v.Dec()
	if !isDec {
		return numeric.Decimal{}, errs.New(errs.ConfigError, "config key %q is not a decimal", KeySystemVoltageInKilovolts)
	}
	return d, nil
}

// Set writes a new value for key, preserving the rest of the file.
func (s *Settings) Set(key string, val Value) error {
	return s.store.Set(key, val)
}

package config

import (
	"encoding/json"
	"fmt"
	"os"

	"shortcircuitcalc/internal/errs"
)

// Credentials holds a MySQL login loaded from the JSON document of
// spec.md §6.3: {"credentials": {"login": …, "password": …, "db_name": …}}.
type Credentials struct {
	Login    string `json:"login"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
}

type credentialsFile struct {
	Credentials Credentials `json:"credentials"`
}

// LoadCredentials reads and parses the credentials file at path. If the
// file is absent, the error is ConfigError — callers bound to MySQL
// without a credentials file must fail with that kind per spec.md §6.3.
func LoadCredentials(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ConfigError, err, "credentials file %q is required for MySQL backend", path)
		}
		return nil, errs.Wrap(errs.ConfigError, err, "read credentials %q", path)
	}
	var doc credentialsFile
	if jsonErr := json.Unmarshal(data, &doc); jsonErr != nil {
		return nil, errs.Wrap(errs.ConfigError, jsonErr, "parse credentials %q", path)
	}
	if doc.Credentials.Login == "" || doc.Credentials.DBName == "" {
		return nil, errs.New(errs.ConfigError, "credentials file %q missing login or db_name", path)
	}
	return &doc.Credentials, nil
}

// DSN builds a go-sql-driver/mysql data-source-name string from the
// credentials, connecting over TCP to localhost:3306 the way the
// original program's engine string does.
func (c *Credentials) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(127.0.0.1:3306)/%s?parseTime=true", c.Login, c.Password, c.DBName)
}

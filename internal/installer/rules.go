package installer

import (
	"os"

	"github.com/BurntSushi/toml"

	"shortcircuitcalc/internal/errs"
)

// tableRule is one [[tables]] entry of the optional rules file: the
// minimum row count expected in a table right after its CSV ingest.
type tableRule struct {
	Name    string `toml:"name"`
	MinRows int    `toml:"min_rows"`
}

type rulesFile struct {
	Tables []tableRule `toml:"tables"`
}

// loadRules parses the optional sanity-check overlay at path into a
// table name -> minimum row count map. A missing file is not an error:
// the overlay is optional (SPEC_FULL.md's C8 addendum), unlike the
// catalog CSVs themselves.
func loadRules(path string) (map[string]int, error) {
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	var rf rulesFile
	if _, err := toml.DecodeFile(path, &rf); err != nil {
		return nil, errs.Wrap(errs.ConfigError, err, "parse installer rules %q", path)
	}
	out := make(map[string]int, len(rf.Tables))
	for _, t := range rf.Tables {
		out[t.Name] = t.MinRows
	}
	return out, nil
}

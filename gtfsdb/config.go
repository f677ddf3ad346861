package gtfsdb

import "github.com/ia560/busplanner/internal/appconf"

// Config holds the options of a Client.
type Config struct {
	DBPath  string // SQLite file, or ":memory:"
	Env     appconf.Environment
	verbose bool
}

// NewConfig returns a Config for the database at dbPath.
func NewConfig(dbPath string, env appconf.Environment, verbose bool) Config {
	return Config{
		DBPath:  dbPath,
		Env:     env,
		verbose: verbose,
	}
}

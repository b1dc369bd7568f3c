// Package dotenv discovers a .env file and exports its entries into the
// process environment.
package dotenv

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/subosito/gotenv"

	"github.com/eugenenazirov/bootstrap/internal/paths"
)

// FileName is the name of the file searched for by Find.
const FileName = ".env"

// Find walks up from start to the nearest .env file. When none exists it
// falls back to the user's config directory for app. An empty string means
// nothing was found.
func Find(start, app string) string {
	if path, err := paths.Resolve(start, FileName); err == nil {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}

	if app == "" {
		return ""
	}
	if path, err := paths.UserConfigFile(app, FileName); err == nil {
		return path
	}
	return ""
}

// Read parses the file at path without touching the environment.
func Read(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	env, err := gotenv.StrictParse(f)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", filepath.Base(path))
	}
	return env, nil
}

// Load exports the entries of the file at path. Variables already present in
// the environment are left alone unless override is set. It returns the keys
// that were applied, sorted. An empty path is a no-op.
func Load(path string, override bool) ([]string, error) {
	if path == "" {
		return nil, nil
	}

	env, err := Read(path)
	if err != nil {
		return nil, err
	}

	applied := make([]string, 0, len(env))
	for key, value := range env {
		if _, exists := os.LookupEnv(key); exists && !override {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return nil, errors.Wrapf(err, "set %s", key)
		}
		applied = append(applied, key)
	}
	sort.Strings(applied)

	return applied, nil
}

// Package cli holds flag helpers shared by the staylens commands.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// EnvOverrideVar names a .env file that takes precedence over --env.
const EnvOverrideVar = "STAYLENS_ENV_FILE"

// ErrEnvFileNotFound is returned when none of the candidate files exist.
var ErrEnvFileNotFound = errors.New("env file not found")

// EnvLoader applies a .env file chosen by the --env flag.
type EnvLoader struct {
	path        *string
	defaultPath string
}

// AddEnvFlag registers an --env flag and returns an EnvLoader.
func AddEnvFlag(fs *flag.FlagSet, defaultPath, description string) *EnvLoader {
	if fs == nil {
		fs = flag.CommandLine
	}
	if defaultPath == "" {
		defaultPath = ".env"
	}
	if description == "" {
		description = "Path to the .env file"
	}

	return &EnvLoader{
		path:        fs.String("env", defaultPath, description),
		defaultPath: defaultPath,
	}
}

// Load applies the first existing file out of $STAYLENS_ENV_FILE, --env and the
// default path. File values override the process environment. A file that exists
// but cannot be parsed stops the search.
func (l *EnvLoader) Load() (string, error) {
	if l == nil {
		return "", errors.New("env loader is nil")
	}

	candidates := l.candidates()
	for _, path := range candidates {
		err := godotenv.Overload(path)
		if err == nil {
			return path, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("load env file %s: %w", path, err)
		}
	}
	return "", fmt.Errorf("%w (tried %s)", ErrEnvFileNotFound, strings.Join(candidates, ", "))
}

func (l *EnvLoader) candidates() []string {
	var out []string
	seen := make(map[string]struct{}, 3)
	add := func(path string) {
		path = strings.TrimSpace(path)
		if path == "" {
			return
		}
		if _, dup := seen[path]; dup {
			return
		}
		seen[path] = struct{}{}
		out = append(out, path)
	}

	add(os.Getenv(EnvOverrideVar))
	if l.path != nil {
		add(*l.path)
	}
	add(l.defaultPath)
	return out
}

package cli

import (
	"errors"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"

	"github.com/ardnew/derap/log"
	"github.com/ardnew/derap/pkg"
)

// baseConfig is the base name of the configuration files.
const baseConfig = "config"

// Configuration files below [pkg.ConfigDir].
const (
	jsonConfig = baseConfig + ".json"
	yamlConfig = baseConfig + ".yaml"
)

// envFile is the name of the dotenv files preloaded into the environment.
const envFile = ".env"

// envPrefix returns the prefix of the environment variables that set flags,
// for example DERAP_LOG_LEVEL.
func envPrefix() string {
	return strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(pkg.Prefix()))
}

// envFiles returns the dotenv files to load, most specific first.
func envFiles() []string {
	return []string{envFile, pkg.ConfigPath(envFile)}
}

// loadEnv loads the dotenv files into the environment. Variables that are
// already set are kept, so earlier files and the real environment win.
func loadEnv(names ...string) {
	for _, name := range names {
		err := godotenv.Load(name)

		switch {
		case err == nil:
			log.Debug("loaded environment", slog.String("file", name))
		case errors.Is(err, fs.ErrNotExist):
		default:
			log.Warn("ignoring environment file",
				slog.String("file", name),
				slog.Any("error", err))
		}
	}
}

package observability

import (
	"os"

	"github.com/danmuck/iacctl/internal/logging"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger installs the runtime logger tagged with app. level comes from
// the config file and loses to IACCTL_LOG_LEVEL when that is set.
func InitLogger(app, level string) zerolog.Logger {
	cfg := logging.Resolve(logging.ProfileRuntime)
	if os.Getenv(logging.EnvLogLevel) == "" {
		if lvl, ok := logging.ParseLevel(level); ok {
			cfg.Level = lvl
		}
	}
	logger := logging.Apply(cfg).With().Str("app", app).Logger()
	log.Logger = logger
	return logger
}

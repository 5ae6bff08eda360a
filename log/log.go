package log

import (
	"os"

	logging "github.com/op/go-logging"
)

const module = "docbench"

var (
	log     = logging.MustGetLogger(module)
	leveled logging.LeveledBackend
)

func init() {
	// Callers go through the package-level helpers below, so the
	// reported file:line must skip one frame.
	log.ExtraCalldepth = 1

	var backend logging.Backend = logging.NewLogBackend(os.Stderr, "", 0)
	backend = logging.NewBackendFormatter(backend, GetTextFormat())
	leveled = logging.AddModuleLevel(backend)
	leveled.SetLevel(logging.INFO, module)
	log.SetBackend(leveled)
}

// SetLevel adjusts the minimum level that gets emitted. Unknown names
// fall back to info.
func SetLevel(name string) {
	level, err := logging.LogLevel(name)
	if err != nil {
		log.Warningf("unknown log level %q, using info", name)
		level = logging.INFO
	}
	leveled.SetLevel(level, module)
}

func Debugf(format string, args ...interface{}) {
	log.Debugf(format, args...)
}

func Infof(format string, args ...interface{}) {
	log.Infof(format, args...)
}

func Warningf(format string, args ...interface{}) {
	log.Warningf(format, args...)
}

func Errorf(format string, args ...interface{}) {
	log.Errorf(format, args...)
}

func Warning(args ...interface{}) {
	log.Warning(args...)
}

func Error(args ...interface{}) {
	log.Error(args...)
}

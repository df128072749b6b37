package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New builds the root logger. Development gets readable text output,
// everything else JSON.
func New(level string, development bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	if development {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		log.WithField("level", level).Warn("Unknown log level, using info")
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}

package cli

import (
	"io"

	"github.com/sirupsen/logrus"
)

// NewLogger creates the CLI logger writing to w. Verbose enables debug
// entries; otherwise info and above are shown.
func NewLogger(w io.Writer, verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		DisableColors:    true,
	})
	log.SetLevel(logrus.InfoLevel)
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

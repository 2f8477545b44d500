package command

import (
	"io"

	logging "github.com/op/go-logging"
)

// Log is the logger shared by every glue command.
var Log = logging.MustGetLogger("glue")

var logFormat = logging.MustStringFormatter(`%{message}`)

// SetupLogging sends log messages to w. Debug messages are dropped unless
// verbose is set.
func SetupLogging(w io.Writer, verbose bool) {
	backend := logging.NewLogBackend(w, "", 0)
	leveled := logging.AddModuleLevel(logging.NewBackendFormatter(backend, logFormat))
	if verbose {
		leveled.SetLevel(logging.DEBUG, "")
	} else {
		leveled.SetLevel(logging.INFO, "")
	}
	logging.SetBackend(leveled)
}

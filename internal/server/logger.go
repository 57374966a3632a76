package server

import (
	"io"

	"github.com/nuclio/errors"
	"github.com/nuclio/logger"
	nucliozap "github.com/nuclio/zap"
)

// NewLogger creates a console logger at the named level ("debug", "info",
// "warn" or "error")
func NewLogger(name string, level string, out io.Writer, errOut io.Writer) (logger.Logger, error) {
	loggerInstance, err := nucliozap.NewNuclioZap(name,
		"console",
		nil,
		out,
		errOut,
		nucliozap.GetLevelByName(level))
	if err != nil {
		return nil, errors.Wrap(err, "Failed to create logger")
	}

	return loggerInstance, nil
}

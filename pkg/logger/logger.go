package logger

import "go.uber.org/zap"

// New builds a development logger for local work and a JSON production logger
// everywhere else, and installs it as the zap global.
func New(development bool) (*zap.Logger, error) {
	var (
		log *zap.Logger
		err error
	)
	if development {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(log)
	return log, nil
}

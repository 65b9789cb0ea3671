package logging

import "go.uber.org/zap"

// New builds the process logger with the service name attached to every entry.
func New(service string) *zap.Logger {
	return zap.Must(zap.NewProduction()).With(zap.String("service", service))
}

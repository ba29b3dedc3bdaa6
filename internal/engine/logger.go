package engine

import "github.com/charmbracelet/log"

type schedulerLogger struct {
	log *log.Logger
}

func newLogger() *schedulerLogger {
	return &schedulerLogger{
		log: log.Default().WithPrefix("scheduler"),
	}
}

func (l *schedulerLogger) Debug(msg string, args ...any) {
	l.log.Debug(msg, args...)
}

func (l *schedulerLogger) Error(msg string, args ...any) {
	l.log.Error(msg, args...)
}

func (l *schedulerLogger) Info(msg string, args ...any) {
	l.log.Info(msg, args...)
}

func (l *schedulerLogger) Warn(msg string, args ...any) {
	l.log.Warn(msg, args...)
}

package badger

import "go.uber.org/zap"

// logger adapts badger's printf-style logger onto zap.
type logger struct {
	sugar *zap.SugaredLogger
}

func newLogger(l *zap.Logger) *logger {
	if l == nil {
		l = zap.NewNop()
	}
	return &logger{sugar: l.Named("badger").Sugar()}
}

func (b *logger) Errorf(msg string, args ...any) {
	b.sugar.Errorf(msg, args...)
}

func (b *logger) Warningf(msg string, args ...any) {
	b.sugar.Warnf(msg, args...)
}

func (b *logger) Infof(msg string, args ...any) {
	b.sugar.Infof(msg, args...)
}

func (b *logger) Debugf(msg string, args ...any) {
	b.sugar.Debugf(msg, args...)
}

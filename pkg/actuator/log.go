package actuator

import (
	"context"

	"go.uber.org/zap"

	"github.com/gwillem/hanoiarm/pkg/choreo"
)

// Logged wraps a publisher and logs every command at debug level.
type Logged struct {
	next   choreo.Publisher
	logger *zap.Logger
}

// WithLogging wraps next.
func WithLogging(next choreo.Publisher, logger *zap.Logger) *Logged {
	return &Logged{next: next, logger: logger.Named("actuator")}
}

// PublishTarget implements choreo.Publisher.
func (l *Logged) PublishTarget(ctx context.Context, t choreo.Target) error {
	err := l.next.PublishTarget(ctx, t)
	l.logger.Debug("target",
		zap.Float64("x", t.X),
		zap.Float64("y", t.Y),
		zap.Float64("z", t.Z),
		zap.Float64("roll", t.Roll),
		zap.Float64("pitch", t.Pitch),
		zap.Error(err))
	return err
}

// PublishHand implements choreo.Publisher.
func (l *Logged) PublishHand(ctx context.Context, h choreo.HandPos) error {
	err := l.next.PublishHand(ctx, h)
	l.logger.Debug("hand", zap.Float64("width", h.Width), zap.Error(err))
	return err
}

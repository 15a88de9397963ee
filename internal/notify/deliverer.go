package notify

import (
	"context"

	"github.com/alexanderramin/buildtrack/internal/domain"
	"github.com/rs/zerolog"
)

// LogDeliverer reports each delivery as a structured log line.
type LogDeliverer struct {
	log zerolog.Logger
}

func NewLogDeliverer(log zerolog.Logger) *LogDeliverer {
	return &LogDeliverer{log: log}
}

func (l *LogDeliverer) Deliver(_ context.Context, to domain.Recipient, message string) error {
	l.log.Info().
		Int64("user_id", to.UserID).
		Str("role", string(to.Role)).
		Msgf("NOTIFICATION[%s]: %s", to.Role, message)
	return nil
}

package feed

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"
)

// NewListener opens a dedicated LISTEN connection on channel. pq reconnects on
// its own between minReconnect and maxReconnect.
func NewListener(dsn, channel string, minReconnect, maxReconnect time.Duration, logger *slog.Logger) (*pq.Listener, error) {
	listener := pq.NewListener(dsn, minReconnect, maxReconnect, func(ev pq.ListenerEventType, err error) {
		switch ev {
		case pq.ListenerEventConnected:
			logger.Info("Change feed connected", slog.String("channel", channel))
		case pq.ListenerEventDisconnected:
			logger.Warn("Change feed disconnected", slog.String("channel", channel), slog.Any("error", err))
		case pq.ListenerEventReconnected:
			logger.Info("Change feed reconnected", slog.String("channel", channel))
		case pq.ListenerEventConnectionAttemptFailed:
			logger.Error("Change feed connection attempt failed", slog.String("channel", channel), slog.Any("error", err))
		}
	})

	if err := listener.Listen(channel); err != nil {
		listener.Close()
		return nil, fmt.Errorf("failed to listen on %s: %w", channel, err)
	}

	return listener, nil
}

package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/triage-service/internal/events"
)

// EventSink receives triage events for downstream platforms.
type EventSink interface {
	Send(ctx context.Context, event events.Event) error
}

// SyncService forwards domain events to external platforms. It implements no
// decision logic; delivery failures are logged and never fail the pipeline.
type SyncService struct {
	dispatcher events.Dispatcher
	sink       EventSink
	logger     *zap.Logger
}

// NewSyncService creates the service. A nil sink disables forwarding while
// keeping event logging.
func NewSyncService(dispatcher events.Dispatcher, sink EventSink, logger *zap.Logger) *SyncService {
	return &SyncService{
		dispatcher: dispatcher,
		sink:       sink,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to every event type the pipeline emits.
func (n *SyncService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	for _, eventType := range []events.EventType{
		events.EventTicketSubmitted,
		events.EventTicketRouted,
		events.EventTicketEscalated,
		events.EventTicketResolved,
		events.EventAgentRegistered,
	} {
		n.dispatcher.Subscribe(eventType, n.handleEvent)
	}
}

func (n *SyncService) handleEvent(ctx context.Context, event events.Event) error {
	n.logger.Info("triage event",
		zap.String("type", string(event.Type)),
		zap.String("ticket_id", event.TicketID))
	if n.sink == nil {
		return nil
	}
	if err := n.sink.Send(ctx, event); err != nil {
		n.logger.Warn("event sync failed",
			zap.String("type", string(event.Type)),
			zap.String("ticket_id", event.TicketID),
			zap.Error(err))
	}
	return nil
}

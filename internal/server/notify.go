package server

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fibradoc/fibradoc/internal/audit"
	"github.com/fibradoc/fibradoc/internal/events"
	"github.com/fibradoc/fibradoc/internal/httputil"
)

const publishTimeout = 5 * time.Second

// publish emits the write event. Failures are logged and never fail the
// request: the write is already committed.
func (s *Server) publish(r *http.Request, plural string, action events.Action, id string, payload any) {
	event, err := events.New(plural, action, id, payload)
	if err != nil {
		log.Ctx(r.Context()).Warn().Err(err).Str("collection", plural).Msg("building write event")
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), publishTimeout)
	defer cancel()
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.Ctx(r.Context()).Warn().Err(err).
			Str("collection", plural).
			Str("event_type", event.Type).
			Msg("publishing write event")
	}
}

func (s *Server) auditWrite(
	r *http.Request,
	plural string,
	action events.Action,
	id string,
	fields map[string]any,
	status int,
	start time.Time,
	err error,
) {
	if s.audit == nil {
		return
	}

	result := "success"
	if status >= http.StatusBadRequest {
		result = "error"
	}
	completion := audit.WriteCompletion{
		RequestID:    httputil.RequestIDFromContext(r.Context()),
		Collection:   plural,
		Action:       string(action),
		RecordID:     id,
		Fields:       fields,
		Result:       result,
		Duration:     time.Since(start),
		ResponseCode: status,
	}
	if err != nil {
		completion.ErrorDetail = err.Error()
	}
	s.audit.Complete(completion)
}

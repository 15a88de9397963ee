package service

import (
	"github.com/alexanderramin/buildtrack/internal/audit"
	"github.com/rs/zerolog"
)

// auditRecorder appends committed actions to the audit log. A failed append
// is logged and never fails the operation that already committed.
type auditRecorder struct {
	log    audit.Log
	logger zerolog.Logger
}

func newAuditRecorder(log audit.Log, logger zerolog.Logger) *auditRecorder {
	if log == nil {
		log = audit.NopLog{}
	}
	return &auditRecorder{log: log, logger: logger}
}

func (r *auditRecorder) record(entry audit.Entry) {
	if err := r.log.Append(entry); err != nil {
		r.logger.Warn().Err(err).
			Str("action", entry.Action).
			Int64("project_id", entry.ProjectID).
			Msg("audit append failed")
	}
}

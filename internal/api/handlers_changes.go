// Picnic Realtime - Fan Vote Propagation and Live Updates
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/picnic-realtime

package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/picnic-realtime/internal/changefeed"
	"github.com/tomtom215/picnic-realtime/internal/logging"
	"github.com/tomtom215/picnic-realtime/internal/metrics"
	"github.com/tomtom215/picnic-realtime/internal/models"
	"github.com/tomtom215/picnic-realtime/internal/validation"
)

// maxChangeBodyBytes bounds ingest payloads. Row images are single table
// rows; anything close to this limit is malformed or hostile.
const maxChangeBodyBytes = 1 << 20

// ChangeIngest handles POST /api/v1/changes, the boundary where database
// change events enter the propagation path. The table and operation sets
// are closed: unknown values are rejected here with a 400 rather than
// carried through the feed for consumers to trip over.
func (h *Handler) ChangeIngest(w http.ResponseWriter, r *http.Request) {
	if h.publisher == nil {
		respondError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Change ingest unavailable", nil)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxChangeBodyBytes)

	var req models.ChangeSubmission
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.RecordIngestRejection("decode")
		respondError(w, http.StatusBadRequest, "DECODE_ERROR", "Request body is not valid JSON", err)
		return
	}

	if verr := validation.ValidateStruct(&req); verr != nil {
		metrics.RecordIngestRejection(rejectionReason(verr))
		apiErr := verr.ToAPIError()
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	event := changefeed.NewChangeEvent(
		changefeed.Table(req.Table),
		changefeed.Operation(req.Operation),
		req.New,
		req.Old,
	)
	if err := event.Validate(); err != nil {
		metrics.RecordIngestRejection("validation")
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	if err := h.publisher.Publish(r.Context(), event); err != nil {
		respondError(w, http.StatusServiceUnavailable, "PUBLISH_ERROR", "Failed to publish change event", err)
		return
	}

	logging.Debug().
		Str("event_id", event.ID).
		Str("table", string(event.Table)).
		Str("operation", string(event.Operation)).
		Msg("change event ingested")

	respondSuccess(w, http.StatusAccepted, models.ChangeAccepted{
		EventID: event.ID,
		Table:   string(event.Table),
		Topic:   event.Topic(),
	})
}

// rejectionReason maps a validation failure to its ingest metric label.
// Table and operation failures get their own labels so dashboards can
// tell schema drift from plain bad requests.
func rejectionReason(verr *validation.RequestValidationError) string {
	for _, fe := range verr.Errors() {
		switch fe.Field() {
		case "Table":
			return "table"
		case "Operation":
			return "operation"
		}
	}
	return "validation"
}

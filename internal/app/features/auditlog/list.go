// internal/app/features/auditlog/list.go
package auditlog

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/taskhub/internal/app/store/audit"
	"github.com/dalemusser/taskhub/internal/app/system/apijson"
	"github.com/dalemusser/taskhub/internal/app/system/paging"
	"github.com/dalemusser/taskhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// eventView is an audit event with actor and target names resolved.
type eventView struct {
	ID            primitive.ObjectID `json:"_id"`
	Category      string             `json:"category"`
	EventType     string             `json:"eventType"`
	Actor         string             `json:"actor,omitempty"`
	Target        string             `json:"target,omitempty"`
	IP            string             `json:"ip,omitempty"`
	Success       bool               `json:"success"`
	FailureReason string             `json:"failureReason,omitempty"`
	Details       map[string]string  `json:"details,omitempty"`
	CreatedAt     time.Time          `json:"createdAt"`
}

type listResponse struct {
	Events  []eventView `json:"events"`
	Page    int         `json:"page"`
	HasNext bool        `json:"hasNext"`
}

// ServeList returns the audit trail, newest first, optionally filtered
// by category and event type.
//
// Route: GET /audit
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	page := paging.ParsePage(r)
	filter := audit.QueryFilter{
		Category:  strings.TrimSpace(r.URL.Query().Get("category")),
		EventType: strings.TrimSpace(r.URL.Query().Get("eventType")),
		Limit:     paging.LimitPlusOne(),
		Offset:    paging.Offset(page),
	}

	events, err := h.Events.Query(ctx, filter)
	if err != nil {
		apijson.WriteError(w, err, h.Log)
		return
	}
	hasNext := paging.TrimPage(&events)

	views, err := h.buildViews(ctx, events)
	if err != nil {
		apijson.WriteError(w, err, h.Log)
		return
	}

	apijson.Write(w, http.StatusOK, listResponse{
		Events:  views,
		Page:    page,
		HasNext: hasNext,
	})
}

// buildViews resolves actor and target user names with one batch lookup.
// Names of users deleted since the event fall back to the hex id.
func (h *Handler) buildViews(ctx context.Context, events []audit.Event) ([]eventView, error) {
	idSet := make(map[primitive.ObjectID]struct{})
	for _, e := range events {
		if e.ActorID != nil {
			idSet[*e.ActorID] = struct{}{}
		}
		if e.TargetID != nil {
			idSet[*e.TargetID] = struct{}{}
		}
	}
	ids := make([]primitive.ObjectID, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	names := make(map[primitive.ObjectID]string)
	if len(ids) > 0 {
		users, err := h.Users.ListByIDs(ctx, ids)
		if err != nil {
			h.Log.Warn("name resolution failed for audit list", zap.Error(err))
		} else {
			for _, u := range users {
				names[u.ID] = u.Name
			}
		}
	}

	nameOf := func(id *primitive.ObjectID) string {
		if id == nil {
			return ""
		}
		if n, ok := names[*id]; ok {
			return n
		}
		return id.Hex()
	}

	views := make([]eventView, 0, len(events))
	for _, e := range events {
		views = append(views, eventView{
			ID:            e.ID,
			Category:      e.Category,
			EventType:     e.EventType,
			Actor:         nameOf(e.ActorID),
			Target:        nameOf(e.TargetID),
			IP:            e.IP,
			Success:       e.Success,
			FailureReason: e.FailureReason,
			Details:       e.Details,
			CreatedAt:     e.CreatedAt,
		})
	}
	return views, nil
}

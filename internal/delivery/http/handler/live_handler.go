package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"gov-token-booking/internal/converter"
	"gov-token-booking/internal/service"
	"gov-token-booking/pkg/response"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// How often an SSE heartbeat comment is written so proxies keep the
// connection open
const liveHeartbeatInterval = 25 * time.Second

// LiveHandler streams the currently-called token to waiting room displays
// over Server-Sent Events. The stream is public: it carries only what the
// physical display board would show.
type LiveHandler struct {
	feed *service.LiveFeed
	log  *logrus.Logger
}

func NewLiveHandler(feed *service.LiveFeed, log *logrus.Logger) *LiveHandler {
	return &LiveHandler{
		feed: feed,
		log:  log,
	}
}

// StreamCurrentToken subscribes the client to the live feed. Query params:
// department_id (optional UUID, omit to watch all departments) and date
// (optional YYYY-MM-DD, defaults to today). Each event is the full current
// token, or the literal "null" when no token is being served.
func (h *LiveHandler) StreamCurrentToken(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalServerError(w, "Streaming is not supported")
		return
	}

	departmentID := ""
	if param := r.URL.Query().Get("department_id"); param != "" {
		id, err := uuid.Parse(param)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "Invalid department ID", nil)
			return
		}
		departmentID = id.String()
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid date, use YYYY-MM-DD", nil)
		return
	}

	sub := h.feed.Subscribe(departmentID, date)
	defer sub.Cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	heartbeat := time.NewTicker(liveHeartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": heartbeat\n\n")
			flusher.Flush()
		case token, open := <-sub.C:
			if !open {
				return
			}
			payload, err := json.Marshal(converter.TokenToResponse(token))
			if err != nil {
				h.log.Warnf("Failed to marshal live token event: %+v", err)
				continue
			}
			fmt.Fprintf(w, "event: current\ndata: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

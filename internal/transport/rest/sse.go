package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"ReadLater/internal/domain"
)

const notifyTimeout = 10 * time.Second

// bulkImport streams one SSE data frame per processed URL and a closing
// "done" event carrying the summary. A client disconnect stops the import
// after the item in flight.
func (h *handler) bulkImport(c echo.Context) error {
	var req bulkImportRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ctx := c.Request().Context()
	userID := userIDFrom(c)
	seq, err := h.svc.Bulk.Run(ctx, userID, req.URLs)
	if err != nil {
		return toHTTPError(err)
	}

	w := c.Response()
	flusher, ok := w.Writer.(http.Flusher)
	if !ok {
		return echo.NewHTTPError(http.StatusInternalServerError, "streaming not supported")
	}
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	events := make(chan domain.BulkProgress)
	go func() {
		defer close(events)
		for p := range seq {
			select {
			case events <- p:
			case <-ctx.Done():
				return
			}
		}
	}()

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	log := h.logger.With("user_id", userID, "total", len(req.URLs))
	var summary domain.BulkSummary
	for {
		select {
		case p, ok := <-events:
			if !ok {
				if err := writeEvent(w, "done", bulkDoneEvent{BulkSummary: summary, Message: summary.Message()}); err != nil {
					log.Info("client disconnected before done event", "error", err)
					return nil
				}
				flusher.Flush()
				h.notify(ctx, summary)
				return nil
			}
			summary.Add(p)
			if err := writeEvent(w, "", p); err != nil {
				log.Info("client disconnected during bulk import", "error", err)
				return nil
			}
			flusher.Flush()

		case <-heartbeat.C:
			if _, err := io.WriteString(w, ": heartbeat\n\n"); err != nil {
				log.Info("client disconnected during heartbeat", "error", err)
				return nil
			}
			flusher.Flush()

		case <-ctx.Done():
			log.Info("bulk import stream closed by client", "processed", summary.Total())
			return nil
		}
	}
}

func (h *handler) notify(ctx context.Context, summary domain.BulkSummary) {
	if h.svc.Notifier == nil {
		return
	}
	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	if err := h.svc.Notifier.Notify(notifyCtx, summary.Message()); err != nil {
		h.logger.Warn("bulk import notification failed", "error", err)
	}
}

func writeEvent(w io.Writer, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if event != "" {
		if _, err := fmt.Fprintf(w, "event: %s\n", event); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}

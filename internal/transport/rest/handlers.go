package rest

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type handler struct {
	svc       Services
	heartbeat time.Duration
	logger    *slog.Logger
}

func (h *handler) createItem(c echo.Context) error {
	var req createItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	item, err := h.svc.Importer.ImportOne(c.Request().Context(), userIDFrom(c), req.URL)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, toItemResponse(item))
}

func (h *handler) listItems(c echo.Context) error {
	items, err := h.svc.Items.List(c.Request().Context(), userIDFrom(c))
	if err != nil {
		return toHTTPError(err)
	}

	out := make([]itemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toItemResponse(item))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *handler) getItem(c echo.Context) error {
	item, err := h.svc.Items.Get(c.Request().Context(), userIDFrom(c), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toItemResponse(item))
}

func (h *handler) saveSummary(c echo.Context) error {
	var req saveSummaryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	item, err := h.svc.Summaries.SaveSummary(c.Request().Context(), userIDFrom(c), c.Param("id"), req.Summary)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toItemResponse(item))
}

func (h *handler) streamSummary(c echo.Context) error {
	ctx := c.Request().Context()
	seq, err := h.svc.Summaries.StreamSummary(ctx, userIDFrom(c), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}

	flusher, ok := c.Response().Writer.(http.Flusher)
	if !ok {
		return echo.NewHTTPError(http.StatusInternalServerError, "streaming not supported")
	}

	started := false
	for chunk, err := range seq {
		if err != nil {
			if !started {
				return toHTTPError(err)
			}
			h.logger.Warn("summary stream interrupted", "item_id", c.Param("id"), "error", err)
			return nil
		}
		if !started {
			c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextPlainCharsetUTF8)
			c.Response().Header().Set("Cache-Control", "no-cache")
			c.Response().Header().Set("X-Accel-Buffering", "no")
			c.Response().WriteHeader(http.StatusOK)
			started = true
		}
		if _, err := c.Response().Write([]byte(chunk)); err != nil {
			h.logger.Info("client disconnected during summary stream", "error", err)
			return nil
		}
		flusher.Flush()
	}

	if !started {
		return c.NoContent(http.StatusNoContent)
	}
	return nil
}

func (h *handler) mapSite(c echo.Context) error {
	var req mapRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	links, err := h.svc.Discovery.MapSite(c.Request().Context(), req.URL, req.Search)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, mapResponse{Links: links})
}

func (h *handler) searchWeb(c echo.Context) error {
	var req searchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	results, err := h.svc.Discovery.SearchWeb(c.Request().Context(), req.Query)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, searchResponse{Results: results})
}

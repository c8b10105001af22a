package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/driftwoodlabs/replyhook/internal/extract"
	"github.com/driftwoodlabs/replyhook/internal/store"
)

// inboundResponse is the body returned to the inbound-parse provider.
// Failures still answer HTTP 200 with Ok=false: the provider treats any
// non-2xx as a delivery failure and retries.
type inboundResponse struct {
	Ok     bool                  `json:"ok"`
	Error  string                `json:"error,omitempty"`
	Stored *store.DecisionRecord `json:"stored,omitempty"`
}

// handleInbound accepts the form-encoded inbound email webhook, runs
// the decision extractor, and persists a decision record on success.
func (s *Server) handleInbound(c echo.Context) error {
	text := c.FormValue("text")
	html := c.FormValue("html")

	res, err := extract.FromMessage(text, html)
	if errors.Is(err, extract.ErrNoToken) {
		s.logger.Info("inbound without token")
		return c.JSON(http.StatusOK, inboundResponse{Ok: false, Error: "TOKEN not found in message body"})
	}
	if errors.Is(err, extract.ErrNoDecision) {
		s.logger.Info("inbound without decision", zap.String("token", res.Token))
		return c.JSON(http.StatusOK, inboundResponse{Ok: false, Error: "Decision (1/2) not found"})
	}

	rec := store.DecisionRecord{
		Token:    res.Token,
		Decision: res.Decision,
		From:     c.FormValue("from"),
		To:       c.FormValue("to"),
		Subject:  c.FormValue("subject"),
		TS:       store.Timestamp(time.Now()),
	}
	if err := s.decisions.Put(rec); err != nil {
		s.logger.Error("decision store failed", zap.String("token", res.Token), zap.Error(err))
		return c.JSON(http.StatusOK, inboundResponse{Ok: false, Error: "failed to store decision"})
	}

	s.metrics.IncDecision()
	s.logger.Info("decision stored",
		zap.String("token", rec.Token),
		zap.String("decision", rec.Decision),
	)
	return c.JSON(http.StatusOK, inboundResponse{Ok: true, Stored: &rec})
}

// eventResponse is the body for POST /event.
type eventResponse struct {
	Ok     bool   `json:"ok"`
	Error  string `json:"error,omitempty"`
	Stored string `json:"stored,omitempty"`
}

// handleEvent accepts JSON event payloads. Only purchase events are
// persisted; anything else is an explicit 400, unlike the inbound path.
func (s *Server) handleEvent(c echo.Context) error {
	var payload store.Purchase
	if err := c.Bind(&payload); err != nil || payload == nil {
		payload = store.Purchase{}
	}

	kind, _ := payload["event"].(string)
	if kind != "purchase" {
		s.logger.Info("event ignored", zap.String("event", kind))
		return c.JSON(http.StatusBadRequest, eventResponse{Ok: false, Error: "unsupported_event"})
	}

	name, err := s.purchases.Put(payload)
	if err != nil {
		s.logger.Error("purchase store failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, eventResponse{Ok: false, Error: "failed to store purchase"})
	}

	amount := store.Amount(payload)
	s.metrics.IncPurchase(amount)

	order, _ := payload["order"].(string)
	s.logger.Info("purchase stored",
		zap.String("file", name),
		zap.String("order", order),
		zap.Float64("amount", amount),
	)
	return c.JSON(http.StatusOK, eventResponse{Ok: true, Stored: name})
}

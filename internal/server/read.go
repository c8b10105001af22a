package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/driftwoodlabs/replyhook/internal/store"
)

// rootResponse is the liveness body for GET /.
type rootResponse struct {
	Ok  bool   `json:"ok"`
	Msg string `json:"msg"`
}

func (s *Server) handleRoot(c echo.Context) error {
	return c.JSON(http.StatusOK, rootResponse{Ok: true, Msg: "inbound reply receiver alive"})
}

// healthzResponse reports store counts and the newest record times.
// The latest timestamps are null until a first record exists.
type healthzResponse struct {
	Ok               bool    `json:"ok"`
	DecisionsCount   int     `json:"decisions_count"`
	PurchasesCount   int     `json:"purchases_count"`
	LatestDecisionTS *string `json:"latest_decision_ts"`
	LatestPurchaseTS *string `json:"latest_purchase_ts"`
}

func (s *Server) handleHealthz(c echo.Context) error {
	decCount, decLatest, err := s.decisions.Stats()
	if err != nil {
		s.logger.Error("decision stats failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"ok": false})
	}
	purCount, purLatest, err := s.purchases.Stats()
	if err != nil {
		s.logger.Error("purchase stats failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"ok": false})
	}

	resp := healthzResponse{
		Ok:             true,
		DecisionsCount: decCount,
		PurchasesCount: purCount,
	}
	if !decLatest.IsZero() {
		ts := store.Timestamp(decLatest)
		resp.LatestDecisionTS = &ts
	}
	if !purLatest.IsZero() {
		ts := store.Timestamp(purLatest)
		resp.LatestPurchaseTS = &ts
	}
	return c.JSON(http.StatusOK, resp)
}

// decisionResponse is the body for GET /decision/:token. An unknown
// token answers 200 with status "pending" rather than 404; callers poll
// this endpoint while waiting for the email reply.
type decisionResponse struct {
	Ok     bool                  `json:"ok"`
	Status string                `json:"status"`
	Data   *store.DecisionRecord `json:"data,omitempty"`
	Error  string                `json:"error,omitempty"`
}

func (s *Server) handleGetDecision(c echo.Context) error {
	token := c.Param("token")

	rec, found, err := s.decisions.Get(token)
	if err != nil {
		s.logger.Error("decision read failed", zap.String("token", token), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, decisionResponse{Ok: false, Status: "error", Error: err.Error()})
	}
	if !found {
		return c.JSON(http.StatusOK, decisionResponse{Ok: false, Status: "pending"})
	}
	return c.JSON(http.StatusOK, decisionResponse{Ok: true, Status: "found", Data: &rec})
}

// listResponse is the body for GET /decisions.json.
type listResponse struct {
	Ok    bool                   `json:"ok"`
	Items []store.DecisionRecord `json:"items"`
}

func (s *Server) handleDecisionsJSON(c echo.Context) error {
	items, err := s.decisions.Recent(recentDecisions)
	if err != nil {
		s.logger.Error("decision list failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"ok": false})
	}
	if items == nil {
		items = []store.DecisionRecord{}
	}
	return c.JSON(http.StatusOK, listResponse{Ok: true, Items: items})
}

// purchasesResponse is the body for GET /purchases.json.
type purchasesResponse struct {
	Ok    bool             `json:"ok"`
	Total float64          `json:"total"`
	Items []store.Purchase `json:"items"`
}

func (s *Server) handlePurchasesJSON(c echo.Context) error {
	items, err := s.purchases.Recent(recentPurchases)
	if err != nil {
		s.logger.Error("purchase list failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"ok": false})
	}
	if items == nil {
		items = []store.Purchase{}
	}
	return c.JSON(http.StatusOK, purchasesResponse{Ok: true, Total: store.Total(items), Items: items})
}

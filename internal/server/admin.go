package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/driftwoodlabs/replyhook/internal/logging"
	"github.com/driftwoodlabs/replyhook/internal/store"
)

const (
	defaultLogLines = 200
	maxLogLines     = 5000
)

// decisionsPage is the template data for the decisions admin view.
type decisionsPage struct {
	Items []store.DecisionRecord
}

func (s *Server) handleAdminDecisions(c echo.Context) error {
	items, err := s.decisions.Recent(recentDecisions)
	if err != nil {
		s.logger.Error("decision list failed", zap.Error(err))
		return c.String(http.StatusInternalServerError, "failed to list decisions")
	}
	return c.Render(http.StatusOK, "decisions.html", decisionsPage{Items: items})
}

func (s *Server) handleAdminDecisionsLive(c echo.Context) error {
	return c.Render(http.StatusOK, "decisions_live.html", nil)
}

// purchaseRow is one row of the purchases admin table.
type purchaseRow struct {
	TS     string
	Site   string
	Order  string
	Amount string
	Items  string
}

// purchasesPage is the template data for the purchases admin view.
type purchasesPage struct {
	Total string
	Rows  []purchaseRow
}

func (s *Server) handleAdminPurchases(c echo.Context) error {
	items, err := s.purchases.Recent(recentPurchases)
	if err != nil {
		s.logger.Error("purchase list failed", zap.Error(err))
		return c.String(http.StatusInternalServerError, "failed to list purchases")
	}

	page := purchasesPage{
		Total: fmt.Sprintf("$%.2f", store.Total(items)),
		Rows:  make([]purchaseRow, 0, len(items)),
	}
	for _, p := range items {
		page.Rows = append(page.Rows, purchaseRow{
			TS:     stringField(p, "ts"),
			Site:   stringField(p, "site"),
			Order:  stringField(p, "order"),
			Amount: fmt.Sprintf("$%.2f", store.Amount(p)),
			Items:  itemsPreview(p),
		})
	}
	return c.Render(http.StatusOK, "purchases.html", page)
}

func (s *Server) handleAdminPurchasesLive(c echo.Context) error {
	return c.Render(http.StatusOK, "purchases_live.html", nil)
}

// handleAdminLogs returns the last n lines of the NDJSON server log.
// n defaults to 200 and is clamped to [1, 5000]; format is "jsonl"
// (default) or "txt".
func (s *Server) handleAdminLogs(c echo.Context) error {
	n := defaultLogLines
	if raw := c.QueryParam("n"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			n = parsed
		}
	}
	if n < 1 {
		n = 1
	}
	if n > maxLogLines {
		n = maxLogLines
	}

	lines, err := logging.Tail(s.cfg.Logging.File, n)
	if err != nil {
		s.logger.Error("log tail failed", zap.Error(err))
		return c.String(http.StatusInternalServerError, "failed to read log")
	}

	body := strings.Join(lines, "\n")
	if len(lines) > 0 {
		body += "\n"
	}

	if strings.EqualFold(c.QueryParam("format"), "txt") {
		return c.Blob(http.StatusOK, "text/plain; charset=utf-8", []byte(body))
	}
	return c.Blob(http.StatusOK, "application/x-ndjson", []byte(body))
}

func stringField(p store.Purchase, key string) string {
	v, _ := p[key].(string)
	return v
}

// itemsPreview renders the payload's item list as compact JSON capped
// at 120 characters for the table view.
func itemsPreview(p store.Purchase) string {
	items, ok := p["items"]
	if !ok {
		items = []any{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return ""
	}
	preview := string(data)
	if len(preview) > 120 {
		preview = preview[:120]
	}
	return preview
}

package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rustyeddy/stockwatch/admin"
)

type addTickerRequest struct {
	Ticker string `json:"ticker" binding:"required"`
}

type createRuleRequest struct {
	Ticker    string  `json:"ticker" binding:"required"`
	Direction string  `json:"direction" binding:"required"`
	Price     float64 `json:"price"`
}

// fail writes the {"ok": false, "error": ...} body used by every endpoint.
func fail(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"ok": false, "error": err.Error()})
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case admin.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, admin.ErrNoPrice), errors.Is(err, admin.ErrNoSeries):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) health(c *gin.Context) {
	if err := s.svc.Health(c.Request.Context()); err != nil {
		fail(c, http.StatusServiceUnavailable, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) getWatchlist(c *gin.Context) {
	list, err := s.svc.Watchlist(c.Request.Context())
	if err != nil {
		fail(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) addWatchlist(c *gin.Context) {
	var req addTickerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	list, err := s.svc.AddSymbol(c.Request.Context(), req.Ticker)
	if err != nil {
		fail(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) removeWatchlist(c *gin.Context) {
	list, err := s.svc.RemoveSymbol(c.Request.Context(), c.Param("ticker"))
	if err != nil {
		fail(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) getPrices(c *gin.Context) {
	c.JSON(http.StatusOK, s.svc.Prices())
}

func (s *Server) getPrice(c *gin.Context) {
	sym, p, err := s.svc.Price(c.Param("ticker"))
	if err != nil {
		fail(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "ticker": sym, "price": p})
}

func (s *Server) getIntradayAll(c *gin.Context) {
	c.JSON(http.StatusOK, s.svc.AllSeries())
}

func (s *Server) getIntraday(c *gin.Context) {
	sym, series, err := s.svc.Series(c.Param("ticker"))
	if err != nil {
		fail(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "ticker": sym, "data": series})
}

func (s *Server) listRules(c *gin.Context) {
	rules, err := s.svc.ListRules(c.Request.Context())
	if err != nil {
		fail(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, rules)
}

func (s *Server) createRule(c *gin.Context) {
	var req createRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	r, err := s.svc.CreateRule(c.Request.Context(), req.Ticker, req.Direction, req.Price)
	if err != nil {
		fail(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "id": r.ID})
}

// deleteRule succeeds for unknown ids and returns the remaining rules.
func (s *Server) deleteRule(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		fail(c, http.StatusBadRequest, errors.New("rule id must be an integer"))
		return
	}
	if err := s.svc.DeleteRule(c.Request.Context(), id); err != nil {
		fail(c, statusFor(err), err)
		return
	}
	s.listRules(c)
}

func (s *Server) listEvents(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			fail(c, http.StatusBadRequest, errors.New("limit must be a non-negative integer"))
			return
		}
		limit = n
	}
	events, err := s.svc.Events(c.Request.Context(), limit)
	if err != nil {
		fail(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, events)
}

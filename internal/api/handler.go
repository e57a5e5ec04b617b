package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sheikh-saqib/gold-token-ledger/internal/ledger"
	"github.com/sheikh-saqib/gold-token-ledger/internal/models"
	"github.com/sheikh-saqib/gold-token-ledger/internal/models/events"
)

// CallerHeader carries the address the request acts as.
const CallerHeader = "X-Caller-Address"

// EventSource exposes events retained in process, when there are any.
type EventSource interface {
	Events() []events.Envelope
}

type Handler struct {
	ledger   *ledger.Ledger
	logger   *zap.Logger
	events   EventSource
	gatherer prometheus.Gatherer
}

type Option func(*Handler)

func WithLogger(logger *zap.Logger) Option {
	return func(h *Handler) { h.logger = logger }
}

// WithEventSource enables GET /events.
func WithEventSource(source EventSource) Option {
	return func(h *Handler) { h.events = source }
}

// WithGatherer enables GET /metrics.
func WithGatherer(gatherer prometheus.Gatherer) Option {
	return func(h *Handler) { h.gatherer = gatherer }
}

func NewHandler(l *ledger.Ledger, opts ...Option) *Handler {
	h := &Handler{ledger: l, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Router builds the gin engine serving the ledger.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), h.requestLogger())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/token", h.token)
	r.GET("/accounts/:address/balance", h.balance)
	r.GET("/entries", h.entries)

	r.GET("/whitelist", h.whitelist)
	r.GET("/whitelist/:address", h.whitelisted)
	r.POST("/whitelist", h.whitelistAddress)
	r.DELETE("/whitelist/:address", h.removeWhitelistedAddress)

	r.POST("/mint", h.mint)
	r.POST("/burn", h.burn)
	r.POST("/ownership", h.transferOwnership)

	if h.events != nil {
		r.GET("/events", func(c *gin.Context) {
			c.JSON(http.StatusOK, h.events.Events())
		})
	}
	if h.gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})))
	}
	return r
}

type amountRequest struct {
	Address string `json:"address" binding:"required"`
	Amount  string `json:"amount" binding:"required"`
}

type addressRequest struct {
	Address string `json:"address" binding:"required"`
}

type balanceResponse struct {
	Address string          `json:"address"`
	Balance decimal.Decimal `json:"balance"`
	Tokens  string          `json:"tokens"`
}

func (h *Handler) token(c *gin.Context) {
	owner, err := h.ledger.Owner(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	supply, err := h.ledger.TotalSupply(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"name":         h.ledger.Name(),
		"symbol":       h.ledger.Symbol(),
		"decimals":     h.ledger.Decimals(),
		"owner":        owner,
		"total_supply": supply,
	})
}

func (h *Handler) balance(c *gin.Context) {
	balance, err := h.ledger.BalanceOf(c.Request.Context(), c.Param("address"))
	if err != nil {
		h.fail(c, err)
		return
	}
	address, _ := models.NormalizeAddress(c.Param("address"))
	c.JSON(http.StatusOK, balanceResponse{
		Address: address,
		Balance: balance,
		Tokens:  models.FormatUnits(balance, models.Decimals),
	})
}

func (h *Handler) entries(c *gin.Context) {
	entries, err := h.ledger.Entries(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *Handler) whitelist(c *gin.Context) {
	addresses, err := h.ledger.Whitelist(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"addresses": addresses})
}

func (h *Handler) whitelisted(c *gin.Context) {
	ok, err := h.ledger.WhitelistedAddresses(c.Request.Context(), c.Param("address"))
	if err != nil {
		h.fail(c, err)
		return
	}
	address, _ := models.NormalizeAddress(c.Param("address"))
	c.JSON(http.StatusOK, gin.H{"address": address, "whitelisted": ok})
}

func (h *Handler) whitelistAddress(c *gin.Context) {
	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	if err := h.ledger.WhitelistAddress(c.Request.Context(), caller(c), req.Address); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"address": req.Address, "whitelisted": true})
}

func (h *Handler) removeWhitelistedAddress(c *gin.Context) {
	if err := h.ledger.RemoveWhitelistedAddress(c.Request.Context(), caller(c), c.Param("address")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"address": c.Param("address"), "whitelisted": false})
}

func (h *Handler) mint(c *gin.Context) {
	address, amount, ok := h.bindAmount(c)
	if !ok {
		return
	}
	if err := h.ledger.Mint(c.Request.Context(), caller(c), address, amount); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "minted", "address": address, "amount": amount})
}

func (h *Handler) burn(c *gin.Context) {
	address, amount, ok := h.bindAmount(c)
	if !ok {
		return
	}
	if err := h.ledger.Burn(c.Request.Context(), caller(c), address, amount); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "burned", "address": address, "amount": amount})
}

func (h *Handler) transferOwnership(c *gin.Context) {
	var req struct {
		NewOwner string `json:"new_owner" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	if err := h.ledger.TransferOwnership(c.Request.Context(), caller(c), req.NewOwner); err != nil {
		h.fail(c, err)
		return
	}
	owner, err := h.ledger.Owner(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"owner": owner})
}

// bindAmount parses an {address, amount} body; amount is in whole tokens.
func (h *Handler) bindAmount(c *gin.Context) (string, decimal.Decimal, bool) {
	var req amountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return "", decimal.Zero, false
	}
	amount, err := models.ParseUnits(req.Amount, models.Decimals)
	if err != nil {
		h.badRequest(c, err)
		return "", decimal.Zero, false
	}
	return req.Address, amount, true
}

func caller(c *gin.Context) string {
	return c.GetHeader(CallerHeader)
}

func (h *Handler) badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ledger.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, ledger.ErrInsufficientBalance):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, ledger.ErrInvalidAmount), errors.Is(err, ledger.ErrZeroAddress),
		errors.Is(err, models.ErrInvalidAddress), errors.Is(err, models.ErrInvalidUnits):
		status = http.StatusBadRequest
	default:
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		h.logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.String("caller", caller(c)),
		)
	}
}

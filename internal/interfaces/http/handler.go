package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"foliotrack/internal/application"
	"foliotrack/internal/domain"
)

// PortfolioService is the slice of the application service the control API
// needs.
type PortfolioService interface {
	Summary() domain.Portfolio
	AddHolding(symbol string, allocation, shares float64, initialPrice domain.Decimal, purchaseDate string) (domain.Holding, error)
	RemoveHolding(symbol string) error
}

// Refresher triggers a portfolio refresh.
type Refresher interface {
	TriggerUpdate(ctx context.Context) error
}

// HistorySource reads back recorded refresh output.
type HistorySource interface {
	RecentTotals(ctx context.Context, limit int) ([]application.Totals, error)
	SymbolHistory(ctx context.Context, symbol string, limit int) ([]application.Snapshot, error)
}

type Handler struct {
	service   PortfolioService
	refresher Refresher
	history   HistorySource
}

func NewHandler(service PortfolioService, refresher Refresher, history HistorySource) *Handler {
	return &Handler{
		service:   service,
		refresher: refresher,
		history:   history,
	}
}

type AddHoldingRequest struct {
	Symbol       string         `json:"symbol" binding:"required"`
	Allocation   float64        `json:"allocation" binding:"required"`
	Shares       float64        `json:"shares" binding:"required"`
	InitialPrice domain.Decimal `json:"initial_price" binding:"required"`
	PurchaseDate string         `json:"purchase_date"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) GetPortfolio(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Summary())
}

func (h *Handler) AddHolding(c *gin.Context) {
	var req AddHoldingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.ErrorContext(c.Request.Context(), "Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	holding, err := h.service.AddHolding(req.Symbol, req.Allocation, req.Shares, req.InitialPrice, req.PurchaseDate)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "Failed to add holding", "symbol", req.Symbol, "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, holding)
}

func (h *Handler) RemoveHolding(c *gin.Context) {
	symbol := c.Param("symbol")

	if err := h.service.RemoveHolding(symbol); err != nil {
		slog.ErrorContext(c.Request.Context(), "Failed to remove holding", "symbol", symbol, "error", err)
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

// RefreshPrices triggers a portfolio-wide refresh. The refresh runs in the
// background; a refresh already in flight yields 409.
func (h *Handler) RefreshPrices(c *gin.Context) {
	err := h.refresher.TriggerUpdate(context.WithoutCancel(c.Request.Context()))
	if errors.Is(err, application.ErrUpdateInProgress) {
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "Failed to trigger refresh", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "refresh started"})
}

func (h *Handler) GetTotalsHistory(c *gin.Context) {
	limit := queryLimit(c)

	totals, err := h.history.RecentTotals(c.Request.Context(), limit)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "Failed to load totals history", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, totals)
}

func (h *Handler) GetSymbolHistory(c *gin.Context) {
	symbol := c.Param("symbol")
	limit := queryLimit(c)

	snapshots, err := h.history.SymbolHistory(c.Request.Context(), symbol, limit)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "Failed to load symbol history", "symbol", symbol, "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, snapshots)
}

func queryLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit <= 0 {
		return 100
	}
	return limit
}

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/moneytransfers/transfers_app/internal/apperrors"
	portssvc "github.com/moneytransfers/transfers_app/internal/core/ports/services"
	"github.com/moneytransfers/transfers_app/internal/dto"
	"github.com/moneytransfers/transfers_app/internal/middleware"
)

// transferHandler handles HTTP requests related to transfers.
type transferHandler struct {
	ledgerService portssvc.LedgerServiceFacade
}

// newTransferHandler creates a new transferHandler.
func newTransferHandler(ls portssvc.LedgerServiceFacade) *transferHandler {
	return &transferHandler{
		ledgerService: ls,
	}
}

// registerTransferRoutes registers routes related to transfers.
func registerTransferRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerServiceFacade) {
	h := newTransferHandler(ledgerService)

	transfers := rg.Group("/transfers")
	{
		transfers.POST("", h.createTransfer)
		transfers.GET("", h.listTransfers)
		transfers.GET("/:id", h.getTransfer)
	}
}

func (h *transferHandler) createTransfer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateTransfer", slog.String("error", err.Error()))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Validation error", "desc": err.Error()})
		return
	}

	transfer, err := h.ledgerService.Transfer(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Validation error", "desc": "transfer amount must be positive"})
		case errors.Is(err, apperrors.ErrSelfTransfer):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Validation error", "desc": "sender and recipient accounts must differ"})
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		case errors.Is(err, apperrors.ErrInsufficientFunds):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Insufficient funds"})
		case errors.Is(err, apperrors.ErrLockTimeout):
			c.JSON(http.StatusRequestTimeout, gin.H{"error": "Transfer timed out waiting for account locks"})
		default:
			logger.Error("Failed to execute transfer in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to execute transfer"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToTransferResponse(transfer))
}

func (h *transferHandler) getTransfer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transferID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	transfer, err := h.ledgerService.GetTransferByID(c.Request.Context(), transferID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Transfer not found"})
		} else {
			logger.Error("Failed to get transfer from service", slog.String("error", err.Error()), slog.Int64("transfer_id", transferID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve transfer"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToTransferResponse(transfer))
}

func (h *transferHandler) listTransfers(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	transfers, err := h.ledgerService.ListTransfers(c.Request.Context())
	if err != nil {
		logger.Error("Failed to list transfers from service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list transfers"})
		return
	}

	c.JSON(http.StatusOK, dto.ListTransfersResponse{Transfers: dto.ToListTransferResponse(transfers)})
}

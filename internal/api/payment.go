package api

import (
	"net/http"

	"learning-api/internal/middleware"
	"learning-api/pkg/logging"

	"github.com/gin-gonic/gin"
)

// GetPermissions returns the user's live entitlement snapshot.
// GET /api/payment/permissions
func (h *Handlers) GetPermissions(c *gin.Context) {
	userID := middleware.UserID(c)

	permissions, err := h.Entitlement.Permissions(userID)
	if err != nil {
		logging.Errorf("Failed to compute permissions for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to fetch permissions",
		})
		return
	}

	c.JSON(http.StatusOK, permissions)
}

// GetTransactions returns the user's ledger history, newest first.
// GET /api/payment/transactions
func (h *Handlers) GetTransactions(c *gin.Context) {
	userID := middleware.UserID(c)

	transactions, err := h.Store.GetUserTransactions(userID)
	if err != nil {
		logging.Errorf("Failed to load transactions for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to fetch transactions",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactions": transactions})
}

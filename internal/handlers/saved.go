// internal/handlers/saved.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ecofinds/ecofinds-backend/internal/services"
	"github.com/ecofinds/ecofinds-backend/internal/utils"
)

type SavedHandler struct {
	savedService *services.SavedService
}

func NewSavedHandler(savedService *services.SavedService) *SavedHandler {
	return &SavedHandler{savedService: savedService}
}

// ListSavedItems handles GET /saved-items
func (h *SavedHandler) ListSavedItems(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	items, total, err := h.savedService.ListSavedItems(userID, params)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(items, total, params))
}

// SaveItem handles POST /saved-items
func (h *SavedHandler) SaveItem(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		ProductID string `json:"product_id" binding:"required,uuid"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "invalid request body", nil)
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		utils.BadRequestResponse(c, "invalid product_id", nil)
		return
	}

	item, err := h.savedService.SaveItem(userID, productID)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{"saved_item": item})
}

// RemoveSavedItem handles DELETE /saved-items/:id
func (h *SavedHandler) RemoveSavedItem(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	itemID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.savedService.RemoveSavedItem(userID, itemID); err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "item removed from saved items"})
}

// ListSavedSearches handles GET /saved-searches
func (h *SavedHandler) ListSavedSearches(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	searches, err := h.savedService.ListSavedSearches(userID)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"saved_searches": searches})
}

// SaveSearch handles POST /saved-searches
func (h *SavedHandler) SaveSearch(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.SaveSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "invalid request body", nil)
		return
	}

	search, err := h.savedService.SaveSearch(userID, &req)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{"saved_search": search})
}

// DeleteSavedSearch handles DELETE /saved-searches/:id
func (h *SavedHandler) DeleteSavedSearch(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	searchID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.savedService.DeleteSavedSearch(userID, searchID); err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "saved search deleted"})
}

// ListPriceAlerts handles GET /price-alerts
func (h *SavedHandler) ListPriceAlerts(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	alerts, total, err := h.savedService.ListPriceAlerts(userID, params)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(alerts, total, params))
}

// CreatePriceAlert handles POST /price-alerts
func (h *SavedHandler) CreatePriceAlert(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		ProductID   string  `json:"product_id" binding:"required,uuid"`
		TargetPrice float64 `json:"target_price" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "invalid request body", nil)
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		utils.BadRequestResponse(c, "invalid product_id", nil)
		return
	}

	alert, err := h.savedService.CreatePriceAlert(userID, productID, req.TargetPrice)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{"price_alert": alert})
}

// DeletePriceAlert handles DELETE /price-alerts/:id
func (h *SavedHandler) DeletePriceAlert(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	alertID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.savedService.DeletePriceAlert(userID, alertID); err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "price alert deleted"})
}

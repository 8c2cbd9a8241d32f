// internal/handlers/admin.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ecofinds/ecofinds-backend/internal/services"
	"github.com/ecofinds/ecofinds-backend/internal/utils"
)

type AdminHandler struct {
	adminService   *services.AdminService
	disputeService *services.DisputeService
}

func NewAdminHandler(adminService *services.AdminService, disputeService *services.DisputeService) *AdminHandler {
	return &AdminHandler{
		adminService:   adminService,
		disputeService: disputeService,
	}
}

// GetStats handles GET /admin/stats
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.adminService.GetStats()
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"stats": stats})
}

// ListUsers handles GET /admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	users, total, err := h.adminService.ListUsers(params)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(users, total, params))
}

// SetUserActive handles PUT /admin/users/:id/active
func (h *AdminHandler) SetUserActive(c *gin.Context) {
	userID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "invalid request body", nil)
		return
	}

	user, err := h.adminService.SetUserActive(userID, *req.Active)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"user": user})
}

// RemoveProduct handles DELETE /admin/products/:id
func (h *AdminHandler) RemoveProduct(c *gin.Context) {
	productID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	// Body is optional for takedowns.
	_ = c.ShouldBindJSON(&req)

	if err := h.adminService.RemoveProduct(productID, req.Reason); err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "product removed"})
}

// ListDisputes handles GET /admin/disputes
func (h *AdminHandler) ListDisputes(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	disputes, total, err := h.disputeService.AdminList(c.Query("status"), params)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(disputes, total, params))
}

// UpdateDispute handles PUT /admin/disputes/:id
func (h *AdminHandler) UpdateDispute(c *gin.Context) {
	disputeID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req services.UpdateDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "invalid request body", nil)
		return
	}

	dispute, err := h.disputeService.AdminUpdate(disputeID, &req)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"dispute": dispute})
}

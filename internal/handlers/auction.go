// internal/handlers/auction.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ecofinds/ecofinds-backend/internal/services"
	"github.com/ecofinds/ecofinds-backend/internal/utils"
)

type AuctionHandler struct {
	auctionService    *services.AuctionService
	settlementService *services.SettlementService
}

func NewAuctionHandler(auctionService *services.AuctionService, settlementService *services.SettlementService) *AuctionHandler {
	return &AuctionHandler{
		auctionService:    auctionService,
		settlementService: settlementService,
	}
}

// PlaceBid handles POST /products/:id/bid
func (h *AuctionHandler) PlaceBid(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	productID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Amount float64 `json:"amount" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "invalid request body", nil)
		return
	}

	bid, err := h.auctionService.PlaceBid(productID, userID, req.Amount)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{"bid": bid})
}

// GetAuction handles GET /auctions/:id
func (h *AuctionHandler) GetAuction(c *gin.Context) {
	productID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	auction, err := h.auctionService.GetAuction(productID)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"auction": auction})
}

// GetBids handles GET /products/:id/bids
func (h *AuctionHandler) GetBids(c *gin.Context) {
	productID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	bids, total, err := h.auctionService.GetProductBids(productID, params)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(bids, total, params))
}

// ConfirmSale handles POST /auctions/:id/confirm-sale
func (h *AuctionHandler) ConfirmSale(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	productID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	purchase, err := h.settlementService.ConfirmSale(productID, userID)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"purchase": purchase})
}

package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/alanaraujo-bit/Absolut-Poker-club-sub000/events"
	"github.com/alanaraujo-bit/Absolut-Poker-club-sub000/models"
	"github.com/alanaraujo-bit/Absolut-Poker-club-sub000/services"
	"github.com/alanaraujo-bit/Absolut-Poker-club-sub000/utils"
)

type StockController struct {
	DB    *gorm.DB
	stock *services.StockService
}

func NewStockController(db *gorm.DB) *StockController {
	return &StockController{
		DB:    db,
		stock: services.NewStockService(db),
	}
}

// AdjustStock -> ajuste manual (recebimento, quebra, inventário).
// Diferente do consumo por comanda, saída que negativaria o estoque é
// rejeitada aqui.
func (sc *StockController) AdjustStock(c *gin.Context) {
	productID, ok := paramID(c, "product_id")
	if !ok {
		return
	}

	type reqBody struct {
		Direction string          `json:"direction" binding:"required"`
		Quantity  decimal.Decimal `json:"quantity" binding:"required"`
		Reason    string          `json:"reason"`
	}

	var req reqBody
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	newStock, err := sc.stock.AdjustStock(productID, req.Direction, req.Quantity, req.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.InfoLogger.Printf("Ajuste de estoque no produto #%d: %s %s (%s)",
		productID, req.Direction, req.Quantity.StringFixed(3), req.Reason)

	var product models.Product
	if err := sc.DB.First(&product, productID).Error; err == nil && product.BelowMinimum() {
		events.BroadcastStockAlert(product)
	}

	utils.RespondJSON(c, http.StatusOK, "Estoque ajustado", gin.H{
		"product_id": productID,
		"stock":      newStock,
	})
}

// GetMovements -> extrato de movimentações do produto.
func (sc *StockController) GetMovements(c *gin.Context) {
	productID, ok := paramID(c, "product_id")
	if !ok {
		return
	}

	movements, err := sc.stock.Movements(productID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Movimentações do produto", movements)
}

// GetLowStock -> produtos no estoque mínimo ou abaixo.
func (sc *StockController) GetLowStock(c *gin.Context) {
	products, err := sc.stock.LowStock()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Produtos com estoque baixo", products)
}

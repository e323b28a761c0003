package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/alanaraujo-bit/Absolut-Poker-club-sub000/models"
	"github.com/alanaraujo-bit/Absolut-Poker-club-sub000/utils"
)

type ProductController struct {
	DB *gorm.DB
}

func NewProductController(db *gorm.DB) *ProductController {
	return &ProductController{DB: db}
}

// GetAllProducts -> catálogo; ?ativos=true esconde os desativados.
func (pc *ProductController) GetAllProducts(c *gin.Context) {
	query := pc.DB.Order("name asc")
	if c.Query("ativos") == "true" {
		query = query.Where("active = ?", true)
	}

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Lista de produtos", products)
}

// GetProductByID
func (pc *ProductController) GetProductByID(c *gin.Context) {
	id, ok := paramID(c, "product_id")
	if !ok {
		return
	}

	var product models.Product
	if err := pc.DB.First(&product, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Detalhe do produto", product)
}

// CreateProduct -> cadastra produto; estoque é opcional (produto sem
// stock/min_stock não participa do controle de estoque).
func (pc *ProductController) CreateProduct(c *gin.Context) {
	type reqBody struct {
		Name     string           `json:"name" binding:"required"`
		Price    decimal.Decimal  `json:"price" binding:"required"`
		Unit     string           `json:"unit"`
		Stock    *decimal.Decimal `json:"stock"`
		MinStock *decimal.Decimal `json:"min_stock"`
	}

	var req reqBody
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if !req.Price.IsPositive() {
		utils.RespondError(c, http.StatusBadRequest, errors.New("preço deve ser maior que zero"))
		return
	}
	unit := req.Unit
	if unit == "" {
		unit = models.ProductUnitEach
	}
	if unit != models.ProductUnitEach && unit != models.ProductUnitKg {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("unidade inválida: %q", unit))
		return
	}

	product := models.Product{
		Name:     req.Name,
		Price:    req.Price.Round(2),
		Unit:     unit,
		Stock:    req.Stock,
		MinStock: req.MinStock,
		Active:   true,
	}

	if err := pc.DB.Create(&product).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Produto cadastrado: %s (#%d)", product.Name, product.ID)
	utils.RespondJSON(c, http.StatusCreated, "Produto cadastrado", product)
}

// UpdateProduct -> altera cadastro. Preço novo só vale para lançamentos
// futuros: itens já lançados mantêm o preço fotografado. O contador de
// estoque não é editável por aqui — só via movimentação (ajuste manual).
func (pc *ProductController) UpdateProduct(c *gin.Context) {
	id, ok := paramID(c, "product_id")
	if !ok {
		return
	}

	var product models.Product
	if err := pc.DB.First(&product, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	type reqBody struct {
		Name     *string          `json:"name"`
		Price    *decimal.Decimal `json:"price"`
		MinStock *decimal.Decimal `json:"min_stock"`
		Active   *bool            `json:"active"`
	}

	var req reqBody
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Price != nil {
		if !req.Price.IsPositive() {
			utils.RespondError(c, http.StatusBadRequest, errors.New("preço deve ser maior que zero"))
			return
		}
		product.Price = req.Price.Round(2)
	}
	if req.MinStock != nil {
		product.MinStock = req.MinStock
	}
	if req.Active != nil {
		product.Active = *req.Active
	}

	if err := pc.DB.Save(&product).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Produto atualizado", product)
}

// DeleteProduct -> produto com histórico de consumo é apenas desativado
// (os itens lançados referenciam o preço dele); sem histórico, apaga.
func (pc *ProductController) DeleteProduct(c *gin.Context) {
	id, ok := paramID(c, "product_id")
	if !ok {
		return
	}

	var product models.Product
	if err := pc.DB.First(&product, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var itemCount int64
	if err := pc.DB.Model(&models.TabItem{}).Where("product_id = ?", id).Count(&itemCount).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if itemCount > 0 {
		product.Active = false
		if err := pc.DB.Save(&product).Error; err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
		utils.RespondJSON(c, http.StatusOK, "Produto desativado (possui histórico de consumo)", gin.H{
			"product_id": id,
			"active":     false,
		})
		return
	}

	if err := pc.DB.Delete(&product).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Produto excluído", gin.H{"product_id": id})
}

package services

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/alanaraujo-bit/Absolut-Poker-club-sub000/models"
)

// StockService cuida dos ajustes manuais de estoque (recebimento de
// mercadoria, quebra, inventário). Diferente da baixa por comanda, a
// saída manual É bloqueada quando deixaria o estoque negativo.
type StockService struct {
	db *gorm.DB
}

func NewStockService(db *gorm.DB) *StockService {
	return &StockService{db: db}
}

// AdjustStock aplica um ajuste manual: atualiza o contador e grava a
// movimentação correspondente na mesma transação.
func (s *StockService) AdjustStock(productID uint, direction string, quantity decimal.Decimal, reason string) (decimal.Decimal, error) {
	if direction != models.MovementIn && direction != models.MovementOut {
		return decimal.Zero, &ValidationError{Msg: fmt.Sprintf("direção inválida: %q (use %q ou %q)",
			direction, models.MovementIn, models.MovementOut)}
	}
	quantity = quantity.Round(3)
	if !quantity.IsPositive() {
		return decimal.Zero, &ValidationError{Msg: "quantidade deve ser maior que zero"}
	}
	if reason == "" {
		reason = "ajuste manual"
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return decimal.Zero, tx.Error
	}

	var product models.Product
	if err := tx.First(&product, productID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, &NotFoundError{Entity: "produto", ID: productID}
		}
		return decimal.Zero, err
	}

	if !product.TracksStock() {
		tx.Rollback()
		return decimal.Zero, &UntrackedError{ProductID: productID}
	}

	if direction == models.MovementOut && product.Stock.Sub(quantity).IsNegative() {
		tx.Rollback()
		return decimal.Zero, &InsufficientStockError{
			ProductID: productID,
			Available: *product.Stock,
			Requested: quantity,
		}
	}

	if err := applyMovement(tx, &product, direction, quantity, reason); err != nil {
		tx.Rollback()
		return decimal.Zero, err
	}

	if err := tx.Commit().Error; err != nil {
		return decimal.Zero, err
	}
	return *product.Stock, nil
}

// Movements lista o extrato de movimentações do produto, mais recente primeiro.
func (s *StockService) Movements(productID uint) ([]models.StockMovement, error) {
	var product models.Product
	if err := s.db.First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "produto", ID: productID}
		}
		return nil, err
	}

	var movements []models.StockMovement
	if err := s.db.Where("product_id = ?", productID).
		Order("created_at desc, id desc").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// LowStock lista produtos ativos no mínimo ou abaixo dele (alerta do bar).
func (s *StockService) LowStock() ([]models.Product, error) {
	var products []models.Product
	if err := s.db.
		Where("active = ? AND stock IS NOT NULL AND min_stock IS NOT NULL AND stock <= min_stock", true).
		Order("name asc").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

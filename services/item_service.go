package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/alanaraujo-bit/Absolut-Poker-club-sub000/models"
)

// AddItem lança um consumo na comanda: cria o item com preço fotografado,
// soma o subtotal no total e, se o produto controla estoque, baixa
// ceil(quantidade) registrando a movimentação de saída. Tudo em uma
// transação: item sem baixa de estoque nunca é observável.
//
// A baixa via comanda NÃO é bloqueada por estoque insuficiente: o salão
// não pode travar por contador defasado; estoque negativo aparece depois
// no painel para acerto.
func (s *TabService) AddItem(tabID, productID uint, quantity decimal.Decimal) (*models.TabItem, decimal.Decimal, error) {
	quantity = quantity.Round(3)
	if !quantity.IsPositive() {
		return nil, decimal.Zero, &ValidationError{Msg: "quantidade deve ser maior que zero"}
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, decimal.Zero, tx.Error
	}

	var tab models.Tab
	if err := tx.First(&tab, tabID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, decimal.Zero, &NotFoundError{Entity: "comanda", ID: tabID}
		}
		return nil, decimal.Zero, err
	}
	if !tab.IsOpen() {
		tx.Rollback()
		return nil, decimal.Zero, &InvalidStateError{Msg: fmt.Sprintf("comanda #%d está fechada", tabID)}
	}

	var product models.Product
	if err := tx.First(&product, productID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, decimal.Zero, &NotFoundError{Entity: "produto", ID: productID}
		}
		return nil, decimal.Zero, err
	}
	if !product.Active {
		tx.Rollback()
		return nil, decimal.Zero, &ValidationError{Msg: fmt.Sprintf("produto #%d está inativo", productID)}
	}
	// Produto vendido por unidade não aceita quantidade fracionada.
	if product.Unit == models.ProductUnitEach && !quantity.Equal(quantity.Truncate(0)) {
		tx.Rollback()
		return nil, decimal.Zero, &ValidationError{Msg: fmt.Sprintf("produto #%d é vendido por unidade; quantidade deve ser inteira", productID)}
	}

	item := models.TabItem{
		TabID:     tab.ID,
		ProductID: product.ID,
		Quantity:  quantity,
		UnitPrice: product.Price,
		Subtotal:  product.Price.Mul(quantity).Round(2),
	}
	if err := tx.Create(&item).Error; err != nil {
		tx.Rollback()
		return nil, decimal.Zero, err
	}

	tab.Total = tab.Total.Add(item.Subtotal)
	if err := tx.Model(&tab).Updates(map[string]interface{}{
		"total":      tab.Total,
		"updated_at": time.Now(),
	}).Error; err != nil {
		tx.Rollback()
		return nil, decimal.Zero, err
	}

	if product.TracksStock() {
		if err := applyMovement(tx, &product, models.MovementOut, quantity.Ceil(),
			fmt.Sprintf("consumo comanda #%d", tab.ID)); err != nil {
			tx.Rollback()
			return nil, decimal.Zero, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, decimal.Zero, err
	}

	item.Product = product
	return &item, tab.Total, nil
}

// RemoveItem estorna um lançamento de comanda aberta: apaga o item,
// subtrai o subtotal (piso em zero) e devolve ceil(quantidade) ao estoque
// com a movimentação de entrada correspondente. Inverso exato do AddItem.
func (s *TabService) RemoveItem(tabID, itemID uint) (decimal.Decimal, error) {
	tx := s.db.Begin()
	if tx.Error != nil {
		return decimal.Zero, tx.Error
	}

	var item models.TabItem
	if err := tx.Where("id = ? AND tab_id = ?", itemID, tabID).First(&item).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, &NotFoundError{Entity: "item", ID: itemID}
		}
		return decimal.Zero, err
	}

	var tab models.Tab
	if err := tx.First(&tab, tabID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, &NotFoundError{Entity: "comanda", ID: tabID}
		}
		return decimal.Zero, err
	}
	if !tab.IsOpen() {
		tx.Rollback()
		return decimal.Zero, &InvalidStateError{Msg: fmt.Sprintf("comanda #%d está fechada", tabID)}
	}

	if err := tx.Delete(&item).Error; err != nil {
		tx.Rollback()
		return decimal.Zero, err
	}

	// Piso em zero: com aritmética decimal o clamp não deve ativar nunca;
	// os testes cobram isso.
	tab.Total = tab.Total.Sub(item.Subtotal)
	if tab.Total.IsNegative() {
		tab.Total = decimal.Zero
	}
	if err := tx.Model(&tab).Updates(map[string]interface{}{
		"total":      tab.Total,
		"updated_at": time.Now(),
	}).Error; err != nil {
		tx.Rollback()
		return decimal.Zero, err
	}

	var product models.Product
	if err := tx.First(&product, item.ProductID).Error; err != nil {
		tx.Rollback()
		return decimal.Zero, err
	}
	if product.TracksStock() {
		if err := applyMovement(tx, &product, models.MovementIn, item.Quantity.Ceil(),
			fmt.Sprintf("estorno item #%d comanda #%d", item.ID, tab.ID)); err != nil {
			tx.Rollback()
			return decimal.Zero, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return decimal.Zero, err
	}
	return tab.Total, nil
}

// applyMovement atualiza o contador denormalizado e grava a movimentação
// imutável na mesma transação, mantendo contador == soma das movimentações.
func applyMovement(tx *gorm.DB, product *models.Product, direction string, quantity decimal.Decimal, reason string) error {
	newStock := *product.Stock
	if direction == models.MovementOut {
		newStock = newStock.Sub(quantity)
	} else {
		newStock = newStock.Add(quantity)
	}
	product.Stock = &newStock

	if err := tx.Model(product).Updates(map[string]interface{}{
		"stock":      newStock,
		"updated_at": time.Now(),
	}).Error; err != nil {
		return err
	}

	movement := models.StockMovement{
		ProductID: product.ID,
		Direction: direction,
		Quantity:  quantity,
		Reason:    reason,
	}
	return tx.Create(&movement).Error
}

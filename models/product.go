package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Unidades de venda suportadas
const (
	ProductUnitEach = "un" // vendido por unidade (quantidade inteira)
	ProductUnitKg   = "kg" // vendido por peso (quantidade com 3 casas)
)

// Product representa um item do cardápio/estoque do clube.
// Stock e MinStock são opcionais: produto sem os dois configurados
// não controla estoque (ex: taxa de serviço, couvert).
type Product struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	Name      string           `gorm:"type:varchar(255);not null" json:"name"`
	Price     decimal.Decimal  `gorm:"type:decimal(10,2);not null" json:"price"`
	Unit      string           `gorm:"type:varchar(5);not null;default:'un'" json:"unit"`
	Stock     *decimal.Decimal `gorm:"type:decimal(12,3)" json:"stock,omitempty"`
	MinStock  *decimal.Decimal `gorm:"type:decimal(12,3)" json:"min_stock,omitempty"`
	Active    bool             `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time        `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time        `gorm:"not null" json:"updated_at"`
}

// TracksStock -> produto participa do controle de estoque?
func (p *Product) TracksStock() bool {
	return p.Stock != nil
}

// BelowMinimum -> estoque atual está no limite mínimo ou abaixo dele.
func (p *Product) BelowMinimum() bool {
	if p.Stock == nil || p.MinStock == nil {
		return false
	}
	return p.Stock.LessThanOrEqual(*p.MinStock)
}

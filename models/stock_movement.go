package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direções de movimentação de estoque.
const (
	MovementIn  = "entrada"
	MovementOut = "saida"
)

// StockMovement é o registro imutável de cada variação de estoque.
// A tabela é append-only: nenhuma operação do sistema edita ou apaga
// movimentações; o campo Stock do produto deve ser sempre igual à soma
// com sinal das movimentações dele.
type StockMovement struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	ProductID uint            `gorm:"not null;index" json:"product_id"`
	Product   Product         `gorm:"foreignKey:ProductID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Direction string          `gorm:"type:varchar(10);not null" json:"direction"`
	Quantity  decimal.Decimal `gorm:"type:decimal(12,3);not null" json:"quantity"`
	Reason    string          `gorm:"type:varchar(255);not null" json:"reason"`
	CreatedAt time.Time       `gorm:"not null" json:"created_at"`
}

// Signed -> quantidade com sinal (entrada positiva, saída negativa).
func (m *StockMovement) Signed() decimal.Decimal {
	if m.Direction == MovementOut {
		return m.Quantity.Neg()
	}
	return m.Quantity
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TabItem é um lançamento dentro da comanda. O preço unitário é uma
// fotografia do preço do produto no momento do lançamento: alterações
// posteriores no cardápio não mexem em comandas já lançadas.
// Quantidade sempre > 0; item zerado é removido, nunca persistido.
type TabItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	TabID     uint            `gorm:"not null;index" json:"tab_id"`
	Tab       Tab             `gorm:"foreignKey:TabID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	ProductID uint            `gorm:"not null" json:"product_id"`
	Product   Product         `gorm:"foreignKey:ProductID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"product"`
	Quantity  decimal.Decimal `gorm:"type:decimal(12,3);not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	CreatedAt time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time       `gorm:"not null" json:"updated_at"`
}

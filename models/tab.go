package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status possíveis de uma comanda. Transição única: aberta -> fechada.
const (
	TabStatusOpen   = "aberta"
	TabStatusClosed = "fechada"
)

// Formas de pagamento aceitas no fechamento.
const (
	PaymentCash       = "dinheiro"
	PaymentPix        = "pix"
	PaymentCredit     = "cartao_credito"
	PaymentDebit      = "cartao_debito"
)

// Tab é a comanda de um cliente: o ticket corrente com os itens consumidos.
// Total é sempre a soma dos subtotais dos itens.
type Tab struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CustomerID uint      `gorm:"not null;index" json:"customer_id"`
	Customer   Customer  `gorm:"foreignKey:CustomerID" json:"customer"`
	WaiterID   *uint     `gorm:"index" json:"waiter_id,omitempty"`
	Waiter     *User     `gorm:"foreignKey:WaiterID" json:"waiter,omitempty"`
	Status     string    `gorm:"type:varchar(20);not null;default:'aberta'" json:"status"`

	// OpenCustomerKey recebe o CustomerID enquanto a comanda está aberta e
	// vira NULL no fechamento. O índice único garante no banco (MySQL e
	// SQLite ignoram NULL em unique index) que cada cliente tenha no máximo
	// uma comanda aberta, sem depender de check-then-insert.
	OpenCustomerKey *uint `gorm:"uniqueIndex:idx_comanda_aberta_por_cliente" json:"-"`

	Total         decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0.00" json:"total"`
	PaymentMethod *string         `gorm:"type:varchar(30)" json:"payment_method,omitempty"`
	Note          string          `gorm:"type:text" json:"note"`
	OpenedAt      time.Time       `gorm:"not null" json:"opened_at"`
	ClosedAt      *time.Time      `json:"closed_at,omitempty"`
	Items         []TabItem       `gorm:"foreignKey:TabID" json:"items"`
	CreatedAt     time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null" json:"updated_at"`
}

// IsOpen -> comanda ainda aceita lançamentos?
func (t *Tab) IsOpen() bool {
	return t.Status == TabStatusOpen
}

// ValidPaymentMethod valida a forma de pagamento informada no fechamento.
func ValidPaymentMethod(method string) bool {
	switch method {
	case PaymentCash, PaymentPix, PaymentCredit, PaymentDebit:
		return true
	}
	return false
}

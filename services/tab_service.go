package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/alanaraujo-bit/Absolut-Poker-club-sub000/models"
)

// TabService é o motor de comandas: o único componente que escreve em
// Tab/TabItem e o único que movimenta estoque por consumo. Cada operação
// roda numa transação própria; erro em qualquer passo desfaz tudo.
type TabService struct {
	db *gorm.DB
}

func NewTabService(db *gorm.DB) *TabService {
	return &TabService{db: db}
}

// OpenTab abre uma comanda para o cliente com total zero.
// A regra "no máximo uma comanda aberta por cliente" é garantida pelo
// índice único em open_customer_key: inserimos e deixamos o banco acusar
// o conflito, em vez de consultar-e-inserir (sujeito a corrida).
func (s *TabService) OpenTab(customerID uint, waiterID *uint, note string) (*models.Tab, error) {
	var customer models.Customer
	if err := s.db.First(&customer, customerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "cliente", ID: customerID}
		}
		return nil, err
	}

	openKey := customerID
	tab := models.Tab{
		CustomerID:      customerID,
		WaiterID:        waiterID,
		Status:          models.TabStatusOpen,
		OpenCustomerKey: &openKey,
		Total:           decimal.Zero,
		Note:            note,
		OpenedAt:        time.Now(),
	}

	if err := s.db.Create(&tab).Error; err != nil {
		if isDuplicateKey(err) {
			// Recupera a comanda aberta existente para o caller retomar.
			// Ela pode ter fechado entre o insert e esta consulta; nesse
			// caso o conflito fica sem id e o caller simplesmente tenta
			// de novo.
			var existing models.Tab
			lookupErr := s.db.Where("customer_id = ? AND status = ?", customerID, models.TabStatusOpen).
				First(&existing).Error
			msg := fmt.Sprintf("cliente #%d já possui comanda aberta", customerID)
			if lookupErr == nil {
				msg = fmt.Sprintf("cliente #%d já possui comanda aberta (#%d)", customerID, existing.ID)
			}
			return nil, &ConflictError{
				Msg:           msg,
				ExistingTabID: existing.ID,
			}
		}
		return nil, err
	}

	return &tab, nil
}

// CloseTab fecha a comanda: registra forma de pagamento, congela o total
// e libera a chave de unicidade do cliente. Transição única e terminal.
func (s *TabService) CloseTab(tabID uint, paymentMethod, note string) (*models.Tab, error) {
	if !models.ValidPaymentMethod(paymentMethod) {
		return nil, &ValidationError{Msg: fmt.Sprintf("forma de pagamento inválida: %q", paymentMethod)}
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	var tab models.Tab
	if err := tx.First(&tab, tabID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "comanda", ID: tabID}
		}
		return nil, err
	}

	if !tab.IsOpen() {
		tx.Rollback()
		return nil, &InvalidStateError{Msg: fmt.Sprintf("comanda #%d já está fechada", tabID)}
	}

	now := time.Now()
	tab.Status = models.TabStatusClosed
	tab.ClosedAt = &now
	tab.PaymentMethod = &paymentMethod
	tab.OpenCustomerKey = nil
	if note != "" {
		tab.Note = note
	}

	if err := tx.Save(&tab).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	s.db.Preload("Items").Preload("Items.Product").First(&tab, tab.ID)
	return &tab, nil
}

// DeleteTab remove uma comanda aberta e vazia (aberta por engano).
// Comanda fechada nunca é apagada: é histórico.
func (s *TabService) DeleteTab(tabID uint) error {
	tx := s.db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	var tab models.Tab
	if err := tx.First(&tab, tabID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Entity: "comanda", ID: tabID}
		}
		return err
	}

	if !tab.IsOpen() {
		tx.Rollback()
		return &InvalidStateError{Msg: fmt.Sprintf("comanda #%d está fechada e não pode ser excluída", tabID)}
	}

	var itemCount int64
	if err := tx.Model(&models.TabItem{}).Where("tab_id = ?", tabID).Count(&itemCount).Error; err != nil {
		tx.Rollback()
		return err
	}
	if itemCount > 0 {
		tx.Rollback()
		return &InvalidStateError{Msg: fmt.Sprintf("comanda #%d ainda possui %d item(ns); remova-os antes", tabID, itemCount)}
	}

	if err := tx.Delete(&tab).Error; err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

// GetTab carrega a comanda com itens e produtos (leitura).
func (s *TabService) GetTab(tabID uint) (*models.Tab, error) {
	var tab models.Tab
	if err := s.db.Preload("Items").Preload("Items.Product").Preload("Customer").
		First(&tab, tabID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "comanda", ID: tabID}
		}
		return nil, err
	}
	return &tab, nil
}

// isDuplicateKey reconhece violação de índice único nos dois bancos usados
// (MySQL em produção, SQLite nos testes).
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

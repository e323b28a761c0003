package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/alanaraujo-bit/Absolut-Poker-club-sub000/models"
)

// ItemSelection indica quanto de um item o cliente quer quitar agora.
type ItemSelection struct {
	ItemID   uint            `json:"item_id"`
	Quantity decimal.Decimal `json:"quantity"`
}

// SettlementResult é o retorno do pagamento parcial.
type SettlementResult struct {
	AmountSettled    decimal.Decimal `json:"amount_settled"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
	NewTabID         uint            `json:"new_tab_id"`
	OriginalClosed   bool            `json:"original_closed"`
}

// SettlePartial quita parte do consumo sem fechar a comanda inteira:
// recorta as quantidades selecionadas para uma comanda nova já fechada
// (mesmo cliente/garçom, aberta na mesma hora da original) e deixa o
// restante na comanda original, ainda aberta.
//
// Regras duras: cada item selecionado é encolhido OU apagado, nunca os
// dois; nenhum item persiste com quantidade <= 0; a soma das quantidades
// (nova comanda + restante) é idêntica à de antes da operação; estoque
// não se move — já foi baixado no lançamento original dos itens.
// Toda validação acontece antes de qualquer escrita.
func (s *TabService) SettlePartial(tabID uint, selections []ItemSelection, paymentMethod string) (*SettlementResult, error) {
	if !models.ValidPaymentMethod(paymentMethod) {
		return nil, &ValidationError{Msg: fmt.Sprintf("forma de pagamento inválida: %q", paymentMethod)}
	}
	if len(selections) == 0 {
		return nil, &ValidationError{Msg: "nenhum item selecionado para pagamento"}
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	var tab models.Tab
	if err := tx.Preload("Items").First(&tab, tabID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "comanda", ID: tabID}
		}
		return nil, err
	}
	if !tab.IsOpen() {
		tx.Rollback()
		return nil, &InvalidStateError{Msg: fmt.Sprintf("comanda #%d está fechada", tabID)}
	}

	itemsByID := make(map[uint]*models.TabItem, len(tab.Items))
	for i := range tab.Items {
		itemsByID[tab.Items[i].ID] = &tab.Items[i]
	}

	// Seleções repetidas do mesmo item são somadas antes de validar,
	// para que o limite valha sobre o total pedido.
	toSettle := make(map[uint]decimal.Decimal, len(selections))
	for _, sel := range selections {
		qty := sel.Quantity.Round(3)
		if !qty.IsPositive() {
			tx.Rollback()
			return nil, &ValidationError{Msg: fmt.Sprintf("quantidade inválida para o item #%d", sel.ItemID)}
		}
		item, ok := itemsByID[sel.ItemID]
		if !ok {
			tx.Rollback()
			return nil, &ValidationError{Msg: fmt.Sprintf("item #%d não pertence à comanda #%d", sel.ItemID, tabID)}
		}
		total := toSettle[sel.ItemID].Add(qty)
		if total.GreaterThan(item.Quantity) {
			tx.Rollback()
			return nil, &ValidationError{Msg: fmt.Sprintf(
				"item #%d possui apenas %s; pedido %s", sel.ItemID,
				item.Quantity.StringFixed(3), total.StringFixed(3))}
		}
		toSettle[sel.ItemID] = total
	}

	// Validação concluída; daqui em diante só escrita.
	amountSettled := decimal.Zero
	settledItems := make([]models.TabItem, 0, len(toSettle))

	for itemID, qty := range toSettle {
		item := itemsByID[itemID]
		var lineAmount decimal.Decimal

		if qty.Equal(item.Quantity) {
			// Quitado por inteiro: some da comanda original.
			lineAmount = item.Subtotal
			if err := tx.Delete(&models.TabItem{}, item.ID).Error; err != nil {
				tx.Rollback()
				return nil, err
			}
		} else {
			// Encolhe no lugar; o restante segue na comanda aberta.
			// O valor quitado é a DIFERENÇA entre o subtotal antigo e o
			// recalculado: arredondar unitPrice*qty em separado pode
			// divergir um centavo e quebrar total == soma dos subtotais.
			remaining := item.Quantity.Sub(qty)
			newSubtotal := item.UnitPrice.Mul(remaining).Round(2)
			lineAmount = item.Subtotal.Sub(newSubtotal)
			item.Quantity = remaining
			item.Subtotal = newSubtotal
			if err := tx.Model(&models.TabItem{}).Where("id = ?", item.ID).Updates(map[string]interface{}{
				"quantity":   item.Quantity,
				"subtotal":   item.Subtotal,
				"updated_at": time.Now(),
			}).Error; err != nil {
				tx.Rollback()
				return nil, err
			}
		}
		amountSettled = amountSettled.Add(lineAmount)

		settledItems = append(settledItems, models.TabItem{
			ProductID: item.ProductID,
			Quantity:  qty,
			UnitPrice: item.UnitPrice,
			Subtotal:  lineAmount,
		})
	}

	tab.Total = tab.Total.Sub(amountSettled)
	if tab.Total.IsNegative() {
		tab.Total = decimal.Zero
	}

	// Comanda nova, nascida fechada, carregando o que foi quitado agora.
	now := time.Now()
	settledTab := models.Tab{
		CustomerID:    tab.CustomerID,
		WaiterID:      tab.WaiterID,
		Status:        models.TabStatusClosed,
		Total:         amountSettled,
		PaymentMethod: &paymentMethod,
		Note:          fmt.Sprintf("pagamento parcial da comanda #%d", tab.ID),
		OpenedAt:      tab.OpenedAt,
		ClosedAt:      &now,
	}
	if err := tx.Create(&settledTab).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	for i := range settledItems {
		settledItems[i].TabID = settledTab.ID
		if err := tx.Create(&settledItems[i]).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	originalClosed := false
	if !tab.Total.IsPositive() {
		// Saldo zerou: a original fecha junto.
		tab.Status = models.TabStatusClosed
		tab.ClosedAt = &now
		tab.PaymentMethod = &paymentMethod
		tab.OpenCustomerKey = nil
		tab.Note = fmt.Sprintf("quitada via pagamentos parciais (última na comanda #%d)", settledTab.ID)
		originalClosed = true
	}
	tab.Items = nil // já tratados individualmente acima
	if err := tx.Save(&tab).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return &SettlementResult{
		AmountSettled:    amountSettled,
		RemainingBalance: tab.Total,
		NewTabID:         settledTab.ID,
		OriginalClosed:   originalClosed,
	}, nil
}

package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/alanaraujo-bit/Absolut-Poker-club-sub000/events"
	"github.com/alanaraujo-bit/Absolut-Poker-club-sub000/models"
	"github.com/alanaraujo-bit/Absolut-Poker-club-sub000/services"
	"github.com/alanaraujo-bit/Absolut-Poker-club-sub000/utils"
)

type TabController struct {
	DB   *gorm.DB
	tabs *services.TabService
	pix  *services.PixService
}

func NewTabController(db *gorm.DB) *TabController {
	return &TabController{
		DB:   db,
		tabs: services.NewTabService(db),
		pix:  services.NewPixService(),
	}
}

// respondServiceError mapeia os erros tipados do motor para o status HTTP.
func respondServiceError(c *gin.Context, err error) {
	utils.RespondError(c, services.HTTPStatus(err), err)
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return 0, false
	}
	return uint(id), true
}

// GetAllTabs -> lista comandas; ?status=aberta|fechada filtra.
func (tc *TabController) GetAllTabs(c *gin.Context) {
	query := tc.DB.Preload("Items").Preload("Customer").Order("opened_at desc")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var tabs []models.Tab
	if err := query.Find(&tabs).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Lista de comandas", tabs)
}

// GetTabByID -> detalhe de uma comanda com itens.
func (tc *TabController) GetTabByID(c *gin.Context) {
	tabID, ok := paramID(c, "tab_id")
	if !ok {
		return
	}

	tab, err := tc.tabs.GetTab(tabID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Detalhe da comanda", tab)
}

// OpenTab -> abre comanda para o cliente (409 se já houver uma aberta).
func (tc *TabController) OpenTab(c *gin.Context) {
	type reqBody struct {
		CustomerID uint   `json:"customer_id" binding:"required"`
		WaiterID   *uint  `json:"waiter_id"`
		Note       string `json:"note"`
	}

	var req reqBody
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	tab, err := tc.tabs.OpenTab(req.CustomerID, req.WaiterID, req.Note)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.InfoLogger.Printf("Comanda #%d aberta para o cliente #%d", tab.ID, tab.CustomerID)
	events.BroadcastTabOpened(*tab)

	utils.RespondJSON(c, http.StatusCreated, "Comanda aberta", tab)
}

// AddItem -> lança um consumo na comanda.
func (tc *TabController) AddItem(c *gin.Context) {
	tabID, ok := paramID(c, "tab_id")
	if !ok {
		return
	}

	type reqBody struct {
		ProductID uint            `json:"product_id" binding:"required"`
		Quantity  decimal.Decimal `json:"quantity" binding:"required"`
	}

	var req reqBody
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	item, newTotal, err := tc.tabs.AddItem(tabID, req.ProductID, req.Quantity)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	events.BroadcastTabUpdate(tabID)
	if item.Product.TracksStock() && item.Product.BelowMinimum() {
		events.BroadcastStockAlert(item.Product)
	}

	utils.RespondJSON(c, http.StatusCreated, "Item lançado", gin.H{
		"item":  item,
		"total": newTotal,
	})
}

// RemoveItem -> estorna um lançamento.
func (tc *TabController) RemoveItem(c *gin.Context) {
	tabID, ok := paramID(c, "tab_id")
	if !ok {
		return
	}
	itemID, ok := paramID(c, "item_id")
	if !ok {
		return
	}

	newTotal, err := tc.tabs.RemoveItem(tabID, itemID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	events.BroadcastTabUpdate(tabID)

	utils.RespondJSON(c, http.StatusOK, "Item estornado", gin.H{
		"tab_id": tabID,
		"total":  newTotal,
	})
}

// CloseTab -> fecha a comanda com a forma de pagamento.
func (tc *TabController) CloseTab(c *gin.Context) {
	tabID, ok := paramID(c, "tab_id")
	if !ok {
		return
	}

	type reqBody struct {
		PaymentMethod string `json:"payment_method" binding:"required"`
		Note          string `json:"note"`
	}

	var req reqBody
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	tab, err := tc.tabs.CloseTab(tabID, req.PaymentMethod, req.Note)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.InfoLogger.Printf("Comanda #%d fechada (%s, total %s)",
		tab.ID, req.PaymentMethod, utils.FormatCurrencyBRL(tab.Total))
	events.BroadcastTabClosed(*tab)

	utils.RespondJSON(c, http.StatusOK, "Comanda fechada", tab)
}

// SettlePartial -> quita parte dos itens numa comanda nova já fechada.
func (tc *TabController) SettlePartial(c *gin.Context) {
	tabID, ok := paramID(c, "tab_id")
	if !ok {
		return
	}

	type reqBody struct {
		Items         []services.ItemSelection `json:"items" binding:"required"`
		PaymentMethod string                   `json:"payment_method" binding:"required"`
	}

	var req reqBody
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	result, err := tc.tabs.SettlePartial(tabID, req.Items, req.PaymentMethod)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.InfoLogger.Printf("Pagamento parcial na comanda #%d: %s quitado, saldo %s (nova comanda #%d)",
		tabID, utils.FormatCurrencyBRL(result.AmountSettled),
		utils.FormatCurrencyBRL(result.RemainingBalance), result.NewTabID)
	events.BroadcastTabUpdate(tabID)
	if result.OriginalClosed {
		if tab, err := tc.tabs.GetTab(tabID); err == nil {
			events.BroadcastTabClosed(*tab)
		}
	}

	utils.RespondJSON(c, http.StatusOK, "Pagamento parcial registrado", result)
}

// DeleteTab -> exclui comanda aberta e vazia (aberta por engano).
func (tc *TabController) DeleteTab(c *gin.Context) {
	tabID, ok := paramID(c, "tab_id")
	if !ok {
		return
	}

	if err := tc.tabs.DeleteTab(tabID); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Comanda excluída", gin.H{"tab_id": tabID})
}

// GetPixCode -> payload PIX copia-e-cola para o saldo da comanda.
func (tc *TabController) GetPixCode(c *gin.Context) {
	tabID, ok := paramID(c, "tab_id")
	if !ok {
		return
	}

	tab, err := tc.tabs.GetTab(tabID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !tab.IsOpen() {
		respondServiceError(c, &services.InvalidStateError{Msg: "comanda já está fechada"})
		return
	}

	payload, err := tc.pix.GeneratePayload(tab.ID, tab.Total)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Cobrança PIX gerada", gin.H{
		"tab_id":  tab.ID,
		"amount":  tab.Total,
		"payload": payload,
	})
}

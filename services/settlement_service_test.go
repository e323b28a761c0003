package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/alanaraujo-bit/Absolut-Poker-club-sub000/models"
)

// seedDose -> produto de 10.00 usado nos cenários de pagamento parcial.
func seedDose(t *testing.T, db *gorm.DB) uint {
	t.Helper()
	stock := decimal.NewFromInt(30)
	product := models.Product{
		Name:   "Dose Gin",
		Price:  decimal.RequireFromString("10.00"),
		Unit:   models.ProductUnitEach,
		Stock:  &stock,
		Active: true,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("seed produto: %v", err)
	}
	return product.ID
}

func sumQuantities(items []models.TabItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.Quantity)
	}
	return sum
}

// Itens A (qty 1) e B (qty 2) de 10.00; quitar só A.
// Nova comanda fechada de 10.00; original segue aberta com 20.00 e sem A.
func TestSettlePartialSubset(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTabService(db)
	doseID := seedDose(t, db)

	tab, _ := svc.OpenTab(1, nil, "")
	itemA, _, _ := svc.AddItem(tab.ID, doseID, decimal.NewFromInt(1))
	itemB, _, _ := svc.AddItem(tab.ID, doseID, decimal.NewFromInt(2))

	result, err := svc.SettlePartial(tab.ID, []ItemSelection{
		{ItemID: itemA.ID, Quantity: decimal.NewFromInt(1)},
	}, models.PaymentCash)
	assert.NoError(t, err)

	assert.True(t, result.AmountSettled.Equal(decimal.RequireFromString("10.00")))
	assert.True(t, result.RemainingBalance.Equal(decimal.RequireFromString("20.00")))
	assert.False(t, result.OriginalClosed)
	assert.NotZero(t, result.NewTabID)

	// Original: aberta, sem o item A, com o B intacto
	var original models.Tab
	assert.NoError(t, db.Preload("Items").First(&original, tab.ID).Error)
	assert.Equal(t, models.TabStatusOpen, original.Status)
	assert.True(t, original.Total.Equal(decimal.RequireFromString("20.00")))
	assert.Len(t, original.Items, 1)
	assert.Equal(t, itemB.ID, original.Items[0].ID)
	assert.True(t, original.Items[0].Quantity.Equal(decimal.NewFromInt(2)))

	// Nova: fechada, nascida com o que foi quitado
	var settled models.Tab
	assert.NoError(t, db.Preload("Items").First(&settled, result.NewTabID).Error)
	assert.Equal(t, models.TabStatusClosed, settled.Status)
	assert.NotNil(t, settled.ClosedAt)
	assert.True(t, settled.Total.Equal(decimal.RequireFromString("10.00")))
	assert.Equal(t, tab.CustomerID, settled.CustomerID)
	assert.True(t, settled.OpenedAt.Equal(original.OpenedAt))
	assert.Contains(t, settled.Note, "pagamento parcial")
	assert.Len(t, settled.Items, 1)
	assert.True(t, settled.Items[0].Quantity.Equal(decimal.NewFromInt(1)))

	assertTabTotalConsistent(t, db, tab.ID)
	assertTabTotalConsistent(t, db, result.NewTabID)
}

// Quitar tudo fecha a original junto.
func TestSettleEverythingClosesOriginal(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTabService(db)
	doseID := seedDose(t, db)

	tab, _ := svc.OpenTab(1, nil, "")
	itemA, _, _ := svc.AddItem(tab.ID, doseID, decimal.NewFromInt(1))
	itemB, _, _ := svc.AddItem(tab.ID, doseID, decimal.NewFromInt(2))

	result, err := svc.SettlePartial(tab.ID, []ItemSelection{
		{ItemID: itemA.ID, Quantity: decimal.NewFromInt(1)},
		{ItemID: itemB.ID, Quantity: decimal.NewFromInt(2)},
	}, models.PaymentPix)
	assert.NoError(t, err)

	assert.True(t, result.AmountSettled.Equal(decimal.RequireFromString("30.00")))
	assert.True(t, result.RemainingBalance.IsZero())
	assert.True(t, result.OriginalClosed)

	var original models.Tab
	db.Preload("Items").First(&original, tab.ID)
	assert.Equal(t, models.TabStatusClosed, original.Status)
	assert.NotNil(t, original.ClosedAt)
	assert.Empty(t, original.Items)
	assert.Contains(t, original.Note, "quitada")

	var settled models.Tab
	db.Preload("Items").First(&settled, result.NewTabID)
	assert.True(t, settled.Total.Equal(decimal.RequireFromString("30.00")))

	// Cliente liberado para abrir outra comanda
	_, err = svc.OpenTab(1, nil, "")
	assert.NoError(t, err)
}

// Quitar parte de um item encolhe no lugar; nunca vira item zerado.
func TestSettleShrinksItemInPlace(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTabService(db)
	doseID := seedDose(t, db)

	tab, _ := svc.OpenTab(1, nil, "")
	item, _, _ := svc.AddItem(tab.ID, doseID, decimal.NewFromInt(3))

	result, err := svc.SettlePartial(tab.ID, []ItemSelection{
		{ItemID: item.ID, Quantity: decimal.NewFromInt(2)},
	}, models.PaymentCash)
	assert.NoError(t, err)
	assert.True(t, result.AmountSettled.Equal(decimal.RequireFromString("20.00")))
	assert.False(t, result.OriginalClosed)

	var remaining models.TabItem
	assert.NoError(t, db.First(&remaining, item.ID).Error)
	assert.True(t, remaining.Quantity.Equal(decimal.NewFromInt(1)))
	assert.True(t, remaining.Subtotal.Equal(decimal.RequireFromString("10.00")))
	assert.True(t, remaining.Quantity.IsPositive(), "item nunca persiste zerado")

	assertTabTotalConsistent(t, db, tab.ID)
}

// Conservação de quantidade: nada se cria nem se perde no recorte.
func TestSettleConservesQuantities(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTabService(db)
	doseID := seedDose(t, db)

	tab, _ := svc.OpenTab(1, nil, "")
	i1, _, _ := svc.AddItem(tab.ID, doseID, decimal.NewFromInt(4))
	i2, _, _ := svc.AddItem(tab.ID, 2, decimal.RequireFromString("1.500"))

	var before []models.TabItem
	db.Where("tab_id = ?", tab.ID).Find(&before)
	totalBefore := sumQuantities(before)

	result, err := svc.SettlePartial(tab.ID, []ItemSelection{
		{ItemID: i1.ID, Quantity: decimal.NewFromInt(2)},
		{ItemID: i2.ID, Quantity: decimal.RequireFromString("0.500")},
	}, models.PaymentCash)
	assert.NoError(t, err)

	var remaining []models.TabItem
	db.Where("tab_id = ?", tab.ID).Find(&remaining)
	var settled []models.TabItem
	db.Where("tab_id = ?", result.NewTabID).Find(&settled)

	assert.True(t, sumQuantities(settled).Equal(decimal.RequireFromString("2.500")))
	assert.True(t, sumQuantities(remaining).Add(sumQuantities(settled)).Equal(totalBefore),
		"quantidades antes %s, depois %s+%s", totalBefore, sumQuantities(remaining), sumQuantities(settled))
}

// Quantidade fracionada (kg) com arredondamento no limite do centavo:
// 9.90 * 0.055 kg -> subtotal 0.54; quitar 0.025 kg recalcula o restante
// para 0.30 e o valor quitado tem que ser a diferença (0.24), nunca
// round(9.90*0.025)=0.25 — senão o total da original descola da soma
// dos subtotais por um centavo.
func TestSettleFractionalKgConservesMoney(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTabService(db)

	stock := decimal.NewFromInt(10)
	spice := models.Product{
		Name:   "Pimenta Artesanal",
		Price:  decimal.RequireFromString("9.90"),
		Unit:   models.ProductUnitKg,
		Stock:  &stock,
		Active: true,
	}
	if err := db.Create(&spice).Error; err != nil {
		t.Fatalf("seed produto: %v", err)
	}

	tab, _ := svc.OpenTab(1, nil, "")
	item, _, err := svc.AddItem(tab.ID, spice.ID, decimal.RequireFromString("0.055"))
	assert.NoError(t, err)
	assert.True(t, item.Subtotal.Equal(decimal.RequireFromString("0.54")))

	result, err := svc.SettlePartial(tab.ID, []ItemSelection{
		{ItemID: item.ID, Quantity: decimal.RequireFromString("0.025")},
	}, models.PaymentCash)
	assert.NoError(t, err)

	var remaining models.TabItem
	assert.NoError(t, db.First(&remaining, item.ID).Error)
	assert.True(t, remaining.Subtotal.Equal(decimal.RequireFromString("0.30")))
	assert.True(t, result.AmountSettled.Equal(decimal.RequireFromString("0.24")),
		"valor quitado deve ser a diferença dos subtotais, veio %s", result.AmountSettled)

	// Nenhum centavo nasce nem some no recorte
	assert.True(t, result.AmountSettled.Add(result.RemainingBalance).Equal(decimal.RequireFromString("0.54")))
	assertTabTotalConsistent(t, db, tab.ID)
	assertTabTotalConsistent(t, db, result.NewTabID)
}

// Pedir mais do que o item tem -> ValidationError e nada muda.
func TestSettleMoreThanAvailableFails(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTabService(db)
	doseID := seedDose(t, db)

	tab, _ := svc.OpenTab(1, nil, "")
	item, totalBefore, _ := svc.AddItem(tab.ID, doseID, decimal.NewFromInt(2))

	_, err := svc.SettlePartial(tab.ID, []ItemSelection{
		{ItemID: item.ID, Quantity: decimal.NewFromInt(3)},
	}, models.PaymentCash)
	var validation *ValidationError
	assert.ErrorAs(t, err, &validation)

	// Rollback completo: total, item e contagem de comandas intactos
	var reloaded models.Tab
	db.First(&reloaded, tab.ID)
	assert.True(t, reloaded.Total.Equal(totalBefore))

	var itemReloaded models.TabItem
	db.First(&itemReloaded, item.ID)
	assert.True(t, itemReloaded.Quantity.Equal(decimal.NewFromInt(2)))

	var tabCount int64
	db.Model(&models.Tab{}).Count(&tabCount)
	assert.Equal(t, int64(1), tabCount)
}

func TestSettleUnknownItemFails(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTabService(db)
	doseID := seedDose(t, db)

	tabAna, _ := svc.OpenTab(1, nil, "")
	tabBruno, _ := svc.OpenTab(2, nil, "")
	itemAna, _, _ := svc.AddItem(tabAna.ID, doseID, decimal.NewFromInt(1))

	// Item de outra comanda não conta como "da comanda"
	_, err := svc.SettlePartial(tabBruno.ID, []ItemSelection{
		{ItemID: itemAna.ID, Quantity: decimal.NewFromInt(1)},
	}, models.PaymentCash)
	var validation *ValidationError
	assert.ErrorAs(t, err, &validation)
}

// Seleções repetidas do mesmo item são somadas antes de validar o limite.
func TestSettleDuplicateSelectionsAggregate(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTabService(db)
	doseID := seedDose(t, db)

	tab, _ := svc.OpenTab(1, nil, "")
	item, _, _ := svc.AddItem(tab.ID, doseID, decimal.NewFromInt(3))

	// 2 + 2 > 3 -> rejeita
	_, err := svc.SettlePartial(tab.ID, []ItemSelection{
		{ItemID: item.ID, Quantity: decimal.NewFromInt(2)},
		{ItemID: item.ID, Quantity: decimal.NewFromInt(2)},
	}, models.PaymentCash)
	var validation *ValidationError
	assert.ErrorAs(t, err, &validation)

	// 1 + 2 == 3 -> quita por inteiro e apaga o item
	result, err := svc.SettlePartial(tab.ID, []ItemSelection{
		{ItemID: item.ID, Quantity: decimal.NewFromInt(1)},
		{ItemID: item.ID, Quantity: decimal.NewFromInt(2)},
	}, models.PaymentCash)
	assert.NoError(t, err)
	assert.True(t, result.OriginalClosed)

	var count int64
	db.Model(&models.TabItem{}).Where("tab_id = ?", tab.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}

// Pagamento parcial não mexe em estoque: a baixa aconteceu no lançamento.
func TestSettleDoesNotTouchStock(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTabService(db)
	doseID := seedDose(t, db)

	tab, _ := svc.OpenTab(1, nil, "")
	item, _, _ := svc.AddItem(tab.ID, doseID, decimal.NewFromInt(2))

	var movementsBefore int64
	db.Model(&models.StockMovement{}).Count(&movementsBefore)

	_, err := svc.SettlePartial(tab.ID, []ItemSelection{
		{ItemID: item.ID, Quantity: decimal.NewFromInt(1)},
	}, models.PaymentCash)
	assert.NoError(t, err)

	var movementsAfter int64
	db.Model(&models.StockMovement{}).Count(&movementsAfter)
	assert.Equal(t, movementsBefore, movementsAfter)

	var product models.Product
	db.First(&product, doseID)
	assert.True(t, product.Stock.Equal(decimal.NewFromInt(28)))
}

func TestSettleEmptySelection(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTabService(db)

	tab, _ := svc.OpenTab(1, nil, "")
	_, err := svc.SettlePartial(tab.ID, nil, models.PaymentCash)
	var validation *ValidationError
	assert.ErrorAs(t, err, &validation)

	_, err = svc.SettlePartial(tab.ID, []ItemSelection{}, "cheque")
	assert.ErrorAs(t, err, &validation)
}

func TestSettleTabNotFound(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTabService(db)

	_, err := svc.SettlePartial(123, []ItemSelection{
		{ItemID: 1, Quantity: decimal.NewFromInt(1)},
	}, models.PaymentCash)
	var notFound *NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

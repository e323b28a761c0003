package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/alanaraujo-bit/Absolut-Poker-club-sub000/models"
	"github.com/alanaraujo-bit/Absolut-Poker-club-sub000/router"
	"github.com/alanaraujo-bit/Absolut-Poker-club-sub000/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	os.Exit(m.Run())
}

// TestEndToEndIntegration cobre o fluxo principal do salão:
// 0. Seed de usuário caixa + cliente, login -> token
// 1. Cadastrar produto com estoque
// 2. Abrir comanda para o cliente
// 3. Lançar consumo (total e estoque acompanham)
// 4. Pagamento parcial -> comanda nova fechada
// 5. Fechar o saldo restante
// 6. Conferir extrato de movimentações
func TestEndToEndIntegration(t *testing.T) {
	db := setupIntegrationDB()
	r := router.SetupRouter(db)

	token := loginTest(t, r)

	productID := createProductTest(t, r, token)
	tabID := openTabTest(t, r, token)

	itemID := addItemTest(t, r, token, tabID, productID)
	settlePartialTest(t, r, token, tabID, itemID)
	closeTabTest(t, r, token, tabID)
	checkMovementsTest(t, r, token, productID)
}

// setupIntegrationDB -> SQLite em memória com schema + seeds mínimos
func setupIntegrationDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file:integration?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		log.Fatalf("falha ao abrir sqlite em memória: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.Product{},
		&models.Tab{},
		&models.TabItem{},
		&models.StockMovement{},
	)
	if err != nil {
		log.Fatalf("falha na migração: %v", err)
	}

	hashed, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)
	db.Create(&models.User{
		Name:     "Caixa Teste",
		Email:    "caixa@absolutclub.com.br",
		Password: string(hashed),
		Role:     models.RoleCashier,
	})

	db.Create(&models.Customer{Name: "Ana", Phone: "11988887777", Active: true})

	return db
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func doRequest(t *testing.T, r *gin.Engine, method, url, token string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, url, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func parseEnvelope(t *testing.T, w *httptest.ResponseRecorder, wantCode int, out interface{}) {
	t.Helper()

	if w.Code != wantCode {
		t.Fatalf("esperava %d, veio %d, body=%s", wantCode, w.Code, w.Body.String())
	}
	var resp envelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("resposta inválida: %v, body=%s", err, w.Body.String())
	}
	if !resp.Status {
		t.Fatalf("status=false, msg=%s", resp.Message)
	}
	if out != nil {
		if err := json.Unmarshal(resp.Data, out); err != nil {
			t.Fatalf("data inválido: %v, data=%s", err, resp.Data)
		}
	}
}

func loginTest(t *testing.T, r *gin.Engine) string {
	w := doRequest(t, r, http.MethodPost, "/login", "", map[string]string{
		"email":    "caixa@absolutclub.com.br",
		"password": "secret123",
	})

	var data struct {
		Token string `json:"token"`
	}
	parseEnvelope(t, w, http.StatusOK, &data)
	if data.Token == "" {
		t.Fatal("login não retornou token")
	}
	return data.Token
}

func createProductTest(t *testing.T, r *gin.Engine, token string) uint {
	w := doRequest(t, r, http.MethodPost, "/produtos", token, map[string]interface{}{
		"name":      "Cerveja Long Neck",
		"price":     14.5,
		"unit":      "un",
		"stock":     60,
		"min_stock": 12,
	})

	var product models.Product
	parseEnvelope(t, w, http.StatusCreated, &product)
	return product.ID
}

func openTabTest(t *testing.T, r *gin.Engine, token string) uint {
	w := doRequest(t, r, http.MethodPost, "/comandas", token, map[string]interface{}{
		"customer_id": 1,
	})

	var tab models.Tab
	parseEnvelope(t, w, http.StatusCreated, &tab)
	if tab.Status != models.TabStatusOpen {
		t.Fatalf("comanda deveria nascer aberta, veio %q", tab.Status)
	}

	// Mesmo cliente de novo -> 409
	w = doRequest(t, r, http.MethodPost, "/comandas", token, map[string]interface{}{
		"customer_id": 1,
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("segunda comanda aberta deveria dar 409, veio %d", w.Code)
	}

	return tab.ID
}

func addItemTest(t *testing.T, r *gin.Engine, token string, tabID, productID uint) uint {
	w := doRequest(t, r, http.MethodPost, fmt.Sprintf("/comandas/%d/itens", tabID), token,
		map[string]interface{}{
			"product_id": productID,
			"quantity":   4,
		})

	var data struct {
		Item models.TabItem `json:"item"`
	}
	parseEnvelope(t, w, http.StatusCreated, &data)

	// Lançamento baixa o estoque na hora: 60 - 4 = 56
	var product models.Product
	if err := doGetProduct(r, token, productID, &product); err != nil {
		t.Fatal(err)
	}
	if product.Stock == nil || !product.Stock.Equal(decimal.NewFromInt(56)) {
		t.Fatalf("estoque deveria ser 56, veio %v", product.Stock)
	}

	return data.Item.ID
}

func settlePartialTest(t *testing.T, r *gin.Engine, token string, tabID, itemID uint) {
	w := doRequest(t, r, http.MethodPost, fmt.Sprintf("/comandas/%d/pagar-parcial", tabID), token,
		map[string]interface{}{
			"payment_method": models.PaymentPix,
			"items": []map[string]interface{}{
				{"item_id": itemID, "quantity": 1},
			},
		})

	var result struct {
		NewTabID       uint `json:"new_tab_id"`
		OriginalClosed bool `json:"original_closed"`
	}
	parseEnvelope(t, w, http.StatusOK, &result)
	if result.OriginalClosed {
		t.Fatal("ainda sobra saldo, a original não deveria fechar")
	}

	// A comanda nova já nasce fechada
	w = doRequest(t, r, http.MethodGet, fmt.Sprintf("/comandas/%d", result.NewTabID), token, nil)
	var settled models.Tab
	parseEnvelope(t, w, http.StatusOK, &settled)
	if settled.Status != models.TabStatusClosed {
		t.Fatalf("comanda de quitação deveria estar fechada, veio %q", settled.Status)
	}
}

func closeTabTest(t *testing.T, r *gin.Engine, token string, tabID uint) {
	w := doRequest(t, r, http.MethodPost, fmt.Sprintf("/comandas/%d/fechar", tabID), token,
		map[string]interface{}{
			"payment_method": models.PaymentCash,
		})

	var tab models.Tab
	parseEnvelope(t, w, http.StatusOK, &tab)
	if tab.Status != models.TabStatusClosed || tab.ClosedAt == nil {
		t.Fatalf("comanda deveria fechar com carimbo de hora, veio %+v", tab)
	}
}

func checkMovementsTest(t *testing.T, r *gin.Engine, token string, productID uint) {
	w := doRequest(t, r, http.MethodGet,
		fmt.Sprintf("/produtos/%d/movimentacoes", productID), token, nil)

	var movements []models.StockMovement
	parseEnvelope(t, w, http.StatusOK, &movements)
	if len(movements) != 1 {
		t.Fatalf("só o lançamento gera movimentação, veio %d", len(movements))
	}
	if movements[0].Direction != models.MovementOut {
		t.Fatalf("movimentação deveria ser saída, veio %q", movements[0].Direction)
	}
}

func doGetProduct(r *gin.Engine, token string, productID uint, out *models.Product) error {
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/produtos/%d", productID), nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		return fmt.Errorf("GET produto: code=%d body=%s", w.Code, w.Body.String())
	}
	var resp envelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		return err
	}
	return json.Unmarshal(resp.Data, out)
}

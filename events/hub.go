package events

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/alanaraujo-bit/Absolut-Poker-club-sub000/models"
)

// Tipos de evento emitidos para os painéis conectados.
const (
	EventTabOpened  = "comanda_aberta"
	EventTabUpdate  = "comanda_atualizada"
	EventTabClosed  = "comanda_fechada"
	EventStockAlert = "estoque_baixo"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub guarda as conexões dos painéis (bar, caixa, admin) para broadcast.
// Entrega é best-effort: falha de envio só derruba aquela conexão.
type Hub struct {
	clients map[*websocket.Conn]string // conn -> role
	mutex   sync.Mutex
}

var hub = Hub{
	clients: make(map[*websocket.Conn]string),
}

// RegisterClient adiciona a conexão com o papel do usuário.
func RegisterClient(conn *websocket.Conn, role string) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	hub.clients[conn] = role
}

// UnregisterClient remove e fecha a conexão.
func UnregisterClient(conn *websocket.Conn) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	delete(hub.clients, conn)
	conn.Close()
}

// BroadcastTabOpened -> comanda nova no salão.
func BroadcastTabOpened(tab models.Tab) {
	broadcast(Message{Event: EventTabOpened, Data: tab})
}

// BroadcastTabUpdate -> lançamento/estorno/pagamento parcial na comanda.
func BroadcastTabUpdate(tabID uint) {
	broadcast(Message{
		Event: EventTabUpdate,
		Data:  map[string]interface{}{"tab_id": tabID},
	})
}

// BroadcastTabClosed -> comanda encerrada.
func BroadcastTabClosed(tab models.Tab) {
	broadcast(Message{Event: EventTabClosed, Data: tab})
}

// BroadcastStockAlert -> produto atingiu o estoque mínimo (ou negativou).
func BroadcastStockAlert(product models.Product) {
	broadcast(Message{Event: EventStockAlert, Data: product})
}

func broadcast(msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		log.Printf("events: erro ao serializar mensagem: %v", err)
		return
	}

	hub.mutex.Lock()
	defer hub.mutex.Unlock()

	for conn := range hub.clients {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			conn.Close()
			delete(hub.clients, conn)
		}
	}
}

// Package events рассылает изменения заказов подписчикам панели точки.
package events

import (
	"sync"

	"github.com/mmeshcher/storefront/internal/model"
)

// Kind задаёт тип события заказа.
type Kind string

const (
	OrderCreated       Kind = "order_created"
	OrderStatusChanged Kind = "order_status_changed"
	OrderPaid          Kind = "order_paid"
)

// OrderEvent описывает изменение заказа.
type OrderEvent struct {
	Kind  Kind        `json:"kind"`
	Order model.Order `json:"order"`
}

const subscriberBuffer = 16

// Hub хранит подписки по точкам. Медленный подписчик теряет события,
// публикация никогда не блокируется.
type Hub struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int64]map[int]chan OrderEvent
}

// NewHub создаёт пустой Hub.
func NewHub() *Hub {
	return &Hub{
		subs: make(map[int64]map[int]chan OrderEvent),
	}
}

// Subscribe подписывает на события точки outletID. Возвращённая функция
// отписывает и закрывает канал; повторный вызов безопасен.
func (h *Hub) Subscribe(outletID int64) (<-chan OrderEvent, func()) {
	ch := make(chan OrderEvent, subscriberBuffer)

	h.mu.Lock()
	h.nextID++
	id := h.nextID
	if h.subs[outletID] == nil {
		h.subs[outletID] = make(map[int]chan OrderEvent)
	}
	h.subs[outletID][id] = ch
	h.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[outletID], id)
			if len(h.subs[outletID]) == 0 {
				delete(h.subs, outletID)
			}
			h.mu.Unlock()
			close(ch)
		})
	}

	return ch, unsubscribe
}

// Publish отправляет событие всем подписчикам точки заказа.
func (h *Hub) Publish(ev OrderEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subs[ev.Order.OutletID] {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Subscribers возвращает число подписчиков точки.
func (h *Hub) Subscribers(outletID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[outletID])
}

package services

import (
	"context"
	"log"
	"sync"
	"time"

	"mercadito/libs"
	"mercadito/models"
	"mercadito/repositories"
)

// CartStore owns one profile's cart. Every mutation rebuilds the cart
// value, stamps updatedAt, persists it and broadcasts the change; other
// stores attached to the same storage reload on notify. Persistence is
// best-effort: a failing backend never fails the caller, the in-memory
// state still updates for this view.
type CartStore struct {
	profile   string
	storage   repositories.CartStorage
	analytics libs.Analytics

	mu       sync.Mutex
	cart     models.Cart
	hydrated bool
	stop     func()
}

func (s *CartStore) hydrateLocked(ctx context.Context) {
	if s.hydrated {
		return
	}
	cart, err := s.storage.Read(ctx, s.profile)
	if err != nil {
		log.Printf("cart %s: storage read failed, starting empty: %v", s.profile, err)
		cart = models.NewCart()
	}
	s.cart = cart
	s.hydrated = true
}

// reload applies an externally broadcast mutation. Last writer wins.
func (s *CartStore) reload(ctx context.Context) {
	cart, err := s.storage.Read(ctx, s.profile)
	if err != nil {
		log.Printf("cart %s: reload failed: %v", s.profile, err)
		return
	}
	s.mu.Lock()
	s.cart = cart
	s.hydrated = true
	s.mu.Unlock()
}

func (s *CartStore) Cart(ctx context.Context) models.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hydrateLocked(ctx)
	return s.cart.Clone()
}

func (s *CartStore) TotalItems(ctx context.Context) int {
	return s.Cart(ctx).TotalItems()
}

// AddItem merges qty into an existing line or appends a new one, clamped
// at models.MaxQuantity. A missing product id or non-positive qty is a
// no-op.
func (s *CartStore) AddItem(ctx context.Context, product models.Product, qty int) {
	if product.ID == "" || qty <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.hydrateLocked(ctx)

	next := s.cart.Clone()
	found := false
	for i, li := range next.LineItems {
		if li.ItemID == product.ID {
			next.LineItems[i].Quantity = clampQuantity(li.Quantity + qty)
			found = true
			break
		}
	}
	if !found {
		next.LineItems = append(next.LineItems, models.LineItem{
			ItemID:   product.ID,
			Product:  product,
			Quantity: clampQuantity(qty),
		})
	}
	s.commitLocked(ctx, next)
}

// SetQuantity clamps qty into [0, 999]; zero removes the line. Unknown
// item ids are a no-op.
func (s *CartStore) SetQuantity(ctx context.Context, itemID string, qty int) {
	if qty < 0 {
		qty = 0
	}
	if qty > models.MaxQuantity {
		qty = models.MaxQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.hydrateLocked(ctx)

	next := s.cart.Clone()
	if qty == 0 {
		kept := next.LineItems[:0]
		for _, li := range next.LineItems {
			if li.ItemID != itemID {
				kept = append(kept, li)
			}
		}
		if len(kept) == len(next.LineItems) {
			return
		}
		next.LineItems = kept
	} else {
		found := false
		for i, li := range next.LineItems {
			if li.ItemID == itemID {
				next.LineItems[i].Quantity = qty
				found = true
				break
			}
		}
		if !found {
			return
		}
	}
	s.commitLocked(ctx, next)
}

// RemoveItem drops the line if present; an unknown item id is a no-op
// and touches neither updatedAt nor the persisted copy.
func (s *CartStore) RemoveItem(ctx context.Context, itemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hydrateLocked(ctx)

	next := s.cart.Clone()
	kept := next.LineItems[:0]
	for _, li := range next.LineItems {
		if li.ItemID != itemID {
			kept = append(kept, li)
		}
	}
	if len(kept) == len(next.LineItems) {
		return
	}
	next.LineItems = kept
	s.commitLocked(ctx, next)
}

func (s *CartStore) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hydrated = true
	s.commitLocked(ctx, models.NewCart())
}

func (s *CartStore) commitLocked(ctx context.Context, next models.Cart) {
	next.UpdatedAt = time.Now().UnixMilli()
	s.cart = next

	if err := s.storage.Write(ctx, s.profile, next); err != nil {
		log.Printf("cart %s: persist failed, continuing in memory: %v", s.profile, err)
	}
	s.analytics.SendEvent("Replace Cart", replaceCartPayload(next))
}

func clampQuantity(qty int) int {
	if qty > models.MaxQuantity {
		return models.MaxQuantity
	}
	return qty
}

func replaceCartPayload(cart models.Cart) map[string]interface{} {
	lines := make([]map[string]interface{}, 0, len(cart.LineItems))
	for _, li := range cart.LineItems {
		lines = append(lines, map[string]interface{}{
			"catalogObjectType": "Product",
			"catalogObjectId":   li.Product.ID,
			"quantity":          li.Quantity,
			"price":             li.Product.Price,
			"currency":          li.Product.Currency,
			"attributes": map[string]interface{}{
				"name":       li.Product.Name,
				"brand":      li.Product.Brand,
				"imageUrl":   li.Product.Image,
				"categoryId": li.Product.CategoryID,
			},
		})
	}
	return map[string]interface{}{"lineItems": lines}
}

// CartManager hands out one CartStore per profile and keeps each store
// subscribed to the shared storage's broadcast channel.
type CartManager struct {
	storage   repositories.CartStorage
	analytics libs.Analytics

	mu     sync.Mutex
	stores map[string]*CartStore
	ctx    context.Context
	cancel context.CancelFunc
}

func NewCartManager(storage repositories.CartStorage, analytics libs.Analytics) *CartManager {
	ctx, cancel := context.WithCancel(context.Background())
	return &CartManager{
		storage:   storage,
		analytics: analytics,
		stores:    make(map[string]*CartStore),
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (m *CartManager) Store(profile string) *CartStore {
	m.mu.Lock()
	defer m.mu.Unlock()

	if store, ok := m.stores[profile]; ok {
		return store
	}

	store := &CartStore{
		profile:   profile,
		storage:   m.storage,
		analytics: m.analytics,
	}

	ch, stop, err := m.storage.Subscribe(m.ctx, profile)
	if err != nil {
		log.Printf("cart %s: broadcast unavailable: %v", profile, err)
	} else {
		store.stop = stop
		go func() {
			for range ch {
				store.reload(m.ctx)
			}
		}()
	}

	m.stores[profile] = store
	return store
}

func (m *CartManager) Close() {
	m.cancel()
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, store := range m.stores {
		if store.stop != nil {
			store.stop()
		}
	}
	m.stores = make(map[string]*CartStore)
}

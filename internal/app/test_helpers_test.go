package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/example/orderbot/internal/apperr"
	"github.com/example/orderbot/internal/ports/secondary"
)

// Ensure mocks implement the interfaces
var (
	_ secondary.OrderRepository     = (*mockOrderRepository)(nil)
	_ secondary.OrderItemRepository = (*mockOrderItemRepository)(nil)
	_ secondary.Locker              = (*mockLocker)(nil)
	_ secondary.ChatThread          = (*fakeThread)(nil)
	_ secondary.ProductCatalog      = (*mockCatalog)(nil)
)

// mockOrderRepository implements secondary.OrderRepository in memory.
type mockOrderRepository struct {
	mu     sync.Mutex
	orders map[int64]*secondary.OrderRecord
	nextID int64
	getErr error
}

func newMockOrderRepository() *mockOrderRepository {
	return &mockOrderRepository{orders: make(map[int64]*secondary.OrderRecord)}
}

func (m *mockOrderRepository) Create(ctx context.Context, threadKey, creatorID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.ThreadKey == threadKey {
			return 0, apperr.ErrOrderExists().WithCause(errors.New("UNIQUE constraint failed"))
		}
	}
	m.nextID++
	m.orders[m.nextID] = &secondary.OrderRecord{
		ID:        m.nextID,
		ThreadKey: threadKey,
		CreatorID: creatorID,
		CreatedAt: "2026-01-01T00:00:00Z",
	}
	return m.nextID, nil
}

func (m *mockOrderRepository) GetByID(ctx context.Context, id int64) (*secondary.OrderRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	o, ok := m.orders[id]
	if !ok {
		return nil, apperr.ErrOrderNotFound(id)
	}
	c := *o
	return &c, nil
}

func (m *mockOrderRepository) GetByThreadKey(ctx context.Context, threadKey string) (*secondary.OrderRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.ThreadKey == threadKey {
			c := *o
			return &c, nil
		}
	}
	return nil, nil
}

func (m *mockOrderRepository) MarkCompleted(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return apperr.ErrOrderNotFound(id)
	}
	o.Completed = true
	return nil
}

func (m *mockOrderRepository) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[id]; !ok {
		return apperr.ErrOrderNotFound(id)
	}
	delete(m.orders, id)
	return nil
}

func (m *mockOrderRepository) List(ctx context.Context, filters secondary.OrderFilters) ([]*secondary.OrderRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*secondary.OrderRecord
	for _, o := range m.orders {
		if o.Completed && !filters.IncludeCompleted {
			continue
		}
		c := *o
		result = append(result, &c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result, nil
}

// mockOrderItemRepository implements secondary.OrderItemRepository in memory.
type mockOrderItemRepository struct {
	mu      sync.Mutex
	items   map[int64]*secondary.OrderItemRecord
	nextID  int64
	orders  *mockOrderRepository
	listErr error
}

func newMockOrderItemRepository(orders *mockOrderRepository) *mockOrderItemRepository {
	return &mockOrderItemRepository{
		items:  make(map[int64]*secondary.OrderItemRecord),
		orders: orders,
	}
}

func (m *mockOrderItemRepository) Create(ctx context.Context, orderID int64, productName string, quantity int32) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range m.items {
		if it.OrderID == orderID && it.ProductName == productName {
			return 0, apperr.ErrDuplicateItem(productName).WithCause(errors.New("UNIQUE constraint failed"))
		}
	}
	m.nextID++
	m.items[m.nextID] = &secondary.OrderItemRecord{
		ID:          m.nextID,
		OrderID:     orderID,
		ProductName: productName,
		Quantity:    quantity,
	}
	return m.nextID, nil
}

func (m *mockOrderItemRepository) Find(ctx context.Context, orderID int64, productName string, onlyIncomplete bool) (*secondary.OrderItemRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range m.items {
		if it.OrderID != orderID || it.ProductName != productName {
			continue
		}
		if onlyIncomplete && it.Completed {
			return nil, nil
		}
		c := *it
		return &c, nil
	}
	return nil, nil
}

func (m *mockOrderItemRepository) ListByOrder(ctx context.Context, orderID int64) ([]*secondary.OrderItemRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []*secondary.OrderItemRecord
	for _, it := range m.items {
		if it.OrderID == orderID {
			c := *it
			result = append(result, &c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ProductName < result[j].ProductName })
	return result, nil
}

func (m *mockOrderItemRepository) UpdateProgress(ctx context.Context, itemID int64, progress int32, completed bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[itemID]
	if !ok {
		return apperr.New(apperr.KindNotFound, "Order item %d does not exist.", itemID)
	}
	it.Progress = progress
	it.Completed = completed
	return nil
}

func (m *mockOrderItemRepository) UpdateQuantity(ctx context.Context, itemID int64, quantity int32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[itemID]
	if !ok {
		return apperr.New(apperr.KindNotFound, "Order item %d does not exist.", itemID)
	}
	it.Quantity = quantity
	return nil
}

func (m *mockOrderItemRepository) Delete(ctx context.Context, orderID int64, productName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, it := range m.items {
		if it.OrderID == orderID && it.ProductName == productName {
			delete(m.items, id)
			return nil
		}
	}
	return apperr.ErrItemNotFound(productName)
}

func (m *mockOrderItemRepository) ListOpenProductNames(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[string]bool)
	var names []string
	for _, it := range m.items {
		if it.Completed || seen[it.ProductName] {
			continue
		}
		if m.orders != nil {
			if o, err := m.orders.GetByID(ctx, it.OrderID); err == nil && o.Completed {
				continue
			}
		}
		seen[it.ProductName] = true
		names = append(names, it.ProductName)
	}
	sort.Strings(names)
	return names, nil
}

// mockLocker serializes per key and records every key it was asked for.
type mockLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
	keys  []string
	err   error
}

func newMockLocker() *mockLocker {
	return &mockLocker{locks: make(map[string]*sync.Mutex)}
}

func (m *mockLocker) Lock(ctx context.Context, key string) (func(), error) {
	m.mu.Lock()
	if m.err != nil {
		m.mu.Unlock()
		return nil, m.err
	}
	m.keys = append(m.keys, key)
	l, ok := m.locks[key]
	if !ok {
		l = &sync.Mutex{}
		m.locks[key] = l
	}
	m.mu.Unlock()

	l.Lock()
	var once sync.Once
	return func() { once.Do(l.Unlock) }, nil
}

func (m *mockLocker) lockedKeys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.keys...)
}

// fakeThread is an in-memory chat thread. Messages are stored oldest first.
type fakeThread struct {
	mu       sync.Mutex
	key      string
	messages []secondary.ChatMessage
	nextID   int

	sends   int
	edits   int
	pins    int
	history int

	historyErr error
	sendErr    error
	editErr    error
	pinErr     error
}

func newFakeThread(key string) *fakeThread {
	return &fakeThread{key: key}
}

func (f *fakeThread) Key() string { return f.key }

func (f *fakeThread) RecentMessages(ctx context.Context, limit int) ([]secondary.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.history++
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	var result []secondary.ChatMessage
	for i := len(f.messages) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, f.messages[i])
	}
	return result, nil
}

func (f *fakeThread) EditMessage(ctx context.Context, messageID, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits++
	if f.editErr != nil {
		return f.editErr
	}
	for i := range f.messages {
		if f.messages[i].ID == messageID {
			f.messages[i].Content = content
			return nil
		}
	}
	return fmt.Errorf("unknown message %s", messageID)
}

func (f *fakeThread) SendMessage(ctx context.Context, content string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends++
	if f.sendErr != nil {
		return "", f.sendErr
	}
	return f.appendLocked(secondary.ChatMessage{Content: content, FromSelf: true}), nil
}

func (f *fakeThread) PinMessage(ctx context.Context, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pins++
	if f.pinErr != nil {
		return f.pinErr
	}
	for i := range f.messages {
		if f.messages[i].ID == messageID {
			f.messages[i].Pinned = true
			return nil
		}
	}
	return fmt.Errorf("unknown message %s", messageID)
}

// post adds a message as if another participant wrote it.
func (f *fakeThread) post(msg secondary.ChatMessage) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.appendLocked(msg)
}

func (f *fakeThread) appendLocked(msg secondary.ChatMessage) string {
	f.nextID++
	msg.ID = fmt.Sprintf("m%d", f.nextID)
	f.messages = append(f.messages, msg)
	return msg.ID
}

// pinned returns the pinned messages authored by the bot.
func (f *fakeThread) pinned() []secondary.ChatMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []secondary.ChatMessage
	for _, m := range f.messages {
		if m.Pinned && m.FromSelf {
			result = append(result, m)
		}
	}
	return result
}

// mockCatalog implements secondary.ProductCatalog.
type mockCatalog struct {
	names []string
}

func (m *mockCatalog) Names() []string { return m.names }

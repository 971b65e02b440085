package app

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/example/orderbot/internal/apperr"
	"github.com/example/orderbot/internal/ports/primary"
)

func newTestOrderService() (*OrderServiceImpl, *mockOrderRepository, *mockOrderItemRepository, *mockLocker) {
	orders := newMockOrderRepository()
	items := newMockOrderItemRepository(orders)
	locker := newMockLocker()
	return NewOrderService(orders, items, locker), orders, items, locker
}

func createTestOrder(t *testing.T, svc *OrderServiceImpl, threadKey, creatorID string) int64 {
	t.Helper()
	o, err := svc.CreateOrder(context.Background(), primary.CreateOrderRequest{
		ThreadKey: threadKey,
		InThread:  true,
		CreatorID: creatorID,
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	return o.ID
}

func addTestItem(t *testing.T, svc *OrderServiceImpl, orderID int64, name string, quantity int64) {
	t.Helper()
	_, err := svc.AddItem(context.Background(), primary.AddItemRequest{
		OrderID:     orderID,
		ProductName: name,
		Quantity:    quantity,
	})
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
}

func assertKind(t *testing.T, err error, want apperr.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", want)
	}
	if got := apperr.KindOf(err); got != want {
		t.Errorf("error kind = %s, want %s (err: %v)", got, want, err)
	}
}

// ============================================================================
// CreateOrder Tests
// ============================================================================

func TestCreateOrder_Success(t *testing.T) {
	svc, _, _, locker := newTestOrderService()

	o, err := svc.CreateOrder(context.Background(), primary.CreateOrderRequest{
		ThreadKey: "T42",
		InThread:  true,
		CreatorID: "U1",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if o.ThreadKey != "T42" || o.CreatorID != "U1" || o.Completed {
		t.Errorf("unexpected order %+v", o)
	}

	keys := locker.lockedKeys()
	if len(keys) != 1 || keys[0] != "thread:T42" {
		t.Errorf("expected thread lock, got %v", keys)
	}
}

func TestCreateOrder_NotInThread(t *testing.T) {
	svc, orders, _, _ := newTestOrderService()

	_, err := svc.CreateOrder(context.Background(), primary.CreateOrderRequest{ThreadKey: "C1", CreatorID: "U1"})
	assertKind(t, err, apperr.KindValidation)
	if len(orders.orders) != 0 {
		t.Error("no order should be created outside a thread")
	}
}

func TestCreateOrder_DuplicateThread(t *testing.T) {
	svc, _, _, _ := newTestOrderService()
	createTestOrder(t, svc, "T42", "U1")

	_, err := svc.CreateOrder(context.Background(), primary.CreateOrderRequest{
		ThreadKey: "T42",
		InThread:  true,
		CreatorID: "U2",
	})
	assertKind(t, err, apperr.KindConflict)
	if !errors.Is(err, apperr.ErrOrderExists()) {
		t.Errorf("expected ErrOrderExists, got %v", err)
	}
}

func TestCreateOrder_ConcurrentSameThread(t *testing.T) {
	svc, orders, _, _ := newTestOrderService()

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateOrder(context.Background(), primary.CreateOrderRequest{
				ThreadKey: "T42",
				InThread:  true,
				CreatorID: "U1",
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
		} else if apperr.KindOf(err) != apperr.KindConflict {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 || len(orders.orders) != 1 {
		t.Errorf("expected exactly one order, got %d successes and %d orders", succeeded, len(orders.orders))
	}
}

// ============================================================================
// AddItem Tests
// ============================================================================

func TestAddItem(t *testing.T) {
	tests := []struct {
		name     string
		product  string
		quantity int64
		wantKind apperr.Kind
		wantErr  bool
	}{
		{name: "valid", product: "Widget", quantity: 10},
		{name: "zero quantity", product: "Widget", quantity: 0, wantErr: true, wantKind: apperr.KindValidation},
		{name: "negative quantity", product: "Widget", quantity: -3, wantErr: true, wantKind: apperr.KindValidation},
		{name: "above int32", product: "Widget", quantity: math.MaxInt32 + 1, wantErr: true, wantKind: apperr.KindValidation},
		{name: "max int32", product: "Widget", quantity: math.MaxInt32},
		{name: "blank name", product: "   ", quantity: 1, wantErr: true, wantKind: apperr.KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, items, _ := newTestOrderService()
			orderID := createTestOrder(t, svc, "T42", "U1")

			item, err := svc.AddItem(context.Background(), primary.AddItemRequest{
				OrderID:     orderID,
				ProductName: tt.product,
				Quantity:    tt.quantity,
			})
			if tt.wantErr {
				assertKind(t, err, tt.wantKind)
				if len(items.items) != 0 {
					t.Error("rejected add must not change state")
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if item.Progress != 0 || item.Completed || int64(item.Quantity) != tt.quantity {
				t.Errorf("unexpected item %+v", item)
			}
		})
	}
}

func TestAddItem_TrimsName(t *testing.T) {
	svc, _, _, _ := newTestOrderService()
	orderID := createTestOrder(t, svc, "T42", "U1")

	item, err := svc.AddItem(context.Background(), primary.AddItemRequest{OrderID: orderID, ProductName: "  Widget ", Quantity: 1})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if item.ProductName != "Widget" {
		t.Errorf("ProductName = %q, want Widget", item.ProductName)
	}
}

func TestAddItem_Duplicate(t *testing.T) {
	svc, _, _, _ := newTestOrderService()
	orderID := createTestOrder(t, svc, "T42", "U1")
	addTestItem(t, svc, orderID, "Widget", 10)

	_, err := svc.AddItem(context.Background(), primary.AddItemRequest{OrderID: orderID, ProductName: "Widget", Quantity: 5})
	assertKind(t, err, apperr.KindConflict)

	// A completed line still blocks a re-add under the same name.
	_, _ = svc.UpdateProgress(context.Background(), primary.ItemDeltaRequest{OrderID: orderID, ProductName: "Widget", Delta: 10})
	_, err = svc.AddItem(context.Background(), primary.AddItemRequest{OrderID: orderID, ProductName: "Widget", Quantity: 5})
	assertKind(t, err, apperr.KindConflict)
}

func TestAddItem_OrderMissing(t *testing.T) {
	svc, _, _, _ := newTestOrderService()

	_, err := svc.AddItem(context.Background(), primary.AddItemRequest{OrderID: 99, ProductName: "Widget", Quantity: 1})
	assertKind(t, err, apperr.KindNotFound)
}

func TestAddItem_OrderClosed(t *testing.T) {
	svc, _, _, _ := newTestOrderService()
	orderID := createTestOrder(t, svc, "T42", "U1")
	if err := svc.CloseOrder(context.Background(), orderID, "U1"); err != nil {
		t.Fatalf("CloseOrder failed: %v", err)
	}

	_, err := svc.AddItem(context.Background(), primary.AddItemRequest{OrderID: orderID, ProductName: "Widget", Quantity: 1})
	assertKind(t, err, apperr.KindConflict)
}

// ============================================================================
// UpdateProgress Tests
// ============================================================================

func TestUpdateProgress_WidgetScenario(t *testing.T) {
	svc, _, _, _ := newTestOrderService()
	ctx := context.Background()
	orderID := createTestOrder(t, svc, "T42", "U1")
	addTestItem(t, svc, orderID, "Widget", 10)

	item, err := svc.UpdateProgress(ctx, primary.ItemDeltaRequest{OrderID: orderID, ProductName: "Widget", Delta: 4})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if item.Progress != 4 || item.Completed {
		t.Errorf("after +4: %+v", item)
	}

	item, err = svc.UpdateProgress(ctx, primary.ItemDeltaRequest{OrderID: orderID, ProductName: "Widget", Delta: 7})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if item.Progress != 10 || !item.Completed {
		t.Errorf("after +7: expected clamp to 10 and completed, got %+v", item)
	}

	_, err = svc.UpdateProgress(ctx, primary.ItemDeltaRequest{OrderID: orderID, ProductName: "Widget", Delta: 1})
	assertKind(t, err, apperr.KindConflict)
	if !errors.Is(err, apperr.ErrItemNotFoundOrCompleted("Widget")) {
		t.Errorf("expected ErrItemNotFoundOrCompleted, got %v", err)
	}
}

func TestUpdateProgress_CumulativeBelowQuantity(t *testing.T) {
	svc, _, _, _ := newTestOrderService()
	orderID := createTestOrder(t, svc, "T42", "U1")
	addTestItem(t, svc, orderID, "Bolt", 100)

	var last *primary.OrderItem
	for _, d := range []int64{10, 20, 30} {
		item, err := svc.UpdateProgress(context.Background(), primary.ItemDeltaRequest{OrderID: orderID, ProductName: "Bolt", Delta: d})
		if err != nil {
			t.Fatalf("UpdateProgress failed: %v", err)
		}
		last = item
	}
	if last.Progress != 60 || last.Completed {
		t.Errorf("expected 60/100 incomplete, got %+v", last)
	}
}

func TestUpdateProgress_Rejections(t *testing.T) {
	svc, _, items, _ := newTestOrderService()
	orderID := createTestOrder(t, svc, "T42", "U1")
	addTestItem(t, svc, orderID, "Widget", 10)

	tests := []struct {
		name     string
		product  string
		delta    int64
		wantKind apperr.Kind
	}{
		{name: "zero delta", product: "Widget", delta: 0, wantKind: apperr.KindValidation},
		{name: "negative delta", product: "Widget", delta: -1, wantKind: apperr.KindValidation},
		{name: "too large", product: "Widget", delta: math.MaxInt32 + 1, wantKind: apperr.KindValidation},
		{name: "unknown product", product: "Gizmo", delta: 1, wantKind: apperr.KindConflict},
		{name: "case differs", product: "widget", delta: 1, wantKind: apperr.KindConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpdateProgress(context.Background(), primary.ItemDeltaRequest{
				OrderID:     orderID,
				ProductName: tt.product,
				Delta:       tt.delta,
			})
			assertKind(t, err, tt.wantKind)
		})
	}

	for _, it := range items.items {
		if it.Progress != 0 {
			t.Errorf("rejections must not change progress, got %+v", it)
		}
	}
}

func TestUpdateProgress_ConcurrentNoLostUpdates(t *testing.T) {
	svc, _, _, _ := newTestOrderService()
	orderID := createTestOrder(t, svc, "T42", "U1")
	addTestItem(t, svc, orderID, "Bolt", 1000)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.UpdateProgress(context.Background(), primary.ItemDeltaRequest{OrderID: orderID, ProductName: "Bolt", Delta: 3}); err != nil {
				t.Errorf("UpdateProgress failed: %v", err)
			}
		}()
	}
	wg.Wait()

	o, err := svc.GetOrder(context.Background(), orderID)
	if err != nil {
		t.Fatalf("GetOrder failed: %v", err)
	}
	if o.Items[0].Progress != 150 {
		t.Errorf("expected progress 150, got %d", o.Items[0].Progress)
	}
}

// ============================================================================
// AdjustQuantity Tests
// ============================================================================

func TestAdjustQuantity(t *testing.T) {
	svc, _, _, locker := newTestOrderService()
	orderID := createTestOrder(t, svc, "T42", "U1")
	addTestItem(t, svc, orderID, "Widget", 10)

	item, err := svc.AdjustQuantity(context.Background(), primary.ItemDeltaRequest{OrderID: orderID, ProductName: "Widget", Delta: 5})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if item.Quantity != 15 || item.Completed {
		t.Errorf("expected 15 and incomplete, got %+v", item)
	}

	keys := locker.lockedKeys()
	if keys[len(keys)-1] != "order:1" {
		t.Errorf("expected order lock, got %v", keys)
	}
}

func TestAdjustQuantity_Rejections(t *testing.T) {
	svc, _, _, _ := newTestOrderService()
	ctx := context.Background()
	orderID := createTestOrder(t, svc, "T42", "U1")
	addTestItem(t, svc, orderID, "Widget", math.MaxInt32-1)
	addTestItem(t, svc, orderID, "Gadget", 5)
	if _, err := svc.UpdateProgress(ctx, primary.ItemDeltaRequest{OrderID: orderID, ProductName: "Gadget", Delta: 5}); err != nil {
		t.Fatalf("UpdateProgress failed: %v", err)
	}

	_, err := svc.AdjustQuantity(ctx, primary.ItemDeltaRequest{OrderID: orderID, ProductName: "Widget", Delta: 0})
	assertKind(t, err, apperr.KindValidation)

	_, err = svc.AdjustQuantity(ctx, primary.ItemDeltaRequest{OrderID: orderID, ProductName: "Widget", Delta: 2})
	assertKind(t, err, apperr.KindValidation)

	_, err = svc.AdjustQuantity(ctx, primary.ItemDeltaRequest{OrderID: orderID, ProductName: "Gadget", Delta: 1})
	assertKind(t, err, apperr.KindConflict)
}

// ============================================================================
// RemoveItem Tests
// ============================================================================

func TestRemoveItem(t *testing.T) {
	svc, _, items, _ := newTestOrderService()
	ctx := context.Background()
	orderID := createTestOrder(t, svc, "T42", "U1")
	addTestItem(t, svc, orderID, "Gadget", 5)
	if _, err := svc.UpdateProgress(ctx, primary.ItemDeltaRequest{OrderID: orderID, ProductName: "Gadget", Delta: 5}); err != nil {
		t.Fatalf("UpdateProgress failed: %v", err)
	}

	// Completed lines can be removed.
	if err := svc.RemoveItem(ctx, orderID, "Gadget"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(items.items) != 0 {
		t.Errorf("expected item removed, got %d", len(items.items))
	}

	err := svc.RemoveItem(ctx, orderID, "Gadget")
	assertKind(t, err, apperr.KindNotFound)
}

// ============================================================================
// CloseOrder Tests
// ============================================================================

func TestCloseOrder(t *testing.T) {
	svc, orders, _, _ := newTestOrderService()
	ctx := context.Background()
	orderID := createTestOrder(t, svc, "T42", "U1")

	if err := svc.CloseOrder(ctx, orderID, "U1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !orders.orders[orderID].Completed {
		t.Error("expected order to be completed")
	}

	err := svc.CloseOrder(ctx, orderID, "U1")
	assertKind(t, err, apperr.KindConflict)

	err = svc.CloseOrder(ctx, 99, "U1")
	assertKind(t, err, apperr.KindNotFound)
}

func TestCloseOrder_NonCreatorAlwaysForbidden(t *testing.T) {
	svc, _, _, _ := newTestOrderService()
	ctx := context.Background()

	open := createTestOrder(t, svc, "T1", "U1")
	closed := createTestOrder(t, svc, "T2", "U1")
	if err := svc.CloseOrder(ctx, closed, "U1"); err != nil {
		t.Fatalf("CloseOrder failed: %v", err)
	}

	for _, id := range []int64{open, closed} {
		err := svc.CloseOrder(ctx, id, "U2")
		assertKind(t, err, apperr.KindAuthorization)
	}
}

func TestCloseOrder_StoreFailure(t *testing.T) {
	svc, orders, _, _ := newTestOrderService()
	orderID := createTestOrder(t, svc, "T42", "U1")
	orders.getErr = errors.New("disk I/O error")

	err := svc.CloseOrder(context.Background(), orderID, "U1")
	assertKind(t, err, apperr.KindInternal)
}

// ============================================================================
// Query Tests
// ============================================================================

func TestGetOrderAndListOrders(t *testing.T) {
	svc, _, _, _ := newTestOrderService()
	ctx := context.Background()
	first := createTestOrder(t, svc, "T1", "U1")
	createTestOrder(t, svc, "T2", "U1")
	addTestItem(t, svc, first, "Widget", 2)
	addTestItem(t, svc, first, "Bolt", 1)

	o, err := svc.GetOrder(ctx, first)
	if err != nil {
		t.Fatalf("GetOrder failed: %v", err)
	}
	if len(o.Items) != 2 || o.Items[0].ProductName != "Bolt" {
		t.Errorf("expected sorted items, got %+v", o.Items)
	}

	if err := svc.CloseOrder(ctx, first, "U1"); err != nil {
		t.Fatalf("CloseOrder failed: %v", err)
	}
	open, _ := svc.ListOrders(ctx, false)
	all, _ := svc.ListOrders(ctx, true)
	if len(open) != 1 || len(all) != 2 {
		t.Errorf("open=%d all=%d, want 1 and 2", len(open), len(all))
	}
}

func TestLockFailureAbortsCommand(t *testing.T) {
	svc, _, items, locker := newTestOrderService()
	orderID := createTestOrder(t, svc, "T42", "U1")
	locker.err = context.DeadlineExceeded

	_, err := svc.AddItem(context.Background(), primary.AddItemRequest{OrderID: orderID, ProductName: "Widget", Quantity: 1})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline error, got %v", err)
	}
	if len(items.items) != 0 {
		t.Error("no item should be added without the lock")
	}
}

package order

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"canteen-system/internal/apperror"
	"canteen-system/internal/auth"
	"canteen-system/internal/logger"
	"canteen-system/internal/models"
)

type fakeMenuItem struct {
	name      string
	price     decimal.Decimal
	available bool
	stock     *int
}

type fakeCartLine struct {
	id         int64
	menuItemID int64
	quantity   int
}

type fakeLog struct {
	orderID   int64
	status    models.OrderStatus
	changedBy string
}

type fakeState struct {
	menu   map[int64]fakeMenuItem
	carts  map[int64][]fakeCartLine
	orders map[int64]models.Order
	log    []fakeLog
	nextID int64
}

func (s fakeState) clone() fakeState {
	c := fakeState{
		menu:   make(map[int64]fakeMenuItem, len(s.menu)),
		carts:  make(map[int64][]fakeCartLine, len(s.carts)),
		orders: make(map[int64]models.Order, len(s.orders)),
		log:    append([]fakeLog(nil), s.log...),
		nextID: s.nextID,
	}
	for k, v := range s.menu {
		if v.stock != nil {
			stock := *v.stock
			v.stock = &stock
		}
		c.menu[k] = v
	}
	for k, v := range s.carts {
		c.carts[k] = append([]fakeCartLine(nil), v...)
	}
	for k, v := range s.orders {
		v.Items = append([]models.OrderItem(nil), v.Items...)
		c.orders[k] = v
	}
	return c
}

// fakeStore keeps orders in memory and rolls back on error like a real transaction
type fakeStore struct {
	state   fakeState
	summary *models.DailySummary
	from    time.Time
	to      time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		state: fakeState{
			menu:   map[int64]fakeMenuItem{},
			carts:  map[int64][]fakeCartLine{},
			orders: map[int64]models.Order{},
			nextID: 100,
		},
	}
}

func (s *fakeStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	snapshot := s.state.clone()
	if err := fn(&fakeTx{store: s}); err != nil {
		s.state = snapshot
		return err
	}
	return nil
}

func (s *fakeStore) Get(ctx context.Context, orderID int64) (*models.Order, error) {
	order, ok := s.state.orders[orderID]
	if !ok {
		return nil, apperror.NotFound("Order not found")
	}
	order.Items = append([]models.OrderItem(nil), order.Items...)
	order.Finalize()
	return &order, nil
}

func (s *fakeStore) List(ctx context.Context, filter models.OrderFilter) ([]models.Order, int, error) {
	orders := []models.Order{}
	for _, o := range s.state.orders {
		if filter.UserID != nil && o.UserID != *filter.UserID {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		orders = append(orders, o)
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID > orders[j].ID })

	total := len(orders)
	if filter.Limit > 0 {
		end := filter.Offset + filter.Limit
		if filter.Offset > total {
			filter.Offset = total
		}
		if end > total {
			end = total
		}
		orders = orders[filter.Offset:end]
	}
	return orders, total, nil
}

func (s *fakeStore) DailySummary(ctx context.Context, start, end time.Time) (*models.DailySummary, error) {
	s.from, s.to = start, end
	if s.summary == nil {
		return &models.DailySummary{}, nil
	}
	return s.summary, nil
}

func (s *fakeStore) addMenuItem(id int64, name, price string, available bool, stock *int) {
	s.state.menu[id] = fakeMenuItem{name: name, price: decimal.RequireFromString(price), available: available, stock: stock}
}

func (s *fakeStore) addCartLine(userID, menuItemID int64, quantity int) {
	s.state.nextID++
	s.state.carts[userID] = append(s.state.carts[userID], fakeCartLine{id: s.state.nextID, menuItemID: menuItemID, quantity: quantity})
}

type fakeTx struct {
	store *fakeStore
}

func (t *fakeTx) LockCart(ctx context.Context, userID int64) (int64, bool, error) {
	_, ok := t.store.state.carts[userID]
	return userID, ok, nil
}

func (t *fakeTx) LockCartLines(ctx context.Context, cartID int64) ([]CartLine, error) {
	var lines []CartLine
	for _, l := range t.store.state.carts[cartID] {
		m := t.store.state.menu[l.menuItemID]
		var stock *int
		if m.stock != nil {
			v := *m.stock
			stock = &v
		}
		lines = append(lines, CartLine{
			CartItemID: l.id,
			MenuItemID: l.menuItemID,
			Quantity:   l.quantity,
			Name:       m.name,
			Price:      m.price,
			Available:  m.available,
			Stock:      stock,
		})
	}
	return lines, nil
}

func (t *fakeTx) InsertOrder(ctx context.Context, order *models.Order) error {
	t.store.state.nextID++
	order.ID = t.store.state.nextID
	t.store.state.orders[order.ID] = *order
	return nil
}

func (t *fakeTx) InsertOrderItem(ctx context.Context, item *models.OrderItem) error {
	t.store.state.nextID++
	item.ID = t.store.state.nextID
	o := t.store.state.orders[item.OrderID]
	o.Items = append(o.Items, *item)
	t.store.state.orders[item.OrderID] = o
	return nil
}

func (t *fakeTx) DecrementStock(ctx context.Context, menuItemID int64, quantity int) error {
	m := t.store.state.menu[menuItemID]
	stock := *m.stock - quantity
	m.stock = &stock
	t.store.state.menu[menuItemID] = m
	return nil
}

func (t *fakeTx) SetOrderTotal(ctx context.Context, orderID int64, total decimal.Decimal) error {
	o := t.store.state.orders[orderID]
	o.TotalAmount = total
	t.store.state.orders[orderID] = o
	return nil
}

func (t *fakeTx) ClearCart(ctx context.Context, cartID int64) error {
	t.store.state.carts[cartID] = nil
	return nil
}

func (t *fakeTx) LockOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	o, ok := t.store.state.orders[orderID]
	if !ok {
		return nil, apperror.NotFound("Order not found")
	}
	return &o, nil
}

func (t *fakeTx) SetOrderStatus(ctx context.Context, orderID int64, status models.OrderStatus) error {
	o := t.store.state.orders[orderID]
	o.Status = status
	t.store.state.orders[orderID] = o
	return nil
}

func (t *fakeTx) LogStatus(ctx context.Context, orderID int64, status models.OrderStatus, changedBy string, notes *string) error {
	t.store.state.log = append(t.store.state.log, fakeLog{orderID: orderID, status: status, changedBy: changedBy})
	return nil
}

type recordingNotifier struct {
	messages []*models.NotificationMessage
	err      error
}

func (n *recordingNotifier) Notify(ctx context.Context, msg *models.NotificationMessage, requestID string) error {
	n.messages = append(n.messages, msg)
	return n.err
}

var (
	customer = &models.Principal{UserID: 1, Username: "alice", Email: "alice@example.com"}
	stranger = &models.Principal{UserID: 2, Username: "bob"}
	admin    = &models.Principal{UserID: 9, Username: "chef", Capabilities: []string{models.CapabilityAdmin}}
)

func newTestService(store *fakeStore, notifier Notifier) *Service {
	return NewService(store, notifier, logger.Discard(), time.UTC)
}

func intPtr(v int) *int {
	return &v
}

// noError marks an expected success in kind tables
const noError apperror.Kind = -1

func appKind(err error) apperror.Kind {
	if err == nil {
		return noError
	}
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return apperror.KindInternal
}

func TestPlaceOrderSnapshotsCart(t *testing.T) {
	store := newFakeStore()
	store.addMenuItem(1, "A", "5.00", true, nil)
	store.addMenuItem(2, "B", "3.00", true, intPtr(4))
	store.addCartLine(1, 1, 2)
	store.addCartLine(1, 2, 1)
	notifier := &recordingNotifier{}
	svc := newTestService(store, notifier)

	order, err := svc.PlaceOrder(context.Background(), customer, &models.PlaceOrderRequest{Notes: "  no onions "}, "req-1")
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	if !order.TotalAmount.Equal(decimal.RequireFromString("13.00")) {
		t.Errorf("total = %s, want 13.00", order.TotalAmount)
	}
	if order.TotalItems != 3 || len(order.Items) != 2 {
		t.Errorf("unexpected items: total_items=%d lines=%d", order.TotalItems, len(order.Items))
	}
	if order.Status != models.StatusPlaced || order.Notes != "no onions" {
		t.Errorf("unexpected order %+v", order)
	}
	if order.Items[0].MenuItemName != "A" || !order.Items[0].TotalPrice.Equal(decimal.RequireFromString("10")) {
		t.Errorf("unexpected first line %+v", order.Items[0])
	}

	if len(store.state.carts[1]) != 0 {
		t.Errorf("cart not emptied: %+v", store.state.carts[1])
	}
	if got := *store.state.menu[2].stock; got != 3 {
		t.Errorf("stock = %d, want 3", got)
	}
	if store.state.menu[1].stock != nil {
		t.Error("untracked stock should stay untracked")
	}
	if len(store.state.log) != 1 || store.state.log[0].status != models.StatusPlaced {
		t.Errorf("unexpected status log %+v", store.state.log)
	}

	// later price changes must not touch the placed order
	store.addMenuItem(1, "A", "9.00", true, nil)
	stored, _ := store.Get(context.Background(), order.ID)
	if !stored.TotalAmount.Equal(decimal.RequireFromString("13.00")) {
		t.Errorf("stored total changed to %s", stored.TotalAmount)
	}

	if len(notifier.messages) != 1 || notifier.messages[0].Event != models.EventOrderPlaced {
		t.Fatalf("unexpected notifications %+v", notifier.messages)
	}
	if notifier.messages[0].Email != "alice@example.com" {
		t.Errorf("notification email = %q", notifier.messages[0].Email)
	}
}

func TestPlaceOrderRollsBack(t *testing.T) {
	tests := []struct {
		name  string
		setup func(s *fakeStore)
		kind  apperror.Kind
		msg   string
	}{
		{
			name:  "no cart",
			setup: func(s *fakeStore) {},
			kind:  apperror.KindValidation,
			msg:   "Cart not found",
		},
		{
			name: "empty cart",
			setup: func(s *fakeStore) {
				s.state.carts[1] = []fakeCartLine{}
			},
			kind: apperror.KindValidation,
			msg:  "Cart is empty",
		},
		{
			name: "unavailable item",
			setup: func(s *fakeStore) {
				s.addMenuItem(1, "A", "5.00", true, nil)
				s.addMenuItem(2, "Stew", "3.00", false, nil)
				s.addCartLine(1, 1, 2)
				s.addCartLine(1, 2, 1)
			},
			kind: apperror.KindConflict,
			msg:  "Stew is no longer available",
		},
		{
			name: "insufficient stock",
			setup: func(s *fakeStore) {
				s.addMenuItem(1, "A", "5.00", true, intPtr(1))
				s.addCartLine(1, 1, 2)
			},
			kind: apperror.KindConflict,
			msg:  "Insufficient stock for A",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			tt.setup(store)
			before := store.state.clone()
			notifier := &recordingNotifier{}
			svc := newTestService(store, notifier)

			_, err := svc.PlaceOrder(context.Background(), customer, &models.PlaceOrderRequest{}, "")
			if appKind(err) != tt.kind {
				t.Fatalf("error kind = %s (%v), want %s", appKind(err), err, tt.kind)
			}
			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("error = %q, want %q", err.Error(), tt.msg)
			}
			if len(store.state.orders) != 0 {
				t.Errorf("orders written: %+v", store.state.orders)
			}
			if len(store.state.carts[1]) != len(before.carts[1]) {
				t.Error("cart changed on failure")
			}
			for id, m := range before.menu {
				if m.stock != nil && *store.state.menu[id].stock != *m.stock {
					t.Errorf("stock of %d changed on failure", id)
				}
			}
			if len(notifier.messages) != 0 {
				t.Error("notification sent for failed placement")
			}
		})
	}
}

func TestPlaceOrderSurvivesNotifierFailure(t *testing.T) {
	store := newFakeStore()
	store.addMenuItem(1, "A", "5.00", true, nil)
	store.addCartLine(1, 1, 1)
	svc := newTestService(store, &recordingNotifier{err: errors.New("broker down")})

	if _, err := svc.PlaceOrder(context.Background(), customer, &models.PlaceOrderRequest{}, ""); err != nil {
		t.Fatalf("PlaceOrder should ignore notifier errors, got %v", err)
	}
	if len(store.state.orders) != 1 {
		t.Errorf("orders = %d, want 1", len(store.state.orders))
	}
}

func placeOne(t *testing.T, store *fakeStore, svc *Service) *models.Order {
	t.Helper()
	store.addMenuItem(1, "A", "5.00", true, nil)
	store.addCartLine(customer.UserID, 1, 1)
	order, err := svc.PlaceOrder(context.Background(), customer, &models.PlaceOrderRequest{}, "")
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	return order
}

func TestCancelOrder(t *testing.T) {
	store := newFakeStore()
	notifier := &recordingNotifier{}
	svc := newTestService(store, notifier)
	order := placeOne(t, store, svc)

	if _, err := svc.CancelOrder(context.Background(), stranger, order.ID, ""); appKind(err) != apperror.KindNotFound {
		t.Errorf("stranger cancel: got %v, want not found", err)
	}

	cancelled, err := svc.CancelOrder(context.Background(), customer, order.ID, "")
	if err != nil {
		t.Fatalf("CancelOrder: %v", err)
	}
	if cancelled.Status != models.StatusCancelled {
		t.Errorf("status = %s", cancelled.Status)
	}
	last := notifier.messages[len(notifier.messages)-1]
	if last.Event != models.EventOrderCancelled || last.OldStatus != models.StatusPlaced {
		t.Errorf("unexpected notification %+v", last)
	}

	_, err = svc.CancelOrder(context.Background(), customer, order.ID, "")
	if appKind(err) != apperror.KindConflict || !strings.Contains(err.Error(), "cannot be cancelled") {
		t.Errorf("second cancel: got %v", err)
	}
}

func TestCancelOrderTooLate(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, nil)
	order := placeOne(t, store, svc)

	for _, status := range []string{"CONFIRMED", "PREPARING"} {
		if _, err := svc.UpdateStatus(context.Background(), admin, order.ID, &models.UpdateStatusRequest{Status: status}, ""); err != nil {
			t.Fatalf("UpdateStatus(%s): %v", status, err)
		}
	}

	if _, err := svc.CancelOrder(context.Background(), customer, order.ID, ""); appKind(err) != apperror.KindConflict {
		t.Errorf("cancel while preparing: got %v, want conflict", err)
	}
}

func TestUpdateStatus(t *testing.T) {
	store := newFakeStore()
	notifier := &recordingNotifier{}
	svc := newTestService(store, notifier)
	order := placeOne(t, store, svc)
	ctx := context.Background()

	tests := []struct {
		status string
		kind   apperror.Kind
	}{
		{"bogus", apperror.KindValidation},
		{"READY", apperror.KindConflict},
		{"confirmed", noError},
		{"CONFIRMED", apperror.KindConflict},
		{"PREPARING", noError},
		{"READY", noError},
		{"CANCELLED", apperror.KindConflict},
		{"DELIVERED", noError},
		{"PLACED", apperror.KindConflict},
	}

	for _, tt := range tests {
		_, err := svc.UpdateStatus(ctx, admin, order.ID, &models.UpdateStatusRequest{Status: tt.status}, "")
		if appKind(err) != tt.kind {
			t.Errorf("UpdateStatus(%s): got %v, want kind %s", tt.status, err, tt.kind)
		}
	}

	final, _ := store.Get(ctx, order.ID)
	if final.Status != models.StatusDelivered {
		t.Errorf("final status = %s", final.Status)
	}

	// PLACED plus CONFIRMED, PREPARING, READY, DELIVERED
	if len(store.state.log) != 5 {
		t.Errorf("status log entries = %d, want 5", len(store.state.log))
	}
	last := notifier.messages[len(notifier.messages)-1]
	if last.Event != models.EventOrderStatusChanged || last.OldStatus != models.StatusReady || last.ChangedBy != "chef" {
		t.Errorf("unexpected notification %+v", last)
	}

	if _, err := svc.UpdateStatus(ctx, admin, 424242, &models.UpdateStatusRequest{Status: "CONFIRMED"}, ""); appKind(err) != apperror.KindNotFound {
		t.Errorf("missing order: got %v", err)
	}
}

func TestHistoryPagination(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, nil)
	for i := 0; i < 12; i++ {
		store.state.orders[int64(i+1)] = models.Order{ID: int64(i + 1), UserID: customer.UserID, Status: models.StatusPlaced}
	}
	store.state.orders[50] = models.Order{ID: 50, UserID: stranger.UserID, Status: models.StatusPlaced}

	first, err := svc.History(context.Background(), customer.UserID, 1)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(first.Orders) != 10 || !first.HasNext || first.TotalOrders != 12 || first.Orders[0].ID != 12 {
		t.Errorf("unexpected first page: %d orders, has_next=%v total=%d", len(first.Orders), first.HasNext, first.TotalOrders)
	}

	second, err := svc.History(context.Background(), customer.UserID, 2)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(second.Orders) != 2 || second.HasNext {
		t.Errorf("unexpected second page: %d orders, has_next=%v", len(second.Orders), second.HasNext)
	}

	if _, err := svc.History(context.Background(), customer.UserID, 0); appKind(err) != apperror.KindValidation {
		t.Errorf("page 0: got %v", err)
	}
}

func TestTodaySummaryUsesLocalDay(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*60*60)
	store := newFakeStore()
	svc := NewService(store, nil, logger.Discard(), loc)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 21, 30, 0, 0, time.UTC) }

	summary, err := svc.TodaySummary(context.Background())
	if err != nil {
		t.Fatalf("TodaySummary: %v", err)
	}
	if summary.Date != "2026-03-02" {
		t.Errorf("date = %s, want 2026-03-02", summary.Date)
	}
	if !store.from.Equal(time.Date(2026, 3, 2, 0, 0, 0, 0, loc)) || store.to.Sub(store.from) != 24*time.Hour {
		t.Errorf("unexpected window [%s, %s)", store.from, store.to)
	}
}

func TestHandlers(t *testing.T) {
	store := newFakeStore()
	store.addMenuItem(1, "A", "5.00", true, nil)
	store.addMenuItem(2, "B", "3.00", true, nil)
	store.addCartLine(customer.UserID, 1, 2)
	store.addCartLine(customer.UserID, 2, 1)
	h := NewHandler(newTestService(store, nil), logger.Discard())

	router := chi.NewRouter()
	router.Route("/api/orders", func(r chi.Router) {
		r.Route("/admin", h.AdminRoutes)
		h.Routes(r)
	})

	do := func(p *models.Principal, method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		if body != "" {
			req.Header.Set("Content-Type", "application/json")
		}
		req = req.WithContext(auth.WithPrincipal(req.Context(), p))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	rec := do(customer, http.MethodPost, "/api/orders/place/", `{"notes": "extra spicy"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("place status = %d (%s)", rec.Code, rec.Body.String())
	}
	var placed struct {
		Message string `json:"message"`
		Order   struct {
			ID          int64           `json:"id"`
			TotalAmount decimal.Decimal `json:"total_amount"`
			Status      string          `json:"status"`
		} `json:"order"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &placed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if placed.Message != "Order placed successfully" || !placed.Order.TotalAmount.Equal(decimal.RequireFromString("13")) {
		t.Errorf("unexpected place response %+v", placed)
	}

	if rec := do(customer, http.MethodPost, "/api/orders/place/", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("second place status = %d, want 400 for empty cart", rec.Code)
	}

	path := "/api/orders/" + itoa(placed.Order.ID) + "/"
	if rec := do(stranger, http.MethodGet, path, ""); rec.Code != http.StatusNotFound {
		t.Errorf("stranger get status = %d, want 404", rec.Code)
	}
	if rec := do(customer, http.MethodGet, path, ""); rec.Code != http.StatusOK {
		t.Errorf("owner get status = %d", rec.Code)
	}
	if rec := do(customer, http.MethodGet, "/api/orders/abc/", ""); rec.Code != http.StatusNotFound {
		t.Errorf("non-numeric id status = %d, want 404", rec.Code)
	}

	statusPath := "/api/orders/admin/" + itoa(placed.Order.ID) + "/update-status/"
	if rec := do(admin, http.MethodPatch, statusPath, `{"status": "NOPE"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid status code = %d, want 400", rec.Code)
	}
	if rec := do(admin, http.MethodPatch, statusPath, `{"status": "CONFIRMED"}`); rec.Code != http.StatusOK {
		t.Errorf("update status code = %d (%s)", rec.Code, rec.Body.String())
	}

	rec = do(customer, http.MethodPost, path+"cancel/", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Order cancelled successfully") {
		t.Errorf("cancel = %d (%s)", rec.Code, rec.Body.String())
	}

	rec = do(customer, http.MethodGet, "/api/orders/history/?page=1", "")
	var page models.OrderPage
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if page.TotalOrders != 1 || page.HasNext || page.Page != 1 {
		t.Errorf("unexpected history page %+v", page)
	}

	if rec := do(admin, http.MethodGet, "/api/orders/admin/?status=CANCELLED", ""); rec.Code != http.StatusOK {
		t.Errorf("admin list status = %d", rec.Code)
	}
	if rec := do(admin, http.MethodGet, "/api/orders/admin/summary/today/", ""); rec.Code != http.StatusOK {
		t.Errorf("summary status = %d", rec.Code)
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

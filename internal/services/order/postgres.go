package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"canteen-system/internal/apperror"
	"canteen-system/internal/database"
	"canteen-system/internal/models"
)

// PostgresStore stores orders in PostgreSQL
type PostgresStore struct {
	db *database.DB
}

// NewPostgresStore creates an order store
func NewPostgresStore(db *database.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// InTx runs fn inside one database transaction
func (s *PostgresStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	return s.db.InTx(ctx, func(tx pgx.Tx) error {
		return fn(&postgresTx{tx: tx})
	})
}

// Get returns an order with its items
func (s *PostgresStore) Get(ctx context.Context, orderID int64) (*models.Order, error) {
	order, err := scanOrder(s.db.QueryRow(ctx, database.GetOrderSQL, orderID))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, apperror.NotFound("Order not found")
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	orders := []models.Order{*order}
	if err := s.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

// List returns matching orders newest first plus the count of all matches
func (s *PostgresStore) List(ctx context.Context, filter models.OrderFilter) ([]models.Order, int, error) {
	where, args := buildOrderFilter(filter)

	var total int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) `+database.OrderFromSQL+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	query := `SELECT ` + database.OrderColumns + ` ` + database.OrderFromSQL + where +
		` ORDER BY o.created_at DESC, o.id DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query orders: %w", err)
	}
	orders, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Order, error) {
		order, err := scanOrder(row)
		if err != nil {
			return models.Order{}, err
		}
		return *order, nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to scan orders: %w", err)
	}

	if err := s.attachItems(ctx, orders); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// buildOrderFilter renders the WHERE clause for an order listing
func buildOrderFilter(filter models.OrderFilter) (string, []interface{}) {
	var (
		conditions []string
		args       []interface{}
	)

	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		conditions = append(conditions, fmt.Sprintf("o.user_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conditions = append(conditions, fmt.Sprintf("o.status = $%d", len(args)))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+search+"%")
		conditions = append(conditions, fmt.Sprintf("(u.username ILIKE $%d OR u.email ILIKE $%d)", len(args), len(args)))
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func (s *PostgresStore) attachItems(ctx context.Context, orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]int64, len(orders))
	index := make(map[int64]int, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		index[orders[i].ID] = i
	}

	rows, err := s.db.Query(ctx, database.ListOrderItemsSQL, ids)
	if err != nil {
		return fmt.Errorf("failed to query order items: %w", err)
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.OrderItem, error) {
		var item models.OrderItem
		err := row.Scan(
			&item.ID,
			&item.OrderID,
			&item.MenuItemID,
			&item.MenuItemName,
			&item.Quantity,
			&item.Price,
			&item.CreatedAt,
		)
		return item, err
	})
	if err != nil {
		return fmt.Errorf("failed to scan order items: %w", err)
	}

	for _, item := range items {
		i := index[item.OrderID]
		orders[i].Items = append(orders[i].Items, item)
	}
	for i := range orders {
		orders[i].Finalize()
	}
	return nil
}

// DailySummary aggregates the orders created in [start, end)
func (s *PostgresStore) DailySummary(ctx context.Context, start, end time.Time) (*models.DailySummary, error) {
	summary := &models.DailySummary{
		StatusBreakdown: []models.StatusCount{},
		PopularItems:    []models.PopularItem{},
	}

	err := s.db.QueryRow(ctx, database.DailyTotalsSQL, start, end).Scan(
		&summary.Summary.TotalOrders,
		&summary.Summary.TotalRevenue,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily totals: %w", err)
	}

	if err := s.db.QueryRow(ctx, database.DailyItemsSoldSQL, start, end).Scan(&summary.Summary.TotalItemsSold); err != nil {
		return nil, fmt.Errorf("failed to query items sold: %w", err)
	}

	rows, err := s.db.Query(ctx, database.DailyStatusBreakdownSQL, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query status breakdown: %w", err)
	}
	summary.StatusBreakdown, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.StatusCount, error) {
		var sc models.StatusCount
		err := row.Scan(&sc.Status, &sc.Count)
		return sc, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan status breakdown: %w", err)
	}

	rows, err = s.db.Query(ctx, database.DailyPopularItemsSQL, start, end, models.PopularItemLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to query popular items: %w", err)
	}
	summary.PopularItems, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.PopularItem, error) {
		var item models.PopularItem
		err := row.Scan(&item.MenuItemName, &item.TotalQuantity, &item.TotalRevenue)
		return item, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan popular items: %w", err)
	}

	return summary, nil
}

// History returns the status log of an order, oldest first
func (s *PostgresStore) History(ctx context.Context, orderID int64) ([]models.OrderStatusHistory, error) {
	rows, err := s.db.Query(ctx, database.GetOrderStatusHistorySQL, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order history: %w", err)
	}
	history, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.OrderStatusHistory, error) {
		var h models.OrderStatusHistory
		err := row.Scan(&h.Status, &h.ChangedBy, &h.ChangedAt, &h.Notes)
		return h, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan order history: %w", err)
	}
	return history, nil
}

// Owner returns the id of the user who placed the order
func (s *PostgresStore) Owner(ctx context.Context, orderID int64) (int64, error) {
	var userID int64
	if err := s.db.QueryRow(ctx, database.GetOrderOwnerSQL, orderID).Scan(&userID); err != nil {
		if database.IsNoRows(err) {
			return 0, apperror.NotFound("Order not found")
		}
		return 0, fmt.Errorf("failed to get order owner: %w", err)
	}
	return userID, nil
}

func scanOrder(row pgx.Row) (*models.Order, error) {
	var (
		order  models.Order
		status string
	)
	err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.Username,
		&order.Email,
		&status,
		&order.TotalAmount,
		&order.Notes,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	order.Status = models.OrderStatus(status)
	return &order, nil
}

type postgresTx struct {
	tx pgx.Tx
}

func (t *postgresTx) LockCart(ctx context.Context, userID int64) (int64, bool, error) {
	var cartID int64
	if err := t.tx.QueryRow(ctx, database.LockCartSQL, userID).Scan(&cartID); err != nil {
		if database.IsNoRows(err) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return cartID, true, nil
}

func (t *postgresTx) LockCartLines(ctx context.Context, cartID int64) ([]CartLine, error) {
	rows, err := t.tx.Query(ctx, database.LockCartLinesSQL, cartID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (CartLine, error) {
		var line CartLine
		err := row.Scan(
			&line.CartItemID,
			&line.MenuItemID,
			&line.Quantity,
			&line.Name,
			&line.Price,
			&line.Available,
			&line.Stock,
		)
		return line, err
	})
}

func (t *postgresTx) InsertOrder(ctx context.Context, order *models.Order) error {
	return t.tx.QueryRow(ctx, database.InsertOrderSQL, order.UserID, string(order.Status), order.Notes).Scan(
		&order.ID,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
}

func (t *postgresTx) InsertOrderItem(ctx context.Context, item *models.OrderItem) error {
	return t.tx.QueryRow(ctx, database.InsertOrderItemSQL,
		item.OrderID,
		item.MenuItemID,
		item.MenuItemName,
		item.Quantity,
		item.Price,
	).Scan(&item.ID, &item.CreatedAt)
}

func (t *postgresTx) DecrementStock(ctx context.Context, menuItemID int64, quantity int) error {
	_, err := t.tx.Exec(ctx, database.DecrementStockSQL, menuItemID, quantity)
	return err
}

func (t *postgresTx) SetOrderTotal(ctx context.Context, orderID int64, total decimal.Decimal) error {
	_, err := t.tx.Exec(ctx, database.UpdateOrderTotalSQL, orderID, total)
	return err
}

func (t *postgresTx) ClearCart(ctx context.Context, cartID int64) error {
	_, err := t.tx.Exec(ctx, database.ClearCartSQL, cartID)
	return err
}

func (t *postgresTx) LockOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	order, err := scanOrder(t.tx.QueryRow(ctx, database.LockOrderSQL, orderID))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, apperror.NotFound("Order not found")
		}
		return nil, fmt.Errorf("failed to lock order: %w", err)
	}
	return order, nil
}

func (t *postgresTx) SetOrderStatus(ctx context.Context, orderID int64, status models.OrderStatus) error {
	var updatedAt time.Time
	return t.tx.QueryRow(ctx, database.UpdateOrderStatusSQL, orderID, string(status)).Scan(&updatedAt)
}

func (t *postgresTx) LogStatus(ctx context.Context, orderID int64, status models.OrderStatus, changedBy string, notes *string) error {
	_, err := t.tx.Exec(ctx, database.InsertOrderStatusLogSQL, orderID, string(status), changedBy, notes)
	return err
}

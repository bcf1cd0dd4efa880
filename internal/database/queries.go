package database

// User queries
const (
	InsertUserSQL = `
		INSERT INTO users (username, email, password_hash, is_staff)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	GetUserByUsernameSQL = `
		SELECT id, username, email, password_hash, is_staff, created_at
		FROM users WHERE username = $1`
)

// Menu queries
const (
	MenuItemColumns = `id, name, description, price, available, category, stock, created_at, updated_at`

	GetMenuItemSQL = `
		SELECT ` + MenuItemColumns + `
		FROM menu_items WHERE id = $1`

	InsertMenuItemSQL = `
		INSERT INTO menu_items (name, description, price, available, category, stock)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + MenuItemColumns

	UpdateMenuItemSQL = `
		UPDATE menu_items
		SET name = $2, description = $3, price = $4, available = $5, category = $6, stock = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + MenuItemColumns

	DeleteMenuItemSQL = `DELETE FROM menu_items WHERE id = $1`

	ListMenuCategoriesSQL = `
		SELECT DISTINCT category FROM menu_items
		WHERE available = TRUE
		ORDER BY category`

	MenuItemExistsSQL = `SELECT EXISTS(SELECT 1 FROM menu_items WHERE id = $1)`
)

// Cart queries
const (
	// GetOrCreateCartSQL returns the user's cart, creating it on first use
	GetOrCreateCartSQL = `
		INSERT INTO carts (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id, user_id, created_at, updated_at`

	CartItemColumns = `ci.id, ci.menu_item_id, m.name, m.price, m.category, m.available, ci.quantity, ci.added_at`

	ListCartItemsSQL = `
		SELECT ` + CartItemColumns + `
		FROM cart_items ci
		JOIN menu_items m ON m.id = ci.menu_item_id
		WHERE ci.cart_id = $1
		ORDER BY ci.id`

	GetCartItemSQL = `
		SELECT ` + CartItemColumns + `
		FROM cart_items ci
		JOIN menu_items m ON m.id = ci.menu_item_id
		WHERE ci.id = $1 AND ci.cart_id = $2`

	UpsertCartItemSQL = `
		INSERT INTO cart_items (cart_id, menu_item_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (cart_id, menu_item_id) DO UPDATE
		SET quantity = cart_items.quantity + EXCLUDED.quantity
		RETURNING id`

	UpdateCartItemSQL = `UPDATE cart_items SET quantity = $3 WHERE id = $1 AND cart_id = $2`

	DeleteCartItemSQL = `DELETE FROM cart_items WHERE id = $1 AND cart_id = $2`

	ClearCartSQL = `DELETE FROM cart_items WHERE cart_id = $1`

	TouchCartSQL = `UPDATE carts SET updated_at = NOW() WHERE id = $1`
)

// Order placement queries. Run inside one transaction.
const (
	LockCartSQL = `SELECT id FROM carts WHERE user_id = $1 FOR UPDATE`

	// LockCartLinesSQL locks the referenced menu items in id order
	LockCartLinesSQL = `
		SELECT ci.id, ci.menu_item_id, ci.quantity, m.name, m.price, m.available, m.stock
		FROM cart_items ci
		JOIN menu_items m ON m.id = ci.menu_item_id
		WHERE ci.cart_id = $1
		ORDER BY m.id
		FOR UPDATE OF m`

	InsertOrderSQL = `
		INSERT INTO orders (user_id, status, total_amount, notes)
		VALUES ($1, $2, 0, $3)
		RETURNING id, created_at, updated_at`

	InsertOrderItemSQL = `
		INSERT INTO order_items (order_id, menu_item_id, menu_item_name, quantity, price)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	DecrementStockSQL = `
		UPDATE menu_items SET stock = stock - $2, updated_at = NOW()
		WHERE id = $1 AND stock IS NOT NULL`

	UpdateOrderTotalSQL = `UPDATE orders SET total_amount = $2 WHERE id = $1`

	InsertOrderStatusLogSQL = `
		INSERT INTO order_status_log (order_id, status, changed_by, notes)
		VALUES ($1, $2, $3, $4)`
)

// Order queries
const (
	OrderColumns = `o.id, o.user_id, u.username, u.email, o.status, o.total_amount, o.notes, o.created_at, o.updated_at`

	OrderFromSQL = `FROM orders o JOIN users u ON u.id = o.user_id`

	GetOrderSQL = `SELECT ` + OrderColumns + ` ` + OrderFromSQL + ` WHERE o.id = $1`

	LockOrderSQL = `SELECT ` + OrderColumns + ` ` + OrderFromSQL + ` WHERE o.id = $1 FOR UPDATE OF o`

	UpdateOrderStatusSQL = `
		UPDATE orders SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	ListOrderItemsSQL = `
		SELECT id, order_id, menu_item_id, menu_item_name, quantity, price, created_at
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, id`

	GetOrderStatusHistorySQL = `
		SELECT status, changed_by, changed_at, notes
		FROM order_status_log
		WHERE order_id = $1
		ORDER BY changed_at ASC, id ASC`

	GetOrderOwnerSQL = `SELECT user_id FROM orders WHERE id = $1`
)

// Daily summary queries. $1 and $2 bound the day as [start, end).
const (
	DailyTotalsSQL = `
		SELECT COUNT(*), COALESCE(SUM(total_amount), 0)
		FROM orders
		WHERE created_at >= $1 AND created_at < $2`

	DailyItemsSoldSQL = `
		SELECT COALESCE(SUM(oi.quantity), 0)
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.created_at >= $1 AND o.created_at < $2`

	DailyStatusBreakdownSQL = `
		SELECT status, COUNT(*)
		FROM orders
		WHERE created_at >= $1 AND created_at < $2
		GROUP BY status
		ORDER BY status`

	DailyPopularItemsSQL = `
		SELECT oi.menu_item_name, SUM(oi.quantity) AS total_quantity, SUM(oi.quantity * oi.price) AS total_revenue
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.created_at >= $1 AND o.created_at < $2
		GROUP BY oi.menu_item_name
		ORDER BY total_quantity DESC, oi.menu_item_name
		LIMIT $3`
)

// Booking queries
const (
	InsertBookingSQL = `
		INSERT INTO bookings (user_id, menu_item_id, date, quantity)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	ListBookingsByUserSQL = `
		SELECT b.id, b.user_id, b.menu_item_id, m.name, b.date, b.quantity, b.created_at
		FROM bookings b
		JOIN menu_items m ON m.id = b.menu_item_id
		WHERE b.user_id = $1
		ORDER BY b.created_at DESC, b.id DESC`

	DeleteBookingSQL = `DELETE FROM bookings WHERE id = $1 AND user_id = $2`
)

// Canteen timing queries
const (
	GetCanteenTimingSQL = `SELECT opening_time, closing_time FROM canteen_timing WHERE id = 1`

	UpsertCanteenTimingSQL = `
		INSERT INTO canteen_timing (id, opening_time, closing_time, updated_at)
		VALUES (1, $1, $2, NOW())
		ON CONFLICT (id) DO UPDATE
		SET opening_time = EXCLUDED.opening_time, closing_time = EXCLUDED.closing_time, updated_at = NOW()`
)

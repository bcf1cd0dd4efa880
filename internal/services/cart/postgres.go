package cart

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"canteen-system/internal/apperror"
	"canteen-system/internal/database"
	"canteen-system/internal/models"
)

// PostgresRepository stores carts in PostgreSQL
type PostgresRepository struct {
	db *database.DB
}

// NewPostgresRepository creates a cart repository
func NewPostgresRepository(db *database.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetOrCreate returns the user's cart with its lines
func (r *PostgresRepository) GetOrCreate(ctx context.Context, userID int64) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.QueryRow(ctx, database.GetOrCreateCartSQL, userID).Scan(
		&cart.ID,
		&cart.UserID,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	rows, err := r.db.Query(ctx, database.ListCartItemsSQL, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	cart.Items, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.CartItem, error) {
		item, err := scanCartItem(row)
		if err != nil {
			return models.CartItem{}, err
		}
		return *item, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan cart items: %w", err)
	}
	return &cart, nil
}

// AddItem inserts a line or increments the existing one for the same menu item
func (r *PostgresRepository) AddItem(ctx context.Context, cartID, menuItemID int64, quantity int) (*models.CartItem, error) {
	var item *models.CartItem
	err := r.db.InTx(ctx, func(tx pgx.Tx) error {
		var itemID int64
		if err := tx.QueryRow(ctx, database.UpsertCartItemSQL, cartID, menuItemID, quantity).Scan(&itemID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, database.TouchCartSQL, cartID); err != nil {
			return err
		}

		var err error
		item, err = scanCartItem(tx.QueryRow(ctx, database.GetCartItemSQL, itemID, cartID))
		return err
	})
	return item, err
}

// UpdateItem sets a line's quantity
func (r *PostgresRepository) UpdateItem(ctx context.Context, cartID, itemID int64, quantity int) (*models.CartItem, error) {
	tag, err := r.db.Pool.Exec(ctx, database.UpdateCartItemSQL, itemID, cartID, quantity)
	if err != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, apperror.NotFound("Cart item not found")
	}
	return r.getItem(ctx, cartID, itemID)
}

// RemoveItem deletes a line and returns it as it was
func (r *PostgresRepository) RemoveItem(ctx context.Context, cartID, itemID int64) (*models.CartItem, error) {
	item, err := r.getItem(ctx, cartID, itemID)
	if err != nil {
		return nil, err
	}
	if _, err := r.db.Pool.Exec(ctx, database.DeleteCartItemSQL, itemID, cartID); err != nil {
		return nil, fmt.Errorf("failed to delete cart item: %w", err)
	}
	return item, nil
}

// Clear deletes every line of a cart
func (r *PostgresRepository) Clear(ctx context.Context, cartID int64) error {
	if err := r.db.Exec(ctx, database.ClearCartSQL, cartID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

func (r *PostgresRepository) getItem(ctx context.Context, cartID, itemID int64) (*models.CartItem, error) {
	item, err := scanCartItem(r.db.QueryRow(ctx, database.GetCartItemSQL, itemID, cartID))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, apperror.NotFound("Cart item not found")
		}
		return nil, fmt.Errorf("failed to get cart item: %w", err)
	}
	return item, nil
}

func scanCartItem(row pgx.Row) (*models.CartItem, error) {
	var (
		item     models.CartItem
		category string
	)
	err := row.Scan(
		&item.ID,
		&item.MenuItemID,
		&item.MenuItemName,
		&item.MenuItemPrice,
		&category,
		&item.MenuItemAvailable,
		&item.Quantity,
		&item.AddedAt,
	)
	if err != nil {
		return nil, err
	}
	item.MenuItemCategory = models.Category(category)
	return &item, nil
}

package menu

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"canteen-system/internal/apperror"
	"canteen-system/internal/database"
	"canteen-system/internal/models"
)

// PostgresRepository stores menu items in PostgreSQL
type PostgresRepository struct {
	db *database.DB
}

// NewPostgresRepository creates a menu repository
func NewPostgresRepository(db *database.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// List returns the items matching filter
func (r *PostgresRepository) List(ctx context.Context, filter models.MenuFilter) ([]models.MenuItem, error) {
	query, args := buildListQuery(filter)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query menu items: %w", err)
	}
	defer rows.Close()

	items := []models.MenuItem{}
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan menu item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// buildListQuery renders filter into a parameterized SELECT
func buildListQuery(filter models.MenuFilter) (string, []interface{}) {
	var (
		conditions []string
		args       []interface{}
	)
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if filter.OnlyAvailable {
		conditions = append(conditions, "available = TRUE")
	} else if filter.Available != nil {
		add("available = $%d", *filter.Available)
	}
	if filter.Category != "" {
		add("category = $%d", string(filter.Category))
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		args = append(args, "%"+q+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", n, n))
	}
	if filter.MinPrice != nil {
		add("price >= $%d", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		add("price <= $%d", *filter.MaxPrice)
	}

	var sb strings.Builder
	sb.WriteString("SELECT " + database.MenuItemColumns + " FROM menu_items")
	if len(conditions) > 0 {
		sb.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	sb.WriteString(" ORDER BY " + filter.OrderBy())
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		sb.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)))
	}
	return sb.String(), args
}

// Get returns one item by id
func (r *PostgresRepository) Get(ctx context.Context, id int64) (*models.MenuItem, error) {
	item, err := scanMenuItem(r.db.QueryRow(ctx, database.GetMenuItemSQL, id))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, apperror.NotFound("Menu item not found")
		}
		return nil, fmt.Errorf("failed to get menu item: %w", err)
	}
	return item, nil
}

// Create inserts a validated item
func (r *PostgresRepository) Create(ctx context.Context, req *models.MenuItemRequest) (*models.MenuItem, error) {
	return scanMenuItem(r.db.QueryRow(ctx, database.InsertMenuItemSQL,
		req.Name, req.Description, req.Price, *req.Available, string(req.Category), req.Stock))
}

// Update replaces every mutable field of an item
func (r *PostgresRepository) Update(ctx context.Context, id int64, req *models.MenuItemRequest) (*models.MenuItem, error) {
	item, err := scanMenuItem(r.db.QueryRow(ctx, database.UpdateMenuItemSQL,
		id, req.Name, req.Description, req.Price, *req.Available, string(req.Category), req.Stock))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, apperror.NotFound("Menu item not found")
		}
		return nil, fmt.Errorf("failed to update menu item: %w", err)
	}
	return item, nil
}

// Delete removes an item
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Pool.Exec(ctx, database.DeleteMenuItemSQL, id)
	if err != nil {
		return fmt.Errorf("failed to delete menu item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("Menu item not found")
	}
	return nil
}

// AvailableCategories lists categories with at least one available item
func (r *PostgresRepository) AvailableCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := r.db.Query(ctx, database.ListMenuCategoriesSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Category, error) {
		var c string
		err := row.Scan(&c)
		return models.Category(c), err
	})
}

func scanMenuItem(row pgx.Row) (*models.MenuItem, error) {
	var (
		item     models.MenuItem
		category string
	)
	err := row.Scan(
		&item.ID,
		&item.Name,
		&item.Description,
		&item.Price,
		&item.Available,
		&category,
		&item.Stock,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	item.Category = models.Category(category)
	return &item, nil
}

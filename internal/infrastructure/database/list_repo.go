package database

import (
	"context"
	"errors"
	"fmt"

	"grocery-aggregator/internal/core/grocery"

	"github.com/jackc/pgx/v5"
)

var (
	ErrListNotFound  = errors.New("shopping list not found")
	ErrEmptyListID   = errors.New("shopping list id is required")
	ErrInvalidListID = errors.New("shopping list id mismatch")
)

const insertItemSQL = `
	INSERT INTO shopping_list_items (
		shopping_list_id, recipe_id, source_recipe_title, item_name, original_text,
		quantity_amount, quantity_unit, display_unit, grocery_category, is_checked, order_index
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`

// SaveItems 以新內容整批取代清單的所有項目
func (db *DB) SaveItems(ctx context.Context, listID string, rows []grocery.StoredItem) error {
	if err := validateRows(listID, rows); err != nil {
		return err
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM shopping_list_items WHERE shopping_list_id = $1`, listID); err != nil {
		return fmt.Errorf("failed to clear shopping list: %w", err)
	}

	if len(rows) > 0 {
		batch := &pgx.Batch{}
		for _, r := range rows {
			batch.Queue(insertItemSQL,
				r.ShoppingListID, r.RecipeID, r.SourceRecipeTitle, r.ItemName, r.OriginalText,
				r.QuantityAmount, r.QuantityUnit, r.DisplayUnit, r.GroceryCategory, r.IsChecked, r.OrderIndex,
			)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert shopping list items: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit shopping list: %w", err)
	}
	return nil
}

// ListItems 依 order_index 讀回清單
func (db *DB) ListItems(ctx context.Context, listID string) ([]grocery.StoredItem, error) {
	if listID == "" {
		return nil, ErrEmptyListID
	}

	rows, err := db.Pool.Query(ctx, `
		SELECT shopping_list_id, recipe_id, source_recipe_title, item_name, original_text,
		       quantity_amount, quantity_unit, display_unit, grocery_category, is_checked, order_index
		FROM shopping_list_items
		WHERE shopping_list_id = $1
		ORDER BY order_index ASC
	`, listID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []grocery.StoredItem{}
	for rows.Next() {
		var it grocery.StoredItem
		err := rows.Scan(
			&it.ShoppingListID, &it.RecipeID, &it.SourceRecipeTitle, &it.ItemName, &it.OriginalText,
			&it.QuantityAmount, &it.QuantityUnit, &it.DisplayUnit, &it.GroceryCategory, &it.IsChecked, &it.OrderIndex,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(items) == 0 {
		return nil, ErrListNotFound
	}
	return items, nil
}

// validateRows 所有資料列必須屬於同一份清單
func validateRows(listID string, rows []grocery.StoredItem) error {
	if listID == "" {
		return ErrEmptyListID
	}
	for _, r := range rows {
		if r.ShoppingListID != listID {
			return fmt.Errorf("%w: row %q belongs to %q", ErrInvalidListID, r.ItemName, r.ShoppingListID)
		}
	}
	return nil
}

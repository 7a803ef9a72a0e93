package cart

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertItemMergesOnConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresRepository(db)
	userID := uuid.New()
	cartID := uuid.New()
	item := &Item{
		ID:        uuid.New(),
		ProductID: uuid.New(),
		Name:      "Tee",
		Price:     19.99,
		Quantity:  2,
		Size:      "M",
		Color:     "Black",
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`
		INSERT INTO carts (id, user_id) VALUES ($1, $2)
		ON CONFLICT (user_id) DO NOTHING`)).
		WithArgs(sqlmock.AnyArg(), userID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM carts WHERE user_id=$1 FOR UPDATE`)).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(cartID))
	mock.ExpectExec(regexp.QuoteMeta(`
		INSERT INTO cart_items (id, cart_id, product_id, name, image, price, quantity, size, color)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (cart_id, product_id, size, color)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity`)).
		WithArgs(item.ID, cartID, item.ProductID, item.Name, item.Image,
			item.Price, item.Quantity, item.Size, item.Color).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE carts SET updated_at=NOW() WHERE id=$1`)).
		WithArgs(cartID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.UpsertItem(context.Background(), userID, item))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByUserWithoutCartReturnsEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresRepository(db)
	userID := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, user_id, created_at, updated_at FROM carts WHERE user_id=$1`)).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "created_at", "updated_at"}))

	c, err := repo.GetByUser(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, userID, c.UserID)
	assert.Empty(t, c.Items)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrementQuantityStopsAtCeiling(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresRepository(db)
	itemID := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE cart_items SET quantity = quantity + 1 WHERE id=$1 AND quantity < $2`)).
		WithArgs(itemID, MaxQuantity).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM cart_items WHERE id=$1)`)).
		WithArgs(itemID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	err = repo.IncrementQuantity(context.Background(), itemID, MaxQuantity)
	require.ErrorIs(t, err, ErrMaxQuantity)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrementQuantityMissingItem(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresRepository(db)
	itemID := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE cart_items SET quantity = quantity + 1 WHERE id=$1 AND quantity < $2`)).
		WithArgs(itemID, MaxQuantity).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM cart_items WHERE id=$1)`)).
		WithArgs(itemID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	err = repo.IncrementQuantity(context.Background(), itemID, MaxQuantity)
	require.ErrorIs(t, err, ErrItemNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteItemReportsHeldQuantity(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresRepository(db)
	itemID := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`DELETE FROM cart_items WHERE id=$1 RETURNING quantity`)).
		WithArgs(itemID).
		WillReturnRows(sqlmock.NewRows([]string{"quantity"}).AddRow(4))

	qty, err := repo.DeleteItem(context.Background(), itemID)
	require.NoError(t, err)
	assert.Equal(t, 4, qty)
	require.NoError(t, mock.ExpectationsWereMet())
}

package repository

import (
	"context"
	"fmt"

	"billtrack/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const billsTable = "bills"

var billColumns = []string{"id", "title", "amount", "bill_date", "storage_key", "created_at"}

// BillRepository stores bills in PostgreSQL.
type BillRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewBillRepository(db *pgxpool.Pool, logger *zap.Logger) *BillRepository {
	return &BillRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts bill and fills in the id assigned by the database.
func (r *BillRepository) Create(ctx context.Context, bill *models.Bill) error {
	sql, args, err := insertBillQuery(bill).ToSql()
	if err != nil {
		return err
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&bill.ID, &bill.CreatedAt); err != nil {
		return fmt.Errorf("insert bill: %w", err)
	}

	r.logger.Debug("Bill stored", zap.String("id", bill.ID), zap.String("storage_key", bill.StorageKey))
	return nil
}

// List returns every bill, newest first.
func (r *BillRepository) List(ctx context.Context) ([]*models.Bill, error) {
	sql, args, err := listBillsQuery().ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query bills: %w", err)
	}
	defer rows.Close()

	bills := make([]*models.Bill, 0)
	for rows.Next() {
		var bill models.Bill
		if err := rows.Scan(
			&bill.ID, &bill.Title, &bill.Amount, &bill.Date, &bill.StorageKey, &bill.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan bill: %w", err)
		}
		bills = append(bills, &bill)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bills: %w", err)
	}

	return bills, nil
}

func insertBillQuery(bill *models.Bill) squirrel.InsertBuilder {
	return squirrel.Insert(billsTable).
		Columns("title", "amount", "bill_date", "storage_key", "created_at").
		Values(bill.Title, bill.Amount, bill.Date, bill.StorageKey, bill.CreatedAt).
		Suffix("RETURNING id::text, created_at").
		PlaceholderFormat(squirrel.Dollar)
}

func listBillsQuery() squirrel.SelectBuilder {
	columns := append([]string{"id::text"}, billColumns[1:]...)
	return squirrel.Select(columns...).
		From(billsTable).
		OrderBy("created_at DESC", "id DESC").
		PlaceholderFormat(squirrel.Dollar)
}

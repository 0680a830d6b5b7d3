package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/recibos-extractor/internal/entity"
)

type ReceiptRepository interface {
	SaveAll(ctx context.Context, runID uuid.UUID, records []entity.ReceiptRecord) error
	ListByRun(ctx context.Context, runID uuid.UUID) ([]entity.ReceiptRecord, error)
}

type receiptRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewReceiptRepository(db *DB, logger *slog.Logger) ReceiptRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &receiptRepository{db: db, logger: logger}
}

// SaveAll stores the records of a run and their product lines in one transaction,
// preserving document order.
func (r *receiptRepository) SaveAll(ctx context.Context, runID uuid.UUID, records []entity.ReceiptRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return dbError("begin", err)
	}
	defer func() { _ = tx.Rollback() }()

	insReceipt := r.db.rebind(`INSERT INTO receipt (id, run_id, ordinal, number, seller, customer) VALUES (?, ?, ?, ?, ?, ?)`)
	insLine := r.db.rebind(`INSERT INTO product_line (receipt_id, ordinal, description, quantity, unit_price, unit) VALUES (?, ?, ?, ?, ?, ?)`)

	lines := 0
	for i, rec := range records {
		id := uuid.New().String()
		if _, err := tx.ExecContext(ctx, insReceipt, id, runID.String(), i, rec.ID, rec.Seller, rec.Customer); err != nil {
			r.logger.Error("receipt.save.failed", "run_id", runID, "number", rec.ID, "error", err)
			return dbError("insert receipt", err)
		}
		for j, p := range rec.Products {
			if _, err := tx.ExecContext(ctx, insLine, id, j, p.Description, p.Quantity, p.UnitPrice, p.Unit); err != nil {
				r.logger.Error("receipt.save.failed", "run_id", runID, "number", rec.ID, "line", j, "error", err)
				return dbError("insert product line", err)
			}
			lines++
		}
	}
	if err := tx.Commit(); err != nil {
		return dbError("commit", err)
	}
	r.logger.Info("receipt.save.ok", "run_id", runID, "receipts", len(records), "lines", lines)
	return nil
}

func (r *receiptRepository) ListByRun(ctx context.Context, runID uuid.UUID) ([]entity.ReceiptRecord, error) {
	rows, err := r.db.QueryContext(ctx, r.db.rebind(
		`SELECT r.id, r.number, r.seller, r.customer, p.description, p.quantity, p.unit_price, p.unit
		 FROM receipt r LEFT JOIN product_line p ON p.receipt_id = r.id
		 WHERE r.run_id = ?
		 ORDER BY r.ordinal, p.ordinal`), runID.String())
	if err != nil {
		r.logger.Error("receipt.list.failed", "run_id", runID, "error", err)
		return nil, dbError("list receipts", err)
	}
	defer rows.Close()

	var (
		out    []entity.ReceiptRecord
		lastID string
	)
	for rows.Next() {
		var (
			id                     string
			rec                    entity.ReceiptRecord
			desc, qty, price, unit sql.NullString
		)
		if err := rows.Scan(&id, &rec.ID, &rec.Seller, &rec.Customer, &desc, &qty, &price, &unit); err != nil {
			return nil, dbError("scan receipt", err)
		}
		if id != lastID {
			rec.Products = []entity.ProductLine{}
			out = append(out, rec)
			lastID = id
		}
		if desc.Valid {
			cur := &out[len(out)-1]
			cur.Products = append(cur.Products, entity.ProductLine{
				Description: desc.String,
				Quantity:    qty.String,
				UnitPrice:   price.String,
				Unit:        unit.String,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("list receipts", err)
	}
	return out, nil
}

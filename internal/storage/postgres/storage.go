package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/tgreer/familysite/internal/domain/errors"
	"github.com/tgreer/familysite/internal/domain/model"
	"github.com/tgreer/familysite/internal/domain/repository"
)

// DBPool is the subset of pgxpool.Pool the storage layer uses. Tests
// substitute a pgxmock pool through it.
type DBPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// Storage acts as the ledger repository facade backed by PostgreSQL. It is
// the only component that writes payment statuses, and every status write is
// conditional on the row still being PENDING.
type Storage struct {
	pool   DBPool
	logger *slog.Logger
}

type orderRepository struct {
	storage *Storage
}

type duesRepository struct {
	storage *Storage
}

type donationRepository struct {
	storage *Storage
}

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

var _ repository.Factory = (*Storage)(nil)

// Factory methods for domain repositories.
func (s *Storage) Orders() repository.OrderRepository {
	return &orderRepository{storage: s}
}

func (s *Storage) Dues() repository.DuesRepository {
	return &duesRepository{storage: s}
}

func (s *Storage) Donations() repository.DonationRepository {
	return &donationRepository{storage: s}
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id SERIAL PRIMARY KEY,
            name TEXT NOT NULL,
            email TEXT UNIQUE NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS product_variants (
            id SERIAL PRIMARY KEY,
            product TEXT NOT NULL,
            label TEXT NOT NULL,
            unit_price NUMERIC(10,2) NOT NULL,
            stock INT NOT NULL DEFAULT 0 CHECK (stock >= 0)
        )`,
		`CREATE TABLE IF NOT EXISTS orders (
            id BIGSERIAL PRIMARY KEY,
            user_id BIGINT NOT NULL REFERENCES users(id),
            status TEXT NOT NULL,
            square_payment_id TEXT NOT NULL DEFAULT '',
            receipt_url TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS order_items (
            order_id BIGINT NOT NULL REFERENCES orders(id),
            variant_id BIGINT NOT NULL REFERENCES product_variants(id),
            quantity INT NOT NULL CHECK (quantity > 0),
            unit_price NUMERIC(10,2) NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS dues_batches (
            id TEXT PRIMARY KEY,
            user_id BIGINT NOT NULL REFERENCES users(id),
            year INT NOT NULL,
            status TEXT NOT NULL,
            square_payment_id TEXT NOT NULL DEFAULT '',
            receipt_url TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS dues_payments (
            id BIGSERIAL PRIMARY KEY,
            batch_id TEXT REFERENCES dues_batches(id),
            user_id BIGINT REFERENCES users(id),
            member_name TEXT NOT NULL DEFAULT '',
            year INT NOT NULL,
            amount NUMERIC(10,2) NOT NULL,
            status TEXT NOT NULL,
            method TEXT NOT NULL,
            square_payment_id TEXT NOT NULL DEFAULT '',
            receipt_url TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS donations (
            id BIGSERIAL PRIMARY KEY,
            user_id BIGINT REFERENCES users(id),
            donor_name TEXT NOT NULL DEFAULT '',
            donor_email TEXT NOT NULL DEFAULT '',
            amount NUMERIC(10,2) NOT NULL,
            note TEXT NOT NULL DEFAULT '',
            year INT,
            status TEXT NOT NULL,
            square_payment_id TEXT NOT NULL DEFAULT '',
            receipt_url TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_dues_self_year ON dues_payments(user_id, year)
            WHERE user_id IS NOT NULL AND method = 'square'`,
		`CREATE INDEX IF NOT EXISTS idx_orders_pending ON orders(created_at) WHERE status = 'PENDING'`,
		`CREATE INDEX IF NOT EXISTS idx_batches_pending ON dues_batches(created_at) WHERE status = 'PENDING'`,
		`CREATE INDEX IF NOT EXISTS idx_donations_pending ON donations(created_at) WHERE status = 'PENDING'`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

// --- OrderRepository implementation ---

func (r *orderRepository) Create(ctx context.Context, userID int64, items []model.OrderItem) (*model.Order, error) {
	order := &model.Order{UserID: userID, Status: model.OrderStatusPending}

	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		const insertOrder = `INSERT INTO orders (user_id, status) VALUES ($1, $2)
                             RETURNING id, created_at, updated_at`
		if err := tx.QueryRow(ctx, insertOrder, userID, model.OrderStatusPending).
			Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt); err != nil {
			return err
		}

		for _, item := range items {
			const selectPrice = `SELECT unit_price FROM product_variants WHERE id=$1`
			if err := tx.QueryRow(ctx, selectPrice, item.VariantID).Scan(&item.UnitPrice); err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return domainErrors.ErrNotFound
				}
				return err
			}

			const insertItem = `INSERT INTO order_items (order_id, variant_id, quantity, unit_price)
                                VALUES ($1, $2, $3, $4)`
			if _, err := tx.Exec(ctx, insertItem, order.ID, item.VariantID, item.Quantity, item.UnitPrice); err != nil {
				return err
			}
			order.Items = append(order.Items, item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) GetByID(ctx context.Context, orderID int64) (*model.Order, error) {
	const query = `SELECT id, user_id, status, square_payment_id, receipt_url, created_at, updated_at
                   FROM orders WHERE id=$1`
	var order model.Order
	err := r.storage.pool.QueryRow(ctx, query, orderID).
		Scan(&order.ID, &order.UserID, &order.Status, &order.SquarePaymentID, &order.ReceiptURL, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}

	items, err := r.itemsByOrder(ctx, r.storage.pool, orderID)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return &order, nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *orderRepository) itemsByOrder(ctx context.Context, q querier, orderID int64) ([]model.OrderItem, error) {
	const query = `SELECT variant_id, quantity, unit_price FROM order_items WHERE order_id=$1`
	rows, err := q.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.OrderItem
	for rows.Next() {
		var item model.OrderItem
		if err := rows.Scan(&item.VariantID, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// MarkPaid attempts PENDING->PAID. Stock for every line item is re-checked
// under row locks inside the same transaction; if any item is short the
// order is parked in REQUIRES_REFUND and no stock is decremented.
func (r *orderRepository) MarkPaid(ctx context.Context, orderID int64, paymentID, receiptURL string) (*model.Order, bool, error) {
	var applied bool

	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		const lockOrder = `SELECT status FROM orders WHERE id=$1 FOR UPDATE`
		var status model.OrderStatus
		if err := tx.QueryRow(ctx, lockOrder, orderID).Scan(&status); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domainErrors.ErrNotFound
			}
			return err
		}
		if status != model.OrderStatusPending {
			return nil
		}

		const lockItems = `SELECT oi.variant_id, oi.quantity, pv.stock
                           FROM order_items oi
                           JOIN product_variants pv ON pv.id = oi.variant_id
                           WHERE oi.order_id=$1
                           FOR UPDATE OF pv`
		rows, err := tx.Query(ctx, lockItems, orderID)
		if err != nil {
			return err
		}

		type lineStock struct {
			variantID int64
			quantity  int32
			stock     int32
		}
		var lines []lineStock
		short := false
		for rows.Next() {
			var line lineStock
			if err := rows.Scan(&line.variantID, &line.quantity, &line.stock); err != nil {
				rows.Close()
				return err
			}
			if line.stock < line.quantity {
				short = true
			}
			lines = append(lines, line)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		if short {
			const park = `UPDATE orders SET status=$2, square_payment_id=$3, receipt_url=$4, updated_at=NOW()
                          WHERE id=$1`
			if _, err := tx.Exec(ctx, park, orderID, model.OrderStatusRequiresRefund, paymentID, receiptURL); err != nil {
				return err
			}
			applied = true
			return nil
		}

		for _, line := range lines {
			const decrement = `UPDATE product_variants SET stock = stock - $2 WHERE id=$1`
			if _, err := tx.Exec(ctx, decrement, line.variantID, line.quantity); err != nil {
				return err
			}
		}

		const pay = `UPDATE orders SET status=$2, square_payment_id=$3, receipt_url=$4, updated_at=NOW()
                     WHERE id=$1`
		if _, err := tx.Exec(ctx, pay, orderID, model.OrderStatusPaid, paymentID, receiptURL); err != nil {
			return err
		}
		applied = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	order, err := r.GetByID(ctx, orderID)
	if err != nil {
		return nil, false, err
	}
	return order, applied, nil
}

func (r *orderRepository) MarkCancelled(ctx context.Context, orderID int64) (*model.Order, bool, error) {
	const cancel = `UPDATE orders SET status=$2, updated_at=NOW() WHERE id=$1 AND status=$3`
	tag, err := r.storage.pool.Exec(ctx, cancel, orderID, model.OrderStatusCancelled, model.OrderStatusPending)
	if err != nil {
		return nil, false, err
	}

	order, err := r.GetByID(ctx, orderID)
	if err != nil {
		return nil, false, err
	}
	return order, tag.RowsAffected() == 1, nil
}

func (r *orderRepository) StalePending(ctx context.Context, cutoff time.Time, limit int) ([]int64, error) {
	const query = `SELECT id FROM orders WHERE status=$1 AND created_at < $2 ORDER BY created_at LIMIT $3`
	return scanIDs(ctx, r.storage.pool, query, model.OrderStatusPending, cutoff, limit)
}

// --- DuesRepository implementation ---

func (r *duesRepository) CreateBatch(ctx context.Context, batch *model.DuesBatch, payments []model.DuesPayment) (*model.DuesBatch, error) {
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		const insertBatch = `INSERT INTO dues_batches (id, user_id, year, status) VALUES ($1, $2, $3, $4)
                             RETURNING created_at, updated_at`
		if err := tx.QueryRow(ctx, insertBatch, batch.ID, batch.UserID, batch.Year, batch.Status).
			Scan(&batch.CreatedAt, &batch.UpdatedAt); err != nil {
			return mapPgError(err)
		}

		for _, payment := range payments {
			const insertPayment = `INSERT INTO dues_payments
                (batch_id, user_id, member_name, year, amount, status, method)
                VALUES ($1, $2, $3, $4, $5, $6, $7)`
			if _, err := tx.Exec(ctx, insertPayment,
				payment.BatchID, payment.UserID, payment.MemberName, payment.Year,
				payment.Amount, payment.Status, payment.Method); err != nil {
				return mapPgError(err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return batch, nil
}

func (r *duesRepository) GetBatch(ctx context.Context, batchID model.BatchID) (*model.DuesBatch, error) {
	const query = `SELECT id, user_id, year, status, square_payment_id, receipt_url, created_at, updated_at
                   FROM dues_batches WHERE id=$1`
	var batch model.DuesBatch
	err := r.storage.pool.QueryRow(ctx, query, batchID).
		Scan(&batch.ID, &batch.UserID, &batch.Year, &batch.Status, &batch.SquarePaymentID, &batch.ReceiptURL, &batch.CreatedAt, &batch.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &batch, nil
}

// MarkBatchPaid flips the batch and all constituent payments in one
// transaction so they are never observable in a mixed state.
func (r *duesRepository) MarkBatchPaid(ctx context.Context, batchID model.BatchID, paymentID, receiptURL string) (*model.DuesBatch, bool, error) {
	return r.transitionBatch(ctx, batchID, model.BatchStatusPaid, model.DuesStatusCompleted, paymentID, receiptURL)
}

func (r *duesRepository) MarkBatchFailed(ctx context.Context, batchID model.BatchID) (*model.DuesBatch, bool, error) {
	return r.transitionBatch(ctx, batchID, model.BatchStatusFailed, model.DuesStatusFailed, "", "")
}

func (r *duesRepository) transitionBatch(ctx context.Context, batchID model.BatchID, batchStatus model.BatchStatus, duesStatus model.DuesStatus, paymentID, receiptURL string) (*model.DuesBatch, bool, error) {
	var applied bool

	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		const casBatch = `UPDATE dues_batches
                          SET status=$2, square_payment_id=$3, receipt_url=$4, updated_at=NOW()
                          WHERE id=$1 AND status=$5`
		tag, err := tx.Exec(ctx, casBatch, batchID, batchStatus, paymentID, receiptURL, model.BatchStatusPending)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return nil
		}

		const propagate = `UPDATE dues_payments
                           SET status=$2, square_payment_id=$3, receipt_url=$4, updated_at=NOW()
                           WHERE batch_id=$1 AND status=$5`
		if _, err := tx.Exec(ctx, propagate, batchID, duesStatus, paymentID, receiptURL, model.DuesStatusPending); err != nil {
			return err
		}
		applied = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	batch, err := r.GetBatch(ctx, batchID)
	if err != nil {
		return nil, false, err
	}
	return batch, applied, nil
}

func (r *duesRepository) GetSingle(ctx context.Context, userID int64, year int) (*model.DuesPayment, error) {
	const query = `SELECT id, batch_id, user_id, member_name, year, amount, status, method,
                          square_payment_id, receipt_url, created_at, updated_at
                   FROM dues_payments WHERE user_id=$1 AND year=$2 AND method=$3`
	return r.scanPayment(r.storage.pool.QueryRow(ctx, query, userID, year, model.PaymentMethodSquare))
}

func (r *duesRepository) CompleteSingle(ctx context.Context, userID int64, year int, paymentID, receiptURL string) (*model.DuesPayment, bool, error) {
	const cas = `UPDATE dues_payments
                 SET status=$3, square_payment_id=$4, receipt_url=$5, updated_at=NOW()
                 WHERE user_id=$1 AND year=$2 AND method=$6 AND status=$7`
	tag, err := r.storage.pool.Exec(ctx, cas, userID, year,
		model.DuesStatusCompleted, paymentID, receiptURL, model.PaymentMethodSquare, model.DuesStatusPending)
	if err != nil {
		return nil, false, err
	}

	payment, err := r.GetSingle(ctx, userID, year)
	if err != nil {
		return nil, false, err
	}
	return payment, tag.RowsAffected() == 1, nil
}

func (r *duesRepository) FailSingle(ctx context.Context, userID int64, year int) (*model.DuesPayment, bool, error) {
	const cas = `UPDATE dues_payments SET status=$3, updated_at=NOW()
                 WHERE user_id=$1 AND year=$2 AND method=$4 AND status=$5`
	tag, err := r.storage.pool.Exec(ctx, cas, userID, year,
		model.DuesStatusFailed, model.PaymentMethodSquare, model.DuesStatusPending)
	if err != nil {
		return nil, false, err
	}

	payment, err := r.GetSingle(ctx, userID, year)
	if err != nil {
		return nil, false, err
	}
	return payment, tag.RowsAffected() == 1, nil
}

func (r *duesRepository) RecordManual(ctx context.Context, payment model.DuesPayment) (*model.DuesPayment, error) {
	const insert = `INSERT INTO dues_payments (batch_id, user_id, member_name, year, amount, status, method)
                    VALUES ($1, $2, $3, $4, $5, $6, $7)
                    RETURNING id, created_at, updated_at`
	err := r.storage.pool.QueryRow(ctx, insert,
		payment.BatchID, payment.UserID, payment.MemberName, payment.Year,
		payment.Amount, payment.Status, payment.Method).
		Scan(&payment.ID, &payment.CreatedAt, &payment.UpdatedAt)
	if err != nil {
		return nil, mapPgError(err)
	}
	return &payment, nil
}

func (r *duesRepository) ListByYear(ctx context.Context, year int) ([]model.DuesPayment, error) {
	const query = `SELECT id, batch_id, user_id, member_name, year, amount, status, method,
                          square_payment_id, receipt_url, created_at, updated_at
                   FROM dues_payments WHERE year=$1 ORDER BY created_at`
	rows, err := r.storage.pool.Query(ctx, query, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.DuesPayment
	for rows.Next() {
		var p model.DuesPayment
		if err := rows.Scan(&p.ID, &p.BatchID, &p.UserID, &p.MemberName, &p.Year, &p.Amount,
			&p.Status, &p.Method, &p.SquarePaymentID, &p.ReceiptURL, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *duesRepository) StalePendingBatches(ctx context.Context, cutoff time.Time, limit int) ([]model.BatchID, error) {
	const query = `SELECT id FROM dues_batches WHERE status=$1 AND created_at < $2 ORDER BY created_at LIMIT $3`
	rows, err := r.storage.pool.Query(ctx, query, model.BatchStatusPending, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []model.BatchID
	for rows.Next() {
		var id model.BatchID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *duesRepository) scanPayment(row pgx.Row) (*model.DuesPayment, error) {
	var p model.DuesPayment
	err := row.Scan(&p.ID, &p.BatchID, &p.UserID, &p.MemberName, &p.Year, &p.Amount,
		&p.Status, &p.Method, &p.SquarePaymentID, &p.ReceiptURL, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// --- DonationRepository implementation ---

func (r *donationRepository) Create(ctx context.Context, donation *model.Donation) (*model.Donation, error) {
	const insert = `INSERT INTO donations (user_id, donor_name, donor_email, amount, note, year, status)
                    VALUES ($1, $2, $3, $4, $5, $6, $7)
                    RETURNING id, created_at, updated_at`
	err := r.storage.pool.QueryRow(ctx, insert,
		donation.UserID, donation.DonorName, donation.DonorEmail, donation.Amount,
		donation.Note, donation.Year, donation.Status).
		Scan(&donation.ID, &donation.CreatedAt, &donation.UpdatedAt)
	if err != nil {
		return nil, mapPgError(err)
	}
	return donation, nil
}

func (r *donationRepository) GetByID(ctx context.Context, donationID int64) (*model.Donation, error) {
	const query = `SELECT id, user_id, donor_name, donor_email, amount, note, year, status,
                          square_payment_id, receipt_url, created_at, updated_at
                   FROM donations WHERE id=$1`
	var d model.Donation
	err := r.storage.pool.QueryRow(ctx, query, donationID).
		Scan(&d.ID, &d.UserID, &d.DonorName, &d.DonorEmail, &d.Amount, &d.Note, &d.Year,
			&d.Status, &d.SquarePaymentID, &d.ReceiptURL, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *donationRepository) Complete(ctx context.Context, donationID int64, paymentID, receiptURL string) (*model.Donation, bool, error) {
	const cas = `UPDATE donations SET status=$2, square_payment_id=$3, receipt_url=$4, updated_at=NOW()
                 WHERE id=$1 AND status=$5`
	tag, err := r.storage.pool.Exec(ctx, cas, donationID,
		model.DonationStatusCompleted, paymentID, receiptURL, model.DonationStatusPending)
	if err != nil {
		return nil, false, err
	}

	donation, err := r.GetByID(ctx, donationID)
	if err != nil {
		return nil, false, err
	}
	return donation, tag.RowsAffected() == 1, nil
}

func (r *donationRepository) Fail(ctx context.Context, donationID int64) (*model.Donation, bool, error) {
	const cas = `UPDATE donations SET status=$2, updated_at=NOW() WHERE id=$1 AND status=$3`
	tag, err := r.storage.pool.Exec(ctx, cas, donationID,
		model.DonationStatusFailed, model.DonationStatusPending)
	if err != nil {
		return nil, false, err
	}

	donation, err := r.GetByID(ctx, donationID)
	if err != nil {
		return nil, false, err
	}
	return donation, tag.RowsAffected() == 1, nil
}

func (r *donationRepository) StalePending(ctx context.Context, cutoff time.Time, limit int) ([]int64, error) {
	const query = `SELECT id FROM donations WHERE status=$1 AND created_at < $2 ORDER BY created_at LIMIT $3`
	return scanIDs(ctx, r.storage.pool, query, model.DonationStatusPending, cutoff, limit)
}

// --- shared helpers ---

func scanIDs(ctx context.Context, pool DBPool, query string, args ...any) ([]int64, error) {
	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return domainErrors.ErrAlreadyExists
	}
	return err
}

// WithinTransaction executes function inside transaction boundary.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(tx)
	return err
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}

// Logger returns storage logger.
func (s *Storage) Logger() *slog.Logger {
	return s.logger
}

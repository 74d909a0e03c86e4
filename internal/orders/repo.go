package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("order not found")

type Repo struct{ DB *pgxpool.Pool }

// CreateOrder persists the order and its line items in one transaction and
// fills in the store-assigned id and created_at. This is the durability
// point of a checkout: everything after it is best-effort.
func (r *Repo) CreateOrder(ctx context.Context, o *Order) (string, error) {
	if len(o.Items) == 0 {
		return "", errors.New("order has no items")
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	o.ID = uuid.NewString()
	err = tx.QueryRow(ctx, `
		INSERT INTO orders(id, user_id, customer_name, customer_email, customer_phone,
		                   address, city, country, postal_code,
		                   subtotal_cents, shipping_cents, total_cents, status, payment_method)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		RETURNING created_at, updated_at`,
		o.ID, o.UserID, o.Customer.Name, o.Customer.Email, o.Customer.Phone,
		o.Customer.Address, o.Customer.City, o.Customer.Country, o.Customer.PostalCode,
		o.SubtotalCents, o.ShippingCents, o.TotalCents, string(o.Status), o.PaymentMethod,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return "", err
	}

	for _, it := range o.Items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items(order_id, product_id, name, price_cents, qty, image_url)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			o.ID, it.ProductID, it.Name, it.PriceCents, it.Qty, it.ImageURL,
		); err != nil {
			return "", err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return o.ID, nil
}

// DecrementStock applies one read-free delta per product, floored at zero.
// The adjustments are independent statements sent as a single batch: two
// concurrent orders for the same product sum their decrements instead of
// losing one, and contention on unrelated products never forces a retry of
// the whole order.
func (r *Repo) DecrementStock(ctx context.Context, adjs []StockAdjustment) error {
	if len(adjs) == 0 {
		return nil
	}
	b := &pgx.Batch{}
	for _, a := range adjs {
		b.Queue(`UPDATE products SET stock = GREATEST(stock - $2, 0), updated_at = now()
		         WHERE id = $1`, a.ProductID, a.Qty)
	}
	br := r.DB.SendBatch(ctx, b)
	defer br.Close()
	for range adjs {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("decrement stock: %w", err)
		}
	}
	return nil
}

// ListOrders returns summaries newest-first. An empty status means all.
// Text search and pagination happen in the admin console, in memory.
func (r *Repo) ListOrders(ctx context.Context, status Status) ([]Summary, error) {
	q := `SELECT id, customer_name, total_cents, status, created_at FROM orders`
	args := []any{}
	if status != "" {
		q += ` WHERE status = $1`
		args = append(args, string(status))
	}
	q += ` ORDER BY created_at DESC`

	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.CustomerName, &s.TotalCents, &s.Status, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repo) SetStatus(ctx context.Context, orderID string, status Status) error {
	ct, err := r.DB.Exec(ctx, `UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`,
		orderID, string(status))
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// BulkSetStatus updates every listed order in one transaction. If any id is
// missing the whole batch rolls back, so a concurrent viewer sees either all
// of the updates or none of them.
func (r *Repo) BulkSetStatus(ctx context.Context, orderIDs []string, status Status) error {
	if len(orderIDs) == 0 {
		return nil
	}
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ct, err := tx.Exec(ctx, `UPDATE orders SET status = $2, updated_at = now() WHERE id = ANY($1)`,
		orderIDs, string(status))
	if err != nil {
		return err
	}
	if int(ct.RowsAffected()) != len(orderIDs) {
		return fmt.Errorf("bulk update touched %d of %d orders: %w",
			ct.RowsAffected(), len(orderIDs), ErrNotFound)
	}
	return tx.Commit(ctx)
}

func (r *Repo) DeleteOrder(ctx context.Context, orderID string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM orders WHERE id = $1`, orderID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) OrderDetail(ctx context.Context, orderID string) (Order, error) {
	var o Order
	var status string
	err := r.DB.QueryRow(ctx, `
		SELECT id, user_id, customer_name, customer_email, customer_phone,
		       address, city, country, postal_code,
		       subtotal_cents, shipping_cents, total_cents, status, payment_method,
		       created_at, updated_at
		FROM orders WHERE id = $1`, orderID,
	).Scan(&o.ID, &o.UserID, &o.Customer.Name, &o.Customer.Email, &o.Customer.Phone,
		&o.Customer.Address, &o.Customer.City, &o.Customer.Country, &o.Customer.PostalCode,
		&o.SubtotalCents, &o.ShippingCents, &o.TotalCents, &status, &o.PaymentMethod,
		&o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, err
	}
	o.Status = Status(status)

	rows, err := r.DB.Query(ctx, `
		SELECT product_id, name, price_cents, qty, COALESCE(image_url, '')
		FROM order_items WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return Order{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ProductID, &it.Name, &it.PriceCents, &it.Qty, &it.ImageURL); err != nil {
			return Order{}, err
		}
		o.Items = append(o.Items, it)
	}
	return o, rows.Err()
}

// Stats aggregates the dashboard overview in four queries.
func (r *Repo) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := r.DB.QueryRow(ctx, `
		SELECT COALESCE(SUM(total_cents), 0), COUNT(*), COUNT(DISTINCT customer_email)
		FROM orders`).Scan(&st.TotalRevenueCents, &st.TotalOrders, &st.TotalCustomers)
	if err != nil {
		return Stats{}, err
	}
	if err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&st.TotalProducts); err != nil {
		return Stats{}, err
	}

	recent, err := r.listLimited(ctx, 5)
	if err != nil {
		return Stats{}, err
	}
	st.RecentOrders = recent

	rows, err := r.DB.Query(ctx, `
		SELECT product_id, name, SUM(qty) AS units
		FROM order_items GROUP BY product_id, name ORDER BY units DESC LIMIT 5`)
	if err != nil {
		return Stats{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var p ProductSales
		if err := rows.Scan(&p.ProductID, &p.Name, &p.UnitsSold); err != nil {
			return Stats{}, err
		}
		st.TopProducts = append(st.TopProducts, p)
	}
	return st, rows.Err()
}

func (r *Repo) listLimited(ctx context.Context, n int) ([]Summary, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, customer_name, total_cents, status, created_at
		FROM orders ORDER BY created_at DESC LIMIT $1`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Summary
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.CustomerName, &s.TotalCents, &s.Status, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/stocksense/stocksense/internal/domain/models"
	"github.com/stocksense/stocksense/internal/ingest"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
)

// ErrProductNotFound is returned when a sale references an unknown product.
var ErrProductNotFound = errors.New("product not found")

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Repository stores the sales dataset and POS transactions in SQLite.
type Repository struct {
	db     *sqlx.DB
	table  string
	logger *zap.Logger
}

// Open connects to the SQLite database at path and prepares the schema.
func Open(ctx context.Context, path, table string, logger *zap.Logger) (*Repository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite %s: %w", path, err)
	}
	// A single connection keeps ":memory:" databases consistent and avoids
	// SQLITE_BUSY on concurrent writers.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite %s: %w", path, err)
	}

	repo := &Repository{db: db, table: table, logger: logger}
	if err := repo.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return repo, nil
}

// EnsureSchema creates the dataset and transaction tables when missing.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %q (
			"Date" TEXT,
			"Product_Name" TEXT NOT NULL,
			"Category" TEXT,
			"Quantity_Sold" INTEGER,
			"Unit_Price" REAL,
			"Revenue" REAL,
			"Stock_Remaining" INTEGER,
			"Expiry_Date" TEXT
		)`, r.table),
		`CREATE TABLE IF NOT EXISTS sales_transactions (
			id TEXT PRIMARY KEY,
			product_name TEXT NOT NULL,
			quantity INTEGER NOT NULL,
			unit_price TEXT NOT NULL,
			total TEXT NOT NULL,
			sold_at TIMESTAMP NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}

// Name identifies the repository as a dataset source.
func (r *Repository) Name() string {
	return "sqlite"
}

// LoadRecords reads the whole dataset table. Columns are mapped through the
// ingest header aliases so tables written by other tools load as well.
func (r *Repository) LoadRecords(ctx context.Context) ([]models.InventoryRecord, error) {
	rows, err := r.db.QueryxContext(ctx, fmt.Sprintf(`SELECT * FROM %q`, r.table))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", r.table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}
	canonical := make(map[string]string, len(cols))
	names := make([]string, 0, len(cols))
	for _, c := range cols {
		canonical[c] = ingest.NormalizeHeader(c)
		names = append(names, canonical[c])
	}
	if err := ingest.ValidateColumns(names); err != nil {
		return nil, fmt.Errorf("table %s: %w", r.table, err)
	}

	records := make([]models.InventoryRecord, 0)
	for rows.Next() {
		raw := make(map[string]interface{}, len(cols))
		if err := rows.MapScan(raw); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		fields := make(map[string]string, len(raw))
		for col, v := range raw {
			fields[canonical[col]] = stringify(v)
		}

		rec, err := ingest.NormalizeRow(fields)
		if err != nil {
			r.logger.Debug("skip dataset row", zap.Error(err))
			continue
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", r.table, err)
	}

	return records, nil
}

// ImportRecords replaces the dataset table contents with records.
func (r *Repository) ImportRecords(ctx context.Context, records []models.InventoryRecord) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin import: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %q`, r.table)); err != nil {
		return 0, fmt.Errorf("failed to clear %s: %w", r.table, err)
	}

	stmt, err := tx.PreparexContext(ctx, fmt.Sprintf(`INSERT INTO %q
		("Date", "Product_Name", "Category", "Quantity_Sold", "Unit_Price", "Revenue", "Stock_Remaining", "Expiry_Date")
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, r.table))
	if err != nil {
		return 0, fmt.Errorf("failed to prepare import: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		expiry := nullableString(rec.ExpiryRaw)
		if rec.ExpiryDate != nil {
			expiry = rec.ExpiryDate.Format(dateLayout)
		}
		var date interface{}
		if rec.Date != nil {
			date = rec.Date.Format(dateTimeLayout)
		}

		if _, err := stmt.ExecContext(ctx,
			date,
			rec.ProductName,
			nullableString(rec.Category),
			nullableInt(rec.QuantitySold),
			nullableDecimal(rec.UnitPrice),
			nullableDecimal(rec.Revenue),
			nullableInt(rec.StockRemaining),
			expiry,
		); err != nil {
			return 0, fmt.Errorf("failed to insert %s: %w", rec.ProductName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit import: %w", err)
	}

	r.logger.Info("dataset imported", zap.String("table", r.table), zap.Int("rows", len(records)))
	return len(records), nil
}

// RecordSale stores a POS transaction and decrements the product's stock,
// never below zero. When sale.UnitPrice is zero the dataset's price is used.
func (r *Repository) RecordSale(ctx context.Context, sale models.Sale) (models.Sale, error) {
	if sale.Quantity <= 0 {
		return models.Sale{}, fmt.Errorf("quantity must be positive, got %d", sale.Quantity)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Sale{}, fmt.Errorf("failed to begin sale: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var count int
	if err := tx.GetContext(ctx, &count, fmt.Sprintf(`SELECT COUNT(*) FROM %q WHERE "Product_Name" = ?`, r.table), sale.ProductName); err != nil {
		return models.Sale{}, fmt.Errorf("failed to look up product: %w", err)
	}
	if count == 0 {
		return models.Sale{}, fmt.Errorf("%w: %s", ErrProductNotFound, sale.ProductName)
	}

	if sale.UnitPrice.IsZero() {
		var price sql.NullFloat64
		err := tx.GetContext(ctx, &price, fmt.Sprintf(`SELECT "Unit_Price" FROM %q WHERE "Product_Name" = ? AND "Unit_Price" IS NOT NULL LIMIT 1`, r.table), sale.ProductName)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return models.Sale{}, fmt.Errorf("failed to look up price: %w", err)
		}
		if price.Valid {
			sale.UnitPrice = decimal.NewFromFloat(price.Float64)
		}
	}

	if sale.ID == "" {
		sale.ID = uuid.NewString()
	}
	if sale.SoldAt.IsZero() {
		sale.SoldAt = time.Now().UTC()
	}
	sale.Total = sale.UnitPrice.Mul(decimal.NewFromInt(int64(sale.Quantity)))

	if _, err := tx.NamedExecContext(ctx, `INSERT INTO sales_transactions (id, product_name, quantity, unit_price, total, sold_at)
		VALUES (:id, :product_name, :quantity, :unit_price, :total, :sold_at)`, sale); err != nil {
		return models.Sale{}, fmt.Errorf("failed to insert sale: %w", err)
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`UPDATE %q
		SET "Stock_Remaining" = MAX("Stock_Remaining" - ?, 0)
		WHERE "Product_Name" = ? AND "Stock_Remaining" IS NOT NULL`, r.table), sale.Quantity, sale.ProductName); err != nil {
		return models.Sale{}, fmt.Errorf("failed to update stock: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.Sale{}, fmt.Errorf("failed to commit sale: %w", err)
	}

	r.logger.Info("sale recorded", zap.String("product", sale.ProductName), zap.Int("quantity", sale.Quantity))
	return sale, nil
}

// ListSales returns the most recent transactions first.
func (r *Repository) ListSales(ctx context.Context, limit int) ([]models.Sale, error) {
	if limit <= 0 {
		limit = 50
	}
	sales := make([]models.Sale, 0)
	if err := r.db.SelectContext(ctx, &sales, `SELECT id, product_name, quantity, unit_price, total, sold_at
		FROM sales_transactions ORDER BY sold_at DESC LIMIT ?`, limit); err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	return sales, nil
}

// Close releases the database handle.
func (r *Repository) Close() error {
	return r.db.Close()
}

func stringify(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(val)
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case time.Time:
		return val.Format(dateTimeLayout)
	default:
		return fmt.Sprint(val)
	}
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullableInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullableDecimal(v *decimal.Decimal) interface{} {
	if v == nil {
		return nil
	}
	f, _ := v.Float64()
	return f
}

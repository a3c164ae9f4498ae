// Package database implements MySQL access for the classifieds board.
//
// Expected schema (migrations are managed outside this service):
//
//	users(oid CHAR(36) PK, first_name, last_name, middle_name, email UNIQUE,
//	      phone, time_call, role, status, password_hash, created_at)
//	categories(oid CHAR(36) PK, title UNIQUE, code UNIQUE, description, created_at)
//	advertisements(oid CHAR(36) PK, title, city, description,
//	      price DECIMAL(12,2), created_at, approved_at NULL, views, photos JSON,
//	      status, author_oid FK users, category_oid FK categories)
//	moderation(oid CHAR(36) PK, advertisement_id FK, moderator_id FK,
//	      is_approved, rejection_reason, created_at)
package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"

	"adboard/internal/domain"
	"adboard/internal/models"
	"adboard/pkg/config"
	errs "adboard/pkg/errors"
)

const (
	readTimeoutDefault  = 8 * time.Second
	writeTimeoutDefault = 6 * time.Second
)

type DB struct {
	conn         *sql.DB
	stmts        map[string]*sql.Stmt
	readTimeout  time.Duration
	writeTimeout time.Duration
}

func New(databaseURL string) (*DB, error) {
	return open(databaseURL, 50, 15, 10*time.Minute, 5*time.Minute, readTimeoutDefault, writeTimeoutDefault)
}

// NewWithConfig creates a database connection with custom pool settings.
func NewWithConfig(databaseURL string, cfg *config.Config) (*DB, error) {
	rt := cfg.DBReadTimeout
	if rt == 0 {
		rt = readTimeoutDefault
	}
	wt := cfg.DBWriteTimeout
	if wt == 0 {
		wt = writeTimeoutDefault
	}
	return open(databaseURL,
		cfg.DBMaxOpenConns, cfg.DBMaxIdleConns,
		time.Duration(cfg.DBConnMaxLifetime)*time.Minute,
		time.Duration(cfg.DBConnMaxIdleTime)*time.Minute,
		rt, wt)
}

// NewFromConn wraps an existing connection, skipping the startup ping.
// Used by tests that supply a mocked driver.
func NewFromConn(conn *sql.DB, readTO, writeTO time.Duration) (*DB, error) {
	db := &DB{
		conn:         conn,
		stmts:        make(map[string]*sql.Stmt),
		readTimeout:  readTO,
		writeTimeout: writeTO,
	}
	if err := db.prepareStatements(); err != nil {
		return nil, errs.NewStorage("database.NewFromConn", "failed to prepare statements", err)
	}
	return db, nil
}

func open(databaseURL string, maxOpen, maxIdle int, maxLifetime, maxIdleTime, readTO, writeTO time.Duration) (*DB, error) {
	conn, err := sql.Open("mysql", databaseURL)
	if err != nil {
		return nil, errs.NewStorage("database.open", "failed to open connection", err)
	}

	conn.SetMaxOpenConns(maxOpen)
	conn.SetMaxIdleConns(maxIdle)
	conn.SetConnMaxLifetime(maxLifetime)
	conn.SetConnMaxIdleTime(maxIdleTime)

	if err := conn.Ping(); err != nil {
		return nil, errs.NewStorage("database.open", "failed to ping database", err)
	}

	db := &DB{
		conn:         conn,
		stmts:        make(map[string]*sql.Stmt),
		readTimeout:  readTO,
		writeTimeout: writeTO,
	}
	if err := db.prepareStatements(); err != nil {
		return nil, errs.NewStorage("database.open", "failed to prepare statements", err)
	}
	return db, nil
}

func (db *DB) Conn() *sql.DB { return db.conn }

func (db *DB) Close() error {
	for _, s := range db.stmts {
		_ = s.Close()
	}
	return db.conn.Close()
}

const (
	adColumns = `a.oid, a.title, a.city, a.description, a.price, a.created_at, a.approved_at, a.views, a.photos, a.status,
	u.oid, u.first_name, u.last_name, u.middle_name, u.email, u.phone, u.time_call, u.role, u.status, u.password_hash, u.created_at,
	c.oid, c.title, c.code, c.description, c.created_at`

	adFrom = ` FROM advertisements a
	JOIN users u ON u.oid = a.author_oid
	JOIN categories c ON c.oid = a.category_oid`

	userColumns     = `oid, first_name, last_name, middle_name, email, phone, time_call, role, status, password_hash, created_at`
	categoryColumns = `oid, title, code, description, created_at`
	modColumns      = `oid, advertisement_id, moderator_id, is_approved, rejection_reason, created_at`
)

// prepareStatements pre-compiles the hot single-row lookups.
func (db *DB) prepareStatements() error {
	queries := map[string]string{
		"ad_by_id":           "SELECT " + adColumns + adFrom + " WHERE a.oid = ?",
		"ad_by_title_author": "SELECT " + adColumns + adFrom + " WHERE a.title = ? AND a.author_oid = ?",
		"user_by_id":         "SELECT " + userColumns + " FROM users WHERE oid = ?",
		"user_by_email":      "SELECT " + userColumns + " FROM users WHERE email = ?",
		"category_by_id":     "SELECT " + categoryColumns + " FROM categories WHERE oid = ?",
		"category_by_title":  "SELECT " + categoryColumns + " FROM categories WHERE title = ?",
		"moderation_by_id":   "SELECT " + modColumns + " FROM moderation WHERE oid = ?",
	}
	for name, q := range queries {
		stmt, err := db.conn.Prepare(q)
		if err != nil {
			return fmt.Errorf("prepare %s: %w", name, err)
		}
		db.stmts[name] = stmt
	}
	return nil
}

func (db *DB) readCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, db.readTimeout)
}

func (db *DB) writeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, db.writeTimeout)
}

// --- scanning helpers ---

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAdvertisement(row rowScanner) (*models.Advertisement, error) {
	var (
		ad         models.Advertisement
		price      string
		approvedAt sql.NullTime
		photosJSON []byte
		adStatus   string
		userRole   string
		userStatus string
	)
	err := row.Scan(
		&ad.OID, &ad.Title, &ad.City, &ad.Description, &price, &ad.CreatedAt, &approvedAt, &ad.Views, &photosJSON, &adStatus,
		&ad.Author.OID, &ad.Author.FirstName, &ad.Author.LastName, &ad.Author.MiddleName, &ad.Author.Email,
		&ad.Author.Phone, &ad.Author.TimeCall, &userRole, &userStatus, &ad.Author.PasswordHash, &ad.Author.CreatedAt,
		&ad.Category.OID, &ad.Category.Title, &ad.Category.Code, &ad.Category.Description, &ad.Category.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	ad.Price, err = decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("decode price: %w", err)
	}
	if approvedAt.Valid {
		t := approvedAt.Time
		ad.ApprovedAt = &t
	}
	if err := json.Unmarshal(photosJSON, &ad.Photos); err != nil {
		return nil, fmt.Errorf("decode photos: %w", err)
	}
	ad.Status = models.AdStatus(adStatus)
	ad.Author.Role = models.Role(userRole)
	ad.Author.Status = models.UserStatus(userStatus)
	return &ad, nil
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u      models.User
		role   string
		status string
	)
	err := row.Scan(&u.OID, &u.FirstName, &u.LastName, &u.MiddleName, &u.Email, &u.Phone,
		&u.TimeCall, &role, &status, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	u.Role = models.Role(role)
	u.Status = models.UserStatus(status)
	return &u, nil
}

func scanCategory(row rowScanner) (*models.Category, error) {
	var c models.Category
	if err := row.Scan(&c.OID, &c.Title, &c.Code, &c.Description, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func scanModeration(row rowScanner) (*models.Moderation, error) {
	var m models.Moderation
	if err := row.Scan(&m.OID, &m.AdvertisementID, &m.ModeratorID, &m.IsApproved, &m.RejectionReason, &m.CreatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

// notFoundAsNil maps sql.ErrNoRows onto the (nil, nil) repository contract.
func notFoundAsNil[T any](v *T, err error, op string) (*T, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.NewStorage(op, "query failed", err)
	}
	return v, nil
}

// --- advertisements ---

func (db *DB) GetAdvertisementCtx(ctx context.Context, oid string) (*models.Advertisement, error) {
	rctx, cancel := db.readCtx(ctx)
	defer cancel()
	ad, err := scanAdvertisement(db.stmts["ad_by_id"].QueryRowContext(rctx, oid))
	return notFoundAsNil(ad, err, "database.GetAdvertisementCtx")
}

// GetAdvertisementTx reads an advertisement inside the caller's transaction
// so the moderation decision sees the row it is about to update.
func (db *DB) GetAdvertisementTx(ctx context.Context, tx *sql.Tx, oid string) (*models.Advertisement, error) {
	ad, err := scanAdvertisement(tx.QueryRowContext(ctx, "SELECT "+adColumns+adFrom+" WHERE a.oid = ?", oid))
	return notFoundAsNil(ad, err, "database.GetAdvertisementTx")
}

func (db *DB) GetAdvertisementByTitleAndAuthorCtx(ctx context.Context, title, authorID string) (*models.Advertisement, error) {
	rctx, cancel := db.readCtx(ctx)
	defer cancel()
	ad, err := scanAdvertisement(db.stmts["ad_by_title_author"].QueryRowContext(rctx, title, authorID))
	return notFoundAsNil(ad, err, "database.GetAdvertisementByTitleAndAuthorCtx")
}

func (db *DB) AllAdvertisementsCtx(ctx context.Context) ([]models.Advertisement, error) {
	const op = "database.AllAdvertisementsCtx"
	rctx, cancel := db.readCtx(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(rctx, "SELECT "+adColumns+adFrom+" ORDER BY a.created_at DESC")
	if err != nil {
		return nil, errs.NewStorage(op, "query failed", err)
	}
	defer rows.Close()
	return collectAds(rows, op)
}

func (db *DB) FindAdvertisementsCtx(ctx context.Context, filter domain.AdvertisementFilter) ([]models.Advertisement, error) {
	const op = "database.FindAdvertisementsCtx"
	rctx, cancel := db.readCtx(ctx)
	defer cancel()

	query := "SELECT " + adColumns + adFrom + " WHERE 1=1"
	var args []any

	if filter.City != "" {
		query += " AND a.city = ?"
		args = append(args, filter.City)
	}
	if filter.CategoryID != "" {
		query += " AND a.category_oid = ?"
		args = append(args, filter.CategoryID)
	}
	if filter.PriceMin != nil {
		query += " AND a.price >= ?"
		args = append(args, filter.PriceMin.String())
	}
	if filter.PriceMax != nil {
		query += " AND a.price <= ?"
		args = append(args, filter.PriceMax.String())
	}
	if len(filter.Statuses) > 0 {
		placeholders := strings.Repeat("?,", len(filter.Statuses))
		query += " AND a.status IN (" + placeholders[:len(placeholders)-1] + ")"
		for _, s := range filter.Statuses {
			args = append(args, string(s))
		}
	}
	query += " ORDER BY a.created_at DESC LIMIT ? OFFSET ?"
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	args = append(args, limit, filter.Offset)

	rows, err := db.conn.QueryContext(rctx, query, args...)
	if err != nil {
		return nil, errs.NewStorage(op, "query failed", err)
	}
	defer rows.Close()
	return collectAds(rows, op)
}

func collectAds(rows *sql.Rows, op string) ([]models.Advertisement, error) {
	var out []models.Advertisement
	for rows.Next() {
		ad, err := scanAdvertisement(rows)
		if err != nil {
			return nil, errs.NewStorage(op, "scan failed", err)
		}
		out = append(out, *ad)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.NewStorage(op, "row iteration failed", err)
	}
	return out, nil
}

func (db *DB) AddAdvertisementCtx(ctx context.Context, ad *models.Advertisement) error {
	const op = "database.AddAdvertisementCtx"
	wctx, cancel := db.writeCtx(ctx)
	defer cancel()

	photos, err := json.Marshal(ad.Photos)
	if err != nil {
		return errs.NewStorage(op, "encode photos", err)
	}
	_, err = db.conn.ExecContext(wctx,
		`INSERT INTO advertisements
		 (oid, title, city, description, price, created_at, approved_at, views, photos, status, author_oid, category_oid)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ad.OID, ad.Title, ad.City, ad.Description, ad.Price.String(), ad.CreatedAt, ad.ApprovedAt,
		ad.Views, photos, string(ad.Status), ad.Author.OID, ad.Category.OID)
	if err != nil {
		return errs.NewStorage(op, "insert failed", err)
	}
	return nil
}

func (db *DB) UpdateAdvertisementCtx(ctx context.Context, ad *models.Advertisement) error {
	wctx, cancel := db.writeCtx(ctx)
	defer cancel()
	return db.execUpdateAdvertisement(wctx, db.conn.ExecContext, ad, "database.UpdateAdvertisementCtx")
}

// UpdateAdvertisementTx updates the row inside the caller's transaction.
// The moderation flow pairs this with InsertModerationTx in one commit.
func (db *DB) UpdateAdvertisementTx(ctx context.Context, tx *sql.Tx, ad *models.Advertisement) error {
	return db.execUpdateAdvertisement(ctx, tx.ExecContext, ad, "database.UpdateAdvertisementTx")
}

type execFunc func(ctx context.Context, query string, args ...any) (sql.Result, error)

func (db *DB) execUpdateAdvertisement(ctx context.Context, exec execFunc, ad *models.Advertisement, op string) error {
	photos, err := json.Marshal(ad.Photos)
	if err != nil {
		return errs.NewStorage(op, "encode photos", err)
	}
	res, err := exec(ctx,
		`UPDATE advertisements
		 SET title = ?, city = ?, description = ?, price = ?, approved_at = ?, views = ?, photos = ?, status = ?, category_oid = ?
		 WHERE oid = ?`,
		ad.Title, ad.City, ad.Description, ad.Price.String(), ad.ApprovedAt, ad.Views, photos,
		string(ad.Status), ad.Category.OID, ad.OID)
	if err != nil {
		return errs.NewStorage(op, "update failed", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errs.NewNotFound(op, "advertisement", ad.OID)
	}
	return nil
}

func (db *DB) IncrementAdvertisementViewsCtx(ctx context.Context, oid string) error {
	const op = "database.IncrementAdvertisementViewsCtx"
	wctx, cancel := db.writeCtx(ctx)
	defer cancel()

	_, err := db.conn.ExecContext(wctx, "UPDATE advertisements SET views = views + 1 WHERE oid = ?", oid)
	if err != nil {
		return errs.NewStorage(op, "update failed", err)
	}
	return nil
}

// --- moderation ---

func (db *DB) GetModerationCtx(ctx context.Context, oid string) (*models.Moderation, error) {
	rctx, cancel := db.readCtx(ctx)
	defer cancel()
	m, err := scanModeration(db.stmts["moderation_by_id"].QueryRowContext(rctx, oid))
	return notFoundAsNil(m, err, "database.GetModerationCtx")
}

func (db *DB) ListModerationsByAdvertisementCtx(ctx context.Context, advertisementID string) ([]models.Moderation, error) {
	const op = "database.ListModerationsByAdvertisementCtx"
	rctx, cancel := db.readCtx(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(rctx,
		"SELECT "+modColumns+" FROM moderation WHERE advertisement_id = ? ORDER BY created_at", advertisementID)
	if err != nil {
		return nil, errs.NewStorage(op, "query failed", err)
	}
	defer rows.Close()

	var out []models.Moderation
	for rows.Next() {
		m, err := scanModeration(rows)
		if err != nil {
			return nil, errs.NewStorage(op, "scan failed", err)
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.NewStorage(op, "row iteration failed", err)
	}
	return out, nil
}

func (db *DB) AddModerationCtx(ctx context.Context, m *models.Moderation) error {
	const op = "database.AddModerationCtx"
	wctx, cancel := db.writeCtx(ctx)
	defer cancel()

	_, err := db.conn.ExecContext(wctx,
		`INSERT INTO moderation (oid, advertisement_id, moderator_id, is_approved, rejection_reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		m.OID, m.AdvertisementID, m.ModeratorID, m.IsApproved, m.RejectionReason, m.CreatedAt)
	if err != nil {
		return errs.NewStorage(op, "insert failed", err)
	}
	return nil
}

// InsertModerationTx appends a decision record inside the caller's transaction.
func (db *DB) InsertModerationTx(ctx context.Context, tx *sql.Tx, m *models.Moderation) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO moderation (oid, advertisement_id, moderator_id, is_approved, rejection_reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		m.OID, m.AdvertisementID, m.ModeratorID, m.IsApproved, m.RejectionReason, m.CreatedAt)
	if err != nil {
		return errs.NewStorage("database.InsertModerationTx", "insert failed", err)
	}
	return nil
}

// --- categories ---

func (db *DB) GetCategoryCtx(ctx context.Context, oid string) (*models.Category, error) {
	rctx, cancel := db.readCtx(ctx)
	defer cancel()
	c, err := scanCategory(db.stmts["category_by_id"].QueryRowContext(rctx, oid))
	return notFoundAsNil(c, err, "database.GetCategoryCtx")
}

func (db *DB) GetCategoryByTitleCtx(ctx context.Context, title string) (*models.Category, error) {
	rctx, cancel := db.readCtx(ctx)
	defer cancel()
	c, err := scanCategory(db.stmts["category_by_title"].QueryRowContext(rctx, title))
	return notFoundAsNil(c, err, "database.GetCategoryByTitleCtx")
}

func (db *DB) AllCategoriesCtx(ctx context.Context) ([]models.Category, error) {
	const op = "database.AllCategoriesCtx"
	rctx, cancel := db.readCtx(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(rctx, "SELECT "+categoryColumns+" FROM categories ORDER BY title")
	if err != nil {
		return nil, errs.NewStorage(op, "query failed", err)
	}
	defer rows.Close()

	var out []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, errs.NewStorage(op, "scan failed", err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.NewStorage(op, "row iteration failed", err)
	}
	return out, nil
}

func (db *DB) AddCategoryCtx(ctx context.Context, c *models.Category) error {
	const op = "database.AddCategoryCtx"
	wctx, cancel := db.writeCtx(ctx)
	defer cancel()

	_, err := db.conn.ExecContext(wctx,
		"INSERT INTO categories (oid, title, code, description, created_at) VALUES (?, ?, ?, ?, ?)",
		c.OID, c.Title, c.Code, c.Description, c.CreatedAt)
	if err != nil {
		return errs.NewStorage(op, "insert failed", err)
	}
	return nil
}

func (db *DB) DeleteCategoryCtx(ctx context.Context, oid string) error {
	const op = "database.DeleteCategoryCtx"
	wctx, cancel := db.writeCtx(ctx)
	defer cancel()

	res, err := db.conn.ExecContext(wctx, "DELETE FROM categories WHERE oid = ?", oid)
	if err != nil {
		return errs.NewStorage(op, "delete failed", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errs.NewNotFound(op, "category", oid)
	}
	return nil
}

// --- users ---

func (db *DB) GetUserCtx(ctx context.Context, oid string) (*models.User, error) {
	rctx, cancel := db.readCtx(ctx)
	defer cancel()
	u, err := scanUser(db.stmts["user_by_id"].QueryRowContext(rctx, oid))
	return notFoundAsNil(u, err, "database.GetUserCtx")
}

func (db *DB) GetUserByEmailCtx(ctx context.Context, email string) (*models.User, error) {
	rctx, cancel := db.readCtx(ctx)
	defer cancel()
	u, err := scanUser(db.stmts["user_by_email"].QueryRowContext(rctx, email))
	return notFoundAsNil(u, err, "database.GetUserByEmailCtx")
}

func (db *DB) GetUserByEmailOrPhoneCtx(ctx context.Context, email, phone string) (*models.User, error) {
	rctx, cancel := db.readCtx(ctx)
	defer cancel()
	u, err := scanUser(db.conn.QueryRowContext(rctx,
		"SELECT "+userColumns+" FROM users WHERE email = ? OR phone = ? LIMIT 1", email, phone))
	return notFoundAsNil(u, err, "database.GetUserByEmailOrPhoneCtx")
}

func (db *DB) AddUserCtx(ctx context.Context, u *models.User) error {
	const op = "database.AddUserCtx"
	wctx, cancel := db.writeCtx(ctx)
	defer cancel()

	_, err := db.conn.ExecContext(wctx,
		`INSERT INTO users (oid, first_name, last_name, middle_name, email, phone, time_call, role, status, password_hash, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.OID, u.FirstName, u.LastName, u.MiddleName, u.Email, u.Phone, u.TimeCall,
		string(u.Role), string(u.Status), u.PasswordHash, u.CreatedAt)
	if err != nil {
		return errs.NewStorage(op, "insert failed", err)
	}
	return nil
}

func (db *DB) UpdateUserCtx(ctx context.Context, u *models.User) error {
	const op = "database.UpdateUserCtx"
	wctx, cancel := db.writeCtx(ctx)
	defer cancel()

	res, err := db.conn.ExecContext(wctx,
		`UPDATE users SET first_name = ?, last_name = ?, middle_name = ?, email = ?, phone = ?, time_call = ?,
		 role = ?, status = ?, password_hash = ? WHERE oid = ?`,
		u.FirstName, u.LastName, u.MiddleName, u.Email, u.Phone, u.TimeCall,
		string(u.Role), string(u.Status), u.PasswordHash, u.OID)
	if err != nil {
		return errs.NewStorage(op, "update failed", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errs.NewNotFound(op, "user", u.OID)
	}
	return nil
}

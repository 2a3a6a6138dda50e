package devserver

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/vperfumes/tracker/app/models"
	"github.com/vperfumes/tracker/config"
)

// User is a login account. Company accounts carry a company_name; the single
// admin account does not.
type User struct {
	ID           string `gorm:"primaryKey;size:32"`
	Username     string `gorm:"uniqueIndex;size:64"`
	PasswordHash string
	Role         string `gorm:"size:16"`
	CompanyName  string `gorm:"size:128"`
	CreatedAt    time.Time
}

// OrderRecord is the stored form of an order. CompanyName is denormalized on
// purpose: deleting a company account must not blank the label on its orders.
type OrderRecord struct {
	ID            string `gorm:"primaryKey;size:32"`
	OrderNumber   string `gorm:"size:64"`
	CustomerName  string `gorm:"size:128"`
	CustomerPhone string `gorm:"size:32"`
	DeliveryArea  string `gorm:"size:128"`
	OrderPrice    float64
	DeliveryCost  float64
	Status        string `gorm:"size:16"`
	OrderDate     string `gorm:"size:10;index"`
	Notes         string
	CompanyID     string `gorm:"size:32;index"`
	CompanyName   string `gorm:"size:128"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HistoryRecord is one audit entry for an order. Changes is a JSON blob so
// the schema stays the same across all four supported drivers.
type HistoryRecord struct {
	ID        string `gorm:"primaryKey;size:32"`
	OrderID   string `gorm:"size:32;index"`
	Action    string `gorm:"size:16"`
	Changes   string
	UserID    string `gorm:"size:32"`
	Username  string `gorm:"size:64"`
	Timestamp time.Time
}

// Store wraps the gorm handle with the queries the dev server needs.
type Store struct {
	db *gorm.DB
}

// Open connects to the configured database, migrates the schema and
// configures the connection pool.
func Open() (*Store, error) {
	driver := config.DatabaseDriver()
	dsn := config.DatabaseDSN()

	dialector, err := buildDialector(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("devserver: build dialector: %w", err)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent), // pkg/logger does the talking
	})
	if err != nil {
		return nil, fmt.Errorf("devserver: open: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("devserver: get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(2 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("devserver: ping: %w", err)
	}

	if err := db.AutoMigrate(&User{}, &OrderRecord{}, &HistoryRecord{}); err != nil {
		return nil, fmt.Errorf("devserver: migrate: %w", err)
	}

	return &Store{db: db}, nil
}

func buildDialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "sqlite":
		return sqlite.Open(dsn), nil
	case "postgres":
		return postgres.Open(dsn), nil
	case "mysql":
		return mysql.Open(dsn), nil
	case "sqlserver":
		return sqlserver.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (supported: sqlite, postgres, mysql, sqlserver)", driver)
	}
}

// OpenInMemory opens a private in-memory sqlite store for tests. The DSN
// keeps cache=shared so the connection pool sees one database, but the
// random name isolates stores from each other.
func OpenInMemory() (*Store, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", newID())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&User{}, &OrderRecord{}, &HistoryRecord{}); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// DB exposes the underlying gorm handle for seeders.
func (s *Store) DB() *gorm.DB { return s.db }

// newID returns a random 24-hex-char identifier.
func newID() string {
	b := make([]byte, 12)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// BeforeCreate assigns a random id when none is set.
func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = newID()
	}
	return nil
}

// BeforeCreate assigns a random id when none is set.
func (o *OrderRecord) BeforeCreate(*gorm.DB) error {
	if o.ID == "" {
		o.ID = newID()
	}
	return nil
}

// BeforeCreate assigns a random id when none is set.
func (h *HistoryRecord) BeforeCreate(*gorm.DB) error {
	if h.ID == "" {
		h.ID = newID()
	}
	return nil
}

// ─── Users ────────────────────────────────────────────────────────────────────

// CreateUser inserts a user, assigning an id when empty.
func (s *Store) CreateUser(u *User) error {
	if u.ID == "" {
		u.ID = newID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	return s.db.Create(u).Error
}

// UserByUsername fetches a user by login name. Returns nil when not found.
func (s *Store) UserByUsername(username string) (*User, error) {
	var u User
	err := s.db.Where("username = ?", username).First(&u).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UserByID fetches a user by id. Returns nil when not found.
func (s *Store) UserByID(id string) (*User, error) {
	var u User
	err := s.db.Where("id = ?", id).First(&u).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UsernameTaken reports whether a username already exists.
func (s *Store) UsernameTaken(username string) (bool, error) {
	var n int64
	err := s.db.Model(&User{}).Where("username = ?", username).Count(&n).Error
	return n > 0, err
}

// UpdatePassword replaces the stored hash for the given user.
func (s *Store) UpdatePassword(userID, hash string) error {
	return s.db.Model(&User{}).Where("id = ?", userID).
		Update("password_hash", hash).Error
}

// Companies lists all company accounts, oldest first.
func (s *Store) Companies() ([]User, error) {
	var out []User
	err := s.db.Where("role = ?", "company").Order("created_at asc").Find(&out).Error
	return out, err
}

// DeleteUser removes the account only. Orders keep their company label.
func (s *Store) DeleteUser(id string) error {
	return s.db.Delete(&User{}, "id = ?", id).Error
}

// ─── Orders ───────────────────────────────────────────────────────────────────

// Orders returns all orders, or only the given company's when companyID is
// non-empty. Newest order date first, ties broken by creation time.
func (s *Store) Orders(companyID string) ([]OrderRecord, error) {
	q := s.db.Order("order_date desc, created_at desc")
	if companyID != "" {
		q = q.Where("company_id = ?", companyID)
	}
	var out []OrderRecord
	err := q.Find(&out).Error
	return out, err
}

// OrderByID fetches one order. Returns nil when not found.
func (s *Store) OrderByID(id string) (*OrderRecord, error) {
	var o OrderRecord
	err := s.db.Where("id = ?", id).First(&o).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// OrdersByDate returns all orders placed on the given YYYY-MM-DD date.
func (s *Store) OrdersByDate(date string) ([]OrderRecord, error) {
	var out []OrderRecord
	err := s.db.Where("order_date = ?", date).
		Order("company_name asc, created_at asc").Find(&out).Error
	return out, err
}

// CreateOrder inserts an order, assigning an id when empty.
func (s *Store) CreateOrder(o *OrderRecord) error {
	if o.ID == "" {
		o.ID = newID()
	}
	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now
	return s.db.Create(o).Error
}

// SaveOrder persists updated order fields.
func (s *Store) SaveOrder(o *OrderRecord) error {
	o.UpdatedAt = time.Now().UTC()
	return s.db.Save(o).Error
}

// DeleteOrder removes an order. Its history entries stay for the audit trail.
func (s *Store) DeleteOrder(id string) error {
	return s.db.Delete(&OrderRecord{}, "id = ?", id).Error
}

// Stats computes the aggregate counts, scoped to companyID when non-empty.
func (s *Store) Stats(companyID string) (models.Stats, error) {
	var stats models.Stats

	count := func(status string) (int64, error) {
		q := s.db.Model(&OrderRecord{})
		if companyID != "" {
			q = q.Where("company_id = ?", companyID)
		}
		if status != "" {
			q = q.Where("status = ?", status)
		}
		var n int64
		err := q.Count(&n).Error
		return n, err
	}

	total, err := count("")
	if err != nil {
		return stats, err
	}
	ongoing, err := count(models.StatusOngoing)
	if err != nil {
		return stats, err
	}
	done, err := count(models.StatusDone)
	if err != nil {
		return stats, err
	}
	cancelled, err := count(models.StatusCancelled)
	if err != nil {
		return stats, err
	}

	stats.Total = int(total)
	stats.Ongoing = int(ongoing)
	stats.Completed = int(done)
	stats.Cancelled = int(cancelled)
	return stats, nil
}

// ─── History ──────────────────────────────────────────────────────────────────

// AddHistory appends an audit entry for an order.
func (s *Store) AddHistory(orderID, action string, changes map[string]interface{}, actor *User) error {
	blob, err := json.Marshal(changes)
	if err != nil {
		return err
	}
	rec := HistoryRecord{
		ID:        newID(),
		OrderID:   orderID,
		Action:    action,
		Changes:   string(blob),
		UserID:    actor.ID,
		Username:  actor.Username,
		Timestamp: time.Now().UTC(),
	}
	return s.db.Create(&rec).Error
}

// History returns an order's audit entries, newest first, decoded into the
// wire shape.
func (s *Store) History(orderID string) ([]models.HistoryEntry, error) {
	var recs []HistoryRecord
	err := s.db.Where("order_id = ?", orderID).
		Order("timestamp desc").Find(&recs).Error
	if err != nil {
		return nil, err
	}

	out := make([]models.HistoryEntry, 0, len(recs))
	for _, rec := range recs {
		entry := models.HistoryEntry{
			ID:        rec.ID,
			OrderID:   rec.OrderID,
			Action:    rec.Action,
			UserID:    rec.UserID,
			Username:  rec.Username,
			Timestamp: rec.Timestamp,
		}
		if rec.Changes != "" {
			_ = json.Unmarshal([]byte(rec.Changes), &entry.Changes)
		}
		out = append(out, entry)
	}
	return out, nil
}

// ─── Wire conversion ──────────────────────────────────────────────────────────

// toWire converts a stored order to its API shape.
func toWire(o *OrderRecord) models.Order {
	return models.Order{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		CustomerName:  o.CustomerName,
		CustomerPhone: o.CustomerPhone,
		DeliveryArea:  o.DeliveryArea,
		OrderPrice:    o.OrderPrice,
		DeliveryCost:  o.DeliveryCost,
		Status:        o.Status,
		OrderDate:     o.OrderDate,
		Notes:         o.Notes,
		CompanyID:     o.CompanyID,
		CompanyName:   o.CompanyName,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

func toWireList(recs []OrderRecord) []models.Order {
	out := make([]models.Order, 0, len(recs))
	for i := range recs {
		out = append(out, toWire(&recs[i]))
	}
	return out
}

func identityOf(u *User) models.Identity {
	return models.Identity{
		ID:          u.ID,
		Username:    u.Username,
		Role:        u.Role,
		CompanyName: u.CompanyName,
		CreatedAt:   u.CreatedAt,
	}
}

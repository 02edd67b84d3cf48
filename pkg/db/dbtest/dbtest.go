// Package dbtest opens isolated in-memory SQLite databases carrying the
// marketplace tables, for repository and service tests.
package dbtest

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const usersDDL = `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  phone TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'farmer',
  language TEXT NOT NULL DEFAULT 'en',
  location_lng REAL,
  location_lat REAL,
  location_address TEXT,
  location_state TEXT,
  location_district TEXT,
  location_pincode TEXT,
  profile_avatar TEXT,
  profile_bio TEXT,
  profile_farm_size REAL,
  profile_crops TEXT,
  profile_experience INTEGER,
  preferences TEXT,
  is_verified INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`

const cropsDDL = `
CREATE TABLE IF NOT EXISTS crops (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT,
  category TEXT NOT NULL,
  variety TEXT,
  farmer_id TEXT NOT NULL,
  quantity REAL NOT NULL,
  unit TEXT NOT NULL DEFAULT 'kg',
  price REAL NOT NULL,
  price_per_unit TEXT NOT NULL DEFAULT 'kg',
  quality TEXT NOT NULL DEFAULT 'standard',
  harvest_date DATETIME NOT NULL,
  expiry_date DATETIME,
  location_lng REAL,
  location_lat REAL,
  location_address TEXT,
  location_state TEXT,
  location_district TEXT,
  location_pincode TEXT,
  images TEXT,
  certifications TEXT,
  status TEXT NOT NULL DEFAULT 'available',
  is_active INTEGER NOT NULL DEFAULT 1,
  views INTEGER NOT NULL DEFAULT 0,
  inquiries INTEGER NOT NULL DEFAULT 0,
  featured INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`

const cartsDDL = `
CREATE TABLE IF NOT EXISTS carts (
  id TEXT PRIMARY KEY,
  user_id TEXT,
  guest_id TEXT,
  items TEXT NOT NULL DEFAULT '[]',
  version INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE UNIQUE INDEX IF NOT EXISTS carts_user_id_key ON carts (user_id) WHERE user_id IS NOT NULL;
CREATE UNIQUE INDEX IF NOT EXISTS carts_guest_id_key ON carts (guest_id) WHERE guest_id IS NOT NULL;`

const ordersDDL = `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  order_number TEXT NOT NULL UNIQUE,
  user_id TEXT,
  guest_id TEXT,
  items TEXT NOT NULL,
  total_amount REAL NOT NULL,
  shipping_address TEXT,
  payment_method TEXT NOT NULL DEFAULT 'cash_on_delivery',
  payment_status TEXT NOT NULL DEFAULT 'pending',
  status TEXT NOT NULL DEFAULT 'pending',
  idempotency_key TEXT,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE UNIQUE INDEX IF NOT EXISTS orders_user_idempotency_key ON orders (user_id, idempotency_key) WHERE idempotency_key IS NOT NULL AND user_id IS NOT NULL;
CREATE UNIQUE INDEX IF NOT EXISTS orders_guest_idempotency_key ON orders (guest_id, idempotency_key) WHERE idempotency_key IS NOT NULL AND guest_id IS NOT NULL;`

// Open returns a fresh database with every table created. Each call gets
// its own named in-memory database so parallel tests do not share rows.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := "file:kisan_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	for _, ddl := range []string{usersDDL, cropsDDL, cartsDDL, ordersDDL} {
		if err := db.Exec(ddl).Error; err != nil {
			t.Fatalf("create tables: %v", err)
		}
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

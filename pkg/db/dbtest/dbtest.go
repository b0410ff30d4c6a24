// Package dbtest opens migrated in-memory sqlite databases for repository tests.
package dbtest

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/laundry-backend/pkg/config"
	"github.com/angelmondragon/laundry-backend/pkg/db/models"
	"github.com/angelmondragon/laundry-backend/pkg/enums"
	"github.com/angelmondragon/laundry-backend/pkg/migrate"
	"github.com/angelmondragon/laundry-backend/pkg/money"
)

// Open returns a gorm handle on a fresh database named after the test, with
// every bundled migration applied.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name)), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, migrate.Up(context.Background(), sqlDB, config.DriverSQLite))
	return conn
}

func Customer(t testing.TB, conn *gorm.DB, name string) models.Customer {
	t.Helper()
	c := models.Customer{ID: uuid.New(), Code: "CUST-" + uuid.NewString()[:8], Name: name, IsActive: true}
	require.NoError(t, conn.Create(&c).Error)
	return c
}

func Service(t testing.TB, conn *gorm.DB, name string, price int64, days int) models.Service {
	t.Helper()
	s := models.Service{
		ID:           uuid.New(),
		Name:         name,
		Unit:         enums.ServiceUnitKg,
		Price:        money.FromInt(price),
		DurationDays: days,
		IsActive:     true,
	}
	require.NoError(t, conn.Create(&s).Error)
	if days == 0 {
		require.NoError(t, conn.Model(&models.Service{}).Where("id = ?", s.ID).Update("duration_days", 0).Error)
	}
	return s
}

func PaymentMethod(t testing.TB, conn *gorm.DB, name string) models.PaymentMethod {
	t.Helper()
	m := models.PaymentMethod{ID: uuid.New(), Name: name, IsActive: true}
	require.NoError(t, conn.Create(&m).Error)
	return m
}

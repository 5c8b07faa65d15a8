package helpers

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/zapshop/commerce-bot/internal/repository"
	"github.com/zapshop/commerce-bot/pkg/pg"
	"github.com/zapshop/commerce-bot/pkg/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func SetupTestDB(t *testing.T) *pg.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&repository.TenantEntity{},
		&repository.ProductEntity{},
		&repository.OrderEntity{},
		&repository.OrderItemEntity{},
		&repository.ConversationEntity{},
		&repository.BotConfigEntity{},
	)
	require.NoError(t, err)

	pgDB := &pg.DB{}
	pgDBValue := reflect.ValueOf(pgDB).Elem()

	readField := pgDBValue.FieldByName("read")
	writeField := pgDBValue.FieldByName("write")

	readField = reflect.NewAt(readField.Type(), readField.Addr().UnsafePointer()).Elem()
	writeField = reflect.NewAt(writeField.Type(), writeField.Addr().UnsafePointer()).Elem()

	readField.Set(reflect.ValueOf(db))
	writeField.Set(reflect.ValueOf(db))

	return pgDB
}

func SetupTestRedis(t *testing.T) (*miniredis.Miniredis, redis.RedisAdapter) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	adapter, err := redis.NewRedisAdapter(t.Name()+"-"+mr.Addr(), "", &goredis.UniversalOptions{
		Addrs: []string{mr.Addr()},
	})
	require.NoError(t, err)

	return mr, adapter
}

func CreateTestTenant(t *testing.T, db *pg.DB, id int64, whatsAppNumber string) *repository.TenantEntity {
	ctx := context.Background()
	tenant := &repository.TenantEntity{
		ID:             id,
		Name:           "Loja Teste",
		Plan:           "free",
		WhatsAppNumber: whatsAppNumber,
		OperatorNumber: "5511999990000",
	}
	err := db.Write(ctx).Create(tenant).Error
	require.NoError(t, err)
	return tenant
}

func CreateTestProduct(t *testing.T, db *pg.DB, tenantID int64, name string, priceCents int64, category string) *repository.ProductEntity {
	ctx := context.Background()
	product := &repository.ProductEntity{
		TenantID:   tenantID,
		Name:       name,
		PriceCents: priceCents,
		Category:   category,
		Active:     true,
		CreatedAt:  time.Now(),
	}
	err := db.Write(ctx).Create(product).Error
	require.NoError(t, err)
	return product
}

func CreateTestOpenOrder(t *testing.T, db *pg.DB, tenantID int64, customer string) *repository.OrderEntity {
	ctx := context.Background()
	order := &repository.OrderEntity{
		TenantID:         tenantID,
		Customer:         customer,
		Status:           "open",
		Mode:             "bot",
		AttendanceStatus: "none",
		CreatedAt:        time.Now(),
	}
	err := db.Write(ctx).Create(order).Error
	require.NoError(t, err)
	return order
}

func WaitForCondition(t *testing.T, timeout time.Duration, condition func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

func AssertEventually(t *testing.T, timeout time.Duration, condition func() bool, msg string) {
	if !WaitForCondition(t, timeout, condition) {
		t.Fatal(msg)
	}
}

func ContextWithTimeout(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func Ptr[T any](v T) *T {
	return &v
}

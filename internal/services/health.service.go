package services

import (
	"context"
	"time"

	"github.com/zapshop/commerce-bot/pkg/pg"
)

// HealthService answers liveness probes with a database round trip.
type HealthService struct {
	db *pg.DB
}

func NewHealthService(db *pg.DB) *HealthService {
	return &HealthService{db: db}
}

func (s *HealthService) Get() error {
	if s.db == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	sqlDB, err := s.db.Read(ctx).DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

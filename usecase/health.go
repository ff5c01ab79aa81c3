package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/smartnotes/summarizer/domains/health"
	"github.com/smartnotes/summarizer/pkg/kvstore"
	"github.com/smartnotes/summarizer/sumengine/domain"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const healthCheckInterval = 5 * time.Minute

type healthService struct {
	mu      sync.RWMutex
	records map[health.EntityType]health.HealthRecord

	db           *gorm.DB
	cacheStore   kvstore.Store
	connectivity domain.ConnectivityProbe
	providerName string
	apiKeySet    bool
}

func NewHealthService(db *gorm.DB, cacheStore kvstore.Store, connectivity domain.ConnectivityProbe, providerName string, apiKeySet bool) health.IHealthUsecase {
	return &healthService{
		records:      make(map[health.EntityType]health.HealthRecord),
		db:           db,
		cacheStore:   cacheStore,
		connectivity: connectivity,
		providerName: providerName,
		apiKeySet:    apiKeySet,
	}
}

func (s *healthService) GetStatus(ctx context.Context) ([]health.HealthRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]health.HealthRecord, 0, len(s.records))
	for _, r := range s.records {
		records = append(records, r)
	}
	return records, nil
}

func (s *healthService) CheckAll(ctx context.Context) ([]health.HealthRecord, error) {
	s.report(health.EntityDatabase, s.checkDatabase(ctx))
	s.report(health.EntityCacheStore, s.checkCacheStore(ctx))
	s.report(health.EntityConnectivity, s.checkConnectivity(ctx))
	s.report(health.EntityProvider, s.checkProvider())

	return s.GetStatus(ctx)
}

func (s *healthService) StartPeriodicChecks(ctx context.Context) {
	go func() {
		if _, err := s.CheckAll(ctx); err != nil {
			logrus.WithError(err).Warn("[HEALTH] Initial check failed")
		}

		ticker := time.NewTicker(healthCheckInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.CheckAll(ctx); err != nil {
					logrus.WithError(err).Warn("[HEALTH] Periodic check failed")
				}
			}
		}
	}()
}

func (s *healthService) checkDatabase(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database not initialized")
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// checkCacheStore verifies the persisted cache backend with a write/read
// round trip on a dedicated probe key.
func (s *healthService) checkCacheStore(ctx context.Context) error {
	if s.cacheStore == nil {
		return fmt.Errorf("cache store not initialized")
	}
	probe := fmt.Sprintf("%d", time.Now().UnixNano())
	if err := s.cacheStore.SetString(ctx, "health:probe", probe); err != nil {
		return err
	}
	got, ok, err := s.cacheStore.GetString(ctx, "health:probe")
	if err != nil {
		return err
	}
	if !ok || got != probe {
		return fmt.Errorf("cache store round trip mismatch")
	}
	return s.cacheStore.Remove(ctx, "health:probe")
}

func (s *healthService) checkConnectivity(ctx context.Context) error {
	if s.connectivity == nil {
		return fmt.Errorf("connectivity probe not configured")
	}
	if !s.connectivity.IsOnline(ctx) {
		return fmt.Errorf("no network connectivity")
	}
	return nil
}

func (s *healthService) checkProvider() error {
	if !s.apiKeySet {
		return fmt.Errorf("no API key configured for provider %q", s.providerName)
	}
	return nil
}

func (s *healthService) report(entity health.EntityType, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	record := s.records[entity]
	record.EntityType = entity
	record.LastChecked = now

	if err != nil {
		record.Status = health.StatusError
		record.LastMessage = err.Error()
		logrus.WithField("entity", entity).WithError(err).Warn("[HEALTH] Check failed")
	} else {
		record.Status = health.StatusOk
		record.LastMessage = ""
		record.LastSuccess = &now
	}
	s.records[entity] = record
}

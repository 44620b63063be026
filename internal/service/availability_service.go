package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	domainRepo "gov-token-booking/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	// Redis key prefix for the per-slot remaining-seat mirror
	RedisSlotRemainingPrefix = "slot:remaining:"

	// Batch size for startup sync - process 500 slots at a time so the
	// pipeline never accumulates unbounded memory
	availabilitySyncBatch = 500

	// Interval for cleaning up stale per-slot mutexes
	slotMutexCleanupInterval = 10 * time.Minute

	// How long a mutex must be unused before cleanup
	slotMutexStaleThreshold = 10 * time.Minute
)

// AvailabilityService mirrors remaining slot capacity into Redis so the
// public slot listing can be annotated without hammering Postgres. The
// database stays the source of truth; the mirror is refreshed after every
// booking/cancellation commit and rebuilt in batches at startup.
type AvailabilityService struct {
	db          *gorm.DB
	redisClient *redis.Client
	slotRepo    domainRepo.SlotRepository
	log         *logrus.Logger

	// Per-slot mutex so concurrent refreshes of the same slot serialize
	slotMu sync.Map // map[uuid.UUID]*slotMutex

	stopChan chan struct{}
	wg       sync.WaitGroup
	stopped  atomic.Bool
}

// slotMutex tracks mutex usage for cleanup
type slotMutex struct {
	mu       sync.Mutex
	lastUsed atomic.Int64 // Unix timestamp
}

// NewAvailabilityService creates the service and starts the background
// mutex cleanup goroutine. Call Stop() during graceful shutdown.
func NewAvailabilityService(db *gorm.DB, redisClient *redis.Client, slotRepo domainRepo.SlotRepository, log *logrus.Logger) *AvailabilityService {
	svc := &AvailabilityService{
		db:          db,
		redisClient: redisClient,
		slotRepo:    slotRepo,
		log:         log,
		stopChan:    make(chan struct{}),
	}

	svc.wg.Add(1)
	go svc.cleanupMutexMapLoop()

	return svc
}

// Stop gracefully shuts down the service. Safe to call multiple times.
func (s *AvailabilityService) Stop() {
	if s.stopped.CompareAndSwap(false, true) {
		close(s.stopChan)
		s.wg.Wait()
		s.log.Info("AvailabilityService stopped")
	}
}

// SyncOnStartup rebuilds the mirror for every slot from today onward.
// Should be called before accepting traffic.
func (s *AvailabilityService) SyncOnStartup(ctx context.Context) error {
	s.log.Info("Starting slot availability re-sync from database...")
	startTime := time.Now()

	if err := s.redisClient.Ping(ctx).Err(); err != nil {
		s.log.Warnf("Redis is not available, skipping sync: %+v", err)
		return fmt.Errorf("redis ping failed: %w", err)
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	offset := 0
	totalSynced := 0

	for {
		slots, err := s.slotRepo.FindOpenFromDate(s.db.WithContext(ctx), today, availabilitySyncBatch, offset)
		if err != nil {
			s.log.Errorf("Failed to query slots at offset %d: %+v", offset, err)
			return fmt.Errorf("query slots at offset %d: %w", offset, err)
		}

		if len(slots) == 0 {
			if offset == 0 {
				s.log.Info("No upcoming slots found for sync")
			}
			break
		}

		// New pipeline per batch keeps memory bounded
		pipe := s.redisClient.TxPipeline()
		for _, slot := range slots {
			key := fmt.Sprintf("%s%s", RedisSlotRemainingPrefix, slot.ID)
			pipe.Set(ctx, key, slot.Remaining(), s.calculateTTL(slot.Date))
		}
		if _, err := pipe.Exec(ctx); err != nil {
			s.log.Errorf("Failed to execute pipeline for batch at offset %d: %+v", offset, err)
			return fmt.Errorf("pipeline exec at offset %d: %w", offset, err)
		}

		totalSynced += len(slots)

		if len(slots) < availabilitySyncBatch {
			break
		}
		offset += availabilitySyncBatch

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}

	s.log.Infof("Slot availability re-sync completed: %d slots in %v", totalSynced, time.Since(startTime))
	return nil
}

// RefreshSlot re-reads one slot from the database and updates its mirror
// entry. A deleted slot has its key removed.
func (s *AvailabilityService) RefreshSlot(ctx context.Context, slotID uuid.UUID) error {
	mt := s.getSlotMutex(slotID)
	mt.mu.Lock()
	defer mt.mu.Unlock()

	slot, err := s.slotRepo.FindByID(s.db.WithContext(ctx), slotID)
	if err != nil {
		s.log.Warnf("Failed to load slot %s for refresh: %+v", slotID, err)
		return fmt.Errorf("load slot %s: %w", slotID, err)
	}

	key := fmt.Sprintf("%s%s", RedisSlotRemainingPrefix, slotID)
	if slot == nil {
		if err := s.redisClient.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("delete mirror key for slot %s: %w", slotID, err)
		}
		return nil
	}

	if err := s.redisClient.Set(ctx, key, slot.Remaining(), s.calculateTTL(slot.Date)).Err(); err != nil {
		s.log.Warnf("Failed to refresh mirror for slot %s: %+v", slotID, err)
		return fmt.Errorf("refresh mirror for slot %s: %w", slotID, err)
	}
	return nil
}

// GetRemaining returns the mirrored remaining counts for the given slots.
// Slots without a mirror entry are simply absent from the result.
func (s *AvailabilityService) GetRemaining(ctx context.Context, slotIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	if len(slotIDs) == 0 {
		return map[uuid.UUID]int{}, nil
	}

	keys := make([]string, len(slotIDs))
	for i, id := range slotIDs {
		keys[i] = fmt.Sprintf("%s%s", RedisSlotRemainingPrefix, id)
	}

	values, err := s.redisClient.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("mget slot remaining: %w", err)
	}

	result := make(map[uuid.UUID]int, len(slotIDs))
	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			continue
		}
		var remaining int
		if _, err := fmt.Sscanf(raw, "%d", &remaining); err != nil {
			continue
		}
		result[slotIDs[i]] = remaining
	}
	return result, nil
}

// DeleteSlotKey removes a slot's mirror entry, used when a slot is deleted.
func (s *AvailabilityService) DeleteSlotKey(ctx context.Context, slotID uuid.UUID) error {
	mt := s.getSlotMutex(slotID)
	mt.mu.Lock()
	defer func() {
		mt.mu.Unlock()
		s.slotMu.Delete(slotID)
	}()

	key := fmt.Sprintf("%s%s", RedisSlotRemainingPrefix, slotID)
	if err := s.redisClient.Del(ctx, key).Err(); err != nil {
		s.log.Warnf("Failed to delete mirror key for slot %s: %+v", slotID, err)
		return fmt.Errorf("delete mirror key for slot %s: %w", slotID, err)
	}
	return nil
}

func (s *AvailabilityService) getSlotMutex(slotID uuid.UUID) *slotMutex {
	mt, _ := s.slotMu.LoadOrStore(slotID, &slotMutex{})
	result := mt.(*slotMutex)
	result.lastUsed.Store(time.Now().Unix())
	return result
}

func (s *AvailabilityService) cleanupMutexMapLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(slotMutexCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanupStaleMutexes()
		}
	}
}

func (s *AvailabilityService) cleanupStaleMutexes() {
	cutoffTime := time.Now().Add(-slotMutexStaleThreshold).Unix()
	var cleaned int

	s.slotMu.Range(func(key, value any) bool {
		slotID, ok := key.(uuid.UUID)
		if !ok {
			return true
		}
		mt, ok := value.(*slotMutex)
		if !ok {
			return true
		}
		// TryLock first - if we can't get lock, someone is using it.
		// lastUsed is checked inside the lock so a racing refresh that just
		// touched the mutex is not swept away.
		if mt.mu.TryLock() {
			if mt.lastUsed.Load() < cutoffTime {
				s.slotMu.Delete(slotID)
				cleaned++
			}
			mt.mu.Unlock()
		}
		return true
	})

	if cleaned > 0 {
		s.log.Debugf("Cleaned up %d stale slot mutexes", cleaned)
	}
}

// calculateTTL returns TTL: 24 hours after the slot date
func (s *AvailabilityService) calculateTTL(date time.Time) time.Duration {
	expireAt := date.AddDate(0, 0, 1)
	ttl := time.Until(expireAt)
	if ttl <= 0 {
		return 1 * time.Minute
	}
	return ttl
}

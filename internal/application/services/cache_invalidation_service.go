package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/zurielhealth/clinicalcanvas/backend/internal/domain/entities"
	"github.com/zurielhealth/clinicalcanvas/backend/internal/domain/providers"
)

// CacheInvalidationService drops cached HTTP responses when patient data
// changes, by listening for patient events on the bus.
type CacheInvalidationService struct {
	cache    providers.CacheProvider
	eventBus providers.EventBus
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewCacheInvalidationService creates a new cache invalidation service
func NewCacheInvalidationService(cache providers.CacheProvider, eventBus providers.EventBus) *CacheInvalidationService {
	ctx, cancel := context.WithCancel(context.Background())
	return &CacheInvalidationService{
		cache:    cache,
		eventBus: eventBus,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins listening for patient events and invalidating cache
func (s *CacheInvalidationService) Start() error {
	eventChan, err := s.eventBus.Subscribe(s.ctx, providers.EventChannelPatientUpdates)
	if err != nil {
		return fmt.Errorf("failed to subscribe to patient updates: %w", err)
	}

	go s.processEvents(eventChan)
	log.Println("Cache invalidation service started")
	return nil
}

// Stop stops the cache invalidation service
func (s *CacheInvalidationService) Stop() {
	s.cancel()
	log.Println("Cache invalidation service stopped")
}

// processEvents processes patient events and invalidates cache accordingly
func (s *CacheInvalidationService) processEvents(eventChan <-chan *entities.PatientEvent) {
	for {
		select {
		case <-s.ctx.Done():
			return
		case event := <-eventChan:
			if event == nil {
				continue
			}
			s.handleEvent(event)
		}
	}
}

// handleEvent handles a single patient event
func (s *CacheInvalidationService) handleEvent(event *entities.PatientEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	log.Printf("Processing cache invalidation for event: %s (patient: %s, type: %s)",
		event.ID, event.PatientID, event.EventType)

	// Patient detail payloads embed the summary, clinical series, and
	// document list, so any patient event makes them stale.
	if err := s.InvalidatePatientCache(ctx, event.PatientID); err != nil {
		log.Printf("Warning: Failed to invalidate patient cache for %s: %v", event.PatientID, err)
	}

	// The list payload only carries demographics; only seeding new
	// patients changes it.
	if event.EventType == entities.PatientEventTypeDataSeeded {
		if err := s.cache.DeletePattern(ctx, "http:cache:*/api/patients"); err != nil {
			log.Printf("Warning: Failed to invalidate patient list cache: %v", err)
		}
	}
}

// InvalidatePatientCache invalidates cached responses for a specific patient
func (s *CacheInvalidationService) InvalidatePatientCache(ctx context.Context, patientID string) error {
	pattern := fmt.Sprintf("http:cache:*patients/%s*", patientID)
	if err := s.cache.DeletePattern(ctx, pattern); err != nil {
		return fmt.Errorf("failed to invalidate patient cache: %w", err)
	}
	log.Printf("Invalidated cached responses for patient %s", patientID)
	return nil
}

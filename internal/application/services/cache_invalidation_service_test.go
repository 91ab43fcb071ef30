package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zurielhealth/clinicalcanvas/backend/internal/application/services"
	"github.com/zurielhealth/clinicalcanvas/backend/internal/domain/entities"
	"github.com/zurielhealth/clinicalcanvas/backend/internal/domain/providers"
)

func TestCacheInvalidationService_Start(t *testing.T) {
	cache := newCacheSpy()
	bus := newBusSpy()
	svc := services.NewCacheInvalidationService(cache, bus)

	require.NoError(t, svc.Start())
	defer svc.Stop()

	bus.mu.Lock()
	subscribed := len(bus.subscribers[providers.EventChannelPatientUpdates])
	bus.mu.Unlock()
	assert.Equal(t, 1, subscribed)
}

func TestCacheInvalidationService_DropsPatientResponses(t *testing.T) {
	cache := newCacheSpy()
	bus := newBusSpy()
	svc := services.NewCacheInvalidationService(cache, bus)

	require.NoError(t, svc.Start())
	defer svc.Stop()

	event := entities.NewPatientEvent("uncle-tan-001", entities.PatientEventTypeSummaryGenerated, nil)
	require.NoError(t, bus.Publish(context.Background(), providers.EventChannelPatientUpdates, event))

	require.Eventually(t, func() bool {
		return len(cache.deletedPatterns()) >= 1
	}, time.Second, 10*time.Millisecond)

	patterns := cache.deletedPatterns()
	assert.Contains(t, patterns, "http:cache:*patients/uncle-tan-001*")
	// A summary does not change the list payload.
	assert.NotContains(t, patterns, "http:cache:*/api/patients")
}

func TestCacheInvalidationService_SeedEventDropsList(t *testing.T) {
	cache := newCacheSpy()
	bus := newBusSpy()
	svc := services.NewCacheInvalidationService(cache, bus)

	require.NoError(t, svc.Start())
	defer svc.Stop()

	event := entities.NewPatientEvent("mrs-chen-002", entities.PatientEventTypeDataSeeded, nil)
	require.NoError(t, bus.Publish(context.Background(), providers.EventChannelPatientUpdates, event))

	require.Eventually(t, func() bool {
		return len(cache.deletedPatterns()) >= 2
	}, time.Second, 10*time.Millisecond)

	patterns := cache.deletedPatterns()
	assert.Contains(t, patterns, "http:cache:*patients/mrs-chen-002*")
	assert.Contains(t, patterns, "http:cache:*/api/patients")
}

func TestCacheInvalidationService_InvalidatePatientCache(t *testing.T) {
	cache := newCacheSpy()
	svc := services.NewCacheInvalidationService(cache, newBusSpy())

	require.NoError(t, svc.InvalidatePatientCache(context.Background(), "uncle-tan-001"))
	assert.Equal(t, []string{"http:cache:*patients/uncle-tan-001*"}, cache.deletedPatterns())
}

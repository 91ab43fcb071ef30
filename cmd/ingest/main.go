package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/zurielhealth/clinicalcanvas/backend/internal/adapters/database"
	"github.com/zurielhealth/clinicalcanvas/backend/internal/adapters/events"
	"github.com/zurielhealth/clinicalcanvas/backend/internal/application/services"
	"github.com/zurielhealth/clinicalcanvas/backend/internal/domain/entities"
	"github.com/zurielhealth/clinicalcanvas/backend/internal/domain/providers"
	dbclient "github.com/zurielhealth/clinicalcanvas/backend/internal/infrastructure/clients/database"
	"github.com/zurielhealth/clinicalcanvas/backend/internal/infrastructure/clients/redis"
	"github.com/zurielhealth/clinicalcanvas/backend/pkg/config"
)

func main() {
	var patientID string
	var filePath string
	var filename string
	var docType string
	var dbPath string

	flag.StringVar(&patientID, "patient", "", "Patient ID the document belongs to")
	flag.StringVar(&filePath, "file", "", "Path to the document text file")
	flag.StringVar(&filename, "filename", "", "Stored filename (defaults to the file's base name)")
	flag.StringVar(&docType, "type", "referral", "Document type (referral, discharge, note)")
	flag.StringVar(&dbPath, "db", "", "SQLite database path override")
	flag.Parse()

	if patientID == "" || filePath == "" {
		flag.Usage()
		log.Fatalf("Both -patient and -file are required")
	}
	if filename == "" {
		filename = filepath.Base(filePath)
	}

	text, err := os.ReadFile(filePath)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", filePath, err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if dbPath != "" {
		cfg.Database.Engine = "sqlite"
		cfg.Database.SQLitePath = dbPath
	}

	ctx := context.Background()

	dbClient, err := dbclient.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer dbClient.Close()

	if err := database.EnsureSchema(ctx, dbClient); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}

	patientRepo := database.NewPatientAdapter(dbClient)
	documentRepo := database.NewDocumentAdapter(dbClient)

	patient, err := patientRepo.GetByID(ctx, patientID)
	if err != nil {
		log.Fatalf("Failed to load patient %s: %v", patientID, err)
	}

	chunker := services.NewChunkingService(cfg.Chunking.SizeWords, cfg.Chunking.OverlapWords)
	pieces := chunker.Chunk(string(text))
	if len(pieces) == 0 {
		log.Fatalf("Document %s contains no indexable text", filePath)
	}

	document := entities.Document{
		ID:           uuid.New().String(),
		PatientID:    patientID,
		Filename:     filename,
		DocumentType: docType,
		CreatedAt:    time.Now(),
	}
	if err := documentRepo.Create(ctx, &document); err != nil {
		log.Fatalf("Failed to store document: %v", err)
	}

	chunks := make([]entities.DocumentChunk, len(pieces))
	for i, piece := range pieces {
		chunks[i] = entities.DocumentChunk{
			ID:         uuid.New().String(),
			DocumentID: document.ID,
			Text:       piece,
			ChunkIndex: i,
		}
	}
	if err := documentRepo.CreateChunks(ctx, chunks); err != nil {
		log.Fatalf("Failed to store chunks: %v", err)
	}

	// Tell running API instances about the new document so their cached
	// responses for this patient get dropped.
	var eventBus providers.EventBus
	if cfg.Redis.Enabled() {
		redisClient, err := redis.NewClient(&cfg.Redis)
		if err != nil {
			log.Printf("Warning: Redis unavailable, skipping ingest event: %v", err)
		} else {
			defer redisClient.Close()
			eventBus = events.NewRedisEventBus(redisClient)
		}
	}
	services.PublishPatientEvent(ctx, eventBus, patientID, entities.PatientEventTypeDocumentIngested, map[string]interface{}{
		"document_id": document.ID,
		"filename":    filename,
		"chunks":      len(chunks),
	})

	log.Printf("Ingested %s for %s: document %s with %d chunks", filename, patient.Name, document.ID, len(chunks))
}

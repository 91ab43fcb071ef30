package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/zurielhealth/clinicalcanvas/backend/internal/adapters/database"
	"github.com/zurielhealth/clinicalcanvas/backend/internal/adapters/events"
	"github.com/zurielhealth/clinicalcanvas/backend/internal/application/services"
	"github.com/zurielhealth/clinicalcanvas/backend/internal/domain/entities"
	"github.com/zurielhealth/clinicalcanvas/backend/internal/domain/providers"
	"github.com/zurielhealth/clinicalcanvas/backend/internal/domain/repositories"
	dbclient "github.com/zurielhealth/clinicalcanvas/backend/internal/infrastructure/clients/database"
	"github.com/zurielhealth/clinicalcanvas/backend/internal/infrastructure/clients/redis"
	"github.com/zurielhealth/clinicalcanvas/backend/pkg/config"
)

// reading is one clinical measurement to seed
type reading struct {
	name     string
	value    string
	unit     string
	refRange string
	recorded time.Time
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	dbClient, err := dbclient.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer dbClient.Close()

	ctx := context.Background()

	if err := database.EnsureSchema(ctx, dbClient); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}

	// Event bus is optional here: with Redis configured, seeding notifies
	// running API instances so their response caches drop stale payloads.
	var eventBus providers.EventBus
	if cfg.Redis.Enabled() {
		redisClient, err := redis.NewClient(&cfg.Redis)
		if err != nil {
			log.Printf("Warning: Redis unavailable, seeding without events: %v", err)
		} else {
			defer redisClient.Close()
			eventBus = events.NewRedisEventBus(redisClient)
		}
	}

	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, clearing tables before seeding")
		for _, table := range []string{"qa_pairs", "document_chunks", "documents", "ai_summaries", "clinical_data", "patients"} {
			if _, err := dbClient.DB().ExecContext(ctx, "DELETE FROM "+table); err != nil {
				log.Fatalf("Failed to clear %s: %v", table, err)
			}
		}
	}

	patientRepo := database.NewPatientAdapter(dbClient)
	clinicalRepo := database.NewClinicalDataAdapter(dbClient)
	summaryRepo := database.NewSummaryAdapter(dbClient)
	documentRepo := database.NewDocumentAdapter(dbClient)
	qaRepo := database.NewCachedAnswerAdapter(dbClient)

	// 1. Seed demo patients
	patients := []entities.Patient{
		{ID: "uncle-tan-001", Name: "Uncle Tan", Age: 68, Gender: "Male", CreatedAt: time.Now()},
		{ID: "mrs-chen-002", Name: "Mrs. Chen", Age: 54, Gender: "Female", CreatedAt: time.Now()},
		{ID: "mr-kumar-003", Name: "Mr. Kumar", Age: 61, Gender: "Male", CreatedAt: time.Now()},
	}

	for i := range patients {
		if err := patientRepo.Create(ctx, &patients[i]); err != nil {
			log.Printf("Failed to create patient %s: %v", patients[i].Name, err)
		}
	}

	// 2. Seed AI summaries
	summaries := []entities.Summary{
		{
			ID:        uuid.New().String(),
			PatientID: "uncle-tan-001",
			Text: "68-year-old male with progressive chronic kidney disease (Stage 4) requiring urgent nephrology follow-up. " +
				"Recent labs show elevated creatinine (4.2 mg/dL) and declining eGFR (18 mL/min). Patient presents with fatigue, " +
				"decreased appetite, and mild edema. Blood pressure moderately controlled on ACE inhibitor. Requires discussion of " +
				"renal replacement therapy options and close monitoring of electrolytes and fluid status.",
			Confidence:  ref(0.92),
			GeneratedAt: time.Now(),
		},
		{
			ID:        uuid.New().String(),
			PatientID: "mrs-chen-002",
			Text: "54-year-old female with Type 2 diabetes mellitus, moderately controlled with HbA1c of 8.2%. Recent concerns " +
				"include diabetic nephropathy with microalbuminuria and early retinopathy changes. Blood pressure elevated at 150/92, " +
				"requiring optimization. Patient reports improved dietary compliance but struggles with medication adherence. Requires " +
				"endocrinology follow-up and ophthalmology screening.",
			Confidence:  ref(0.89),
			GeneratedAt: time.Now(),
		},
		{
			ID:        uuid.New().String(),
			PatientID: "mr-kumar-003",
			Text: "61-year-old male with recent acute myocardial infarction (STEMI) 3 weeks ago, status post primary PCI with " +
				"drug-eluting stent to LAD. Currently on dual antiplatelet therapy, statin, and ACE inhibitor. Echo shows mild LV " +
				"dysfunction with EF 45%. Patient reports stable angina with mild exertion. Requires cardiac rehabilitation referral " +
				"and close cardiology follow-up.",
			Confidence:  ref(0.91),
			GeneratedAt: time.Now(),
		},
	}

	for i := range summaries {
		if err := summaryRepo.Create(ctx, &summaries[i]); err != nil {
			log.Printf("Failed to create summary for %s: %v", summaries[i].PatientID, err)
		}
	}

	// 3. Seed Uncle Tan's clinical series
	recordedJul28 := time.Date(2024, time.July, 28, 0, 0, 0, 0, time.UTC)
	recordedJul25 := time.Date(2024, time.July, 25, 0, 0, 0, 0, time.UTC)

	vitals := []reading{
		{"blood_pressure_systolic", "142", "mmHg", "90-140", recordedJul28},
		{"blood_pressure_diastolic", "88", "mmHg", "60-90", recordedJul28},
		{"heart_rate", "78", "bpm", "60-100", recordedJul28},
		{"temperature", "36.8", "°C", "36.1-37.2", recordedJul28},
		{"weight", "72.5", "kg", "N/A", recordedJul28},
		{"oxygen_saturation", "98", "%", "95-100", recordedJul28},
	}

	labs := []reading{
		{"creatinine", "4.2", "mg/dL", "0.7-1.3", recordedJul28},
		{"bun", "68", "mg/dL", "6-24", recordedJul28},
		{"egfr", "18", "mL/min/1.73m²", ">60", recordedJul28},
		{"potassium", "4.8", "mEq/L", "3.5-5.1", recordedJul28},
		{"phosphorus", "5.2", "mg/dL", "2.5-4.5", recordedJul28},
		{"hemoglobin", "10.2", "g/dL", "12.0-15.5", recordedJul28},
		{"parathyroid_hormone", "185", "pg/mL", "15-65", recordedJul25},
		{"albumin", "3.2", "g/dL", "3.5-5.0", recordedJul28},
	}

	seedReadings(ctx, clinicalRepo, "uncle-tan-001", entities.CategoryVital, vitals)
	seedReadings(ctx, clinicalRepo, "uncle-tan-001", entities.CategoryLab, labs)

	// 4. Seed Uncle Tan's referral document with chunks. Document and
	// chunk IDs are fixed so golden question sets can label them.
	referralID := "doc-tan-referral-001"
	referral := entities.Document{
		ID:           referralID,
		PatientID:    "uncle-tan-001",
		Filename:     "referral_nephrology_tan.pdf",
		DocumentType: "referral",
		CreatedAt:    time.Now(),
	}
	if err := documentRepo.Create(ctx, &referral); err != nil {
		log.Printf("Failed to create document %s: %v", referral.Filename, err)
	}

	chunks := []entities.DocumentChunk{
		{
			ID:         "doc-tan-referral-001-chunk-0",
			DocumentID: referralID,
			Text: "Referral to Nephrology. Re: Mr. Tan, 68-year-old male. Thank you for seeing this patient with " +
				"progressive chronic kidney disease, now Stage 4. His most recent eGFR is 18 mL/min/1.73m² with a " +
				"serum creatinine of 4.2 mg/dL, a significant decline in renal function over the past six months.",
			ChunkIndex: 0,
			PageNumber: ref(1),
		},
		{
			ID:         "doc-tan-referral-001-chunk-1",
			DocumentID: referralID,
			Text: "History: long-standing hypertension managed with an ACE inhibitor (lisinopril 20mg daily). Over " +
				"the past three months he reports increasing fatigue, decreased appetite, and mild bilateral ankle " +
				"edema. No chest pain, no dyspnea at rest. Blood pressure today 142/88.",
			ChunkIndex: 1,
			PageNumber: ref(1),
		},
		{
			ID:         "doc-tan-referral-001-chunk-2",
			DocumentID: referralID,
			Text: "Laboratory findings show complications of advanced renal impairment: hemoglobin 10.2 g/dL " +
				"consistent with renal anemia, parathyroid hormone elevated at 185 pg/mL, phosphorus 5.2 mg/dL. " +
				"Potassium remains acceptable at 4.8 mEq/L but warrants close monitoring.",
			ChunkIndex: 2,
			PageNumber: ref(2),
		},
		{
			ID:         "doc-tan-referral-001-chunk-3",
			DocumentID: referralID,
			Text: "Plan: please assess for renal replacement therapy planning, including dialysis access and " +
				"transplant evaluation suitability. Kindly advise on management of renal anemia and secondary " +
				"hyperparathyroidism. We will continue blood pressure optimization and dietary potassium counselling.",
			ChunkIndex: 3,
			PageNumber: ref(3),
		},
	}
	if err := documentRepo.CreateChunks(ctx, chunks); err != nil {
		log.Printf("Failed to create chunks for %s: %v", referral.Filename, err)
	}

	// 5. Seed pre-computed QA pairs
	qaPairs := []entities.CachedAnswer{
		{
			ID:        uuid.New().String(),
			PatientID: "uncle-tan-001",
			Question:  "What is the current kidney function status?",
			Answer: "Uncle Tan has Stage 4 chronic kidney disease with severely reduced kidney function. His creatinine " +
				"is elevated at 4.2 mg/dL (normal 0.7-1.3) and his estimated GFR is only 18 mL/min/1.73m² (normal >60), " +
				"indicating severe reduction in kidney function.",
			SourceDocumentID: &referralID,
			Confidence:       ref(0.95),
			CreatedAt:        time.Now(),
		},
		{
			ID:        uuid.New().String(),
			PatientID: "uncle-tan-001",
			Question:  "What are the main concerns with this patient?",
			Answer: "The primary concerns are: 1) Progressive chronic kidney disease requiring urgent nephrology " +
				"evaluation, 2) Elevated creatinine and very low eGFR indicating need for renal replacement therapy " +
				"planning, 3) Secondary complications including anemia (Hgb 10.2) and elevated parathyroid hormone (185), " +
				"4) Risk of fluid and electrolyte imbalances.",
			SourceDocumentID: &referralID,
			Confidence:       ref(0.92),
			CreatedAt:        time.Now(),
		},
		{
			ID:        uuid.New().String(),
			PatientID: "uncle-tan-001",
			Question:  "What immediate actions are needed?",
			Answer: "Immediate actions include: 1) Urgent nephrology referral for renal replacement therapy discussion, " +
				"2) Close monitoring of electrolytes, especially potassium and phosphorus, 3) Fluid status assessment and " +
				"management, 4) Blood pressure optimization, 5) Anemia management evaluation, 6) Patient education about " +
				"kidney disease progression.",
			SourceDocumentID: &referralID,
			Confidence:       ref(0.90),
			CreatedAt:        time.Now(),
		},
	}

	for i := range qaPairs {
		if err := qaRepo.Create(ctx, &qaPairs[i]); err != nil {
			log.Printf("Failed to create QA pair %q: %v", qaPairs[i].Question, err)
		}
	}

	for _, p := range patients {
		services.PublishPatientEvent(ctx, eventBus, p.ID, entities.PatientEventTypeDataSeeded, nil)
	}

	log.Println("Seeding completed successfully")
	log.Println("Available patients:")
	log.Println("  - Uncle Tan (uncle-tan-001) - CKD Stage 4")
	log.Println("  - Mrs. Chen (mrs-chen-002) - Type 2 Diabetes")
	log.Println("  - Mr. Kumar (mr-kumar-003) - Post-MI")
}

func seedReadings(ctx context.Context, repo repositories.ClinicalDataRepository, patientID string, category entities.ClinicalCategory, readings []reading) {
	for _, r := range readings {
		datum := entities.ClinicalDatum{
			ID:             uuid.New().String(),
			PatientID:      patientID,
			Category:       category,
			Name:           r.name,
			Value:          r.value,
			Unit:           r.unit,
			ReferenceRange: ref(r.refRange),
			RecordedAt:     r.recorded,
		}
		if err := repo.Create(ctx, &datum); err != nil {
			log.Printf("Failed to create %s reading %s: %v", category, r.name, err)
		}
	}
}

func ref[T any](v T) *T {
	return &v
}

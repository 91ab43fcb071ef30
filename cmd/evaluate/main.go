package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/zurielhealth/clinicalcanvas/backend/internal/adapters/database"
	"github.com/zurielhealth/clinicalcanvas/backend/internal/adapters/providers/llm"
	"github.com/zurielhealth/clinicalcanvas/backend/internal/application/services"
	"github.com/zurielhealth/clinicalcanvas/backend/internal/evaluation"
	dbclient "github.com/zurielhealth/clinicalcanvas/backend/internal/infrastructure/clients/database"
	"github.com/zurielhealth/clinicalcanvas/backend/pkg/config"
)

func main() {
	goldenPath := flag.String("golden", "config/golden_questions.json", "path to the golden question set")
	dbPath := flag.String("db", "", "SQLite database path override")
	k := flag.Int("k", 10, "cutoff for Recall@K and MRR@K")
	aiMode := flag.String("ai", "off", "AI provider for the run: off, mock, auto, openai, ollama")
	minConfidence := flag.Float64("min-confidence", 0.2, "guardrail lower bound on answer confidence")
	reportPath := flag.String("report", "", "write the full JSON report to this file instead of stdout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Deterministic by default: the run exercises cached answers and
	// fallback synthesis unless a live backend is requested explicitly.
	cfg.AI.Provider = *aiMode
	if *dbPath != "" {
		cfg.Database.Engine = "sqlite"
		cfg.Database.SQLitePath = *dbPath
	}

	path := *goldenPath
	if _, err := os.Stat(path); err != nil {
		if _, statErr := os.Stat("backend/" + path); statErr == nil {
			path = "backend/" + path
		}
	}

	questions, err := evaluation.LoadGoldenQuestions(path)
	if err != nil {
		log.Fatalf("Failed to load golden questions: %v", err)
	}
	if err := evaluation.ValidateGoldenQuestions(questions); err != nil {
		log.Fatalf("Invalid golden question set: %v", err)
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
	clinicalRepo := database.NewClinicalDataAdapter(dbClient)
	summaryRepo := database.NewSummaryAdapter(dbClient)
	documentRepo := database.NewDocumentAdapter(dbClient)
	qaRepo := database.NewCachedAnswerAdapter(dbClient)

	llmProvider, err := llm.NewLLMProvider(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize AI provider %q: %v", cfg.AI.Provider, err)
	}

	contextService := services.NewContextService(
		patientRepo,
		clinicalRepo,
		summaryRepo,
		cfg.Retrieval.VitalsLimit,
		cfg.Retrieval.LabsLimit,
	)
	retrievalService := services.NewRetrievalService(documentRepo, cfg.Retrieval.TopK)
	answerService := services.NewAnswerService(contextService, retrievalService, qaRepo, documentRepo, llmProvider, nil)

	guardrails := evaluation.NewGuardrails(evaluation.GuardrailConfig{MinConfidence: *minConfidence})
	runner := evaluation.NewRunner(answerService, retrievalService, guardrails, *k)

	summary, err := runner.Run(ctx, questions)
	if err != nil {
		log.Fatalf("Evaluation failed: %v", err)
	}

	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode report: %v", err)
	}
	if *reportPath != "" {
		if err := os.WriteFile(*reportPath, out, 0644); err != nil {
			log.Fatalf("Failed to write report: %v", err)
		}
		log.Printf("Report written to %s", *reportPath)
	} else {
		fmt.Println(string(out))
	}

	log.Printf(
		"Evaluated %d questions: %d labeled, avg recall@%d %.2f, avg MRR@%d %.2f, avg confidence %.2f",
		summary.TotalQuestions, summary.LabeledQuestions, *k, summary.AvgRecallAtK, *k, summary.AvgMRRAtK, summary.AvgConfidence,
	)

	for _, res := range summary.Results {
		for _, v := range res.Violations {
			log.Printf("Violation [%s]: %s", res.QuestionID, v)
		}
	}

	if summary.AnswerErrors > 0 || summary.ViolationCount > 0 {
		log.Fatalf("Evaluation failed: %d unresolved questions, %d guardrail violations",
			summary.AnswerErrors, summary.ViolationCount)
	}
}

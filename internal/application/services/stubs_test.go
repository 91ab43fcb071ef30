package services_test

import (
	"context"
	"sync"

	"github.com/zurielhealth/clinicalcanvas/backend/internal/domain/entities"
	"github.com/zurielhealth/clinicalcanvas/backend/internal/domain/providers"
	apperrors "github.com/zurielhealth/clinicalcanvas/backend/pkg/errors"
)

// In-memory stubs shared by the service tests in this package.

type stubPatientRepo struct {
	patients map[string]*entities.Patient
	err      error
}

func newStubPatientRepo(patients ...*entities.Patient) *stubPatientRepo {
	repo := &stubPatientRepo{patients: make(map[string]*entities.Patient)}
	for _, p := range patients {
		repo.patients[p.ID] = p
	}
	return repo
}

func (s *stubPatientRepo) Create(ctx context.Context, patient *entities.Patient) error {
	s.patients[patient.ID] = patient
	return nil
}

func (s *stubPatientRepo) GetByID(ctx context.Context, id string) (*entities.Patient, error) {
	if s.err != nil {
		return nil, s.err
	}
	if p, ok := s.patients[id]; ok {
		return p, nil
	}
	return nil, apperrors.NewNotFoundError("patient not found")
}

func (s *stubPatientRepo) List(ctx context.Context) ([]*entities.Patient, error) {
	out := make([]*entities.Patient, 0, len(s.patients))
	for _, p := range s.patients {
		out = append(out, p)
	}
	return out, nil
}

func (s *stubPatientRepo) Delete(ctx context.Context, id string) error {
	delete(s.patients, id)
	return nil
}

type stubClinicalDataRepo struct {
	vitals []entities.ClinicalDatum
	labs   []entities.ClinicalDatum
}

func (s *stubClinicalDataRepo) Create(ctx context.Context, datum *entities.ClinicalDatum) error {
	switch datum.Category {
	case entities.CategoryVital:
		s.vitals = append(s.vitals, *datum)
	case entities.CategoryLab:
		s.labs = append(s.labs, *datum)
	}
	return nil
}

func (s *stubClinicalDataRepo) ListRecent(ctx context.Context, patientID string, category entities.ClinicalCategory, limit int) ([]entities.ClinicalDatum, error) {
	var series []entities.ClinicalDatum
	if category == entities.CategoryVital {
		series = s.vitals
	} else {
		series = s.labs
	}
	if len(series) > limit {
		series = series[:limit]
	}
	return series, nil
}

type stubSummaryRepo struct {
	latest  *entities.Summary
	created []*entities.Summary
}

func (s *stubSummaryRepo) Create(ctx context.Context, summary *entities.Summary) error {
	s.created = append(s.created, summary)
	s.latest = summary
	return nil
}

func (s *stubSummaryRepo) GetLatest(ctx context.Context, patientID string) (*entities.Summary, error) {
	if s.latest == nil {
		return nil, apperrors.NewNotFoundError("no summary for patient")
	}
	return s.latest, nil
}

type stubDocumentRepo struct {
	documents map[string]*entities.Document
	chunks    []entities.DocumentChunk
	chunksErr error
}

func newStubDocumentRepo() *stubDocumentRepo {
	return &stubDocumentRepo{documents: make(map[string]*entities.Document)}
}

func (s *stubDocumentRepo) Create(ctx context.Context, document *entities.Document) error {
	s.documents[document.ID] = document
	return nil
}

func (s *stubDocumentRepo) GetByID(ctx context.Context, id string) (*entities.Document, error) {
	if d, ok := s.documents[id]; ok {
		return d, nil
	}
	return nil, apperrors.NewNotFoundError("document not found")
}

func (s *stubDocumentRepo) ListByPatient(ctx context.Context, patientID string) ([]*entities.Document, error) {
	out := make([]*entities.Document, 0, len(s.documents))
	for _, d := range s.documents {
		if d.PatientID == patientID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *stubDocumentRepo) CreateChunks(ctx context.Context, chunks []entities.DocumentChunk) error {
	s.chunks = append(s.chunks, chunks...)
	return nil
}

func (s *stubDocumentRepo) ListChunksByPatient(ctx context.Context, patientID string) ([]entities.DocumentChunk, error) {
	if s.chunksErr != nil {
		return nil, s.chunksErr
	}
	return s.chunks, nil
}

type stubCachedAnswerRepo struct {
	match *entities.CachedAnswer
	err   error
}

func (s *stubCachedAnswerRepo) Create(ctx context.Context, answer *entities.CachedAnswer) error {
	s.match = answer
	return nil
}

func (s *stubCachedAnswerRepo) FindMatch(ctx context.Context, patientID, question string) (*entities.CachedAnswer, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.match == nil {
		return nil, apperrors.NewNotFoundError("no matching answer")
	}
	return s.match, nil
}

// llmSpy counts invocations so tests can prove which resolver states ran.
type llmSpy struct {
	answer       *providers.LLMAnswer
	summary      *providers.LLMAnswer
	err          error
	answerCalls  int
	summaryCalls int
	lastChunks   []string
}

func (l *llmSpy) Name() string { return "spy" }

func (l *llmSpy) IsAvailable(ctx context.Context) bool { return l.err == nil }

func (l *llmSpy) AnswerClinicalQuestion(ctx context.Context, question string, pc *entities.PatientContext, chunks []string) (*providers.LLMAnswer, error) {
	l.answerCalls++
	l.lastChunks = chunks
	if l.err != nil {
		return nil, l.err
	}
	return l.answer, nil
}

func (l *llmSpy) GenerateSummary(ctx context.Context, pc *entities.PatientContext) (*providers.LLMAnswer, error) {
	l.summaryCalls++
	if l.err != nil {
		return nil, l.err
	}
	return l.summary, nil
}

// busSpy records published events and delivers them to subscribers.
type busSpy struct {
	mu          sync.Mutex
	published   []*entities.PatientEvent
	channels    []string
	subscribers map[string][]chan *entities.PatientEvent
}

func newBusSpy() *busSpy {
	return &busSpy{subscribers: make(map[string][]chan *entities.PatientEvent)}
}

func (b *busSpy) Publish(ctx context.Context, channel string, event *entities.PatientEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, event)
	b.channels = append(b.channels, channel)
	for _, ch := range b.subscribers[channel] {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

func (b *busSpy) Subscribe(ctx context.Context, channel string) (<-chan *entities.PatientEvent, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan *entities.PatientEvent, 10)
	b.subscribers[channel] = append(b.subscribers[channel], ch)
	return ch, nil
}

func (b *busSpy) Unsubscribe(ctx context.Context, channel string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subscribers[channel] {
		close(ch)
	}
	delete(b.subscribers, channel)
	return nil
}

func (b *busSpy) Close() error { return nil }

func (b *busSpy) publishedCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.published)
}

// cacheSpy records pattern deletions for invalidation tests.
type cacheSpy struct {
	mu       sync.Mutex
	data     map[string][]byte
	patterns []string
}

func newCacheSpy() *cacheSpy {
	return &cacheSpy{data: make(map[string][]byte)}
}

func (c *cacheSpy) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.data[key]; ok {
		return v, nil
	}
	return nil, apperrors.NewNotFoundError("key not found")
}

func (c *cacheSpy) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *cacheSpy) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *cacheSpy) DeletePattern(ctx context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.patterns = append(c.patterns, pattern)
	return nil
}

func (c *cacheSpy) Exists(ctx context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok, nil
}

func (c *cacheSpy) deletedPatterns() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.patterns))
	copy(out, c.patterns)
	return out
}

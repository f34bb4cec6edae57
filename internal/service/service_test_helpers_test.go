package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/formkit-api/internal/models"
	"github.com/noah-isme/formkit-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func testValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

func setupServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Form{},
		&models.Question{},
		&models.FormResponse{},
		&models.QuestionResponse{},
		&models.QuizAttempt{},
	))
	return db
}

type invalidationRecorder struct {
	mu     sync.Mutex
	owners []uint
}

func (r *invalidationRecorder) Invalidate(ctx context.Context, ownerID uint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.owners = append(r.owners, ownerID)
}

func (r *invalidationRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.owners)
}

type publisherStub struct {
	mu     sync.Mutex
	events []AttemptEvent
	err    error
}

func (p *publisherStub) Publish(ctx context.Context, event AttemptEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

var errBrokerDown = errors.New("broker down")

type serviceFixture struct {
	db          *gorm.DB
	forms       repository.FormRepository
	responses   repository.ResponseRepository
	attempts    repository.AttemptRepository
	invalidator *invalidationRecorder
	publisher   *publisherStub
	formSvc     FormService
	submitSvc   SubmissionService
	responseSvc ResponseService
	clock       time.Time
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	db := setupServiceDB(t)
	fx := &serviceFixture{
		db:          db,
		forms:       repository.NewFormRepository(db),
		responses:   repository.NewResponseRepository(db),
		attempts:    repository.NewAttemptRepository(db),
		invalidator: &invalidationRecorder{},
		publisher:   &publisherStub{},
		clock:       time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	fx.formSvc = NewFormService(fx.forms, fx.invalidator, testValidator(), testLogger())

	submitSvc := NewSubmissionService(fx.forms, fx.responses, fx.attempts, fx.publisher, fx.invalidator, testValidator(), testLogger())
	submitSvc.(*submissionService).now = func() time.Time { return fx.clock }
	fx.submitSvc = submitSvc

	fx.responseSvc = NewResponseService(fx.forms, fx.responses, fx.attempts, testLogger())
	return fx
}

func boolPtr(v bool) *bool { return &v }

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func uintPtr(v uint) *uint { return &v }

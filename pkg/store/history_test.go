package store

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

func TestJobHash(t *testing.T) {
	a := JobHash("Senior Go Engineer\n\nBuild   payment systems.")
	b := JobHash("  senior go engineer build payment SYSTEMS.  ")

	if a != b {
		t.Errorf("Expected whitespace and case to be ignored, got '%s' and '%s'", a, b)
	}

	if a == JobHash("Junior Go Engineer build payment systems.") {
		t.Error("Expected different postings to hash differently")
	}

	if len(a) != 64 {
		t.Errorf("Expected 64 hex characters, got %d", len(a))
	}
}

func coverLetterRow(l CoverLetter) fakeRow {
	return fakeRow{values: []any{l.ID, l.UserID, l.JobHash, l.JobDescription, l.Tone, l.Content, l.CreatedAt}}
}

func optimizerRunRow(run OptimizerRun) fakeRow {
	return fakeRow{values: []any{run.ID, run.UserID, run.JobHash, run.JobDescription, run.Score, []byte(run.Result), run.CreatedAt}}
}

func resumeRow(res Resume) fakeRow {
	return fakeRow{values: []any{res.ID, res.UserID, res.PortfolioID, res.Version, res.Objects, res.CreatedAt}}
}

func TestCoverLetterSave(t *testing.T) {
	userID := uuid.New()
	jd := "Senior Go Engineer building payment systems."
	stored := CoverLetter{
		ID:             uuid.New(),
		UserID:         userID,
		JobHash:        JobHash(jd),
		JobDescription: jd,
		Tone:           "formal",
		Content:        "Dear Hiring Manager,",
		CreatedAt:      time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	db := &fakeDB{row: coverLetterRow(stored)}

	saved, err := NewCoverLetters(db).Save(context.Background(), CoverLetter{
		UserID:         userID,
		JobDescription: jd,
		Tone:           "formal",
		Content:        "Dear Hiring Manager,",
	})
	if err != nil {
		t.Fatalf("Failed to save cover letter: %v", err)
	}

	if saved.Content != stored.Content {
		t.Errorf("Expected content '%s', got '%s'", stored.Content, saved.Content)
	}

	q := db.calls[0]
	if !strings.Contains(q.query, "INSERT INTO cover_letters") {
		t.Errorf("Expected insert into cover_letters, got query: %s", q.query)
	}

	if q.args[0].(uuid.UUID) == uuid.Nil {
		t.Error("Expected a generated id")
	}

	if q.args[2].(string) != JobHash(jd) {
		t.Errorf("Expected job hash to be derived from the description, got '%v'", q.args[2])
	}
}

func TestCoverLetterListByUser(t *testing.T) {
	userID := uuid.New()
	db := &fakeDB{rows: []fakeRow{
		coverLetterRow(CoverLetter{ID: uuid.New(), UserID: userID, Content: "second"}),
		coverLetterRow(CoverLetter{ID: uuid.New(), UserID: userID, Content: "first"}),
	}}

	letters, err := NewCoverLetters(db).ListByUser(context.Background(), userID, 0)
	if err != nil {
		t.Fatalf("Failed to list cover letters: %v", err)
	}

	if len(letters) != 2 {
		t.Fatalf("Expected 2 letters, got %d", len(letters))
	}

	if letters[0].Content != "second" {
		t.Errorf("Expected newest first, got '%s'", letters[0].Content)
	}

	q := db.calls[0]
	if q.args[0].(uuid.UUID) != userID {
		t.Errorf("Expected user id %s, got %v", userID, q.args[0])
	}

	if q.args[1].(int) != defaultHistoryLimit {
		t.Errorf("Expected default limit %d, got %v", defaultHistoryLimit, q.args[1])
	}
}

func TestOptimizerRunSave(t *testing.T) {
	userID := uuid.New()
	stored := OptimizerRun{
		ID:        uuid.New(),
		UserID:    userID,
		Score:     72,
		Result:    json.RawMessage(`{"score":72}`),
		CreatedAt: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	db := &fakeDB{row: optimizerRunRow(stored)}

	saved, err := NewOptimizerRuns(db).Save(context.Background(), OptimizerRun{
		UserID:         userID,
		JobDescription: "Staff platform engineer.",
		Score:          72,
	})
	if err != nil {
		t.Fatalf("Failed to save optimizer run: %v", err)
	}

	if saved.Score != 72 {
		t.Errorf("Expected score 72, got %d", saved.Score)
	}

	if string(saved.Result) != `{"score":72}` {
		t.Errorf("Expected result to round trip, got '%s'", saved.Result)
	}

	q := db.calls[0]
	if string(q.args[5].([]byte)) != `{}` {
		t.Errorf("Expected an empty result to be stored as {}, got '%s'", q.args[5])
	}
}

func TestOptimizerRunLatestForJob(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	jd := "Staff platform engineer.\n"

	db := &fakeDB{row: optimizerRunRow(OptimizerRun{ID: uuid.New(), UserID: userID, Score: 64})}
	repo := NewOptimizerRuns(db)

	run, err := repo.LatestForJob(ctx, userID, jd)
	if err != nil {
		t.Fatalf("Failed to load previous run: %v", err)
	}

	if run.Score != 64 {
		t.Errorf("Expected score 64, got %d", run.Score)
	}

	if db.calls[0].args[1].(string) != JobHash("staff platform engineer.") {
		t.Errorf("Expected lookup by normalized job hash, got '%v'", db.calls[0].args[1])
	}

	db.row = fakeRow{err: ErrNotFound}
	_, err = repo.LatestForJob(ctx, userID, jd)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestOptimizerRunListByUser(t *testing.T) {
	userID := uuid.New()
	db := &fakeDB{rows: []fakeRow{
		optimizerRunRow(OptimizerRun{ID: uuid.New(), UserID: userID, Score: 81}),
		optimizerRunRow(OptimizerRun{ID: uuid.New(), UserID: userID, Score: 64}),
	}}

	runs, err := NewOptimizerRuns(db).ListByUser(context.Background(), userID, 5)
	if err != nil {
		t.Fatalf("Failed to list optimizer runs: %v", err)
	}

	if len(runs) != 2 || runs[0].Score != 81 {
		t.Errorf("Expected 2 runs newest first, got %+v", runs)
	}

	if db.calls[0].args[1].(int) != 5 {
		t.Errorf("Expected limit 5, got %v", db.calls[0].args[1])
	}
}

func TestResumeSaveAndLatest(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	stored := Resume{
		ID:          uuid.New(),
		UserID:      userID,
		PortfolioID: uuid.New(),
		Version:     3,
		Objects:     []string{userID.String() + "/1740787200-Jane_Doe_Resume.pdf"},
		CreatedAt:   time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	db := &fakeDB{row: resumeRow(stored)}
	repo := NewResumes(db)

	saved, err := repo.Save(ctx, Resume{UserID: userID, PortfolioID: stored.PortfolioID, Version: 3})
	if err != nil {
		t.Fatalf("Failed to save resume: %v", err)
	}

	if saved.Version != 3 {
		t.Errorf("Expected version 3, got %d", saved.Version)
	}

	objects, ok := db.calls[0].args[4].([]string)
	if !ok || objects == nil {
		t.Errorf("Expected a non-nil object list, got %#v", db.calls[0].args[4])
	}

	latest, err := repo.Latest(ctx, userID)
	if err != nil {
		t.Fatalf("Failed to load latest resume: %v", err)
	}

	if len(latest.Objects) != 1 || latest.Objects[0] != stored.Objects[0] {
		t.Errorf("Expected objects %v, got %v", stored.Objects, latest.Objects)
	}

	db.row = fakeRow{err: ErrNotFound}
	_, err = repo.Latest(ctx, userID)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

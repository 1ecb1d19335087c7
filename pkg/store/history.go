package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// defaultHistoryLimit caps list queries when the caller passes no limit.
const defaultHistoryLimit = 20

// JobHash identifies a job description independent of surrounding whitespace
// and case, so repeated runs against the same posting can be matched.
func JobHash(jobDescription string) (hash string) {
	normalized := strings.ToLower(strings.Join(strings.Fields(jobDescription), " "))
	sum := sha256.Sum256([]byte(normalized))
	hash = hex.EncodeToString(sum[:])
	return hash
}

// collect drains rows through scan.
func collect[T any](rows Rows, scan func(Row) (T, error)) (items []T, err error) {
	defer rows.Close()

	for rows.Next() {
		var item T
		item, err = scan(rows)
		if err != nil {
			return items, err
		}
		items = append(items, item)
	}

	err = rows.Err()
	return items, err
}

func historyLimit(limit int) int {
	if limit <= 0 {
		return defaultHistoryLimit
	}
	return limit
}

// CoverLetter is a saved cover letter.
type CoverLetter struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"user_id"`
	JobHash        string    `json:"job_hash"`
	JobDescription string    `json:"job_description"`
	Tone           string    `json:"tone"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

const coverLetterColumns = `id, user_id, job_hash, job_description, tone, content, created_at`

// CoverLetters is the cover letter history.
type CoverLetters struct {
	db DB
}

// NewCoverLetters creates a repository on db.
func NewCoverLetters(db DB) (repo *CoverLetters) {
	repo = &CoverLetters{db: db}
	return repo
}

func scanCoverLetter(row Row) (l CoverLetter, err error) {
	err = row.Scan(&l.ID, &l.UserID, &l.JobHash, &l.JobDescription, &l.Tone, &l.Content, &l.CreatedAt)
	return l, err
}

// Save appends a letter to the user's history.
func (r *CoverLetters) Save(ctx context.Context, l CoverLetter) (saved CoverLetter, err error) {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.JobHash == "" {
		l.JobHash = JobHash(l.JobDescription)
	}

	row := r.db.QueryRow(ctx,
		`INSERT INTO cover_letters (id, user_id, job_hash, job_description, tone, content, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, now())
		 RETURNING `+coverLetterColumns,
		l.ID, l.UserID, l.JobHash, l.JobDescription, l.Tone, l.Content)

	saved, err = scanCoverLetter(row)
	if err != nil {
		err = errors.Wrapf(err, "failed to save cover letter for user %s", l.UserID)
	}
	return saved, err
}

// ListByUser returns the user's letters, newest first.
func (r *CoverLetters) ListByUser(ctx context.Context, userID uuid.UUID, limit int) (letters []CoverLetter, err error) {
	var rows Rows
	rows, err = r.db.Query(ctx,
		`SELECT `+coverLetterColumns+` FROM cover_letters WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`,
		userID, historyLimit(limit))
	if err != nil {
		err = errors.Wrapf(err, "failed to list cover letters for user %s", userID)
		return letters, err
	}

	letters, err = collect(rows, scanCoverLetter)
	if err != nil {
		err = errors.Wrapf(err, "failed to list cover letters for user %s", userID)
	}
	return letters, err
}

// OptimizerRun is one saved ATS scoring result.
type OptimizerRun struct {
	ID             uuid.UUID       `json:"id"`
	UserID         uuid.UUID       `json:"user_id"`
	JobHash        string          `json:"job_hash"`
	JobDescription string          `json:"job_description"`
	Score          int             `json:"score"`
	Result         json.RawMessage `json:"result"`
	CreatedAt      time.Time       `json:"created_at"`
}

const optimizerRunColumns = `id, user_id, job_hash, job_description, score, result, created_at`

// OptimizerRuns is the ATS scoring history. Earlier runs against the same job
// give the user a baseline to compare a revised profile with.
type OptimizerRuns struct {
	db DB
}

// NewOptimizerRuns creates a repository on db.
func NewOptimizerRuns(db DB) (repo *OptimizerRuns) {
	repo = &OptimizerRuns{db: db}
	return repo
}

func scanOptimizerRun(row Row) (run OptimizerRun, err error) {
	var data []byte
	err = row.Scan(&run.ID, &run.UserID, &run.JobHash, &run.JobDescription, &run.Score, &data, &run.CreatedAt)
	run.Result = data
	return run, err
}

// Save appends a run to the user's history.
func (r *OptimizerRuns) Save(ctx context.Context, run OptimizerRun) (saved OptimizerRun, err error) {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.JobHash == "" {
		run.JobHash = JobHash(run.JobDescription)
	}
	if len(run.Result) == 0 {
		run.Result = json.RawMessage(`{}`)
	}

	row := r.db.QueryRow(ctx,
		`INSERT INTO optimizer_runs (id, user_id, job_hash, job_description, score, result, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, now())
		 RETURNING `+optimizerRunColumns,
		run.ID, run.UserID, run.JobHash, run.JobDescription, run.Score, []byte(run.Result))

	saved, err = scanOptimizerRun(row)
	if err != nil {
		err = errors.Wrapf(err, "failed to save optimizer run for user %s", run.UserID)
	}
	return saved, err
}

// ListByUser returns the user's runs, newest first.
func (r *OptimizerRuns) ListByUser(ctx context.Context, userID uuid.UUID, limit int) (runs []OptimizerRun, err error) {
	var rows Rows
	rows, err = r.db.Query(ctx,
		`SELECT `+optimizerRunColumns+` FROM optimizer_runs WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`,
		userID, historyLimit(limit))
	if err != nil {
		err = errors.Wrapf(err, "failed to list optimizer runs for user %s", userID)
		return runs, err
	}

	runs, err = collect(rows, scanOptimizerRun)
	if err != nil {
		err = errors.Wrapf(err, "failed to list optimizer runs for user %s", userID)
	}
	return runs, err
}

// LatestForJob returns the user's most recent run against the same job
// description, or ErrNotFound.
func (r *OptimizerRuns) LatestForJob(ctx context.Context, userID uuid.UUID, jobDescription string) (run OptimizerRun, err error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+optimizerRunColumns+` FROM optimizer_runs
		 WHERE user_id = $1 AND job_hash = $2
		 ORDER BY created_at DESC LIMIT 1`,
		userID, JobHash(jobDescription))

	run, err = scanOptimizerRun(row)
	if err != nil {
		err = errors.Wrapf(err, "failed to load previous run for user %s", userID)
	}
	return run, err
}

// Resume records one published résumé version and the object keys its files
// were uploaded under.
type Resume struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	PortfolioID uuid.UUID `json:"portfolio_id"`
	Version     int       `json:"version"`
	Objects     []string  `json:"objects"`
	CreatedAt   time.Time `json:"created_at"`
}

const resumeColumns = `id, user_id, portfolio_id, version, objects, created_at`

// Resumes is the résumé history.
type Resumes struct {
	db DB
}

// NewResumes creates a repository on db.
func NewResumes(db DB) (repo *Resumes) {
	repo = &Resumes{db: db}
	return repo
}

func scanResume(row Row) (res Resume, err error) {
	err = row.Scan(&res.ID, &res.UserID, &res.PortfolioID, &res.Version, &res.Objects, &res.CreatedAt)
	return res, err
}

// Save appends a résumé version.
func (r *Resumes) Save(ctx context.Context, res Resume) (saved Resume, err error) {
	if res.ID == uuid.Nil {
		res.ID = uuid.New()
	}
	if res.Objects == nil {
		res.Objects = []string{}
	}

	row := r.db.QueryRow(ctx,
		`INSERT INTO resumes (id, user_id, portfolio_id, version, objects, created_at)
		 VALUES ($1, $2, $3, $4, $5, now())
		 RETURNING `+resumeColumns,
		res.ID, res.UserID, res.PortfolioID, res.Version, res.Objects)

	saved, err = scanResume(row)
	if err != nil {
		err = errors.Wrapf(err, "failed to save resume for user %s", res.UserID)
	}
	return saved, err
}

// Latest returns the user's newest résumé version or ErrNotFound.
func (r *Resumes) Latest(ctx context.Context, userID uuid.UUID) (res Resume, err error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+resumeColumns+` FROM resumes WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1`,
		userID)

	res, err = scanResume(row)
	if err != nil {
		err = errors.Wrapf(err, "failed to load resume for user %s", userID)
	}
	return res, err
}

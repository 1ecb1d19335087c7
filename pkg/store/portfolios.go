package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Portfolio is the persisted record for one user's published portfolio.
type Portfolio struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user_id"`
	ProfileData json.RawMessage `json:"profile_data"`
	HTML        string          `json:"html_content"`
	Slug        string          `json:"subdomain"`
	Version     int             `json:"version"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

const portfolioColumns = `id, user_id, profile_data, html_content, subdomain, version, updated_at`

// Portfolios is the portfolio repository.
type Portfolios struct {
	db DB
}

// NewPortfolios creates a repository on db.
func NewPortfolios(db DB) (repo *Portfolios) {
	repo = &Portfolios{db: db}
	return repo
}

func scanPortfolio(row Row) (p Portfolio, err error) {
	var data []byte
	err = row.Scan(&p.ID, &p.UserID, &data, &p.HTML, &p.Slug, &p.Version, &p.UpdatedAt)
	p.ProfileData = data
	return p, err
}

// Insert creates a new record. A zero ID is filled in.
func (r *Portfolios) Insert(ctx context.Context, p Portfolio) (saved Portfolio, err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}

	row := r.db.QueryRow(ctx,
		`INSERT INTO portfolios (id, user_id, profile_data, html_content, subdomain, version, updated_at)
		 VALUES ($1, $2, $3, $4, $5, 1, now())
		 RETURNING `+portfolioColumns,
		p.ID, p.UserID, []byte(p.ProfileData), p.HTML, p.Slug)

	saved, err = scanPortfolio(row)
	if err != nil {
		err = errors.Wrap(err, "failed to insert portfolio")
	}
	return saved, err
}

// Update replaces the content of an existing record and bumps its version.
func (r *Portfolios) Update(ctx context.Context, p Portfolio) (saved Portfolio, err error) {
	row := r.db.QueryRow(ctx,
		`UPDATE portfolios
		 SET profile_data = $2, html_content = $3, subdomain = $4, version = version + 1, updated_at = now()
		 WHERE id = $1
		 RETURNING `+portfolioColumns,
		p.ID, []byte(p.ProfileData), p.HTML, p.Slug)

	saved, err = scanPortfolio(row)
	if err != nil {
		err = errors.Wrapf(err, "failed to update portfolio %s", p.ID)
	}
	return saved, err
}

// Upsert writes the user's portfolio, replacing any previous one. Concurrent
// writers resolve last-write-wins.
func (r *Portfolios) Upsert(ctx context.Context, p Portfolio) (saved Portfolio, err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}

	row := r.db.QueryRow(ctx,
		`INSERT INTO portfolios (id, user_id, profile_data, html_content, subdomain, version, updated_at)
		 VALUES ($1, $2, $3, $4, $5, 1, now())
		 ON CONFLICT (user_id) DO UPDATE
		 SET profile_data = EXCLUDED.profile_data,
		     html_content = EXCLUDED.html_content,
		     subdomain = EXCLUDED.subdomain,
		     version = portfolios.version + 1,
		     updated_at = now()
		 RETURNING `+portfolioColumns,
		p.ID, p.UserID, []byte(p.ProfileData), p.HTML, p.Slug)

	saved, err = scanPortfolio(row)
	if err != nil {
		err = errors.Wrapf(err, "failed to save portfolio for user %s", p.UserID)
	}
	return saved, err
}

// GetByUser returns the user's portfolio or ErrNotFound.
func (r *Portfolios) GetByUser(ctx context.Context, userID uuid.UUID) (p Portfolio, err error) {
	row := r.db.QueryRow(ctx, `SELECT `+portfolioColumns+` FROM portfolios WHERE user_id = $1`, userID)

	p, err = scanPortfolio(row)
	if err != nil {
		err = errors.Wrapf(err, "failed to load portfolio for user %s", userID)
	}
	return p, err
}

// GetBySlug returns the portfolio published at slug or ErrNotFound.
func (r *Portfolios) GetBySlug(ctx context.Context, slug string) (p Portfolio, err error) {
	row := r.db.QueryRow(ctx, `SELECT `+portfolioColumns+` FROM portfolios WHERE subdomain = $1 ORDER BY updated_at DESC LIMIT 1`, slug)

	p, err = scanPortfolio(row)
	if err != nil {
		err = errors.Wrapf(err, "failed to load portfolio %q", slug)
	}
	return p, err
}

// List returns portfolios, most recently updated first.
func (r *Portfolios) List(ctx context.Context, limit int) (portfolios []Portfolio, err error) {
	if limit <= 0 {
		limit = 50
	}

	var rows Rows
	rows, err = r.db.Query(ctx, `SELECT `+portfolioColumns+` FROM portfolios ORDER BY updated_at DESC LIMIT $1`, limit)
	if err != nil {
		err = errors.Wrap(err, "failed to list portfolios")
		return portfolios, err
	}
	defer rows.Close()

	for rows.Next() {
		var p Portfolio
		p, err = scanPortfolio(rows)
		if err != nil {
			err = errors.Wrap(err, "failed to read portfolio row")
			return portfolios, err
		}
		portfolios = append(portfolios, p)
	}

	err = rows.Err()
	if err != nil {
		err = errors.Wrap(err, "failed to list portfolios")
	}
	return portfolios, err
}

// Delete removes a portfolio by id.
func (r *Portfolios) Delete(ctx context.Context, id uuid.UUID) (err error) {
	var affected int64
	affected, err = r.db.Exec(ctx, `DELETE FROM portfolios WHERE id = $1`, id)
	if err != nil {
		err = errors.Wrapf(err, "failed to delete portfolio %s", id)
		return err
	}

	if affected == 0 {
		err = errors.Wrapf(ErrNotFound, "portfolio %s", id)
	}
	return err
}

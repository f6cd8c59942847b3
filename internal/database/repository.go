package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-jobharvest/internal/models"
)

// ErrNoActiveSources is returned by PickActiveSource when no source target is
// marked active.
var ErrNoActiveSources = errors.New("no active source targets")

type Repository struct {
	db *pgxpool.Pool
}

func Connect(ctx context.Context, connString string) (*Repository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database url: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour

	// Hosted poolers running PgBouncer in transaction mode break prepared
	// statements, so the statement cache stays off.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	// Ping to ensure connection
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	return &Repository{db: pool}, nil
}

func (r *Repository) Close() {
	if r.db != nil {
		r.db.Close()
	}
}

// EnsureSchema creates the two tables if they are missing. Safe to call on
// every startup.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS sources (
			id           TEXT PRIMARY KEY,
			url          TEXT NOT NULL UNIQUE,
			title        TEXT NOT NULL DEFAULT '',
			is_active    BOOLEAN NOT NULL DEFAULT TRUE,
			created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
			last_used_at TIMESTAMPTZ
		)`)
	if err != nil {
		return fmt.Errorf("create sources table: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS listings (
			id          TEXT PRIMARY KEY,
			title       TEXT NOT NULL,
			company     TEXT NOT NULL DEFAULT '',
			location    TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			link        TEXT NOT NULL UNIQUE,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("create listings table: %w", err)
	}
	return nil
}

// ---------------- SOURCE OPERATIONS ----------------

func (r *Repository) CreateSource(ctx context.Context, url, title string) (*models.SourceTarget, error) {
	var src models.SourceTarget
	query := `
		INSERT INTO sources (id, url, title)
		VALUES ($1, $2, $3)
		RETURNING id, url, title, is_active, created_at, last_used_at`
	err := r.db.QueryRow(ctx, query, uuid.NewString(), url, title).
		Scan(&src.ID, &src.URL, &src.Title, &src.Active, &src.CreatedAt, &src.LastUsedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create source: %w", err)
	}
	return &src, nil
}

func (r *Repository) ListSources(ctx context.Context) ([]models.SourceTarget, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, url, title, is_active, created_at, last_used_at FROM sources ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	defer rows.Close()

	var sources []models.SourceTarget
	for rows.Next() {
		var src models.SourceTarget
		if err := rows.Scan(&src.ID, &src.URL, &src.Title, &src.Active, &src.CreatedAt, &src.LastUsedAt); err != nil {
			return nil, fmt.Errorf("failed to scan source: %w", err)
		}
		sources = append(sources, src)
	}
	return sources, rows.Err()
}

func (r *Repository) SetSourceActive(ctx context.Context, id string, active bool) error {
	tag, err := r.db.Exec(ctx, `UPDATE sources SET is_active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return fmt.Errorf("failed to update source: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("source not found")
	}
	return nil
}

func (r *Repository) DeleteSource(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM sources WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete source: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("source not found")
	}
	return nil
}

// PickActiveSource chooses uniformly at random among active sources. Recency
// and historical yield are deliberately ignored.
func (r *Repository) PickActiveSource(ctx context.Context) (*models.SourceTarget, error) {
	var src models.SourceTarget
	query := `
		SELECT id, url, title, is_active, created_at, last_used_at
		FROM sources
		WHERE is_active = TRUE
		ORDER BY random()
		LIMIT 1`
	err := r.db.QueryRow(ctx, query).
		Scan(&src.ID, &src.URL, &src.Title, &src.Active, &src.CreatedAt, &src.LastUsedAt)
	if err == pgx.ErrNoRows {
		return nil, ErrNoActiveSources
	}
	if err != nil {
		return nil, fmt.Errorf("failed to pick source: %w", err)
	}
	return &src, nil
}

// TouchSourceUsed stamps last_used_at. Called before scraping starts so a
// crash mid-run does not leave the target looking untouched.
func (r *Repository) TouchSourceUsed(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `UPDATE sources SET last_used_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to touch source: %w", err)
	}
	return nil
}

// ---------------- LISTING OPERATIONS ----------------

// InsertListing upserts one listing keyed on link. A link collision is not an
// error: the existing row wins and inserted=false is returned. This is the
// sole deduplication mechanism.
func (r *Repository) InsertListing(ctx context.Context, l models.JobListing) (inserted bool, err error) {
	query := `
		INSERT INTO listings (id, title, company, location, description, link)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (link) DO NOTHING`
	tag, err := r.db.Exec(ctx, query,
		uuid.NewString(), l.Title, l.Company, l.Location, l.Description, l.Link)
	if err != nil {
		return false, fmt.Errorf("failed to insert listing: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *Repository) ListListings(ctx context.Context, limit int) ([]models.JobListing, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, title, company, location, description, link, created_at
		FROM listings
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}
	defer rows.Close()

	var listings []models.JobListing
	for rows.Next() {
		var l models.JobListing
		if err := rows.Scan(&l.ID, &l.Title, &l.Company, &l.Location, &l.Description, &l.Link, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

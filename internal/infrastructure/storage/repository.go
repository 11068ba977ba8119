// Package storage is the SQL record store for ideas, images and availability.
package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	_ "modernc.org/sqlite"

	"TripIdeas/internal/domain"
	"TripIdeas/internal/ports"
)

//go:embed schema.sql
var schema string

// Dialect selects the bind placeholder style.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

var ideaColumns = []string{
	"id", "group_id", "prompt", "month_hint", "budget_tier", "status",
	"palette", "summary", "tags", "created_at", "updated_at",
}

// Repository persists ideas, their images and group availability.
type Repository struct {
	db  *sql.DB
	sb  sq.StatementBuilderType
	now func() time.Time
}

var _ ports.IdeaRepository = (*Repository)(nil)

// NewRepository wires a sql.DB implementation.
func NewRepository(db *sql.DB, dialect Dialect) *Repository {
	var format sq.PlaceholderFormat = sq.Dollar
	if dialect == DialectSQLite {
		format = sq.Question
	}
	return &Repository{
		db:  db,
		sb:  sq.StatementBuilder.PlaceholderFormat(format),
		now: time.Now,
	}
}

// Open connects with the driver registered for dialect.
func Open(dialect Dialect, dsn string) (*sql.DB, error) {
	driver := "postgres"
	if dialect == DialectSQLite {
		driver = "sqlite"
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	return db, nil
}

// Migrate creates missing tables.
func (r *Repository) Migrate(ctx context.Context) error {
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// CreateIdea inserts a new DRAFT idea.
func (r *Repository) CreateIdea(ctx context.Context, idea domain.Idea) error {
	now := r.now().UTC()
	if idea.CreatedAt.IsZero() {
		idea.CreatedAt = now
	}
	if idea.Status == "" {
		idea.Status = domain.StatusDraft
	}

	query, args, err := r.sb.Insert("ideas").Columns(ideaColumns...).Values(
		idea.ID, idea.GroupID, idea.Prompt, nullInt(idea.MonthHint), nullString(idea.BudgetTier),
		string(idea.Status), stringArray(idea.Palette), idea.Summary, stringArray(idea.Tags),
		idea.CreatedAt.UTC(), now,
	).ToSql()
	if err != nil {
		return fmt.Errorf("build insert idea: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert idea %s: %w", idea.ID, err)
	}
	return nil
}

// GetIdea returns domain.ErrNotFound when the idea does not exist.
func (r *Repository) GetIdea(ctx context.Context, id string) (domain.Idea, error) {
	query, args, err := r.sb.Select(ideaColumns...).From("ideas").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return domain.Idea{}, fmt.Errorf("build select idea: %w", err)
	}

	var (
		idea       domain.Idea
		monthHint  sql.NullInt64
		budgetTier sql.NullString
		status     string
		palette    pq.StringArray
		summary    sql.NullString
		tags       pq.StringArray
	)
	err = r.db.QueryRowContext(ctx, query, args...).Scan(
		&idea.ID, &idea.GroupID, &idea.Prompt, &monthHint, &budgetTier, &status,
		&palette, &summary, &tags, &idea.CreatedAt, &idea.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Idea{}, fmt.Errorf("idea %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Idea{}, fmt.Errorf("query idea %s: %w", id, err)
	}

	if monthHint.Valid {
		m := int(monthHint.Int64)
		idea.MonthHint = &m
	}
	idea.BudgetTier = budgetTier.String
	idea.Status = domain.IdeaStatus(status)
	idea.Palette = []string(palette)
	idea.Tags = []string(tags)
	if summary.Valid {
		s := summary.String
		idea.Summary = &s
	}
	return idea, nil
}

// UpdateIdea writes only the non-nil fields of update in one statement.
func (r *Repository) UpdateIdea(ctx context.Context, id string, update domain.IdeaUpdate) error {
	stmt := r.sb.Update("ideas").Set("updated_at", r.now().UTC()).Where(sq.Eq{"id": id})
	if update.Status != nil {
		stmt = stmt.Set("status", string(*update.Status))
	}
	if update.Palette != nil {
		stmt = stmt.Set("palette", pq.StringArray(update.Palette))
	}
	if update.Summary != nil {
		stmt = stmt.Set("summary", *update.Summary)
	}
	if update.Tags != nil {
		stmt = stmt.Set("tags", pq.StringArray(update.Tags))
	}

	query, args, err := stmt.ToSql()
	if err != nil {
		return fmt.Errorf("build update idea: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update idea %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("idea %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// CreateImage inserts one image row. (idea_id, position) is unique.
func (r *Repository) CreateImage(ctx context.Context, image domain.Image) error {
	createdAt := image.CreatedAt
	if createdAt.IsZero() {
		createdAt = r.now()
	}

	query, args, err := r.sb.Insert("idea_images").
		Columns("id", "idea_id", "url", "source", "provider", "position", "created_at").
		Values(image.ID, image.IdeaID, image.URL, string(image.Source), image.Provider, image.Order, createdAt.UTC()).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert image: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert image %s: %w", image.ID, err)
	}
	return nil
}

// ListImages returns images ordered by position.
func (r *Repository) ListImages(ctx context.Context, ideaID string) ([]domain.Image, error) {
	query, args, err := r.sb.Select("id", "idea_id", "url", "source", "provider", "position", "created_at").
		From("idea_images").
		Where(sq.Eq{"idea_id": ideaID}).
		OrderBy("position").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select images: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query images: %w", err)
	}
	defer rows.Close()

	var images []domain.Image
	for rows.Next() {
		var (
			img    domain.Image
			source string
		)
		if err := rows.Scan(&img.ID, &img.IdeaID, &img.URL, &source, &img.Provider, &img.Order, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan image: %w", err)
		}
		img.Source = domain.ImageSource(source)
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return images, nil
}

// AddAvailability upserts one user's score for a month.
func (r *Repository) AddAvailability(ctx context.Context, s domain.AvailabilitySample) error {
	query, args, err := r.sb.Insert("availability").
		Columns("group_id", "user_id", "month", "score").
		Values(s.GroupID, s.UserID, s.Month, s.Score).
		Suffix("ON CONFLICT (group_id, user_id, month) DO UPDATE SET score = excluded.score").
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert availability: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert availability: %w", err)
	}
	return nil
}

// ListAvailability returns every sample recorded for the group.
func (r *Repository) ListAvailability(ctx context.Context, groupID string) ([]domain.AvailabilitySample, error) {
	query, args, err := r.sb.Select("group_id", "user_id", "month", "score").
		From("availability").
		Where(sq.Eq{"group_id": groupID}).
		OrderBy("month", "user_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select availability: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query availability: %w", err)
	}
	defer rows.Close()

	var samples []domain.AvailabilitySample
	for rows.Next() {
		var s domain.AvailabilitySample
		if err := rows.Scan(&s.GroupID, &s.UserID, &s.Month, &s.Score); err != nil {
			return nil, fmt.Errorf("scan availability: %w", err)
		}
		samples = append(samples, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return samples, nil
}

// ListStaleDrafts returns ids of DRAFT ideas created before createdBefore, oldest first.
func (r *Repository) ListStaleDrafts(ctx context.Context, createdBefore time.Time, limit int) ([]string, error) {
	query, args, err := r.sb.Select("id").
		From("ideas").
		Where(sq.Eq{"status": string(domain.StatusDraft)}).
		Where(sq.Lt{"created_at": createdBefore.UTC()}).
		OrderBy("created_at").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select stale drafts: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query stale drafts: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return ids, nil
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

func stringArray(v []string) any {
	if v == nil {
		return nil
	}
	return pq.StringArray(v)
}

package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/J1yann/streamo/internal/model"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("db: not found")

// ErrEmailTaken is returned by CreateUser when the email is already registered.
var ErrEmailTaken = errors.New("db: email already registered")

type Repository struct {
	db *sql.DB
}

func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := applyMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func applyMigrations(db *sql.DB) error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			name TEXT PRIMARY KEY,
			applied_at TEXT NOT NULL
		);
	`); err != nil {
		return err
	}

	entries, err := migrationFS.ReadDir("migrations")
	if err != nil {
		return err
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		var exists int
		checkErr := db.QueryRow(`SELECT 1 FROM schema_migrations WHERE name = ? LIMIT 1;`, entry.Name()).Scan(&exists)
		if checkErr == nil {
			continue
		}
		if checkErr != sql.ErrNoRows {
			return checkErr
		}

		sqlBytes, readErr := migrationFS.ReadFile("migrations/" + entry.Name())
		if readErr != nil {
			return readErr
		}
		if _, execErr := db.Exec(string(sqlBytes)); execErr != nil {
			return fmt.Errorf("apply migration %s: %w", entry.Name(), execErr)
		}
		if _, insertErr := db.Exec(
			`INSERT INTO schema_migrations (name, applied_at) VALUES (?, ?);`,
			entry.Name(),
			time.Now().UTC().Format(time.RFC3339),
		); insertErr != nil {
			return fmt.Errorf("record migration %s: %w", entry.Name(), insertErr)
		}
	}
	return nil
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// ---------- users ------------------------------------------------------------

func (r *Repository) CreateUser(ctx context.Context, email, passwordHash, displayName string) (model.User, error) {
	user := model.User{
		ID:           uuid.NewString(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, display_name, created_at)
		VALUES (?, ?, ?, ?, ?);
	`, user.ID, user.Email, user.PasswordHash, user.DisplayName, user.CreatedAt.Format(time.RFC3339))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return model.User{}, ErrEmailTaken
		}
		return model.User{}, err
	}
	return user, nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	return r.getUser(ctx, `SELECT id, email, password_hash, display_name, created_at FROM users WHERE email = ? LIMIT 1;`, email)
}

func (r *Repository) GetUserByID(ctx context.Context, id string) (model.User, error) {
	return r.getUser(ctx, `SELECT id, email, password_hash, display_name, created_at FROM users WHERE id = ? LIMIT 1;`, id)
}

func (r *Repository) getUser(ctx context.Context, query string, arg any) (model.User, error) {
	var user model.User
	var createdAt string
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.DisplayName,
		&createdAt,
	)
	if err == sql.ErrNoRows {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, err
	}
	user.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return user, nil
}

// ---------- watchlist --------------------------------------------------------

// AddToWatchlist inserts the item for the user. Adding a title that is
// already on the list is a no-op that returns the existing row.
func (r *Repository) AddToWatchlist(ctx context.Context, item model.WatchlistItem) (model.WatchlistItem, error) {
	item.AddedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO watchlist (user_id, media_id, media_type, title, poster_path, backdrop_path, overview, added_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, media_id, media_type) DO NOTHING;
	`,
		item.UserID,
		item.MediaID,
		item.MediaType,
		item.Title,
		item.PosterPath,
		item.BackdropPath,
		item.Overview,
		item.AddedAt.Format(time.RFC3339),
	)
	if err != nil {
		return model.WatchlistItem{}, err
	}
	return r.getWatchlistItem(ctx, item.UserID, item.MediaID, item.MediaType)
}

func (r *Repository) GetWatchlist(ctx context.Context, userID string) ([]model.WatchlistItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, media_id, media_type, title, poster_path, backdrop_path, overview, added_at
		FROM watchlist
		WHERE user_id = ?
		ORDER BY added_at DESC, id DESC;
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.WatchlistItem, 0, 16)
	for rows.Next() {
		var item model.WatchlistItem
		var addedAt string
		if err := rows.Scan(
			&item.ID,
			&item.UserID,
			&item.MediaID,
			&item.MediaType,
			&item.Title,
			&item.PosterPath,
			&item.BackdropPath,
			&item.Overview,
			&addedAt,
		); err != nil {
			return nil, err
		}
		item.AddedAt, _ = time.Parse(time.RFC3339, addedAt)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *Repository) InWatchlist(ctx context.Context, userID string, mediaID int64, mediaType string) (bool, error) {
	var exists int
	err := r.db.QueryRowContext(ctx, `
		SELECT 1 FROM watchlist
		WHERE user_id = ? AND media_id = ? AND media_type = ?
		LIMIT 1;
	`, userID, mediaID, mediaType).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *Repository) RemoveFromWatchlist(ctx context.Context, userID string, mediaID int64, mediaType string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM watchlist
		WHERE user_id = ? AND media_id = ? AND media_type = ?;
	`, userID, mediaID, mediaType)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) getWatchlistItem(ctx context.Context, userID string, mediaID int64, mediaType string) (model.WatchlistItem, error) {
	var item model.WatchlistItem
	var addedAt string
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, media_id, media_type, title, poster_path, backdrop_path, overview, added_at
		FROM watchlist
		WHERE user_id = ? AND media_id = ? AND media_type = ?
		LIMIT 1;
	`, userID, mediaID, mediaType).Scan(
		&item.ID,
		&item.UserID,
		&item.MediaID,
		&item.MediaType,
		&item.Title,
		&item.PosterPath,
		&item.BackdropPath,
		&item.Overview,
		&addedAt,
	)
	if err == sql.ErrNoRows {
		return model.WatchlistItem{}, ErrNotFound
	}
	if err != nil {
		return model.WatchlistItem{}, err
	}
	item.AddedAt, _ = time.Parse(time.RFC3339, addedAt)
	return item, nil
}

// ---------- watch history ----------------------------------------------------

// UpsertHistory records a viewing. A second viewing of the same title
// refreshes watched_at, progress and the season/episode position instead of
// creating another row.
func (r *Repository) UpsertHistory(ctx context.Context, item model.HistoryItem) (model.HistoryItem, error) {
	item.WatchedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO watch_history (user_id, media_id, media_type, title, poster_path, backdrop_path, season, episode, progress, watched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, media_id, media_type) DO UPDATE SET
			season = excluded.season,
			episode = excluded.episode,
			progress = excluded.progress,
			watched_at = excluded.watched_at;
	`,
		item.UserID,
		item.MediaID,
		item.MediaType,
		item.Title,
		item.PosterPath,
		item.BackdropPath,
		nullableInt(item.Season),
		nullableInt(item.Episode),
		nullableFloat(item.Progress),
		item.WatchedAt.Format(time.RFC3339),
	)
	if err != nil {
		return model.HistoryItem{}, err
	}
	return r.getHistoryItem(ctx, item.UserID, item.MediaID, item.MediaType)
}

func (r *Repository) GetHistory(ctx context.Context, userID string, limit int) ([]model.HistoryItem, error) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, media_id, media_type, title, poster_path, backdrop_path, season, episode, progress, watched_at
		FROM watch_history
		WHERE user_id = ?
		ORDER BY watched_at DESC, id DESC
		LIMIT ?;
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.HistoryItem, 0, limit)
	for rows.Next() {
		item, scanErr := scanHistoryRow(rows.Scan)
		if scanErr != nil {
			return nil, scanErr
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// RemoveFromHistory deletes a history row by id, scoped to its owner.
func (r *Repository) RemoveFromHistory(ctx context.Context, userID string, historyID int64) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM watch_history
		WHERE id = ? AND user_id = ?;
	`, historyID, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) getHistoryItem(ctx context.Context, userID string, mediaID int64, mediaType string) (model.HistoryItem, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, media_id, media_type, title, poster_path, backdrop_path, season, episode, progress, watched_at
		FROM watch_history
		WHERE user_id = ? AND media_id = ? AND media_type = ?
		LIMIT 1;
	`, userID, mediaID, mediaType)
	item, err := scanHistoryRow(row.Scan)
	if err == sql.ErrNoRows {
		return model.HistoryItem{}, ErrNotFound
	}
	return item, err
}

func scanHistoryRow(scan func(dest ...any) error) (model.HistoryItem, error) {
	var item model.HistoryItem
	var season, episode sql.NullInt64
	var progress sql.NullFloat64
	var watchedAt string
	if err := scan(
		&item.ID,
		&item.UserID,
		&item.MediaID,
		&item.MediaType,
		&item.Title,
		&item.PosterPath,
		&item.BackdropPath,
		&season,
		&episode,
		&progress,
		&watchedAt,
	); err != nil {
		return model.HistoryItem{}, err
	}
	item.Season = nullableIntFromDB(season)
	item.Episode = nullableIntFromDB(episode)
	if progress.Valid {
		item.Progress = &progress.Float64
	}
	item.WatchedAt, _ = time.Parse(time.RFC3339, watchedAt)
	return item, nil
}

func nullableInt(value *int) any {
	if value == nil {
		return nil
	}
	return *value
}

func nullableFloat(value *float64) any {
	if value == nil {
		return nil
	}
	return *value
}

func nullableIntFromDB(value sql.NullInt64) *int {
	if !value.Valid {
		return nil
	}
	intVal := int(value.Int64)
	return &intVal
}

// Package store owns all database access for contacts, plus the cleanup of
// photo files that contact rows reference. It knows nothing about HTTP; the
// outcome of every operation is either data, nil, or one of the typed errors
// below, which the API layer translates to wire responses.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"gitlab.com/ayan.chowdhury/contact-manager/internal/model"
)

// ErrNotFound is returned when no contact with the requested id exists.
var ErrNotFound = errors.New("contact not found")

// ErrConflict is returned when a write would duplicate an existing contact's
// phone number.
var ErrConflict = errors.New("phone number already exists")

// mysqlDuplicateEntry is the MySQL error number for a unique key violation.
const mysqlDuplicateEntry = 1062

// Store wraps the database handle and the uploads directory.
type Store struct {
	db        *sqlx.DB
	uploadDir string
	log       *zap.SugaredLogger

	// Prepared statements offer a significant speed increase if executed
	// many times.
	insert             *sqlx.Stmt
	selectWhereID      *sqlx.Stmt
	deleteWhereID      *sqlx.Stmt
	selectPhotoWhereID *sqlx.Stmt
}

// New wraps the specified sql database and prepares all hot-path statements.
// The database argument can be a real database for production use or a mock
// database within unit tests. uploadDir is where photo files live; the Store
// deletes files from it when contacts are deleted or get a new photo.
func New(sqlDB *sql.DB, uploadDir string, log *zap.SugaredLogger) (*Store, error) {
	s := &Store{
		db:        sqlx.NewDb(sqlDB, "mysql"),
		uploadDir: uploadDir,
		log:       log,
	}
	var err error
	s.insert, err = s.db.Preparex(`
		INSERT INTO contacts (name, country, phone_number, email, dob, photo, relationship, address)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, fmt.Errorf("store: prepare insert: %w", err)
	}
	s.selectWhereID, err = s.db.Preparex(`
		SELECT * FROM contacts WHERE id = ?
	`)
	if err != nil {
		return nil, fmt.Errorf("store: prepare select: %w", err)
	}
	s.deleteWhereID, err = s.db.Preparex(`
		DELETE FROM contacts WHERE id = ?
	`)
	if err != nil {
		return nil, fmt.Errorf("store: prepare delete: %w", err)
	}
	s.selectPhotoWhereID, err = s.db.Preparex(`
		SELECT photo FROM contacts WHERE id = ?
	`)
	if err != nil {
		return nil, fmt.Errorf("store: prepare select photo: %w", err)
	}
	return s, nil
}

// List returns every contact in primary-key order. An empty table yields an
// empty slice, never nil, so the API serializes it as [].
func (s *Store) List(ctx context.Context) ([]model.Contact, error) {
	contacts := []model.Contact{}
	if err := s.db.SelectContext(ctx, &contacts, `SELECT * FROM contacts`); err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	return contacts, nil
}

// GetByID returns the contact with the specified id, or ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id int64) (*model.Contact, error) {
	var contact model.Contact
	err := s.selectWhereID.GetContext(ctx, &contact, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get %d: %w", id, err)
	}
	return &contact, nil
}

// Create inserts a new contact and returns its assigned id. The phone number
// must not be in use by any existing contact; isFavorite starts out false.
//
// The COUNT pre-check exists to give callers a fast, friendly Conflict before
// the write. The unique key on phone_number remains the source of truth: a
// concurrent insert that slips past the pre-check surfaces as a duplicate-key
// error and is reported as ErrConflict all the same.
func (s *Store) Create(ctx context.Context, p model.ContactParams) (int64, error) {
	var count int64
	err := s.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM contacts WHERE phone_number = ?`, p.PhoneNumber)
	if err != nil {
		return 0, fmt.Errorf("store: create pre-check: %w", err)
	}
	if count > 0 {
		return 0, ErrConflict
	}

	result, err := s.insert.ExecContext(ctx,
		p.Name, p.Country, p.PhoneNumber, p.Email, p.Dob, p.PhotoURL, p.Relationship, p.Address)
	if isDuplicateEntry(err) {
		return 0, ErrConflict
	}
	if err != nil {
		return 0, fmt.Errorf("store: insert: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store: insert id: %w", err)
	}
	return id, nil
}

// Update overwrites the writable fields of the contact with the specified id.
// The phone number must not collide with a different contact. When p.PhotoURL
// is nil the stored photo reference is preserved via COALESCE; when it is set,
// the previously stored photo file is removed before the row is written.
func (s *Store) Update(ctx context.Context, id int64, p model.ContactParams) error {
	var count int64
	err := s.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM contacts WHERE phone_number = ? AND id != ?`, p.PhoneNumber, id)
	if err != nil {
		return fmt.Errorf("store: update pre-check: %w", err)
	}
	if count > 0 {
		return ErrConflict
	}

	if p.PhotoURL != nil {
		s.removePhotoFile(ctx, id)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE contacts
		SET name = ?, country = ?, phone_number = ?, email = ?, dob = ?,
			photo = COALESCE(?, photo), relationship = ?, address = ?
		WHERE id = ?`,
		p.Name, p.Country, p.PhoneNumber, p.Email, p.Dob, p.PhotoURL, p.Relationship, p.Address, id)
	if isDuplicateEntry(err) {
		return ErrConflict
	}
	if err != nil {
		return fmt.Errorf("store: update %d: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: update %d: %w", id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the contact with the specified id. If the contact references
// a photo, the backing file is removed first; a failing file removal is
// logged and never blocks the row deletion.
func (s *Store) Delete(ctx context.Context, id int64) error {
	s.removePhotoFile(ctx, id)

	result, err := s.deleteWhereID.ExecContext(ctx, id)
	if err != nil {
		return fmt.Errorf("store: delete %d: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: delete %d: %w", id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetFavorite flips only the isFavorite flag of the contact with the
// specified id. Repeating the same call is a no-op.
func (s *Store) SetFavorite(ctx context.Context, id int64, favorite bool) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE contacts SET isFavorite = ? WHERE id = ?`, favorite, id)
	if err != nil {
		return fmt.Errorf("store: set favorite %d: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: set favorite %d: %w", id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DashboardStats computes the aggregate numbers for the home view, relative
// to the specified reference time.
//
// Birthdays are compared by month and day only, as '%m-%d' strings on the
// database side. The "next 7 days" count uses a lexicographic BETWEEN over
// those strings and therefore misses birthdays across a year boundary (a
// range started in late December never reaches January). Callers comparing
// with the historical behavior rely on that, so it stays.
func (s *Store) DashboardStats(ctx context.Context, now time.Time) (*model.DashboardStats, error) {
	stats := &model.DashboardStats{
		BirthdaysToday:     []model.ContactSummary{},
		BirthdaysThisMonth: []model.ContactSummary{},
		FavoriteContacts:   []model.ContactSummary{},
	}

	if err := s.db.GetContext(ctx, &stats.TotalContacts,
		`SELECT COUNT(*) FROM contacts`); err != nil {
		return nil, fmt.Errorf("store: stats total: %w", err)
	}

	today := now.Format("01-02")
	if err := s.db.SelectContext(ctx, &stats.BirthdaysToday, `
		SELECT id, name, phone_number FROM contacts
		WHERE DATE_FORMAT(dob, '%m-%d') = ?`, today); err != nil {
		return nil, fmt.Errorf("store: stats today: %w", err)
	}

	if err := s.db.SelectContext(ctx, &stats.BirthdaysThisMonth, `
		SELECT id, name, phone_number FROM contacts
		WHERE MONTH(dob) = ?`, int(now.Month())); err != nil {
		return nil, fmt.Errorf("store: stats month: %w", err)
	}

	weekAhead := now.AddDate(0, 0, 7).Format("01-02")
	if err := s.db.GetContext(ctx, &stats.BirthdaysNext7Days, `
		SELECT COUNT(*) FROM contacts
		WHERE DATE_FORMAT(dob, '%m-%d') BETWEEN ? AND ?`, today, weekAhead); err != nil {
		return nil, fmt.Errorf("store: stats week: %w", err)
	}

	if err := s.db.SelectContext(ctx, &stats.FavoriteContacts, `
		SELECT id, name, phone_number FROM contacts
		WHERE isFavorite = TRUE LIMIT 5`); err != nil {
		return nil, fmt.Errorf("store: stats favorites: %w", err)
	}

	return stats, nil
}

// Close releases the prepared statements and the connection pool.
func (s *Store) Close() error {
	for _, stmt := range []*sqlx.Stmt{s.insert, s.selectWhereID, s.deleteWhereID, s.selectPhotoWhereID} {
		if stmt != nil {
			_ = stmt.Close()
		}
	}
	return s.db.Close()
}

// removePhotoFile deletes the photo file referenced by the contact with the
// specified id, if any. Failures are logged, never returned: filesystem state
// must not decide the fate of a row operation.
func (s *Store) removePhotoFile(ctx context.Context, id int64) {
	var photo sql.NullString
	err := s.selectPhotoWhereID.GetContext(ctx, &photo, id)
	if errors.Is(err, sql.ErrNoRows) {
		return
	}
	if err != nil {
		s.log.Warnw("could not look up photo for cleanup", "id", id, "error", err)
		return
	}
	if !photo.Valid || photo.String == "" {
		return
	}
	// The column holds a relative URL such as /uploads/169...jpg; only the
	// final element names the stored file.
	file := filepath.Join(s.uploadDir, path.Base(photo.String))
	if err := os.Remove(file); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.log.Warnw("could not remove photo file", "id", id, "file", file, "error", err)
	}
}

// isDuplicateEntry reports whether err is a MySQL unique key violation.
func isDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry
}

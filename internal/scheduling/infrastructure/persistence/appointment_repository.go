package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/meditrack/internal/scheduling/domain"
	"github.com/felixgeelhaar/meditrack/internal/shared/infrastructure/crypto"
	"github.com/felixgeelhaar/meditrack/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

const appointmentColumns = `CAST(id AS TEXT), CAST(patient_id AS TEXT), CAST(doctor_id AS TEXT),
	start_at, duration_minutes, status, notes, version, created_at, updated_at`

// SQLAppointmentRepository implements domain.AppointmentRepository for SQLite
// and PostgreSQL.
type SQLAppointmentRepository struct {
	conn   database.Connection
	driver database.Driver
	notes  *crypto.FieldCipher
}

// Option configures a SQLAppointmentRepository.
type Option func(*SQLAppointmentRepository)

// WithNotesCipher encrypts the notes column. Notes stored in plaintext
// earlier are still read.
func WithNotesCipher(c *crypto.FieldCipher) Option {
	return func(r *SQLAppointmentRepository) {
		r.notes = c
	}
}

// NewSQLAppointmentRepository creates a repository over conn.
func NewSQLAppointmentRepository(conn database.Connection, opts ...Option) *SQLAppointmentRepository {
	r := &SQLAppointmentRepository{conn: conn, driver: conn.Driver()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *SQLAppointmentRepository) exec(ctx context.Context) database.Executor {
	return database.ExecutorFromContext(ctx, r.conn)
}

func (r *SQLAppointmentRepository) q(query string) string {
	return database.Rebind(r.driver, query)
}

// Save upserts the appointment. An update only applies while the stored
// version still matches the aggregate's.
func (r *SQLAppointmentRepository) Save(ctx context.Context, a *domain.Appointment) error {
	query := r.q(`
		INSERT INTO appointments (
			id, patient_id, doctor_id, start_at, duration_minutes,
			status, notes, version, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			start_at = excluded.start_at,
			duration_minutes = excluded.duration_minutes,
			status = excluded.status,
			notes = excluded.notes,
			version = appointments.version + 1,
			updated_at = excluded.updated_at
		WHERE appointments.version = ?
		RETURNING version`)

	notes, err := r.sealNotes(a.Notes())
	if err != nil {
		return fmt.Errorf("save appointment %s: %w", a.ID(), err)
	}

	var stored int
	err = r.exec(ctx).QueryRow(ctx, query,
		a.ID().String(),
		a.PatientID().String(),
		a.DoctorID().String(),
		database.TimeArg(r.driver, a.Start()),
		a.DurationMinutes(),
		string(a.Status()),
		notes,
		a.Version()+1,
		database.TimeArg(r.driver, a.CreatedAt()),
		database.TimeArg(r.driver, a.UpdatedAt()),
		a.Version(),
	).Scan(&stored)
	if err != nil {
		if database.IsNoRows(err) {
			return fmt.Errorf("%w: %s", domain.ErrVersionConflict, a.ID())
		}
		return fmt.Errorf("save appointment %s: %w", a.ID(), err)
	}

	a.IncrementVersion()
	return nil
}

func (r *SQLAppointmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Appointment, error) {
	row := r.exec(ctx).QueryRow(ctx, r.q(`SELECT `+appointmentColumns+`
		FROM appointments WHERE id = ?`), id.String())

	a, err := r.scan(row)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}

func (r *SQLAppointmentRepository) FindByDoctor(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]*domain.Appointment, error) {
	return r.list(ctx, `doctor_id = ? AND start_at >= ? AND start_at < ?`,
		doctorID.String(), database.TimeArg(r.driver, from), database.TimeArg(r.driver, to))
}

func (r *SQLAppointmentRepository) FindByPatient(ctx context.Context, patientID uuid.UUID, from, to time.Time) ([]*domain.Appointment, error) {
	return r.list(ctx, `patient_id = ? AND start_at >= ? AND start_at < ?`,
		patientID.String(), database.TimeArg(r.driver, from), database.TimeArg(r.driver, to))
}

func (r *SQLAppointmentRepository) FindInRange(ctx context.Context, from, to time.Time) ([]*domain.Appointment, error) {
	return r.list(ctx, `start_at >= ? AND start_at < ?`,
		database.TimeArg(r.driver, from), database.TimeArg(r.driver, to))
}

func (r *SQLAppointmentRepository) list(ctx context.Context, where string, args ...any) ([]*domain.Appointment, error) {
	rows, err := r.exec(ctx).Query(ctx, r.q(`SELECT `+appointmentColumns+`
		FROM appointments WHERE `+where+`
		ORDER BY start_at, id`), args...)
	if err != nil {
		return nil, fmt.Errorf("query appointments: %w", err)
	}
	defer rows.Close()

	var out []*domain.Appointment
	for rows.Next() {
		a, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *SQLAppointmentRepository) sealNotes(notes string) (string, error) {
	if r.notes == nil {
		return notes, nil
	}
	return r.notes.Seal(notes)
}

func (r *SQLAppointmentRepository) scan(row database.Row) (*domain.Appointment, error) {
	var (
		id, patientID, doctorID string
		start, created, updated database.Time
		duration, version       int
		status, notes           string
	)
	if err := row.Scan(&id, &patientID, &doctorID, &start, &duration, &status, &notes, &version, &created, &updated); err != nil {
		return nil, err
	}

	ids, err := parseUUIDs(id, patientID, doctorID)
	if err != nil {
		return nil, fmt.Errorf("appointment %s: %w", id, err)
	}
	st, err := domain.ParseStatus(status)
	if err != nil {
		return nil, fmt.Errorf("appointment %s: %w", id, err)
	}
	if r.notes != nil {
		if notes, err = r.notes.Open(notes); err != nil {
			return nil, fmt.Errorf("appointment %s notes: %w", id, err)
		}
	} else if crypto.IsSealed(notes) {
		return nil, fmt.Errorf("appointment %s: notes are encrypted and NOTES_ENCRYPTION_KEY is not set", id)
	}

	return domain.RehydrateAppointment(
		ids[0], ids[1], ids[2],
		start.Time,
		duration,
		st,
		notes,
		version,
		created.Time, updated.Time,
	), nil
}

func parseUUIDs(values ...string) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, len(values))
	for i, v := range values {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, err
		}
		out[i] = id
	}
	return out, nil
}

package app

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"speaker-booking/internal/booking"
	"speaker-booking/internal/calendar"
)

//go:embed schema.sql
var schema string

// PGStore is the Postgres speaker directory.
type PGStore struct {
	DB *pgxpool.Pool
}

// Migrate creates the tables if they are missing.
func (s *PGStore) Migrate(ctx context.Context) error {
	_, err := s.DB.Exec(ctx, schema)
	return err
}

func (s *PGStore) SearchSpeakers(ctx context.Context, name, speciality string) ([]booking.Speaker, error) {
	name = strings.TrimSpace(name)
	out := []booking.Speaker{}
	if name == "" && speciality == "" {
		return out, nil
	}

	q := `SELECT id::text, name, email, speciality
	      FROM speakers
	      WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')
	        AND ($2 = '' OR speciality = $2)
	      ORDER BY name
	      LIMIT 50`
	rows, err := s.DB.Query(ctx, q, name, speciality)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var sp booking.Speaker
		if err := rows.Scan(&sp.ID, &sp.Name, &sp.Email, &sp.Speciality); err != nil {
			return nil, err
		}
		out = append(out, sp)
	}
	return out, rows.Err()
}

func (s *PGStore) SpeakerProfile(ctx context.Context, speakerID string) (booking.Speaker, error) {
	q := `SELECT id::text, name, email, speciality FROM speakers WHERE id::text=$1`
	var sp booking.Speaker
	err := s.DB.QueryRow(ctx, q, speakerID).Scan(&sp.ID, &sp.Name, &sp.Email, &sp.Speciality)
	if errors.Is(err, pgx.ErrNoRows) {
		return booking.Speaker{}, fmt.Errorf("%w: %s", ErrSpeakerNotFound, speakerID)
	}
	if err != nil {
		return booking.Speaker{}, err
	}
	return sp, nil
}

// SlotsGroupedByDate lists every session, flagged booked where speakerID
// already holds an assignment.
func (s *PGStore) SlotsGroupedByDate(ctx context.Context, speakerID string) (calendar.SlotsByDate, error) {
	q := `SELECT s.id::text, to_char(s.session_date, 'YYYY-MM-DD'), s.start_time::text, s.end_time::text,
	             EXISTS (SELECT 1 FROM assignments a WHERE a.session_id = s.id AND a.speaker_id::text = $1)
	      FROM speaker_sessions s
	      ORDER BY s.session_date, s.start_time`
	rows, err := s.DB.Query(ctx, q, speakerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []slotRow
	for rows.Next() {
		var r slotRow
		if err := rows.Scan(&r.SessionID, &r.Date, &r.StartTime, &r.EndTime, &r.Booked); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return groupSlots(out), nil
}

// PersistBooking assigns speakerID to sessionID.
func (s *PGStore) PersistBooking(ctx context.Context, speakerID, sessionID string) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// lock the session so two assignments cannot interleave
	var lockedID string
	err = tx.QueryRow(ctx, `SELECT id::text FROM speaker_sessions WHERE id::text=$1 FOR UPDATE`, sessionID).Scan(&lockedID)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	if err != nil {
		return err
	}

	var existingID string
	checkQ := `SELECT id::text FROM assignments WHERE speaker_id::text=$1 AND session_id::text=$2`
	err = tx.QueryRow(ctx, checkQ, speakerID, sessionID).Scan(&existingID)
	if err == nil {
		return ErrAlreadyAssigned
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	insertQ := `INSERT INTO assignments (id, speaker_id, session_id, created_at)
	            VALUES (gen_random_uuid(), $1::uuid, $2::uuid, now())`
	if _, err := tx.Exec(ctx, insertQ, speakerID, sessionID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

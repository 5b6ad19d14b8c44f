package ledger

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"fallvision-alarm/internal/models"

	"go.uber.org/zap"
)

// PostgresStore mirrors the ledger into a notifications table. The ledger's
// persistence model is a full write-through rewrite of the (bounded)
// history, so Save replaces the table contents within one transaction.
type PostgresStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresStore creates a Postgres-backed store.
func NewPostgresStore(db *sql.DB, logger *zap.Logger) *PostgresStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostgresStore{
		db:     db,
		logger: logger,
	}
}

// Load reads the full notification history in insertion order.
func (s *PostgresStore) Load() ([]models.Notification, error) {
	query := `
		SELECT
			id,
			type,
			patient_id,
			guardian_ids,
			alert_level,
			message,
			method,
			status,
			acknowledged_by,
			acknowledged_at,
			sent_at,
			payload
		FROM notifications
		ORDER BY seq
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	entries := []models.Notification{}
	for rows.Next() {
		var n models.Notification
		var guardianIDs, payload []byte
		var acknowledgedBy sql.NullString
		var acknowledgedAt sql.NullTime

		err := rows.Scan(
			&n.ID,
			&n.Type,
			&n.PatientID,
			&guardianIDs,
			&n.AlertLevel,
			&n.Message,
			&n.Method,
			&n.Status,
			&acknowledgedBy,
			&acknowledgedAt,
			&n.Timestamp,
			&payload,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}

		if len(guardianIDs) > 0 {
			if err := json.Unmarshal(guardianIDs, &n.GuardianIDs); err != nil {
				return nil, fmt.Errorf("failed to parse guardian_ids: %w", err)
			}
		}
		if acknowledgedBy.Valid {
			n.AcknowledgedBy = &acknowledgedBy.String
		}
		if acknowledgedAt.Valid {
			n.AcknowledgedAt = &acknowledgedAt.Time
		}
		if len(payload) > 0 {
			n.Payload = payload
		}

		entries = append(entries, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notifications: %w", err)
	}

	return entries, nil
}

// Save replaces the stored history with the given entries.
func (s *PostgresStore) Save(entries []models.Notification) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM notifications`); err != nil {
		return fmt.Errorf("failed to clear notifications: %w", err)
	}

	query := `
		INSERT INTO notifications (
			seq,
			id,
			type,
			patient_id,
			guardian_ids,
			alert_level,
			message,
			method,
			status,
			acknowledged_by,
			acknowledged_at,
			sent_at,
			payload
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		)
	`

	for i, n := range entries {
		guardianIDs, err := json.Marshal(n.GuardianIDs)
		if err != nil {
			return fmt.Errorf("failed to marshal guardian_ids: %w", err)
		}

		payload := []byte(n.Payload)
		if len(payload) == 0 {
			payload = []byte("{}")
		}

		var acknowledgedBy sql.NullString
		if n.AcknowledgedBy != nil {
			acknowledgedBy = sql.NullString{String: *n.AcknowledgedBy, Valid: true}
		}
		var acknowledgedAt sql.NullTime
		if n.AcknowledgedAt != nil {
			acknowledgedAt = sql.NullTime{Time: *n.AcknowledgedAt, Valid: true}
		}

		_, err = tx.Exec(query,
			i,
			n.ID,
			n.Type,
			n.PatientID,
			guardianIDs,
			n.AlertLevel,
			n.Message,
			n.Method,
			n.Status,
			acknowledgedBy,
			acknowledgedAt,
			n.Timestamp,
			payload,
		)
		if err != nil {
			return fmt.Errorf("failed to insert notification %s: %w", n.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit notifications: %w", err)
	}
	return nil
}

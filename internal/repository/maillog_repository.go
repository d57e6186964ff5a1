package repository

import (
	"database/sql"
	"time"

	"github.com/unclebandit/mailpanel-backend/internal/model"
)

// MailLogRepositoryInterface defines what the delivery side and the
// scheduled-send worker need from the sent-mail log.
type MailLogRepositoryInterface interface {
	Insert(rec *model.MailRecord) error
	GetByID(id int) (*model.MailRecord, error)
	MarkSent(id int) error
	MarkFailed(id int, lastError string) error
	CountBetween(startDate, endDate string) (int, error)
	ListBetween(startDate, endDate string) ([]model.MailRecord, error)
	DueScheduled(now time.Time) ([]model.MailRecord, error)
}

type MailLogRepository struct {
	DB *sql.DB
}

func (r *MailLogRepository) Insert(rec *model.MailRecord) error {
	rec.CreatedAt = time.Now()
	query := `
        INSERT INTO mail_log (recipient, subject, body, attachment_name, status, last_error, scheduled_at, sent_at, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id
    `
	return r.DB.QueryRow(query,
		rec.Recipient, rec.Subject, rec.Body, rec.AttachmentName,
		rec.Status, rec.LastError, rec.ScheduledAt, rec.SentAt, rec.CreatedAt,
	).Scan(&rec.ID)
}

func (r *MailLogRepository) GetByID(id int) (*model.MailRecord, error) {
	query := `
        SELECT id, recipient, subject, body, attachment_name, status, last_error, scheduled_at, sent_at, created_at
        FROM mail_log WHERE id=$1
    `
	var rec model.MailRecord
	err := r.DB.QueryRow(query, id).Scan(
		&rec.ID, &rec.Recipient, &rec.Subject, &rec.Body, &rec.AttachmentName,
		&rec.Status, &rec.LastError, &rec.ScheduledAt, &rec.SentAt, &rec.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (r *MailLogRepository) MarkSent(id int) error {
	query := `UPDATE mail_log SET status='sent', last_error='', sent_at=NOW() WHERE id=$1`
	_, err := r.DB.Exec(query, id)
	return err
}

func (r *MailLogRepository) MarkFailed(id int, lastError string) error {
	query := `UPDATE mail_log SET status='failed', last_error=$1 WHERE id=$2`
	_, err := r.DB.Exec(query, lastError, id)
	return err
}

func (r *MailLogRepository) CountBetween(startDate, endDate string) (int, error) {
	query := `
        SELECT COUNT(*) FROM mail_log
        WHERE status='sent' AND sent_at::date BETWEEN $1 AND $2
    `
	var count int
	err := r.DB.QueryRow(query, startDate, endDate).Scan(&count)
	return count, err
}

func (r *MailLogRepository) ListBetween(startDate, endDate string) ([]model.MailRecord, error) {
	query := `
        SELECT id, recipient, subject, body, attachment_name, status, last_error, scheduled_at, sent_at, created_at
        FROM mail_log
        WHERE status='sent' AND sent_at::date BETWEEN $1 AND $2
        ORDER BY sent_at
    `
	rows, err := r.DB.Query(query, startDate, endDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []model.MailRecord{}
	for rows.Next() {
		var rec model.MailRecord
		if err := rows.Scan(
			&rec.ID, &rec.Recipient, &rec.Subject, &rec.Body, &rec.AttachmentName,
			&rec.Status, &rec.LastError, &rec.ScheduledAt, &rec.SentAt, &rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// DueScheduled lists scheduled mail whose time has come. The worker's
// sweep picks up anything the queue delivery missed.
func (r *MailLogRepository) DueScheduled(now time.Time) ([]model.MailRecord, error) {
	query := `
        SELECT id, recipient, subject, body, attachment_name, status, last_error, scheduled_at, sent_at, created_at
        FROM mail_log
        WHERE status='scheduled' AND scheduled_at <= $1
        ORDER BY scheduled_at
    `
	rows, err := r.DB.Query(query, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []model.MailRecord{}
	for rows.Next() {
		var rec model.MailRecord
		if err := rows.Scan(
			&rec.ID, &rec.Recipient, &rec.Subject, &rec.Body, &rec.AttachmentName,
			&rec.Status, &rec.LastError, &rec.ScheduledAt, &rec.SentAt, &rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

var _ MailLogRepositoryInterface = (*MailLogRepository)(nil)

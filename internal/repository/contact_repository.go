package repository

import (
	"database/sql"

	"github.com/unclebandit/mailpanel-backend/internal/model"
)

// ContactRepositoryInterface defines methods used by the contact endpoints
type ContactRepositoryInterface interface {
	ListAll() ([]model.Contact, error)
	Search(keyword string) ([]model.Contact, error)
}

// ContactRepository is the concrete implementation
type ContactRepository struct {
	DB *sql.DB
}

// ListAll fetches every contact, newest first
func (r *ContactRepository) ListAll() ([]model.Contact, error) {
	query := `
        SELECT id, name, email, description
        FROM email_contacts
        ORDER BY id DESC
    `
	rows, err := r.DB.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := []model.Contact{}
	for rows.Next() {
		var c model.Contact
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Description); err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

// Search matches name or email, case-insensitive
func (r *ContactRepository) Search(keyword string) ([]model.Contact, error) {
	query := `
        SELECT id, name, email, description
        FROM email_contacts
        WHERE name ILIKE '%' || $1 || '%' OR email ILIKE '%' || $1 || '%'
        ORDER BY name
    `
	rows, err := r.DB.Query(query, keyword)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := []model.Contact{}
	for rows.Next() {
		var c model.Contact
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Description); err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

var _ ContactRepositoryInterface = (*ContactRepository)(nil)

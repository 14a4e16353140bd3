package store

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// VisitStatus represents the processing state of a visit's application.
type VisitStatus string

const (
	// StatusInProgress means the application is being processed.
	StatusInProgress VisitStatus = "In Progress"
	// StatusCompleted means the application was resolved.
	StatusCompleted VisitStatus = "Completed"
	// StatusPending means the citizen must act before processing continues.
	StatusPending VisitStatus = "Pending"
)

// Visit records one citizen visit to a government department.
type Visit struct {
	ID                  string      `json:"id"`
	ICNumber            string      `json:"ic_number"`
	Location            string      `json:"location"`
	Department          string      `json:"department"`
	VisitedAt           time.Time   `json:"visited_at"`
	Application         string      `json:"application"`
	Queue               string      `json:"queue"`
	Status              VisitStatus `json:"status"`
	DocumentsRequested  []string    `json:"documents_requested"`
	DocumentsSubmitted  []string    `json:"documents_submitted"`
	HandlingTimeMinutes int         `json:"handling_time_minutes"`
	OfficerNotes        string      `json:"officer_notes"`
	PhrasesDetected     []string    `json:"phrases_detected"`
	FollowUpRequired    bool        `json:"follow_up_required"`
	FollowUpDate        string      `json:"follow_up_date"`
}

// DepartmentalLog is an inter-departmental activity entry tied to a citizen.
type DepartmentalLog struct {
	ID                int64     `json:"id"`
	ICNumber          string    `json:"ic_number"`
	Department        string    `json:"department"`
	LoggedAt          time.Time `json:"logged_at"`
	ActionType        string    `json:"action_type"`
	Summary           string    `json:"summary"`
	RelatedDocuments  []string  `json:"related_documents"`
	OfficerDepartment string    `json:"officer_department"`
}

// VisitRepository provides CRUD operations for visits and departmental logs.
type VisitRepository struct {
	db *sql.DB
}

// Visits returns the visit repository for this store.
func (s *Store) Visits() *VisitRepository {
	return &VisitRepository{db: s.db}
}

// Create inserts a new visit into the database. An empty ID is assigned a
// fresh UUID.
func (r *VisitRepository) Create(v *Visit) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}

	requested, err := json.Marshal(stringsOrEmpty(v.DocumentsRequested))
	if err != nil {
		return err
	}
	submitted, err := json.Marshal(stringsOrEmpty(v.DocumentsSubmitted))
	if err != nil {
		return err
	}
	phrases, err := json.Marshal(stringsOrEmpty(v.PhrasesDetected))
	if err != nil {
		return err
	}

	_, err = r.db.Exec(
		`INSERT INTO visits (id, ic_number, location, department, visited_at, application, queue, status,
		                     documents_requested, documents_submitted, handling_time_minutes, officer_notes,
		                     phrases_detected, follow_up_required, follow_up_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.ICNumber, v.Location, v.Department, v.VisitedAt, v.Application, v.Queue, string(v.Status),
		string(requested), string(submitted), v.HandlingTimeMinutes, v.OfficerNotes,
		string(phrases), boolToInt(v.FollowUpRequired), v.FollowUpDate,
	)
	return err
}

// ListByIC retrieves all visits for an IC number, most recent first.
func (r *VisitRepository) ListByIC(icNumber string) ([]*Visit, error) {
	rows, err := r.db.Query(
		`SELECT id, ic_number, location, department, visited_at, application, queue, status,
		        documents_requested, documents_submitted, handling_time_minutes, officer_notes,
		        phrases_detected, follow_up_required, follow_up_date
		 FROM visits WHERE ic_number = ? ORDER BY visited_at DESC`,
		icNumber,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var visits []*Visit
	for rows.Next() {
		v := &Visit{}
		var status, requested, submitted, phrases string
		var followUp int

		if err := rows.Scan(&v.ID, &v.ICNumber, &v.Location, &v.Department, &v.VisitedAt, &v.Application,
			&v.Queue, &status, &requested, &submitted, &v.HandlingTimeMinutes, &v.OfficerNotes,
			&phrases, &followUp, &v.FollowUpDate); err != nil {
			return nil, err
		}

		v.Status = VisitStatus(status)
		v.FollowUpRequired = followUp != 0
		if err := json.Unmarshal([]byte(requested), &v.DocumentsRequested); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(submitted), &v.DocumentsSubmitted); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(phrases), &v.PhrasesDetected); err != nil {
			return nil, err
		}

		visits = append(visits, v)
	}

	return visits, rows.Err()
}

// CreateLog inserts a departmental log entry.
func (r *VisitRepository) CreateLog(l *DepartmentalLog) error {
	docs, err := json.Marshal(stringsOrEmpty(l.RelatedDocuments))
	if err != nil {
		return err
	}

	res, err := r.db.Exec(
		`INSERT INTO department_logs (ic_number, department, logged_at, action_type, summary, related_documents, officer_department)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		l.ICNumber, l.Department, l.LoggedAt, l.ActionType, l.Summary, string(docs), l.OfficerDepartment,
	)
	if err != nil {
		return err
	}

	l.ID, err = res.LastInsertId()
	return err
}

// ListLogsByIC retrieves departmental logs for an IC number, most recent
// first.
func (r *VisitRepository) ListLogsByIC(icNumber string) ([]*DepartmentalLog, error) {
	rows, err := r.db.Query(
		`SELECT id, ic_number, department, logged_at, action_type, summary, related_documents, officer_department
		 FROM department_logs WHERE ic_number = ? ORDER BY logged_at DESC`,
		icNumber,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*DepartmentalLog
	for rows.Next() {
		l := &DepartmentalLog{}
		var docs string

		if err := rows.Scan(&l.ID, &l.ICNumber, &l.Department, &l.LoggedAt, &l.ActionType, &l.Summary,
			&docs, &l.OfficerDepartment); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(docs), &l.RelatedDocuments); err != nil {
			return nil, err
		}

		logs = append(logs, l)
	}

	return logs, rows.Err()
}

// stringsOrEmpty normalizes nil to an empty slice so JSON columns never
// store "null".
func stringsOrEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

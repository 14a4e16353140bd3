package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// EmergencyContact is the person to reach on a citizen's behalf.
type EmergencyContact struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
	Phone        string `json:"phone"`
}

// Preferences captures how a citizen prefers to communicate. Free-text
// fields carry nuance like "Optional (prefers when available)".
type Preferences struct {
	CommunicationMethod  string `json:"communication_method"`
	RequiresInterpreter  string `json:"requires_interpreter"`
	SpeechAbility        string `json:"speech_ability"`
	HearingAid           bool   `json:"hearing_aid"`
	LipReading           string `json:"lip_reading"`
	WrittenCommunication string `json:"written_communication"`
	PatienceLevel        string `json:"patience_level"`
	VisualAttention      string `json:"visual_attention"`
	Notes                string `json:"notes"`
}

// Profile is a citizen record keyed by Malaysian IC number.
type Profile struct {
	ICNumber         string           `json:"ic_number"`
	Name             string           `json:"name"`
	Age              int              `json:"age"`
	DisabilityLevel  string           `json:"disability_level"`
	HomeAddress      string           `json:"home_address"`
	Race             string           `json:"race"`
	EmergencyContact EmergencyContact `json:"emergency_contact"`
	Preferences      Preferences      `json:"preferences"`
}

// ProfileRepository provides CRUD operations for citizen profiles.
type ProfileRepository struct {
	db *sql.DB
}

// Profiles returns the profile repository for this store.
func (s *Store) Profiles() *ProfileRepository {
	return &ProfileRepository{db: s.db}
}

// Create inserts a new profile into the database.
func (r *ProfileRepository) Create(p *Profile) error {
	contact, err := json.Marshal(p.EmergencyContact)
	if err != nil {
		return err
	}
	prefs, err := json.Marshal(p.Preferences)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(
		`INSERT INTO profiles (ic_number, name, age, disability_level, home_address, race, emergency_contact, preferences)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ICNumber, p.Name, p.Age, p.DisabilityLevel, p.HomeAddress, p.Race, string(contact), string(prefs),
	)
	return err
}

// GetByIC retrieves a profile by IC number. The lookup is whitespace and
// case insensitive to tolerate scanned input.
func (r *ProfileRepository) GetByIC(icNumber string) (*Profile, error) {
	icNumber = strings.ToUpper(strings.TrimSpace(icNumber))

	p := &Profile{}
	var contact, prefs string

	err := r.db.QueryRow(
		`SELECT ic_number, name, age, disability_level, home_address, race, emergency_contact, preferences
		 FROM profiles WHERE UPPER(ic_number) = ?`,
		icNumber,
	).Scan(&p.ICNumber, &p.Name, &p.Age, &p.DisabilityLevel, &p.HomeAddress, &p.Race, &contact, &prefs)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal([]byte(contact), &p.EmergencyContact); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(prefs), &p.Preferences); err != nil {
		return nil, err
	}

	return p, nil
}

// List retrieves all profiles ordered by IC number.
func (r *ProfileRepository) List() ([]*Profile, error) {
	rows, err := r.db.Query(
		`SELECT ic_number, name, age, disability_level, home_address, race, emergency_contact, preferences
		 FROM profiles ORDER BY ic_number`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*Profile
	for rows.Next() {
		p := &Profile{}
		var contact, prefs string

		if err := rows.Scan(&p.ICNumber, &p.Name, &p.Age, &p.DisabilityLevel, &p.HomeAddress, &p.Race, &contact, &prefs); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(contact), &p.EmergencyContact); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(prefs), &p.Preferences); err != nil {
			return nil, err
		}

		profiles = append(profiles, p)
	}

	return profiles, rows.Err()
}

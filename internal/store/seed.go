package store

import (
	"fmt"
	"time"
)

// Seed loads the demo dataset: four citizen profiles with visit histories
// and departmental activity. It is idempotent; a database that already has
// profiles is left untouched.
func (s *Store) Seed() error {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM profiles`).Scan(&count); err != nil {
		return fmt.Errorf("failed to check seed state: %w", err)
	}
	if count > 0 {
		return nil
	}

	profiles := s.Profiles()
	for _, p := range demoProfiles() {
		if err := profiles.Create(p); err != nil {
			return fmt.Errorf("failed to seed profile %s: %w", p.ICNumber, err)
		}
	}

	visits := s.Visits()
	for _, v := range demoVisits() {
		if err := visits.Create(v); err != nil {
			return fmt.Errorf("failed to seed visit %s: %w", v.ID, err)
		}
	}
	for _, l := range demoLogs() {
		if err := visits.CreateLog(l); err != nil {
			return fmt.Errorf("failed to seed departmental log: %w", err)
		}
	}

	return nil
}

func demoProfiles() []*Profile {
	return []*Profile{
		{
			ICNumber:        "900125-14-0123",
			Name:            "Ahmad bin Abdullah",
			Age:             35,
			DisabilityLevel: "Full Deaf",
			HomeAddress:     "123 Jalan Bukit Bintang, 50200 Kuala Lumpur",
			Race:            "Malay",
			EmergencyContact: EmergencyContact{
				Name:         "Siti binti Abdullah",
				Relationship: "Wife",
				Phone:        "+60123456789",
			},
			Preferences: Preferences{
				CommunicationMethod:  "BIM (Malaysian Sign Language)",
				RequiresInterpreter:  "Yes",
				SpeechAbility:        "Cannot speak verbally",
				HearingAid:           false,
				LipReading:           "No",
				WrittenCommunication: "Prefers BIM, can read Malay and English",
				PatienceLevel:        "Requires extra time for communication",
				VisualAttention:      "Please maintain eye contact and clear facial expressions",
				Notes:                "Please use sign language or written communication. Avoid speaking as user cannot hear.",
			},
		},
		{
			ICNumber:        "970512-05-1234",
			Name:            "Lim Wei Ming",
			Age:             28,
			DisabilityLevel: "Partially Deaf (Moderate Hearing Loss)",
			HomeAddress:     "456 Jalan Ampang, 50450 Kuala Lumpur",
			Race:            "Chinese",
			EmergencyContact: EmergencyContact{
				Name:         "Lim Wei Keong",
				Relationship: "Brother",
				Phone:        "+60198765432",
			},
			Preferences: Preferences{
				CommunicationMethod:  "BIM or Clear Speech",
				RequiresInterpreter:  "No",
				SpeechAbility:        "Can speak clearly",
				HearingAid:           true,
				LipReading:           "Yes",
				WrittenCommunication: "Can read and write in Malay, English, and Chinese",
				PatienceLevel:        "Normal pace, speak clearly and face user",
				VisualAttention:      "Please face user when speaking, speak clearly and slightly louder",
				Notes:                "User wears hearing aid. Please speak clearly, face the user, and avoid background noise.",
			},
		},
		{
			ICNumber:        "830901-01-0123",
			Name:            "Priya Devi",
			Age:             42,
			DisabilityLevel: "Full Deaf (Since Birth)",
			HomeAddress:     "789 Jalan Tun Razak, 50400 Kuala Lumpur",
			Race:            "Indian",
			EmergencyContact: EmergencyContact{
				Name:         "Rajesh Kumar",
				Relationship: "Husband",
				Phone:        "+60123456789",
			},
			Preferences: Preferences{
				CommunicationMethod:  "BIM (Malaysian Sign Language) or Written",
				RequiresInterpreter:  "Yes",
				SpeechAbility:        "Limited speech, prefers sign language",
				HearingAid:           false,
				LipReading:           "Basic lip reading skills",
				WrittenCommunication: "Prefers BIM, fluent in written English and Tamil",
				PatienceLevel:        "Requires extra time and patience",
				VisualAttention:      "Please maintain eye contact, use clear gestures and facial expressions",
				Notes:                "Deaf since birth. Best communication: BIM sign language. Can read English and Tamil. Please be patient and use visual communication methods.",
			},
		},
		{
			ICNumber:        "001231-01-0123",
			Name:            "Sarah binti Mohd",
			Age:             25,
			DisabilityLevel: "Partially Deaf (Severe Hearing Loss)",
			HomeAddress:     "321 Jalan Pudu, 55100 Kuala Lumpur",
			Race:            "Malay",
			EmergencyContact: EmergencyContact{
				Name:         "Mohd bin Ali",
				Relationship: "Father",
				Phone:        "+60123456789",
			},
			Preferences: Preferences{
				CommunicationMethod:  "BIM or Clear Speech with Visual Aids",
				RequiresInterpreter:  "Optional (prefers when available)",
				SpeechAbility:        "Can speak, may have slight speech differences",
				HearingAid:           true,
				LipReading:           "Yes",
				WrittenCommunication: "Fluent in written Malay and English",
				PatienceLevel:        "Normal pace, but speak clearly",
				VisualAttention:      "Please face user directly, speak clearly and at moderate pace. User can lip read well.",
				Notes:                "User has severe hearing loss but wears hearing aid. Can communicate verbally if you speak clearly and face them. BIM sign language preferred for complex information.",
			},
		},
	}
}

func demoVisits() []*Visit {
	now := time.Now()
	return []*Visit{
		{
			ID:                  "visit-ahmad-001",
			ICNumber:            "900125-14-0123",
			Location:            "Immigration",
			Department:          "Jabatan Imigresen Malaysia",
			VisitedAt:           now.AddDate(0, 0, -12),
			Application:         "Passport Renewal",
			Queue:               "A042",
			Status:              StatusPending,
			DocumentsRequested:  []string{"Old passport", "Proof of address"},
			DocumentsSubmitted:  []string{"Old passport"},
			HandlingTimeMinutes: 35,
			OfficerNotes:        "Citizen to return with proof of address",
			PhrasesDetected:     []string{"TOLONG", "TERIMA KASIH"},
			FollowUpRequired:    true,
			FollowUpDate:        now.AddDate(0, 0, 2).Format("2006-01-02"),
		},
		{
			ID:                  "visit-ahmad-002",
			ICNumber:            "900125-14-0123",
			Location:            "Immigration",
			Department:          "Jabatan Imigresen Malaysia",
			VisitedAt:           now.AddDate(0, -3, 0),
			Application:         "Passport Renewal",
			Queue:               "A017",
			Status:              StatusCompleted,
			HandlingTimeMinutes: 20,
			OfficerNotes:        "Initial enquiry about renewal requirements",
			PhrasesDetected:     []string{"SAYA", "YA"},
		},
		{
			ID:                  "visit-lim-001",
			ICNumber:            "970512-05-1234",
			Location:            "JPJ",
			Department:          "Jabatan Pengangkutan Jalan",
			VisitedAt:           now.AddDate(0, -1, 0),
			Application:         "Driving License Renewal",
			Queue:               "B108",
			Status:              StatusCompleted,
			DocumentsSubmitted:  []string{"MyKad", "Old license"},
			HandlingTimeMinutes: 15,
			PhrasesDetected:     []string{"TERIMA KASIH"},
		},
		{
			ID:                  "visit-priya-001",
			ICNumber:            "830901-01-0123",
			Location:            "JPN",
			Department:          "Jabatan Pendaftaran Negara",
			VisitedAt:           now.AddDate(0, 0, -5),
			Application:         "MyKad Replacement",
			Queue:               "C021",
			Status:              StatusInProgress,
			DocumentsRequested:  []string{"Police report", "Passport photo"},
			DocumentsSubmitted:  []string{"Police report", "Passport photo"},
			HandlingTimeMinutes: 45,
			OfficerNotes:        "Replacement card in production, collection in two weeks",
			PhrasesDetected:     []string{"SAYA", "TOLONG"},
		},
	}
}

func demoLogs() []*DepartmentalLog {
	now := time.Now()
	return []*DepartmentalLog{
		{
			ICNumber:          "900125-14-0123",
			Department:        "Jabatan Imigresen Malaysia",
			LoggedAt:          now.AddDate(0, 0, -12),
			ActionType:        "document_request",
			Summary:           "Proof of address requested to complete passport renewal",
			RelatedDocuments:  []string{"Proof of address"},
			OfficerDepartment: "Immigration Counter 4",
		},
		{
			ICNumber:          "830901-01-0123",
			Department:        "Jabatan Pendaftaran Negara",
			LoggedAt:          now.AddDate(0, 0, -4),
			ActionType:        "application_status",
			Summary:           "MyKad replacement approved and sent to card production",
			RelatedDocuments:  []string{},
			OfficerDepartment: "JPN Records",
		},
	}
}

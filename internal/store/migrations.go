package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Profiles table - citizen profiles keyed by IC number
		`CREATE TABLE IF NOT EXISTS profiles (
			ic_number TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			age INTEGER NOT NULL,
			disability_level TEXT NOT NULL,
			home_address TEXT NOT NULL,
			race TEXT NOT NULL,
			emergency_contact TEXT NOT NULL DEFAULT '{}',
			preferences TEXT NOT NULL DEFAULT '{}',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Visits table - one row per service-center visit
		`CREATE TABLE IF NOT EXISTS visits (
			id TEXT PRIMARY KEY,
			ic_number TEXT NOT NULL REFERENCES profiles(ic_number) ON DELETE CASCADE,
			location TEXT NOT NULL,
			department TEXT NOT NULL,
			visited_at DATETIME NOT NULL,
			application TEXT NOT NULL,
			queue TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL CHECK(status IN ('In Progress', 'Completed', 'Pending')),
			documents_requested TEXT NOT NULL DEFAULT '[]',
			documents_submitted TEXT NOT NULL DEFAULT '[]',
			handling_time_minutes INTEGER NOT NULL DEFAULT 0,
			officer_notes TEXT NOT NULL DEFAULT '',
			phrases_detected TEXT NOT NULL DEFAULT '[]',
			follow_up_required INTEGER NOT NULL DEFAULT 0,
			follow_up_date TEXT NOT NULL DEFAULT ''
		)`,

		// Department logs table - inter-departmental activity entries
		`CREATE TABLE IF NOT EXISTS department_logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ic_number TEXT NOT NULL REFERENCES profiles(ic_number) ON DELETE CASCADE,
			department TEXT NOT NULL,
			logged_at DATETIME NOT NULL,
			action_type TEXT NOT NULL,
			summary TEXT NOT NULL,
			related_documents TEXT NOT NULL DEFAULT '[]',
			officer_department TEXT NOT NULL DEFAULT ''
		)`,

		`CREATE INDEX IF NOT EXISTS idx_visits_ic ON visits(ic_number, visited_at)`,
		`CREATE INDEX IF NOT EXISTS idx_logs_ic ON department_logs(ic_number, logged_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}

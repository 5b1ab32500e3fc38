package config

// GetClinicDBPath returns the path to the GELITE mirror SQLite file. When
// unset the admin chat runs without database access.
func GetClinicDBPath() string {
	return GetEnvOrDefault("CLINIC_DB_PATH", "")
}

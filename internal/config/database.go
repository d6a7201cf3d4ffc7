// internal/config/database.go
package config

import (
	"strings"
)

// DSN renders the postgres connection string for gorm. Connections are
// tagged with an application_name so ledger traffic is identifiable in
// pg_stat_activity.
func (d *DatabaseConfig) DSN() string {
	parts := []string{
		"host=" + d.Host,
		"port=" + d.Port,
		"user=" + d.User,
		"dbname=" + d.Database,
		"sslmode=" + d.SSLMode,
		"application_name=creator-ledger",
	}
	if d.Password != "" {
		parts = append(parts, "password="+d.Password)
	}
	return strings.Join(parts, " ")
}

package mysql

import "database/sql"

// str unwraps a nullable text column to its value or "".
func str(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

package db

import "embed"

// MigrationFS holds the schema for users, organizations, memberships, claims,
// client grants and audit logs. cmd/migrate applies it through the migrate runner.
//
//go:embed migrations/*.sql
var MigrationFS embed.FS

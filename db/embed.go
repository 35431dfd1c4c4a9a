// Package db provides the embedded database schema and seed catalog.
package db

import _ "embed"

// Schema contains the DDL statements for all application tables. Every
// statement is idempotent so the schema can be applied on each start.
//
//go:embed migrations/001_schema.sql
var Schema string

// Meals is the default meal catalog loaded by the seed tool.
//
//go:embed seed/meals.json
var Meals []byte

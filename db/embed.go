// Package db provides the embedded database schema.
package db

import _ "embed"

// Schema contains the DDL for all application tables, the order change
// trigger, and the menu seed rows. Statements are idempotent so the schema
// can run on every startup.
//
//go:embed migrations/001_schema.sql
var Schema string

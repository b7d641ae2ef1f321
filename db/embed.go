// Package db carries the embedded SQL schema applied at startup.
package db

import _ "embed"

// Schema holds the DDL for every storefront table (products, services,
// orders, devis, settings, api_keys). Statements are idempotent.
//
//go:embed migrations/001_schema.sql
var Schema string

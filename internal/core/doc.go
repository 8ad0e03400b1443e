// Package core provides the business logic for inventory, point-of-sale and
// CSV import operations.
//
// This package holds all domain rules independent of any transport or
// database. It reaches persistence only through the [Store] port, so the
// same code runs against the SQLite, PostgreSQL and in-memory backends.
//
// # Architecture
//
//   - Service: the entry point for every operation (CRUD, sales, import, export).
//   - Entity registry: each importable entity registers its CSV mapping, row
//     transform and export columns at init time.
//   - CSV codec: header resolution, quoted-field tokenizing and per-row
//     error collection.
//   - Sale writer: validates a cart and commits sale, items and stock
//     decrements in one transaction.
//
// # Entity Registry
//
// Entities are registered with [RegisterEntity]:
//
//	core.RegisterEntity(EntityDefinition{
//	    Key:     "suppliers",
//	    Label:   "Suppliers",
//	    Mapping: []ColumnMapping{{Header: "Name", Field: "name"}},
//	})
//
// # Import Flow
//
//  1. [Service.Import] looks up the entity and takes an [ImportLimiter] slot
//  2. [ParseCSV] validates the header and converts each row
//  3. Valid records are created one at a time; failures are tallied
//  4. An [ImportResult] reports counts and every row error
//
// # Error Handling
//
// Store backends translate driver errors into [ErrNotFound], [ErrDuplicate]
// and [ErrReferenced]. [MapError] converts any error into a [UserMessage]
// with a support code for API responses.
package core

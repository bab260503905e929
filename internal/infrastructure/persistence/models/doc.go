// Package models contains the GORM persistence models behind the ledger stores.
// Domain aggregates carry no ORM tags; each model here maps one table and
// converts to and from its aggregate with ToDomain / FromDomain.
//
//   - base.go: shared ID, timestamp, version and tenant columns
//   - identity.go: companies and users
//   - finance.go: transactions, journal entries and lines, fixed assets
//   - report.go: report requests
//   - outbox.go: outbox rows for reliable event delivery
package models

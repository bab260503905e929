// Package dbtx carries an open GORM transaction through a context so that
// aggregate stores and the outbox publisher write in the same transaction.
package dbtx

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

// WithTx returns a copy of ctx carrying tx
func WithTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// FromContext returns the transaction carried by ctx, if any
func FromContext(ctx context.Context) (*gorm.DB, bool) {
	tx, ok := ctx.Value(txKey{}).(*gorm.DB)
	return tx, ok && tx != nil
}

// Conn returns the transaction in ctx, or db bound to ctx when there is none
func Conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := FromContext(ctx); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// Run calls fn inside a transaction on db and commits when fn returns nil.
// When ctx already carries a transaction fn joins it, and the outer caller
// decides whether it commits.
func Run(ctx context.Context, db *gorm.DB, fn func(ctx context.Context) error) error {
	if _, ok := FromContext(ctx); ok {
		return fn(ctx)
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(WithTx(ctx, tx))
	})
}

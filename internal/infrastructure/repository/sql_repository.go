// Package repository adapts the MySQL layer to the domain contracts.
package repository

import (
	"adboard/internal/domain"
	"adboard/pkg/database"
)

// SQLRepository satisfies domain.Repository by delegating to the database
// layer. The indirection keeps services decoupled from the SQL package and
// lets tests substitute in-memory repositories.
type SQLRepository struct {
	*database.DB
}

var _ domain.Repository = (*SQLRepository)(nil)

func NewSQLRepository(db *database.DB) *SQLRepository {
	return &SQLRepository{DB: db}
}

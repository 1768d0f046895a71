package interfaces

import (
	"context"

	"credibly/internal/models"
	"credibly/internal/utils"
)

type AuditLogRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	List(ctx context.Context, params *utils.PaginationParams) ([]*models.AuditLog, int64, error)
}

// Transactor runs fn atomically when the storage supports it. The context
// passed to fn must be used for every repository call inside it.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

package employee

import (
	"context"
)

// Repository reads employee profiles. This service never writes them.
type Repository interface {
	GetByID(ctx context.Context, id string, companyID string) (Employee, error)
}

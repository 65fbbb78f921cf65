// Package operatorrepo reads the operator accounts that receive escalations.
package operatorrepo

import (
	"context"
	"strings"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OperatorDTO struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name  string    `gorm:"type:varchar(255);not null"`
	Email string    `gorm:"type:varchar(320);not null;uniqueIndex"`
}

// TableName overrides GORM's default naming convention to use "operators".
func (OperatorDTO) TableName() string {
	return "operators"
}

// GormOperatorDirectory implements ports.OperatorDirectory using GORM.
type GormOperatorDirectory struct {
	db *gorm.DB
}

func NewGormOperatorDirectory(db *gorm.DB) *GormOperatorDirectory {
	return &GormOperatorDirectory{db: db}
}

func (d *GormOperatorDirectory) ListOperators(ctx context.Context) ([]ports.Operator, error) {
	var dtos []OperatorDTO
	if err := d.db.WithContext(ctx).Order("name, id").Find(&dtos).Error; err != nil {
		return nil, err
	}

	operators := make([]ports.Operator, 0, len(dtos))
	for _, dto := range dtos {
		id, err := kernel.UUIDFromBytes(dto.ID[:])
		if err != nil {
			return nil, err
		}
		operators = append(operators, ports.Operator{ID: id, Name: dto.Name, Email: dto.Email})
	}
	return operators, nil
}

// Register adds or renames an operator. Used by the seeding step at startup.
func (d *GormOperatorDirectory) Register(ctx context.Context, op ports.Operator) error {
	if err := op.ID.Validate(); err != nil {
		return err
	}
	email := strings.TrimSpace(op.Email)
	if email == "" {
		return errs.NewValueIsRequiredError("email")
	}

	dto := OperatorDTO{ID: op.ID.Bytes(), Name: op.Name, Email: email}
	return d.db.WithContext(ctx).Save(&dto).Error
}

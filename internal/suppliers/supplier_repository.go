package suppliers

import (
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/tobi647/beer-distribution-app-sub000/internal/repository"
	custom_error "github.com/tobi647/beer-distribution-app-sub000/pkg/errors"
	"github.com/tobi647/beer-distribution-app-sub000/pkg/models"
)

type SupplierRepository struct {
	Repository *repository.Repository
}

func NewSupplierRepository(r *repository.Repository) *SupplierRepository {
	return &SupplierRepository{Repository: r}
}

func (r *SupplierRepository) GetSuppliers() ([]models.Supplier, error) {
	var suppliers = []models.Supplier{}
	query := r.Repository.GoquDBWrapper.
		From("suppliers").
		Order(goqu.I("name").Asc())

	if err := query.Executor().ScanStructs(&suppliers); err != nil {
		return nil, fmt.Errorf("unable to execute SQL: %w", err)
	}

	return suppliers, nil
}

func (r *SupplierRepository) GetSupplier(id string) (*models.Supplier, error) {
	var supplier models.Supplier
	query := r.Repository.GoquDBWrapper.
		From("suppliers").
		Where(goqu.Ex{"id": id})

	found, err := query.Executor().ScanStruct(&supplier)
	if err != nil {
		return nil, fmt.Errorf("unable to execute SQL: %w", err)
	}
	if !found {
		return nil, nil
	}

	return &supplier, nil
}

func (r *SupplierRepository) PersistSupplier(supplier *models.Supplier) error {
	supplier.ID = uuid.NewString()
	supplier.CreatedAt = time.Now()

	query := r.Repository.GoquDBWrapper.Insert("suppliers").
		Rows(goqu.Record{
			"id":         supplier.ID,
			"name":       supplier.Name,
			"contact":    supplier.Contact,
			"email":      supplier.Email,
			"phone":      supplier.Phone,
			"notes":      supplier.Notes,
			"created_at": supplier.CreatedAt,
		})

	if _, err := query.Executor().Exec(); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return custom_error.WrapDBError("supplier name already registered", string(pqErr.Code))
		}
		return fmt.Errorf("failed to insert supplier record: %w", err)
	}

	return nil
}

func (r *SupplierRepository) RemoveSupplier(id string) error {
	result, err := r.Repository.GoquDBWrapper.Delete("suppliers").
		Where(goqu.Ex{"id": id}).
		Executor().Exec()
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return custom_error.WrapDBError("supplier", string(pqErr.Code))
		}
		return fmt.Errorf("failed to delete supplier: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not retrieve rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return custom_error.NewNotFoundError("supplier", id)
	}

	return nil
}

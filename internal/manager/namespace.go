package manager

import (
	"context"
	"math"

	"github.com/openkcm/tenancy/internal/errs"
	"github.com/openkcm/tenancy/internal/model"
	"github.com/openkcm/tenancy/internal/registry"
	"github.com/openkcm/tenancy/internal/repo"
)

// ListUsers returns one page of the users of the namespace bound to ctx.
func (m *TenantManager) ListUsers(ctx context.Context, page, size int) ([]*model.User, registry.Pagination, error) {
	return listNamespace[model.User](ctx, m, page, size,
		repo.OrderField{Field: repo.CreatedField, Direction: repo.Asc})
}

func (m *TenantManager) ListRoles(ctx context.Context, page, size int) ([]*model.Role, registry.Pagination, error) {
	return listNamespace[model.Role](ctx, m, page, size,
		repo.OrderField{Field: repo.NameField, Direction: repo.Asc})
}

// ListAuditLogs returns the newest entries first.
func (m *TenantManager) ListAuditLogs(
	ctx context.Context,
	page, size int,
) ([]*model.AuditLog, registry.Pagination, error) {
	return listNamespace[model.AuditLog](ctx, m, page, size,
		repo.OrderField{Field: repo.CreatedField, Direction: repo.Desc})
}

func listNamespace[T any, PT interface {
	*T
	repo.Resource
}](
	ctx context.Context,
	m *TenantManager,
	page, size int,
	order repo.OrderField,
) ([]*T, registry.Pagination, error) {
	vErr := &errs.ValidationError{}

	page, size = normalisePage(m.cfg, page, size, vErr)

	err := vErr.OrNil()
	if err != nil {
		return nil, registry.Pagination{}, err
	}

	query := repo.NewQuery().
		SetLimit(size).
		SetOffset((page - 1) * size).
		Order(order, repo.OrderField{Field: repo.IDField, Direction: repo.Asc})

	var items []*T

	total, err := m.repo.List(ctx, PT(new(T)), &items, *query)
	if err != nil {
		return nil, registry.Pagination{}, errs.Wrap(ErrListNamespace, err)
	}

	return items, registry.Pagination{
		Page:  page,
		Size:  size,
		Total: total,
		Pages: int(math.Ceil(float64(total) / float64(size))),
	}, nil
}

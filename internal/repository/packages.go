package repository

import (
	"context"

	"shala/internal/database"
	"shala/internal/models"
)

type PackageRepository struct {
	db *database.DB
}

func NewPackageRepository(db *database.DB) *PackageRepository {
	return &PackageRepository{db: db}
}

const packageColumns = `id, name, type, credits, duration_days, price_cents, is_active, created_at, updated_at`

func scanPackage(row interface{ Scan(...any) error }, p *models.Package) error {
	return row.Scan(
		&p.ID,
		&p.Name,
		&p.Type,
		&p.Credits,
		&p.DurationDays,
		&p.PriceCents,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
}

func (r *PackageRepository) Create(ctx context.Context, pkg *models.Package) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO packages (name, type, credits, duration_days, price_cents, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		pkg.Name,
		pkg.Type,
		pkg.Credits,
		pkg.DurationDays,
		pkg.PriceCents,
		pkg.IsActive,
	).Scan(&pkg.ID, &pkg.CreatedAt, &pkg.UpdatedAt)
	return database.MapError(err)
}

func (r *PackageRepository) GetByID(ctx context.Context, id int64) (*models.Package, error) {
	pkg := &models.Package{}
	err := scanPackage(r.db.QueryRowContext(ctx,
		`SELECT `+packageColumns+` FROM packages WHERE id = $1`, id), pkg)
	if database.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, database.MapError(err)
	}
	return pkg, nil
}

// ListActive returns the catalog visible to members.
func (r *PackageRepository) ListActive(ctx context.Context) ([]models.Package, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+packageColumns+`
		FROM packages
		WHERE is_active = TRUE
		ORDER BY price_cents ASC`)
	if err != nil {
		return nil, database.MapError(err)
	}
	defer rows.Close()

	var packages []models.Package
	for rows.Next() {
		var p models.Package
		if err := scanPackage(rows, &p); err != nil {
			return nil, database.MapError(err)
		}
		packages = append(packages, p)
	}
	return packages, database.MapError(rows.Err())
}

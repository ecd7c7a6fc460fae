package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/R3E-Network/payee_manager/internal/app/domain/payee"
	"github.com/R3E-Network/payee_manager/internal/app/storage"
	svcerrors "github.com/R3E-Network/payee_manager/internal/errors"
)

// Store implements the storage interfaces backed by PostgreSQL.
type Store struct {
	db *sqlx.DB
}

var _ storage.PayeeStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// payeeRow mirrors the payees table.
type payeeRow struct {
	ID        string    `db:"id"`
	PayeeName string    `db:"payee_name"`
	Street    string    `db:"street"`
	City      string    `db:"city"`
	State     string    `db:"state"`
	Zip       string    `db:"zip"`
	Category  string    `db:"category"`
	Image     string    `db:"image"`
	Active    bool      `db:"active"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r payeeRow) toDomain() payee.Payee {
	return payee.Payee{
		ID:        r.ID,
		PayeeName: r.PayeeName,
		Address: payee.Address{
			Street: r.Street,
			City:   r.City,
			State:  r.State,
			Zip:    r.Zip,
		},
		Category:  r.Category,
		Image:     r.Image,
		Active:    r.Active,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func fromDomain(p payee.Payee) payeeRow {
	return payeeRow{
		ID:        p.ID,
		PayeeName: p.PayeeName,
		Street:    p.Address.Street,
		City:      p.Address.City,
		State:     p.Address.State,
		Zip:       p.Address.Zip,
		Category:  p.Category,
		Image:     p.Image,
		Active:    p.Active,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

const payeeColumns = `id, payee_name, street, city, state, zip, category, image, active, created_at, updated_at`

// --- PayeeStore -------------------------------------------------------------

func (s *Store) CreatePayee(ctx context.Context, p payee.Payee) (payee.Payee, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO payees (`+payeeColumns+`)
		VALUES (:id, :payee_name, :street, :city, :state, :zip, :category, :image, :active, :created_at, :updated_at)
	`, fromDomain(p))
	if err != nil {
		return payee.Payee{}, fmt.Errorf("insert payee: %w", err)
	}
	return p, nil
}

func (s *Store) UpdatePayee(ctx context.Context, p payee.Payee) (payee.Payee, error) {
	existing, err := s.GetPayee(ctx, p.ID)
	if err != nil {
		return payee.Payee{}, err
	}

	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now().UTC()

	result, err := s.db.NamedExecContext(ctx, `
		UPDATE payees
		SET payee_name = :payee_name, street = :street, city = :city, state = :state,
		    zip = :zip, category = :category, image = :image, active = :active, updated_at = :updated_at
		WHERE id = :id
	`, fromDomain(p))
	if err != nil {
		return payee.Payee{}, fmt.Errorf("update payee: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return payee.Payee{}, svcerrors.NotFound("payee", p.ID)
	}
	return p, nil
}

func (s *Store) GetPayee(ctx context.Context, id string) (payee.Payee, error) {
	var row payeeRow
	err := s.db.GetContext(ctx, &row, `
		SELECT `+payeeColumns+`
		FROM payees
		WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return payee.Payee{}, svcerrors.NotFound("payee", id)
	}
	if err != nil {
		return payee.Payee{}, fmt.Errorf("get payee: %w", err)
	}
	return row.toDomain(), nil
}

func (s *Store) ListPayees(ctx context.Context) ([]payee.Payee, error) {
	var rows []payeeRow
	if err := s.db.SelectContext(ctx, &rows, `
		SELECT `+payeeColumns+`
		FROM payees
		ORDER BY created_at
	`); err != nil {
		return nil, fmt.Errorf("list payees: %w", err)
	}
	return toDomainList(rows), nil
}

func (s *Store) SearchPayees(ctx context.Context, criteria payee.Criteria) ([]payee.Payee, error) {
	var rows []payeeRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+payeeColumns+`
		FROM payees
		WHERE ($1 = '' OR payee_name ILIKE '%' || $1 || '%' OR city ILIKE '%' || $1 || '%' OR state ILIKE '%' || $1 || '%')
		  AND ($2 = '' OR city ILIKE '%' || $2 || '%')
		  AND ($3 = '' OR state ILIKE '%' || $3 || '%')
		ORDER BY created_at
	`, strings.TrimSpace(criteria.Query), strings.TrimSpace(criteria.City), strings.TrimSpace(criteria.State))
	if err != nil {
		return nil, fmt.Errorf("search payees: %w", err)
	}
	return toDomainList(rows), nil
}

func (s *Store) DeletePayee(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM payees WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("delete payee: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return svcerrors.NotFound("payee", id)
	}
	return nil
}

func toDomainList(rows []payeeRow) []payee.Payee {
	result := make([]payee.Payee, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.toDomain())
	}
	return result
}

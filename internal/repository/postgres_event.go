package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/lmoretti/event-seat-reservation/internal/domain"
)

type PostgresEventRepository struct {
	db *pgxpool.Pool
}

func NewPostgresEventRepository(db *pgxpool.Pool) *PostgresEventRepository {
	return &PostgresEventRepository{
		db: db,
	}
}

func (p *PostgresEventRepository) GetAll(ctx context.Context) ([]domain.Event, error) {
	query := `
		SELECT id, external_id, name, event_date, seat_rows, seat_cols, base_price, active, created_at
		FROM events
		WHERE active = TRUE
		ORDER BY event_date ASC
	`

	rows, err := p.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]domain.Event, 0)

	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}

		events = append(events, *event)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

func (p *PostgresEventRepository) GetByID(ctx context.Context, eventID int64) (*domain.Event, error) {
	query := `
		SELECT id, external_id, name, event_date, seat_rows, seat_cols, base_price, active, created_at
		FROM events
		WHERE id = $1
	`

	event, err := scanEvent(p.db.QueryRow(ctx, query, eventID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return event, nil
}

func scanEvent(row pgx.Row) (*domain.Event, error) {
	var event domain.Event
	var basePrice pgtype.Numeric

	err := row.Scan(
		&event.ID,
		&event.ExternalID,
		&event.Name,
		&event.Date,
		&event.Rows,
		&event.Cols,
		&basePrice,
		&event.Active,
		&event.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	event.BasePrice = numericToDecimal(basePrice)

	return &event, nil
}

func numericToDecimal(numeric pgtype.Numeric) decimal.Decimal {
	if !numeric.Valid {
		return decimal.Zero
	}

	float64Value, err := numeric.Float64Value()
	if err != nil {
		return decimal.Zero
	}

	return decimal.NewFromFloat(float64Value.Float64)
}

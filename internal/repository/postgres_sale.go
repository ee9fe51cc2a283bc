package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lmoretti/event-seat-reservation/internal/domain"
)

type PostgresSaleRepository struct {
	db *pgxpool.Pool
}

func NewPostgresSaleRepository(db *pgxpool.Pool) *PostgresSaleRepository {
	return &PostgresSaleRepository{
		db: db,
	}
}

// Create inserts the sale and its seats in one transaction. The unique
// index on (event_id, hold_token) is what makes concurrent confirmations
// of the same hold collapse into a single sale.
func (p *PostgresSaleRepository) Create(ctx context.Context, sale *domain.Sale) error {
	err := runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO sales (event_id, hold_id, hold_token, buyer_name, seat_count, price)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, created_at
		`

		err := tx.QueryRow(
			ctx,
			query,
			sale.EventID,
			sale.HoldID,
			sale.HoldToken,
			sale.BuyerName,
			sale.SeatCount,
			sale.Price.String()).Scan(&sale.ID, &sale.CreatedAt)

		if err != nil {
			return err
		}

		rows := make([][]any, 0, len(sale.Seats))
		for _, seat := range sale.Seats {
			rows = append(rows, []any{
				sale.ID,
				seat.Row,
				seat.Col,
			})
		}

		_, err = tx.CopyFrom(
			ctx,
			pgx.Identifier{"sale_seats"},
			[]string{"sale_id", "seat_row", "seat_col"},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			return err
		}

		return nil
	})

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return domain.ErrDuplicateSale
		}

		return err
	}

	return nil
}

func (p *PostgresSaleRepository) GetByHoldToken(ctx context.Context, eventID int64, holdToken string) (*domain.Sale, error) {
	query := `
		SELECT id, event_id, hold_id, hold_token, buyer_name, seat_count, price, created_at
		FROM sales
		WHERE event_id = $1 AND hold_token = $2
	`

	var sale domain.Sale
	var price pgtype.Numeric

	err := p.db.QueryRow(ctx, query, eventID, holdToken).Scan(
		&sale.ID,
		&sale.EventID,
		&sale.HoldID,
		&sale.HoldToken,
		&sale.BuyerName,
		&sale.SeatCount,
		&price,
		&sale.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	sale.Price = numericToDecimal(price)

	seats, err := p.retrieveSaleSeats(ctx, sale.ID)
	if err != nil {
		return nil, err
	}

	sale.Seats = seats

	return &sale, nil
}

func (p *PostgresSaleRepository) retrieveSaleSeats(ctx context.Context, saleID int64) ([]domain.SeatKey, error) {
	query := `
		SELECT seat_row, seat_col
		FROM sale_seats
		WHERE sale_id = $1
		ORDER BY seat_row, seat_col
	`

	rows, err := p.db.Query(ctx, query, saleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seats := make([]domain.SeatKey, 0)

	for rows.Next() {
		var seat domain.SeatKey

		err := rows.Scan(&seat.Row, &seat.Col)
		if err != nil {
			return nil, err
		}

		seats = append(seats, seat)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return seats, nil
}

package repository

import (
	"context"
	"errors"

	"food_order_chat_service/internal/chat/domain"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ErrCustomerNotFound returned when a customer id resolves to nothing
var ErrCustomerNotFound = errors.New("no customer found with given id")

// CustomerRepository definition read access to the platform's customer
// records, for contact-info display and recipient resolution
type CustomerRepository interface {
	FindByCustomerID(ctx context.Context, customerID string) (*domain.Customer, error)
}

type customerRepository struct {
	db *pgxpool.Pool
}

// NewCustomerRepository create a CustomerRepository
func NewCustomerRepository(db *pgxpool.Pool) CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) FindByCustomerID(ctx context.Context, customerID string) (*domain.Customer, error) {
	row := r.db.QueryRow(ctx,
		"SELECT id, customer_id, name, email, phone FROM customer WHERE customer_id = $1",
		customerID)

	var c domain.Customer
	err := row.Scan(&c.ID, &c.CustomerID, &c.Name, &c.Email, &c.Phone)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}

	return &c, nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/99minutos/invoice-system/internal/core/domain"
	"github.com/99minutos/invoice-system/internal/core/ports"
)

type demoUser struct {
	username, email, password string
	role                      domain.Role
}

var demoUsers = []demoUser{
	{"admin", "admin@invoicesystem.com", "admin123", domain.RoleAdmin},
	{"john_doe", "john@example.com", "user123", domain.RoleUser},
	{"jane_smith", "jane@example.com", "user123", domain.RoleUser},
}

// seedDemo creates the demo accounts and two Pending invoices. It does nothing
// when the admin account already exists.
func seedDemo(ctx context.Context, auth ports.AuthService, invoices ports.InvoiceService, log zerolog.Logger) error {
	created := make(map[string]*domain.User, len(demoUsers))
	for _, u := range demoUsers {
		user, err := auth.Register(ctx, u.username, u.email, u.password, u.role)
		if errors.Is(err, domain.ErrUserExists) {
			log.Info().Msg("demo data already present, skipping seed")
			return nil
		}
		if err != nil {
			return fmt.Errorf("seed user %s: %w", u.username, err)
		}
		created[u.username] = user
	}

	admin := domain.Principal{
		ID:       created["admin"].ID,
		Username: created["admin"].Username,
		Email:    created["admin"].Email,
		Role:     domain.RoleAdmin,
	}
	now := time.Now().UTC()

	samples := []ports.CreateInvoiceInput{
		{
			CustomerName:   "Acme Corporation",
			DueDate:        now.AddDate(0, 0, 20),
			AssignedUserID: created["john_doe"].ID,
			Items: []ports.InvoiceItemInput{
				{Description: "Web Development Services", Quantity: 40, UnitPrice: decimal.NewFromInt(50)},
				{Description: "Hosting Services (Annual)", Quantity: 1, UnitPrice: decimal.NewFromInt(500)},
			},
		},
		{
			CustomerName:   "Tech Solutions Inc.",
			DueDate:        now.AddDate(0, 0, 25),
			AssignedUserID: created["jane_smith"].ID,
			Items: []ports.InvoiceItemInput{
				{Description: "Software Consultation", Quantity: 10, UnitPrice: decimal.NewFromInt(100)},
			},
		},
	}
	for _, in := range samples {
		inv, err := invoices.CreateInvoice(ctx, admin, in)
		if err != nil {
			return fmt.Errorf("seed invoice for %s: %w", in.CustomerName, err)
		}
		log.Info().Str("invoice_number", inv.InvoiceNumber).Msg("demo invoice seeded")
	}

	log.Info().Int("users", len(created)).Msg("demo data seeded")
	return nil
}

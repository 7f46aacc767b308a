package service

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"connectrpc.com/connect"
	"github.com/go-playground/validator/v10"

	"github.com/mmynk/tripsplit/internal/calculator"
	"github.com/mmynk/tripsplit/internal/models"
	"github.com/mmynk/tripsplit/internal/storage"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateRequest checks the struct tags of a request message.
func validateRequest(msg any) error {
	err := validate.Struct(msg)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		problems := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			problems = append(problems, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
		}
		err = errors.New(strings.Join(problems, "; "))
	}
	return connect.NewError(connect.CodeInvalidArgument, err)
}

// validatePayerID checks the payer is one of the participants.
func validatePayerID(payerID string, participants []string) error {
	if !slices.Contains(participants, payerID) {
		return fmt.Errorf("payer_id '%s' must be one of the participants", payerID)
	}
	return nil
}

// storageError maps a storage error onto a connect error.
func storageError(err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, storage.ErrConflict):
		return connect.NewError(connect.CodeAlreadyExists, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

func toUser(u *models.User) User {
	return User{
		ID:        u.ID,
		Username:  u.Username,
		FullName:  u.FullName,
		Email:     u.Email,
		Currency:  u.Currency,
		CreatedAt: u.CreatedAt,
	}
}

func toTrip(t *models.Trip) Trip {
	members := t.Members
	if members == nil {
		members = []string{}
	}
	return Trip{
		ID:        t.ID,
		Title:     t.Title,
		StartDate: t.StartDate,
		EndDate:   t.EndDate,
		CreatedBy: t.CreatedBy,
		Members:   members,
		CreatedAt: t.CreatedAt,
	}
}

func toPayment(p models.Payment) Payment {
	return Payment{
		ID:       p.ID,
		PayerID:  p.PayerID,
		Currency: p.Currency,
		Amount:   p.Amount,
		Mode:     string(p.Mode),
		PaidAt:   p.PaidAt,
		Notes:    p.Notes,
	}
}

func fromPayment(p Payment) models.Payment {
	return models.Payment{
		PayerID:  p.PayerID,
		Currency: strings.ToUpper(p.Currency),
		Amount:   p.Amount,
		Mode:     models.PaymentMode(p.Mode),
		PaidAt:   p.PaidAt,
		Notes:    p.Notes,
	}
}

func toExpense(e *models.Expense) Expense {
	payments := make([]Payment, len(e.Payments))
	for i, p := range e.Payments {
		payments[i] = toPayment(p)
	}
	return Expense{
		ID:           e.ID,
		TripID:       e.TripID,
		Description:  e.Description,
		Participants: e.Participants,
		Payments:     payments,
		CreatedAt:    e.CreatedAt,
	}
}

// toCalculatorExpense strips an expense down to what the settlement engine needs.
func toCalculatorExpense(e *models.Expense) calculator.Expense {
	payments := make([]calculator.Payment, len(e.Payments))
	for i, p := range e.Payments {
		payments[i] = calculator.Payment{
			Currency: p.Currency,
			Amount:   p.Amount,
			PayerID:  p.PayerID,
		}
	}
	return calculator.Expense{
		ID:           e.ID,
		Participants: e.Participants,
		Payments:     payments,
	}
}

// involves reports whether the user shares or paid for the expense.
func involves(e *models.Expense, userID string) bool {
	if slices.Contains(e.Participants, userID) {
		return true
	}
	for _, p := range e.Payments {
		if p.PayerID == userID {
			return true
		}
	}
	return false
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"connectrpc.com/connect"
	"github.com/mmynk/tripsplit/internal/calculator"
	"github.com/mmynk/tripsplit/internal/metrics"
	"github.com/mmynk/tripsplit/internal/models"
	"github.com/mmynk/tripsplit/internal/rates"
	"github.com/mmynk/tripsplit/internal/storage"
)

// SettlementService turns stored expenses into "who pays whom" instructions.
type SettlementService struct {
	store     storage.Store
	rates     rates.Provider
	reference string
	metrics   *metrics.Metrics
}

// NewSettlementService creates a SettlementService normalizing amounts to reference.
func NewSettlementService(store storage.Store, provider rates.Provider, reference string, m *metrics.Metrics) *SettlementService {
	return &SettlementService{
		store:     store,
		rates:     provider,
		reference: strings.ToUpper(reference),
		metrics:   m,
	}
}

// Distribute settles an explicit list of expenses. The caller must take part in each of them.
func (s *SettlementService) Distribute(ctx context.Context, req *connect.Request[DistributeRequest]) (*connect.Response[SettlementResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	expenses, err := s.store.GetExpensesByIDs(ctx, req.Msg.ExpenseIDs)
	if err != nil {
		return nil, storageError(err)
	}
	for _, e := range expenses {
		if !involves(e, userID) {
			return nil, connect.NewError(connect.CodePermissionDenied,
				fmt.Errorf("you must be a participant of expense %s", e.ID))
		}
	}

	slog.Info("Distribute request", "user_id", userID, "expenses", len(expenses))
	resp, err := s.settle(ctx, userID, expenses, req.Msg.Currency)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(resp), nil
}

// SettleTrip settles every expense of a trip the caller is a member of.
func (s *SettlementService) SettleTrip(ctx context.Context, req *connect.Request[SettleTripRequest]) (*connect.Response[SettlementResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	trip, err := s.store.GetTrip(ctx, req.Msg.TripID)
	if err != nil {
		return nil, storageError(err)
	}
	if !slices.Contains(trip.Members, userID) {
		return nil, connect.NewError(connect.CodePermissionDenied, fmt.Errorf("you must be a member of this trip"))
	}

	expenses, err := s.store.ListExpensesByTrip(ctx, trip.ID)
	if err != nil {
		return nil, storageError(err)
	}

	slog.Info("SettleTrip request", "user_id", userID, "trip_id", trip.ID, "expenses", len(expenses))
	resp, err := s.settle(ctx, userID, expenses, req.Msg.Currency)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(resp), nil
}

// settle runs the calculator over expenses and renders the result for the caller.
func (s *SettlementService) settle(ctx context.Context, userID string, expenses []*models.Expense, currency string) (*SettlementResponse, error) {
	display, err := s.displayCurrency(ctx, userID, currency)
	if err != nil {
		return nil, err
	}

	table, err := s.rates.Rates(ctx, s.reference)
	if err != nil {
		slog.Error("Failed to load exchange rates", "reference", s.reference, "error", err)
		s.metrics.ObserveSettlement(metrics.OutcomeError, 0)
		return nil, connect.NewError(connect.CodeUnavailable, err)
	}

	input := make([]calculator.Expense, len(expenses))
	for i, e := range expenses {
		input[i] = toCalculatorExpense(e)
	}

	usernames, err := s.usernames(ctx, expenses)
	if err != nil {
		s.metrics.ObserveSettlement(metrics.OutcomeError, 0)
		return nil, storageError(err)
	}

	names := calculator.NamesFromMap(usernames)
	result, err := calculator.SettleAndFormat(input, table, names, display)
	if err != nil {
		var missing *calculator.MissingRateError
		switch {
		case errors.As(err, &missing):
			slog.Warn("Settlement needs an unavailable rate", "currency", missing.Currency, "error", err)
			s.metrics.ObserveSettlement(metrics.OutcomeMissingRate, 0)
			return nil, connect.NewError(connect.CodeFailedPrecondition, err)
		case errors.Is(err, calculator.ErrEmptyGroup):
			s.metrics.ObserveSettlement(metrics.OutcomeError, 0)
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		default:
			s.metrics.ObserveSettlement(metrics.OutcomeError, 0)
			return nil, connect.NewError(connect.CodeInternal, err)
		}
	}
	s.metrics.ObserveSettlement(metrics.OutcomeOK, len(result.Transfers))

	resp := &SettlementResponse{
		Currency:  display,
		Messages:  result.Messages,
		Transfers: make([]Transfer, len(result.Transfers)),
	}
	for i, t := range result.Transfers {
		resp.Transfers[i] = Transfer{
			FromUserID: t.From,
			ToUserID:   t.To,
			FromName:   names(t.From),
			ToName:     names(t.To),
			Currency:   t.Currency,
			Amount:     t.Amount.StringFixed(2),
		}
	}
	return resp, nil
}

// displayCurrency picks the requested currency, else the caller's preferred one,
// else the reference currency.
func (s *SettlementService) displayCurrency(ctx context.Context, userID, requested string) (string, error) {
	if requested != "" {
		return strings.ToUpper(requested), nil
	}
	user, err := s.store.GetUserByID(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return s.reference, nil
	}
	if err != nil {
		return "", storageError(err)
	}
	if user.Currency == "" {
		return s.reference, nil
	}
	return user.Currency, nil
}

// usernames maps every participant and payer id to a username.
func (s *SettlementService) usernames(ctx context.Context, expenses []*models.Expense) (map[string]string, error) {
	var ids []string
	for _, e := range expenses {
		ids = append(ids, e.Participants...)
		for _, p := range e.Payments {
			ids = append(ids, p.PayerID)
		}
	}
	slices.Sort(ids)
	ids = slices.Compact(ids)

	users, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(users))
	for id, u := range users {
		names[id] = u.Username
	}
	return names, nil
}

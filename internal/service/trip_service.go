package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"connectrpc.com/connect"
	"github.com/mmynk/tripsplit/internal/middleware"
	"github.com/mmynk/tripsplit/internal/models"
	"github.com/mmynk/tripsplit/internal/storage"
)

// TripService implements the TripService RPC interface.
type TripService struct {
	store storage.Store
}

// NewTripService creates a new TripService with the given storage backend.
func NewTripService(store storage.Store) *TripService {
	return &TripService{store: store}
}

// callerID returns the authenticated user or an Unauthenticated error.
func callerID(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, fmt.Errorf("authentication required"))
	}
	return userID, nil
}

// memberTrip loads a trip and checks the user is one of its members.
func (s *TripService) memberTrip(ctx context.Context, tripID, userID string) (*models.Trip, error) {
	trip, err := s.store.GetTrip(ctx, tripID)
	if err != nil {
		return nil, storageError(err)
	}
	if !slices.Contains(trip.Members, userID) {
		return nil, connect.NewError(connect.CodePermissionDenied, fmt.Errorf("you must be a member of this trip"))
	}
	return trip, nil
}

// involvedExpense loads an expense and checks the user shares or paid for it.
func (s *TripService) involvedExpense(ctx context.Context, expenseID, userID string) (*models.Expense, error) {
	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, storageError(err)
	}
	if !involves(expense, userID) {
		return nil, connect.NewError(connect.CodePermissionDenied, fmt.Errorf("you must be a participant of this expense"))
	}
	return expense, nil
}

// CreateTrip creates a trip. The caller always becomes a member.
func (s *TripService) CreateTrip(ctx context.Context, req *connect.Request[CreateTripRequest]) (*connect.Response[CreateTripResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	if req.Msg.EndDate != "" && req.Msg.EndDate < req.Msg.StartDate {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("end_date is before start_date"))
	}

	members := append([]string{userID}, req.Msg.Members...)
	slices.Sort(members)
	trip := &models.Trip{
		Title:     req.Msg.Title,
		StartDate: req.Msg.StartDate,
		EndDate:   req.Msg.EndDate,
		CreatedBy: userID,
		Members:   slices.Compact(members),
	}
	if err := s.store.CreateTrip(ctx, trip); err != nil {
		slog.Error("CreateTrip failed", "error", err)
		return nil, storageError(err)
	}

	slog.Info("Trip created", "trip_id", trip.ID, "members", len(trip.Members))
	return connect.NewResponse(&CreateTripResponse{Trip: toTrip(trip)}), nil
}

// GetTrip returns a trip the caller is a member of.
func (s *TripService) GetTrip(ctx context.Context, req *connect.Request[GetTripRequest]) (*connect.Response[GetTripResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	trip, err := s.memberTrip(ctx, req.Msg.TripID, userID)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&GetTripResponse{Trip: toTrip(trip)}), nil
}

// ListTrips returns every trip the caller is a member of.
func (s *TripService) ListTrips(ctx context.Context, req *connect.Request[ListTripsRequest]) (*connect.Response[ListTripsResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	trips, err := s.store.ListTripsByMember(ctx, userID)
	if err != nil {
		slog.Error("ListTrips failed", "user_id", userID, "error", err)
		return nil, storageError(err)
	}

	resp := &ListTripsResponse{Trips: make([]Trip, len(trips))}
	for i, t := range trips {
		resp.Trips[i] = toTrip(t)
	}
	return connect.NewResponse(resp), nil
}

// AddMember lets a member bring another registered user into the trip.
func (s *TripService) AddMember(ctx context.Context, req *connect.Request[MemberRequest]) (*connect.Response[MemberResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	if _, err := s.memberTrip(ctx, req.Msg.TripID, userID); err != nil {
		return nil, err
	}
	if _, err := s.store.GetUserByID(ctx, req.Msg.UserID); err != nil {
		return nil, storageError(err)
	}

	if err := s.store.AddTripMember(ctx, req.Msg.TripID, req.Msg.UserID); err != nil {
		slog.Error("AddMember failed", "trip_id", req.Msg.TripID, "error", err)
		return nil, storageError(err)
	}
	trip, err := s.store.GetTrip(ctx, req.Msg.TripID)
	if err != nil {
		return nil, storageError(err)
	}

	slog.Info("Trip member added", "trip_id", trip.ID, "member_id", req.Msg.UserID)
	return connect.NewResponse(&MemberResponse{Trip: toTrip(trip)}), nil
}

// RemoveMember takes a user out of a trip. The creator, and anyone who
// shares or paid for one of the trip's expenses, stays.
func (s *TripService) RemoveMember(ctx context.Context, req *connect.Request[MemberRequest]) (*connect.Response[MemberResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	trip, err := s.memberTrip(ctx, req.Msg.TripID, userID)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(trip.Members, req.Msg.UserID) {
		return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("user %s is not a member of this trip", req.Msg.UserID))
	}
	if req.Msg.UserID == trip.CreatedBy {
		return nil, connect.NewError(connect.CodeFailedPrecondition, fmt.Errorf("the trip creator cannot be removed"))
	}

	expenses, err := s.store.ListExpensesByTrip(ctx, trip.ID)
	if err != nil {
		slog.Error("RemoveMember failed to list expenses", "trip_id", trip.ID, "error", err)
		return nil, storageError(err)
	}
	for _, e := range expenses {
		if involves(e, req.Msg.UserID) {
			return nil, connect.NewError(connect.CodeFailedPrecondition,
				fmt.Errorf("user %s is part of expense %s", req.Msg.UserID, e.ID))
		}
	}

	if err := s.store.RemoveTripMember(ctx, trip.ID, req.Msg.UserID); err != nil {
		slog.Error("RemoveMember failed", "trip_id", trip.ID, "error", err)
		return nil, storageError(err)
	}
	trip.Members = slices.DeleteFunc(trip.Members, func(m string) bool { return m == req.Msg.UserID })

	slog.Info("Trip member removed", "trip_id", trip.ID, "member_id", req.Msg.UserID)
	return connect.NewResponse(&MemberResponse{Trip: toTrip(trip)}), nil
}

// CreateExpense records an expense with its initial payments.
func (s *TripService) CreateExpense(ctx context.Context, req *connect.Request[CreateExpenseRequest]) (*connect.Response[CreateExpenseResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	if !slices.Contains(req.Msg.Participants, userID) {
		return nil, connect.NewError(connect.CodePermissionDenied, fmt.Errorf("you must be a participant to create this expense"))
	}
	if req.Msg.TripID != "" {
		trip, err := s.memberTrip(ctx, req.Msg.TripID, userID)
		if err != nil {
			return nil, err
		}
		for _, participant := range req.Msg.Participants {
			if !slices.Contains(trip.Members, participant) {
				return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("participant '%s' is not a member of this trip", participant))
			}
		}
	}

	expense := &models.Expense{
		TripID:       req.Msg.TripID,
		Description:  req.Msg.Description,
		Participants: req.Msg.Participants,
		Payments:     make([]models.Payment, 0, len(req.Msg.Payments)),
	}
	for _, p := range req.Msg.Payments {
		if err := validatePayerID(p.PayerID, req.Msg.Participants); err != nil {
			slog.Error("CreateExpense payer validation failed", "error", err)
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
		expense.Payments = append(expense.Payments, fromPayment(p))
	}

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		slog.Error("CreateExpense failed", "error", err)
		return nil, storageError(err)
	}

	slog.Info("Expense created", "expense_id", expense.ID, "trip_id", expense.TripID, "payments", len(expense.Payments))
	return connect.NewResponse(&CreateExpenseResponse{Expense: toExpense(expense)}), nil
}

// GetExpense returns an expense the caller shares or paid for.
func (s *TripService) GetExpense(ctx context.Context, req *connect.Request[GetExpenseRequest]) (*connect.Response[GetExpenseResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	expense, err := s.involvedExpense(ctx, req.Msg.ExpenseID, userID)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&GetExpenseResponse{Expense: toExpense(expense)}), nil
}

// ListExpenses returns every expense of a trip, oldest first.
func (s *TripService) ListExpenses(ctx context.Context, req *connect.Request[ListExpensesRequest]) (*connect.Response[ListExpensesResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	if _, err := s.memberTrip(ctx, req.Msg.TripID, userID); err != nil {
		return nil, err
	}

	expenses, err := s.store.ListExpensesByTrip(ctx, req.Msg.TripID)
	if err != nil {
		slog.Error("ListExpenses failed", "trip_id", req.Msg.TripID, "error", err)
		return nil, storageError(err)
	}

	resp := &ListExpensesResponse{Expenses: make([]Expense, len(expenses))}
	for i, e := range expenses {
		resp.Expenses[i] = toExpense(e)
	}
	return connect.NewResponse(resp), nil
}

// AddPayment adds a contribution to an existing expense.
func (s *TripService) AddPayment(ctx context.Context, req *connect.Request[AddPaymentRequest]) (*connect.Response[AddPaymentResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	expense, err := s.involvedExpense(ctx, req.Msg.ExpenseID, userID)
	if err != nil {
		return nil, err
	}
	if err := validatePayerID(req.Msg.Payment.PayerID, expense.Participants); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	payment := fromPayment(req.Msg.Payment)
	payment.ExpenseID = expense.ID
	if err := s.store.AddPayment(ctx, &payment); err != nil {
		slog.Error("AddPayment failed", "expense_id", expense.ID, "error", err)
		return nil, storageError(err)
	}

	slog.Info("Payment added", "expense_id", expense.ID, "payment_id", payment.ID)
	return connect.NewResponse(&AddPaymentResponse{Payment: toPayment(payment)}), nil
}

// DeleteExpense removes an expense the caller shares or paid for, with all its payments.
func (s *TripService) DeleteExpense(ctx context.Context, req *connect.Request[DeleteExpenseRequest]) (*connect.Response[DeleteExpenseResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	expense, err := s.involvedExpense(ctx, req.Msg.ExpenseID, userID)
	if err != nil {
		return nil, err
	}
	if err := s.store.DeleteExpense(ctx, expense.ID); err != nil {
		slog.Error("DeleteExpense failed", "expense_id", expense.ID, "error", err)
		return nil, storageError(err)
	}

	slog.Info("Expense deleted", "expense_id", expense.ID, "trip_id", expense.TripID)
	return connect.NewResponse(&DeleteExpenseResponse{}), nil
}

// UpdatePayment replaces the details of one payment on an expense.
func (s *TripService) UpdatePayment(ctx context.Context, req *connect.Request[UpdatePaymentRequest]) (*connect.Response[UpdatePaymentResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	expense, err := s.involvedExpense(ctx, req.Msg.ExpenseID, userID)
	if err != nil {
		return nil, err
	}
	if !slices.ContainsFunc(expense.Payments, func(p models.Payment) bool { return p.ID == req.Msg.PaymentID }) {
		return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("payment %s not found on expense %s", req.Msg.PaymentID, expense.ID))
	}
	if err := validatePayerID(req.Msg.Payment.PayerID, expense.Participants); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	payment := fromPayment(req.Msg.Payment)
	payment.ID = req.Msg.PaymentID
	payment.ExpenseID = expense.ID
	if err := s.store.UpdatePayment(ctx, &payment); err != nil {
		slog.Error("UpdatePayment failed", "payment_id", payment.ID, "error", err)
		return nil, storageError(err)
	}

	slog.Info("Payment updated", "expense_id", expense.ID, "payment_id", payment.ID)
	return connect.NewResponse(&UpdatePaymentResponse{Payment: toPayment(payment)}), nil
}

// DeletePayment removes a payment from an expense.
func (s *TripService) DeletePayment(ctx context.Context, req *connect.Request[DeletePaymentRequest]) (*connect.Response[DeletePaymentResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	expense, err := s.involvedExpense(ctx, req.Msg.ExpenseID, userID)
	if err != nil {
		return nil, err
	}
	if !slices.ContainsFunc(expense.Payments, func(p models.Payment) bool { return p.ID == req.Msg.PaymentID }) {
		return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("payment %s not found on expense %s", req.Msg.PaymentID, expense.ID))
	}

	if err := s.store.DeletePayment(ctx, req.Msg.PaymentID); err != nil {
		slog.Error("DeletePayment failed", "payment_id", req.Msg.PaymentID, "error", err)
		return nil, storageError(err)
	}

	slog.Info("Payment deleted", "expense_id", expense.ID, "payment_id", req.Msg.PaymentID)
	return connect.NewResponse(&DeletePaymentResponse{}), nil
}

package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTrip(t *testing.T, env *testEnv, owner string, members ...string) Trip {
	t.Helper()
	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = env.id(m)
	}
	resp, err := env.trips.CreateTrip.CallUnary(context.Background(), as(env, owner, &CreateTripRequest{
		Title:     "Goa 2025",
		StartDate: "2025-03-20",
		EndDate:   "2025-03-25",
		Members:   ids,
	}))
	require.NoError(t, err)
	return resp.Msg.Trip
}

func TestTripService_CreateAndGetTrip(t *testing.T) {
	env := newTestEnv(t, testRatesProvider())
	ctx := context.Background()

	trip := createTrip(t, env, "kartik", "suman", "suman")
	assert.NotEmpty(t, trip.ID)
	assert.Equal(t, env.id("kartik"), trip.CreatedBy)
	assert.ElementsMatch(t, []string{env.id("kartik"), env.id("suman")}, trip.Members)

	got, err := env.trips.GetTrip.CallUnary(ctx, as(env, "suman", &GetTripRequest{TripID: trip.ID}))
	require.NoError(t, err)
	assert.Equal(t, trip.Title, got.Msg.Trip.Title)

	_, err = env.trips.GetTrip.CallUnary(ctx, as(env, "outsider", &GetTripRequest{TripID: trip.ID}))
	requireCode(t, err, connect.CodePermissionDenied)

	_, err = env.trips.GetTrip.CallUnary(ctx, as(env, "kartik", &GetTripRequest{TripID: "missing"}))
	requireCode(t, err, connect.CodeNotFound)
}

func TestTripService_CreateTrip_Validation(t *testing.T) {
	env := newTestEnv(t, testRatesProvider())
	ctx := context.Background()

	tests := []struct {
		name string
		req  *CreateTripRequest
	}{
		{"missing title", &CreateTripRequest{StartDate: "2025-03-20"}},
		{"bad date", &CreateTripRequest{Title: "Goa", StartDate: "20/03/2025"}},
		{"end before start", &CreateTripRequest{Title: "Goa", StartDate: "2025-03-20", EndDate: "2025-03-19"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.trips.CreateTrip.CallUnary(ctx, as(env, "kartik", tt.req))
			requireCode(t, err, connect.CodeInvalidArgument)
		})
	}

	_, err := env.trips.CreateTrip.CallUnary(ctx, connect.NewRequest(&CreateTripRequest{Title: "Goa", StartDate: "2025-03-20"}))
	requireCode(t, err, connect.CodeUnauthenticated)
}

func TestTripService_Expenses(t *testing.T) {
	env := newTestEnv(t, testRatesProvider())
	ctx := context.Background()
	trip := createTrip(t, env, "kartik", "suman", "nishtha")

	created, err := env.trips.CreateExpense.CallUnary(ctx, as(env, "kartik", &CreateExpenseRequest{
		TripID:       trip.ID,
		Description:  "Dinner day 1",
		Participants: []string{env.id("kartik"), env.id("suman"), env.id("nishtha")},
		Payments: []Payment{
			{PayerID: env.id("kartik"), Currency: "inr", Amount: 300, Mode: "UPI"},
		},
	}))
	require.NoError(t, err)
	expense := created.Msg.Expense
	require.Len(t, expense.Payments, 1)
	assert.Equal(t, "INR", expense.Payments[0].Currency)
	assert.Equal(t, "UPI", expense.Payments[0].Mode)

	t.Run("get", func(t *testing.T) {
		got, err := env.trips.GetExpense.CallUnary(ctx, as(env, "nishtha", &GetExpenseRequest{ExpenseID: expense.ID}))
		require.NoError(t, err)
		assert.Equal(t, "Dinner day 1", got.Msg.Expense.Description)

		_, err = env.trips.GetExpense.CallUnary(ctx, as(env, "outsider", &GetExpenseRequest{ExpenseID: expense.ID}))
		requireCode(t, err, connect.CodePermissionDenied)
	})

	t.Run("add and delete payment", func(t *testing.T) {
		added, err := env.trips.AddPayment.CallUnary(ctx, as(env, "suman", &AddPaymentRequest{
			ExpenseID: expense.ID,
			Payment:   Payment{PayerID: env.id("suman"), Currency: "USD", Amount: 2, Notes: "tip"},
		}))
		require.NoError(t, err)
		assert.Equal(t, "Cash", added.Msg.Payment.Mode)

		list, err := env.trips.ListExpenses.CallUnary(ctx, as(env, "kartik", &ListExpensesRequest{TripID: trip.ID}))
		require.NoError(t, err)
		require.Len(t, list.Msg.Expenses, 1)
		assert.Len(t, list.Msg.Expenses[0].Payments, 2)

		_, err = env.trips.DeletePayment.CallUnary(ctx, as(env, "suman", &DeletePaymentRequest{
			ExpenseID: expense.ID,
			PaymentID: added.Msg.Payment.ID,
		}))
		require.NoError(t, err)

		_, err = env.trips.DeletePayment.CallUnary(ctx, as(env, "suman", &DeletePaymentRequest{
			ExpenseID: expense.ID,
			PaymentID: added.Msg.Payment.ID,
		}))
		requireCode(t, err, connect.CodeNotFound)
	})

	t.Run("payer must be a participant", func(t *testing.T) {
		_, err := env.trips.AddPayment.CallUnary(ctx, as(env, "kartik", &AddPaymentRequest{
			ExpenseID: expense.ID,
			Payment:   Payment{PayerID: env.id("outsider"), Currency: "INR", Amount: 10},
		}))
		requireCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("invalid expenses", func(t *testing.T) {
		tests := []struct {
			name string
			req  *CreateExpenseRequest
			code connect.Code
		}{
			{
				name: "no participants",
				req:  &CreateExpenseRequest{Description: "Taxi"},
				code: connect.CodeInvalidArgument,
			},
			{
				name: "negative amount",
				req: &CreateExpenseRequest{
					Description:  "Taxi",
					Participants: []string{env.id("kartik")},
					Payments:     []Payment{{PayerID: env.id("kartik"), Currency: "INR", Amount: -5}},
				},
				code: connect.CodeInvalidArgument,
			},
			{
				name: "bad currency",
				req: &CreateExpenseRequest{
					Description:  "Taxi",
					Participants: []string{env.id("kartik")},
					Payments:     []Payment{{PayerID: env.id("kartik"), Currency: "RUPEES", Amount: 5}},
				},
				code: connect.CodeInvalidArgument,
			},
			{
				name: "caller not a participant",
				req: &CreateExpenseRequest{
					Description:  "Taxi",
					Participants: []string{env.id("suman")},
				},
				code: connect.CodePermissionDenied,
			},
			{
				name: "participant outside the trip",
				req: &CreateExpenseRequest{
					TripID:       trip.ID,
					Description:  "Taxi",
					Participants: []string{env.id("kartik"), env.id("outsider")},
					Payments:     []Payment{{PayerID: env.id("outsider"), Currency: "INR", Amount: 100}},
				},
				code: connect.CodeInvalidArgument,
			},
			{
				name: "unknown trip",
				req: &CreateExpenseRequest{
					TripID:       "missing",
					Description:  "Taxi",
					Participants: []string{env.id("kartik")},
				},
				code: connect.CodeNotFound,
			},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := env.trips.CreateExpense.CallUnary(ctx, as(env, "kartik", tt.req))
				requireCode(t, err, tt.code)
			})
		}
	})
}

func TestTripService_ListTrips(t *testing.T) {
	env := newTestEnv(t, testRatesProvider())
	ctx := context.Background()

	goa := createTrip(t, env, "kartik", "suman")
	spiti := createTrip(t, env, "suman", "nishtha")

	resp, err := env.trips.ListTrips.CallUnary(ctx, as(env, "suman", &ListTripsRequest{}))
	require.NoError(t, err)
	ids := make([]string, len(resp.Msg.Trips))
	for i, trip := range resp.Msg.Trips {
		ids[i] = trip.ID
	}
	assert.ElementsMatch(t, []string{goa.ID, spiti.ID}, ids)

	resp, err = env.trips.ListTrips.CallUnary(ctx, as(env, "outsider", &ListTripsRequest{}))
	require.NoError(t, err)
	assert.NotNil(t, resp.Msg.Trips)
	assert.Empty(t, resp.Msg.Trips)

	_, err = env.trips.ListTrips.CallUnary(ctx, connect.NewRequest(&ListTripsRequest{}))
	requireCode(t, err, connect.CodeUnauthenticated)
}

func TestTripService_Members(t *testing.T) {
	env := newTestEnv(t, testRatesProvider())
	ctx := context.Background()
	trip := createTrip(t, env, "kartik", "suman")

	createExpense(t, env, "kartik", trip.ID, []string{"kartik", "suman"},
		Payment{PayerID: env.id("kartik"), Currency: "INR", Amount: 200})

	t.Run("late joiner is settled with the trip", func(t *testing.T) {
		added, err := env.trips.AddMember.CallUnary(ctx, as(env, "suman", &MemberRequest{TripID: trip.ID, UserID: env.id("nishtha")}))
		require.NoError(t, err)
		assert.Contains(t, added.Msg.Trip.Members, env.id("nishtha"))

		createExpense(t, env, "nishtha", trip.ID, []string{"kartik", "suman", "nishtha"},
			Payment{PayerID: env.id("nishtha"), Currency: "INR", Amount: 300})

		resp, err := env.settlement.SettleTrip.CallUnary(ctx, as(env, "nishtha", &SettleTripRequest{TripID: trip.ID}))
		require.NoError(t, err)
		assert.Equal(t, []string{"suman needs to give INR 200.00 to nishtha"}, resp.Msg.Messages)
	})

	t.Run("adding twice keeps one membership", func(t *testing.T) {
		resp, err := env.trips.AddMember.CallUnary(ctx, as(env, "kartik", &MemberRequest{TripID: trip.ID, UserID: env.id("nishtha")}))
		require.NoError(t, err)
		assert.Len(t, resp.Msg.Trip.Members, 3)
	})

	t.Run("add rejections", func(t *testing.T) {
		_, err := env.trips.AddMember.CallUnary(ctx, as(env, "outsider", &MemberRequest{TripID: trip.ID, UserID: env.id("outsider")}))
		requireCode(t, err, connect.CodePermissionDenied)

		_, err = env.trips.AddMember.CallUnary(ctx, as(env, "kartik", &MemberRequest{TripID: trip.ID, UserID: "no-such-user"}))
		requireCode(t, err, connect.CodeNotFound)

		_, err = env.trips.AddMember.CallUnary(ctx, as(env, "kartik", &MemberRequest{TripID: trip.ID}))
		requireCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("remove rejections", func(t *testing.T) {
		_, err := env.trips.RemoveMember.CallUnary(ctx, as(env, "suman", &MemberRequest{TripID: trip.ID, UserID: env.id("kartik")}))
		requireCode(t, err, connect.CodeFailedPrecondition)

		_, err = env.trips.RemoveMember.CallUnary(ctx, as(env, "kartik", &MemberRequest{TripID: trip.ID, UserID: env.id("suman")}))
		requireCode(t, err, connect.CodeFailedPrecondition)

		_, err = env.trips.RemoveMember.CallUnary(ctx, as(env, "kartik", &MemberRequest{TripID: trip.ID, UserID: env.id("outsider")}))
		requireCode(t, err, connect.CodeNotFound)
	})

	t.Run("remove a member without expenses", func(t *testing.T) {
		_, err := env.trips.AddMember.CallUnary(ctx, as(env, "kartik", &MemberRequest{TripID: trip.ID, UserID: env.id("outsider")}))
		require.NoError(t, err)

		resp, err := env.trips.RemoveMember.CallUnary(ctx, as(env, "kartik", &MemberRequest{TripID: trip.ID, UserID: env.id("outsider")}))
		require.NoError(t, err)
		assert.NotContains(t, resp.Msg.Trip.Members, env.id("outsider"))

		_, err = env.trips.GetTrip.CallUnary(ctx, as(env, "outsider", &GetTripRequest{TripID: trip.ID}))
		requireCode(t, err, connect.CodePermissionDenied)
	})
}

func TestTripService_UpdatePaymentAndDeleteExpense(t *testing.T) {
	env := newTestEnv(t, testRatesProvider())
	ctx := context.Background()
	trip := createTrip(t, env, "kartik", "suman")

	created, err := env.trips.CreateExpense.CallUnary(ctx, as(env, "kartik", &CreateExpenseRequest{
		TripID:       trip.ID,
		Description:  "Scooter rental",
		Participants: []string{env.id("kartik"), env.id("suman")},
		Payments:     []Payment{{PayerID: env.id("kartik"), Currency: "INR", Amount: 400, Mode: "UPI"}},
	}))
	require.NoError(t, err)
	expense := created.Msg.Expense
	paymentID := expense.Payments[0].ID

	t.Run("update payment", func(t *testing.T) {
		updated, err := env.trips.UpdatePayment.CallUnary(ctx, as(env, "suman", &UpdatePaymentRequest{
			ExpenseID: expense.ID,
			PaymentID: paymentID,
			Payment:   Payment{PayerID: env.id("suman"), Currency: "inr", Amount: 600},
		}))
		require.NoError(t, err)
		assert.Equal(t, paymentID, updated.Msg.Payment.ID)
		assert.Equal(t, "INR", updated.Msg.Payment.Currency)
		assert.Equal(t, "Cash", updated.Msg.Payment.Mode)

		resp, err := env.settlement.SettleTrip.CallUnary(ctx, as(env, "kartik", &SettleTripRequest{TripID: trip.ID}))
		require.NoError(t, err)
		assert.Equal(t, []string{"kartik needs to give INR 300.00 to suman"}, resp.Msg.Messages)
	})

	t.Run("update rejections", func(t *testing.T) {
		_, err := env.trips.UpdatePayment.CallUnary(ctx, as(env, "outsider", &UpdatePaymentRequest{
			ExpenseID: expense.ID,
			PaymentID: paymentID,
			Payment:   Payment{PayerID: env.id("kartik"), Currency: "INR", Amount: 1},
		}))
		requireCode(t, err, connect.CodePermissionDenied)

		_, err = env.trips.UpdatePayment.CallUnary(ctx, as(env, "kartik", &UpdatePaymentRequest{
			ExpenseID: expense.ID,
			PaymentID: paymentID,
			Payment:   Payment{PayerID: env.id("nishtha"), Currency: "INR", Amount: 1},
		}))
		requireCode(t, err, connect.CodeInvalidArgument)

		_, err = env.trips.UpdatePayment.CallUnary(ctx, as(env, "kartik", &UpdatePaymentRequest{
			ExpenseID: expense.ID,
			PaymentID: "missing",
			Payment:   Payment{PayerID: env.id("kartik"), Currency: "INR", Amount: 1},
		}))
		requireCode(t, err, connect.CodeNotFound)
	})

	t.Run("delete expense", func(t *testing.T) {
		_, err := env.trips.DeleteExpense.CallUnary(ctx, as(env, "outsider", &DeleteExpenseRequest{ExpenseID: expense.ID}))
		requireCode(t, err, connect.CodePermissionDenied)

		_, err = env.trips.DeleteExpense.CallUnary(ctx, as(env, "suman", &DeleteExpenseRequest{ExpenseID: expense.ID}))
		require.NoError(t, err)

		list, err := env.trips.ListExpenses.CallUnary(ctx, as(env, "kartik", &ListExpensesRequest{TripID: trip.ID}))
		require.NoError(t, err)
		assert.Empty(t, list.Msg.Expenses)

		_, err = env.trips.DeleteExpense.CallUnary(ctx, as(env, "suman", &DeleteExpenseRequest{ExpenseID: expense.ID}))
		requireCode(t, err, connect.CodeNotFound)

		// A member with no remaining expenses can now leave
		_, err = env.trips.RemoveMember.CallUnary(ctx, as(env, "kartik", &MemberRequest{TripID: trip.ID, UserID: env.id("suman")}))
		require.NoError(t, err)
	})
}

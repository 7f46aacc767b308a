package service

// Fully-qualified procedure names, served under /tripsplit.v1.<Service>/.
const (
	AuthServiceName       = "tripsplit.v1.AuthService"
	TripServiceName       = "tripsplit.v1.TripService"
	SettlementServiceName = "tripsplit.v1.SettlementService"

	AuthServiceRegisterProcedure = "/" + AuthServiceName + "/Register"
	AuthServiceLoginProcedure    = "/" + AuthServiceName + "/Login"

	TripServiceCreateTripProcedure    = "/" + TripServiceName + "/CreateTrip"
	TripServiceGetTripProcedure       = "/" + TripServiceName + "/GetTrip"
	TripServiceListTripsProcedure     = "/" + TripServiceName + "/ListTrips"
	TripServiceAddMemberProcedure     = "/" + TripServiceName + "/AddMember"
	TripServiceRemoveMemberProcedure  = "/" + TripServiceName + "/RemoveMember"
	TripServiceCreateExpenseProcedure = "/" + TripServiceName + "/CreateExpense"
	TripServiceGetExpenseProcedure    = "/" + TripServiceName + "/GetExpense"
	TripServiceListExpensesProcedure  = "/" + TripServiceName + "/ListExpenses"
	TripServiceDeleteExpenseProcedure = "/" + TripServiceName + "/DeleteExpense"
	TripServiceAddPaymentProcedure    = "/" + TripServiceName + "/AddPayment"
	TripServiceUpdatePaymentProcedure = "/" + TripServiceName + "/UpdatePayment"
	TripServiceDeletePaymentProcedure = "/" + TripServiceName + "/DeletePayment"

	SettlementServiceDistributeProcedure = "/" + SettlementServiceName + "/Distribute"
	SettlementServiceSettleTripProcedure = "/" + SettlementServiceName + "/SettleTrip"
)

// User is the public view of an account.
type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FullName  string `json:"full_name"`
	Email     string `json:"email"`
	Currency  string `json:"currency"`
	CreatedAt int64  `json:"created_at"`
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32,alphanum"`
	FullName string `json:"full_name" validate:"required,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Currency string `json:"currency,omitempty" validate:"omitempty,len=3,alpha"`
}

type RegisterResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type Trip struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	StartDate string   `json:"start_date"`
	EndDate   string   `json:"end_date,omitempty"`
	CreatedBy string   `json:"created_by"`
	Members   []string `json:"members"`
	CreatedAt int64    `json:"created_at"`
}

type CreateTripRequest struct {
	Title     string   `json:"title" validate:"required,max=128"`
	StartDate string   `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string   `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Members   []string `json:"members,omitempty" validate:"dive,required"`
}

type CreateTripResponse struct {
	Trip Trip `json:"trip"`
}

type GetTripRequest struct {
	TripID string `json:"trip_id" validate:"required"`
}

type GetTripResponse struct {
	Trip Trip `json:"trip"`
}

type ListTripsRequest struct{}

type ListTripsResponse struct {
	Trips []Trip `json:"trips"`
}

// MemberRequest names a user to add to or remove from a trip.
type MemberRequest struct {
	TripID string `json:"trip_id" validate:"required"`
	UserID string `json:"user_id" validate:"required"`
}

type MemberResponse struct {
	Trip Trip `json:"trip"`
}

// Payment is one contribution towards an expense.
type Payment struct {
	ID       string  `json:"id,omitempty"`
	PayerID  string  `json:"payer_id" validate:"required"`
	Currency string  `json:"currency" validate:"required,len=3,alpha"`
	Amount   float64 `json:"amount" validate:"gte=0"`
	Mode     string  `json:"mode,omitempty" validate:"omitempty,oneof=Cash UPI Card NetBanking"`
	PaidAt   int64   `json:"paid_at,omitempty"`
	Notes    string  `json:"notes,omitempty" validate:"max=256"`
}

type Expense struct {
	ID           string    `json:"id"`
	TripID       string    `json:"trip_id,omitempty"`
	Description  string    `json:"description"`
	Participants []string  `json:"participants"`
	Payments     []Payment `json:"payments"`
	CreatedAt    int64     `json:"created_at"`
}

type CreateExpenseRequest struct {
	TripID       string    `json:"trip_id,omitempty"`
	Description  string    `json:"description" validate:"required,max=128"`
	Participants []string  `json:"participants" validate:"required,min=1,unique,dive,required"`
	Payments     []Payment `json:"payments" validate:"dive"`
}

type CreateExpenseResponse struct {
	Expense Expense `json:"expense"`
}

type GetExpenseRequest struct {
	ExpenseID string `json:"expense_id" validate:"required"`
}

type GetExpenseResponse struct {
	Expense Expense `json:"expense"`
}

type ListExpensesRequest struct {
	TripID string `json:"trip_id" validate:"required"`
}

type ListExpensesResponse struct {
	Expenses []Expense `json:"expenses"`
}

type AddPaymentRequest struct {
	ExpenseID string  `json:"expense_id" validate:"required"`
	Payment   Payment `json:"payment"`
}

type AddPaymentResponse struct {
	Payment Payment `json:"payment"`
}

type UpdatePaymentRequest struct {
	ExpenseID string  `json:"expense_id" validate:"required"`
	PaymentID string  `json:"payment_id" validate:"required"`
	Payment   Payment `json:"payment"`
}

type UpdatePaymentResponse struct {
	Payment Payment `json:"payment"`
}

type DeleteExpenseRequest struct {
	ExpenseID string `json:"expense_id" validate:"required"`
}

type DeleteExpenseResponse struct{}

type DeletePaymentRequest struct {
	ExpenseID string `json:"expense_id" validate:"required"`
	PaymentID string `json:"payment_id" validate:"required"`
}

type DeletePaymentResponse struct{}

// Transfer is one "who pays whom" instruction in the display currency.
type Transfer struct {
	FromUserID string `json:"from_user_id"`
	ToUserID   string `json:"to_user_id"`
	FromName   string `json:"from_name"`
	ToName     string `json:"to_name"`
	Currency   string `json:"currency"`
	Amount     string `json:"amount"`
}

type DistributeRequest struct {
	ExpenseIDs []string `json:"expense_ids" validate:"required,min=1,dive,required"`
	// Currency is the display currency. Empty means the caller's preferred currency.
	Currency string `json:"currency,omitempty" validate:"omitempty,len=3,alpha"`
}

type SettleTripRequest struct {
	TripID   string `json:"trip_id" validate:"required"`
	Currency string `json:"currency,omitempty" validate:"omitempty,len=3,alpha"`
}

type SettlementResponse struct {
	Currency  string     `json:"currency"`
	Messages  []string   `json:"messages"`
	Transfers []Transfer `json:"transfers"`
}

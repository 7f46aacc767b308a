package service

import (
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// NewAuthServiceHandler builds an HTTP handler serving every AuthService procedure.
// It returns the path prefix to mount the handler on.
func NewAuthServiceHandler(svc *AuthService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{WithJSON()}, opts...)
	mux := http.NewServeMux()
	mux.Handle(AuthServiceRegisterProcedure, connect.NewUnaryHandler(AuthServiceRegisterProcedure, svc.Register, opts...))
	mux.Handle(AuthServiceLoginProcedure, connect.NewUnaryHandler(AuthServiceLoginProcedure, svc.Login, opts...))
	return "/" + AuthServiceName + "/", mux
}

// NewTripServiceHandler builds an HTTP handler serving every TripService procedure.
func NewTripServiceHandler(svc *TripService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{WithJSON()}, opts...)
	mux := http.NewServeMux()
	mux.Handle(TripServiceCreateTripProcedure, connect.NewUnaryHandler(TripServiceCreateTripProcedure, svc.CreateTrip, opts...))
	mux.Handle(TripServiceGetTripProcedure, connect.NewUnaryHandler(TripServiceGetTripProcedure, svc.GetTrip, opts...))
	mux.Handle(TripServiceListTripsProcedure, connect.NewUnaryHandler(TripServiceListTripsProcedure, svc.ListTrips, opts...))
	mux.Handle(TripServiceAddMemberProcedure, connect.NewUnaryHandler(TripServiceAddMemberProcedure, svc.AddMember, opts...))
	mux.Handle(TripServiceRemoveMemberProcedure, connect.NewUnaryHandler(TripServiceRemoveMemberProcedure, svc.RemoveMember, opts...))
	mux.Handle(TripServiceCreateExpenseProcedure, connect.NewUnaryHandler(TripServiceCreateExpenseProcedure, svc.CreateExpense, opts...))
	mux.Handle(TripServiceGetExpenseProcedure, connect.NewUnaryHandler(TripServiceGetExpenseProcedure, svc.GetExpense, opts...))
	mux.Handle(TripServiceListExpensesProcedure, connect.NewUnaryHandler(TripServiceListExpensesProcedure, svc.ListExpenses, opts...))
	mux.Handle(TripServiceDeleteExpenseProcedure, connect.NewUnaryHandler(TripServiceDeleteExpenseProcedure, svc.DeleteExpense, opts...))
	mux.Handle(TripServiceAddPaymentProcedure, connect.NewUnaryHandler(TripServiceAddPaymentProcedure, svc.AddPayment, opts...))
	mux.Handle(TripServiceUpdatePaymentProcedure, connect.NewUnaryHandler(TripServiceUpdatePaymentProcedure, svc.UpdatePayment, opts...))
	mux.Handle(TripServiceDeletePaymentProcedure, connect.NewUnaryHandler(TripServiceDeletePaymentProcedure, svc.DeletePayment, opts...))
	return "/" + TripServiceName + "/", mux
}

// NewSettlementServiceHandler builds an HTTP handler serving every SettlementService procedure.
func NewSettlementServiceHandler(svc *SettlementService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{WithJSON()}, opts...)
	mux := http.NewServeMux()
	mux.Handle(SettlementServiceDistributeProcedure, connect.NewUnaryHandler(SettlementServiceDistributeProcedure, svc.Distribute, opts...))
	mux.Handle(SettlementServiceSettleTripProcedure, connect.NewUnaryHandler(SettlementServiceSettleTripProcedure, svc.SettleTrip, opts...))
	return "/" + SettlementServiceName + "/", mux
}

// AuthServiceClient calls AuthService over HTTP.
type AuthServiceClient struct {
	Register *connect.Client[RegisterRequest, RegisterResponse]
	Login    *connect.Client[LoginRequest, LoginResponse]
}

// NewAuthServiceClient returns a client for the service at baseURL.
func NewAuthServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *AuthServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{WithJSON()}, opts...)
	return &AuthServiceClient{
		Register: connect.NewClient[RegisterRequest, RegisterResponse](httpClient, baseURL+AuthServiceRegisterProcedure, opts...),
		Login:    connect.NewClient[LoginRequest, LoginResponse](httpClient, baseURL+AuthServiceLoginProcedure, opts...),
	}
}

// TripServiceClient calls TripService over HTTP.
type TripServiceClient struct {
	CreateTrip    *connect.Client[CreateTripRequest, CreateTripResponse]
	GetTrip       *connect.Client[GetTripRequest, GetTripResponse]
	ListTrips     *connect.Client[ListTripsRequest, ListTripsResponse]
	AddMember     *connect.Client[MemberRequest, MemberResponse]
	RemoveMember  *connect.Client[MemberRequest, MemberResponse]
	CreateExpense *connect.Client[CreateExpenseRequest, CreateExpenseResponse]
	GetExpense    *connect.Client[GetExpenseRequest, GetExpenseResponse]
	ListExpenses  *connect.Client[ListExpensesRequest, ListExpensesResponse]
	DeleteExpense *connect.Client[DeleteExpenseRequest, DeleteExpenseResponse]
	AddPayment    *connect.Client[AddPaymentRequest, AddPaymentResponse]
	UpdatePayment *connect.Client[UpdatePaymentRequest, UpdatePaymentResponse]
	DeletePayment *connect.Client[DeletePaymentRequest, DeletePaymentResponse]
}

// NewTripServiceClient returns a client for the service at baseURL.
func NewTripServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *TripServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{WithJSON()}, opts...)
	return &TripServiceClient{
		CreateTrip:    connect.NewClient[CreateTripRequest, CreateTripResponse](httpClient, baseURL+TripServiceCreateTripProcedure, opts...),
		GetTrip:       connect.NewClient[GetTripRequest, GetTripResponse](httpClient, baseURL+TripServiceGetTripProcedure, opts...),
		ListTrips:     connect.NewClient[ListTripsRequest, ListTripsResponse](httpClient, baseURL+TripServiceListTripsProcedure, opts...),
		AddMember:     connect.NewClient[MemberRequest, MemberResponse](httpClient, baseURL+TripServiceAddMemberProcedure, opts...),
		RemoveMember:  connect.NewClient[MemberRequest, MemberResponse](httpClient, baseURL+TripServiceRemoveMemberProcedure, opts...),
		CreateExpense: connect.NewClient[CreateExpenseRequest, CreateExpenseResponse](httpClient, baseURL+TripServiceCreateExpenseProcedure, opts...),
		GetExpense:    connect.NewClient[GetExpenseRequest, GetExpenseResponse](httpClient, baseURL+TripServiceGetExpenseProcedure, opts...),
		ListExpenses:  connect.NewClient[ListExpensesRequest, ListExpensesResponse](httpClient, baseURL+TripServiceListExpensesProcedure, opts...),
		DeleteExpense: connect.NewClient[DeleteExpenseRequest, DeleteExpenseResponse](httpClient, baseURL+TripServiceDeleteExpenseProcedure, opts...),
		AddPayment:    connect.NewClient[AddPaymentRequest, AddPaymentResponse](httpClient, baseURL+TripServiceAddPaymentProcedure, opts...),
		UpdatePayment: connect.NewClient[UpdatePaymentRequest, UpdatePaymentResponse](httpClient, baseURL+TripServiceUpdatePaymentProcedure, opts...),
		DeletePayment: connect.NewClient[DeletePaymentRequest, DeletePaymentResponse](httpClient, baseURL+TripServiceDeletePaymentProcedure, opts...),
	}
}

// SettlementServiceClient calls SettlementService over HTTP.
type SettlementServiceClient struct {
	Distribute *connect.Client[DistributeRequest, SettlementResponse]
	SettleTrip *connect.Client[SettleTripRequest, SettlementResponse]
}

// NewSettlementServiceClient returns a client for the service at baseURL.
func NewSettlementServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *SettlementServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{WithJSON()}, opts...)
	return &SettlementServiceClient{
		Distribute: connect.NewClient[DistributeRequest, SettlementResponse](httpClient, baseURL+SettlementServiceDistributeProcedure, opts...),
		SettleTrip: connect.NewClient[SettleTripRequest, SettlementResponse](httpClient, baseURL+SettlementServiceSettleTripProcedure, opts...),
	}
}

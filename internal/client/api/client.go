package api

import (
	"context"

	"github.com/dmitrijs2005/expensekeeper/internal/client/models"
)

// DefaultBaseURL is the hosted backend the original web client talks to.
const DefaultBaseURL = "https://expense-tracker-system-backend-1.onrender.com/api"

// Client is the backend contract used by the auth service and the expense
// list controller.
type Client interface {
	Register(ctx context.Context, req RegisterRequest) (string, error)
	Login(ctx context.Context, req LoginRequest) (LoginResponse, error)
	ListExpenses(ctx context.Context) ([]models.Expense, error)
	CreateExpense(ctx context.Context, e models.NewExpense) (models.Expense, error)
	UpdateExpense(ctx context.Context, id string, p models.Patch) error
	DeleteExpense(ctx context.Context, id string) error
}

// TokenSource yields the current bearer token. session.Store satisfies it.
type TokenSource interface {
	Get(ctx context.Context) (string, bool, error)
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type LoginResponse struct {
	Token   string `json:"token"`
	Message string `json:"message"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type listResponse struct {
	Expenses []models.Expense `json:"expenses"`
}

type createResponse struct {
	Expense models.Expense `json:"expense"`
}

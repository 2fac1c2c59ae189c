// Package apitest runs an in-process fake of the expense tracker backend for
// tests of the api client, the expense list controller and the CLI.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"

	"github.com/dmitrijs2005/expensekeeper/internal/client/models"
)

var signingKey = []byte("apitest-secret")

type user struct {
	name     string
	password string
	role     string
}

// Request is a recorded call.
type Request struct {
	Method        string
	Path          string
	Authorization string
	RequestID     string
}

// Backend mimics the REST API: /api/auth/{register,login},
// /api/expense and /api/expense/{id}. Expenses are kept per user.
type Backend struct {
	Server *httptest.Server

	mu       sync.Mutex
	users    map[string]user
	tokens   map[string]string
	expenses map[string][]models.Expense
	failures map[string]int
	requests []Request
	nextID   int
}

// NewBackend starts a backend that is closed when t finishes.
func NewBackend(t testing.TB) *Backend {
	b := &Backend{
		users:    make(map[string]user),
		tokens:   make(map[string]string),
		expenses: make(map[string][]models.Expense),
		failures: make(map[string]int),
	}

	r := mux.NewRouter()
	r.Use(b.record)
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/register", b.register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", b.login).Methods(http.MethodPost)
	api.HandleFunc("/expense", b.authed(b.list)).Methods(http.MethodGet)
	api.HandleFunc("/expense", b.authed(b.create)).Methods(http.MethodPost)
	api.HandleFunc("/expense/{id}", b.authed(b.update)).Methods(http.MethodPatch)
	api.HandleFunc("/expense/{id}", b.authed(b.remove)).Methods(http.MethodDelete)

	b.Server = httptest.NewServer(r)
	t.Cleanup(b.Server.Close)
	return b
}

// URL is the API base URL, ending in /api.
func (b *Backend) URL() string {
	return b.Server.URL + "/api"
}

func (b *Backend) AddUser(name, email, password, role string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.users[email] = user{name: name, password: password, role: role}
}

// IssueToken returns a valid bearer token for email without a login call.
func (b *Backend) IssueToken(email string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.issueLocked(email)
}

func (b *Backend) issueLocked(email string) string {
	role := b.users[email].role
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":   email,
		"role": role,
		"n":    len(b.tokens),
	}).SignedString(signingKey)
	if err != nil {
		panic(err)
	}
	b.tokens[token] = email
	return token
}

// RevokeTokens invalidates every issued token.
func (b *Backend) RevokeTokens() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens = make(map[string]string)
}

// Seed stores expenses for email, assigning ids, and returns them.
func (b *Backend) Seed(email string, list ...models.Expense) []models.Expense {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.Expense, 0, len(list))
	for _, e := range list {
		e.ID = b.newIDLocked()
		b.expenses[email] = append(b.expenses[email], e)
		out = append(out, e)
	}
	return out
}

func (b *Backend) Expenses(email string) []models.Expense {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.Expense(nil), b.expenses[email]...)
}

// Fail makes requests matching method and path (relative to /api) answer
// with status until cleared with status 0.
func (b *Backend) Fail(method, path string, status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := method + " /api" + path
	if status == 0 {
		delete(b.failures, key)
		return
	}
	b.failures[key] = status
}

func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Request(nil), b.requests...)
}

// Count returns how many recorded requests match method and have a path
// starting with /api+prefix.
func (b *Backend) Count(method, prefix string) int {
	n := 0
	for _, r := range b.Requests() {
		if r.Method == method && strings.HasPrefix(r.Path, "/api"+prefix) {
			n++
		}
	}
	return n
}

func (b *Backend) newIDLocked() string {
	b.nextID++
	return fmt.Sprintf("exp-%d", b.nextID)
}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.requests = append(b.requests, Request{
			Method:        r.Method,
			Path:          r.URL.Path,
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get("X-Request-ID"),
		})
		status, failing := b.failures[r.Method+" "+r.URL.Path]
		b.mu.Unlock()

		if failing {
			writeJSON(w, status, map[string]string{"message": http.StatusText(status)})
			return
		}
		next.ServeHTTP(w, r)
	})
}

type authedHandler func(w http.ResponseWriter, r *http.Request, email string)

func (b *Backend) authed(h authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "No token provided"})
			return
		}
		b.mu.Lock()
		email, known := b.tokens[token]
		b.mu.Unlock()
		if !known {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid token"})
			return
		}
		h(w, r, email)
	}
}

func (b *Backend) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name, Email, Password, Role string
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Malformed body"})
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" || req.Role == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "All fields are required"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.users[req.Email]; exists {
		writeJSON(w, http.StatusConflict, map[string]string{"message": "User already exists"})
		return
	}
	b.users[req.Email] = user{name: req.Name, password: req.Password, role: req.Role}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "User registered successfully"})
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email, Password, Role string
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Malformed body"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.users[req.Email]
	if !ok || u.password != req.Password || u.role != req.Role {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"token":   b.issueLocked(req.Email),
		"message": "Login successful",
	})
}

func (b *Backend) list(w http.ResponseWriter, r *http.Request, email string) {
	b.mu.Lock()
	list := append([]models.Expense{}, b.expenses[email]...)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"expenses": list})
}

func (b *Backend) create(w http.ResponseWriter, r *http.Request, email string) {
	var e models.Expense
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Malformed body"})
		return
	}
	if e.Description == "" || e.Date.IsZero() || !e.Category.Valid() || !e.PaymentMethod.Valid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "All fields are required"})
		return
	}

	b.mu.Lock()
	e.ID = b.newIDLocked()
	b.expenses[email] = append(b.expenses[email], e)
	b.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]any{"expense": e, "message": "Expense added"})
}

func (b *Backend) update(w http.ResponseWriter, r *http.Request, email string) {
	var p models.Patch
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Malformed body"})
		return
	}
	id := mux.Vars(r)["id"]

	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.expenses[email]
	for i := range list {
		if list[i].ID == id {
			list[i] = p.Apply(list[i])
			writeJSON(w, http.StatusOK, map[string]any{"expense": list[i], "message": "Expense updated"})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Expense not found"})
}

func (b *Backend) remove(w http.ResponseWriter, r *http.Request, email string) {
	id := mux.Vars(r)["id"]

	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.expenses[email]
	for i := range list {
		if list[i].ID == id {
			b.expenses[email] = append(list[:i:i], list[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"message": "Expense deleted"})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Expense not found"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

package http

import (
	"net/http"

	"productivity/internal/services"
)

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var in services.ExpenseInput
	if err := DecodeJSON(w, r, &in); err != nil {
		WriteError(r.Context(), w, err)
		return
	}
	e, err := s.svc.Expenses.Create(r.Context(), identity(r), in)
	if err != nil {
		WriteError(r.Context(), w, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(e).Write(r.Context(), w)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.Expenses.List(r.Context(), identity(r), r.URL.Query())
	if err != nil {
		WriteError(r.Context(), w, err)
		return
	}
	NewJSONResponse().Body(res).Write(r.Context(), w)
}

func (s *Server) handleExpenseSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.svc.Expenses.Summary(r.Context(), identity(r), r.URL.Query())
	if err != nil {
		WriteError(r.Context(), w, err)
		return
	}
	NewJSONResponse().Body(sum).Write(r.Context(), w)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	e, err := s.svc.Expenses.Get(r.Context(), identity(r), PathID(r))
	if err != nil {
		WriteError(r.Context(), w, err)
		return
	}
	NewJSONResponse().Body(e).Write(r.Context(), w)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	var in services.ExpenseInput
	if err := DecodeJSON(w, r, &in); err != nil {
		WriteError(r.Context(), w, err)
		return
	}
	e, err := s.svc.Expenses.Update(r.Context(), identity(r), PathID(r), in)
	if err != nil {
		WriteError(r.Context(), w, err)
		return
	}
	NewJSONResponse().Body(e).Write(r.Context(), w)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id := PathID(r)
	if err := s.svc.Expenses.Delete(r.Context(), identity(r), id); err != nil {
		WriteError(r.Context(), w, err)
		return
	}
	NewJSONResponse().Body(DeletedBody{Message: "Expense deleted", ID: id}).Write(r.Context(), w)
}

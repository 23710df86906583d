package http

import "net/http"

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.svc.Dashboard.Dashboard(r.Context(), identity(r))
	if err != nil {
		WriteError(r.Context(), w, err)
		return
	}
	NewJSONResponse().Body(d).Write(r.Context(), w)
}

func (s *Server) handleAdminUsers(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.Admin.ListUsers(r.Context(), identity(r), r.URL.Query())
	if err != nil {
		WriteError(r.Context(), w, err)
		return
	}
	NewJSONResponse().Body(res).Write(r.Context(), w)
}

func (s *Server) handleAdminExpenses(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.Admin.ListExpenses(r.Context(), identity(r), r.URL.Query())
	if err != nil {
		WriteError(r.Context(), w, err)
		return
	}
	NewJSONResponse().Body(res).Write(r.Context(), w)
}

func (s *Server) handleAdminTasks(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.Admin.ListTasks(r.Context(), identity(r), r.URL.Query())
	if err != nil {
		WriteError(r.Context(), w, err)
		return
	}
	NewJSONResponse().Body(res).Write(r.Context(), w)
}

func (s *Server) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.Admin.Stats(r.Context(), identity(r))
	if err != nil {
		WriteError(r.Context(), w, err)
		return
	}
	NewJSONResponse().Body(stats).Write(r.Context(), w)
}

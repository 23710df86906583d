package http

import (
	"net/http"

	"productivity/internal/services"
)

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var in services.TaskInput
	if err := DecodeJSON(w, r, &in); err != nil {
		WriteError(r.Context(), w, err)
		return
	}
	t, err := s.svc.Tasks.Create(r.Context(), identity(r), in)
	if err != nil {
		WriteError(r.Context(), w, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(t).Write(r.Context(), w)
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.Tasks.List(r.Context(), identity(r), r.URL.Query())
	if err != nil {
		WriteError(r.Context(), w, err)
		return
	}
	NewJSONResponse().Body(res).Write(r.Context(), w)
}

func (s *Server) handleTaskSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.svc.Tasks.Summary(r.Context(), identity(r), r.URL.Query())
	if err != nil {
		WriteError(r.Context(), w, err)
		return
	}
	NewJSONResponse().Body(sum).Write(r.Context(), w)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	t, err := s.svc.Tasks.Get(r.Context(), identity(r), PathID(r))
	if err != nil {
		WriteError(r.Context(), w, err)
		return
	}
	NewJSONResponse().Body(t).Write(r.Context(), w)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var in services.TaskInput
	if err := DecodeJSON(w, r, &in); err != nil {
		WriteError(r.Context(), w, err)
		return
	}
	t, err := s.svc.Tasks.Update(r.Context(), identity(r), PathID(r), in)
	if err != nil {
		WriteError(r.Context(), w, err)
		return
	}
	NewJSONResponse().Body(t).Write(r.Context(), w)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id := PathID(r)
	if err := s.svc.Tasks.Delete(r.Context(), identity(r), id); err != nil {
		WriteError(r.Context(), w, err)
		return
	}
	NewJSONResponse().Body(DeletedBody{Message: "Task deleted", ID: id}).Write(r.Context(), w)
}

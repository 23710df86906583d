package http

import (
	"net/http"

	"productivity/internal/services"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	if err := DecodeJSON(w, r, &in); err != nil {
		WriteError(r.Context(), w, err)
		return
	}
	session, err := s.svc.Accounts.Register(r.Context(), in)
	if err != nil {
		WriteError(r.Context(), w, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(session).Write(r.Context(), w)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in services.LoginInput
	if err := DecodeJSON(w, r, &in); err != nil {
		WriteError(r.Context(), w, err)
		return
	}
	session, err := s.svc.Accounts.Login(r.Context(), in)
	if err != nil {
		WriteError(r.Context(), w, err)
		return
	}
	NewJSONResponse().Body(session).Write(r.Context(), w)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var in struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := DecodeJSON(w, r, &in); err != nil {
		WriteError(r.Context(), w, err)
		return
	}
	pair, err := s.svc.Accounts.Refresh(r.Context(), in.RefreshToken)
	if err != nil {
		WriteError(r.Context(), w, err)
		return
	}
	NewJSONResponse().Body(pair).Write(r.Context(), w)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Accounts.Logout(r.Context(), identity(r)); err != nil {
		WriteError(r.Context(), w, err)
		return
	}
	NewJSONResponse().Message("Logged out").Write(r.Context(), w)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	u, err := s.svc.Accounts.Me(r.Context(), identity(r))
	if err != nil {
		WriteError(r.Context(), w, err)
		return
	}
	NewJSONResponse().Body(u).Write(r.Context(), w)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var in services.ProfileInput
	if err := DecodeJSON(w, r, &in); err != nil {
		WriteError(r.Context(), w, err)
		return
	}
	u, err := s.svc.Accounts.UpdateProfile(r.Context(), identity(r), in)
	if err != nil {
		WriteError(r.Context(), w, err)
		return
	}
	NewJSONResponse().Body(u).Write(r.Context(), w)
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var in services.PasswordInput
	if err := DecodeJSON(w, r, &in); err != nil {
		WriteError(r.Context(), w, err)
		return
	}
	if err := s.svc.Accounts.ChangePassword(r.Context(), identity(r), in); err != nil {
		WriteError(r.Context(), w, err)
		return
	}
	NewJSONResponse().Message("Password updated").Write(r.Context(), w)
}

package routes

import (
	"errors"
	"net/http"
	"time"

	"ordermind/ordermind/config"
	"ordermind/ordermind/controllers"
	"ordermind/ordermind/middlewares"
	"ordermind/ordermind/types"

	"github.com/go-chi/chi/v5"
)

func AuthRoutes(ctrl *controllers.AuthController, cfg config.Config) chi.Router {
	r := chi.NewRouter()
	r.Post("/signup", func(w http.ResponseWriter, r *http.Request) {
		var req types.SignupRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		user, err := ctrl.Signup(r.Context(), req)
		switch {
		case errors.Is(err, controllers.ErrMissingFields), errors.Is(err, controllers.ErrPasswordMismatch):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, controllers.ErrUserExists):
			writeError(w, http.StatusConflict, err.Error())
		case err != nil:
			writeInternal(w, r, err)
		default:
			writeJSON(w, http.StatusCreated, user)
		}
	})
	r.Post("/signin", func(w http.ResponseWriter, r *http.Request) {
		var req types.SigninRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		token, err := ctrl.Signin(r.Context(), req)
		switch {
		case errors.Is(err, controllers.ErrMissingFields):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, controllers.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, err.Error())
		case err != nil:
			writeInternal(w, r, err)
		default:
			http.SetCookie(w, sessionCookie(cfg, token, int(middlewares.TokenTTL/time.Second)))
			writeJSON(w, http.StatusOK, types.TokenResponse{Token: token})
		}
	})
	signout := func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, sessionCookie(cfg, "", -1))
		writeJSON(w, http.StatusOK, map[string]string{"message": "signed out"})
	}
	r.Get("/signout", signout)
	r.Post("/signout", signout)
	return r
}

func sessionCookie(cfg config.Config, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     middlewares.SessionCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	}
}

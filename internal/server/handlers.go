package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/composer-gateway/pkg/composer"
	gwerrors "github.com/matzehuels/composer-gateway/pkg/errors"
	"github.com/matzehuels/composer-gateway/pkg/integrations/gitlab"
)

// forwardedHeaders are copied from the incoming request to GitLab.
var forwardedHeaders = []string{"Authorization", "Private-Token"}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    gwerrors.Code `json:"code"`
	Message string        `json:"message"`
}

func (s *Server) handleAll(w http.ResponseWriter, r *http.Request) {
	s.servePackages(w, r, gitlab.Selector{})
}

func (s *Server) handleScoped(w http.ResponseWriter, r *http.Request) {
	sel, err := ParsePath(chi.URLParam(r, "*"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.servePackages(w, r, sel)
}

func (s *Server) servePackages(w http.ResponseWriter, r *http.Request, sel gitlab.Selector) {
	logger := log.FromContext(r.Context())

	headers := make(map[string]string, len(forwardedHeaders))
	for _, h := range forwardedHeaders {
		headers[h] = r.Header.Get(h)
	}

	f := composer.NewFormatter(s.gitlab.WithHeaders(headers), s.cache, logger)
	repo, err := f.BuildPackages(r.Context(), sel)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	logger.Debug("built repository", "scope", sel.Scope(), "package", sel.PackageName, "packages", len(repo.Packages), "versions", repo.Versions())
	writeJSON(w, http.StatusOK, repo)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	breakers := map[string]string{}
	if s.breakers != nil {
		breakers = s.breakers.States()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"gitlab":   s.gitlab.InstanceURL(),
		"breakers": breakers,
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, r, gwerrors.New(gwerrors.ErrCodeNotFound, "no route for %s", r.URL.Path))
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Allow", http.MethodGet)
	writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: errorDetail{
		Code:    gwerrors.ErrCodeInvalidInput,
		Message: r.Method + " is not supported",
	}})
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := gwerrors.HTTPStatus(err)
	code := gwerrors.GetCode(err)
	if code == "" {
		code = gwerrors.ErrCodeInternal
	}

	var rl *gwerrors.RateLimitedError
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(rl.RetryAfter))
	}

	logger := log.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "code", code, "err", err)
	} else {
		logger.Warn("request rejected", "code", code, "err", err)
	}

	message := gwerrors.UserMessage(err)
	if code == gwerrors.ErrCodeInternal {
		message = "internal error"
	}
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

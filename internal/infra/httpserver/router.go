package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/bryanwahyu/social-intake/internal/application/agent"
	"github.com/bryanwahyu/social-intake/internal/application/intake"
	"github.com/bryanwahyu/social-intake/internal/application/pipeline"
	domain "github.com/bryanwahyu/social-intake/internal/domain/applications"
	"github.com/bryanwahyu/social-intake/internal/middleware"
)

const maxUploadBytes = 32 << 20

type Router struct {
	intakeSvc  *intake.Service
	pipeline   *pipeline.Service
	dispatcher *agent.Dispatcher
	validate   *validator.Validate
}

// NewRouter mounts the /applications surface. Auth, logging, rate limiting
// and metrics are applied by the caller.
func NewRouter(intakeSvc *intake.Service, pipe *pipeline.Service, disp *agent.Dispatcher) http.Handler {
	r := &Router{
		intakeSvc:  intakeSvc,
		pipeline:   pipe,
		dispatcher: disp,
		validate:   newValidator(),
	}
	mux := chi.NewRouter()

	mux.Post("/applications", r.wrap(r.handleCreate))
	mux.Route("/applications/{id}", func(rt chi.Router) {
		rt.Get("/", r.wrap(r.handleGet))
		rt.Post("/documents", r.wrap(r.handleUpload))
		rt.Get("/documents", r.wrap(r.handleListDocuments))
		rt.Post("/decisions", r.wrap(r.handleRunPipeline))
		rt.Get("/decisions", r.wrap(r.handleListDecisions))
		rt.Post("/chat", r.wrap(r.handleChat))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		switch {
		case errors.Is(err, domain.ErrNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, domain.ErrDuplicateID):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			var verr validator.ValidationErrors
			if errors.As(err, &verr) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			var serr *json.SyntaxError
			var terr *json.UnmarshalTypeError
			if errors.As(err, &serr) || errors.As(err, &terr) || errors.Is(err, io.EOF) {
				http.Error(w, "invalid request body", http.StatusBadRequest)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

// POST /applications
func (r *Router) handleCreate(w http.ResponseWriter, req *http.Request) error {
	var body createApplicationRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return err
	}
	if err := r.validate.Struct(body); err != nil {
		return err
	}

	app, err := r.intakeSvc.CreateApplication(req.Context(), intake.CreateApplicationCommand{
		ID:                     body.ApplicationID,
		FullName:               body.FullName,
		Age:                    body.Age,
		Address:                body.Address,
		RegionCode:             body.RegionCode,
		EmploymentStatus:       body.EmploymentStatus,
		NetMonthlyIncome:       body.NetMonthlyIncome,
		CreditObligationsRatio: body.CreditObligationsRatio,
		DependentsUnder12:      body.DependentsUnder12,
	})
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusCreated, app)
}

// GET /applications/{id}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	app, err := r.intakeSvc.GetApplication(req.Context(), appID(req))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, app)
}

// POST /applications/{id}/documents (multipart, any number of "files" parts)
func (r *Router) handleUpload(w http.ResponseWriter, req *http.Request) error {
	if err := req.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid multipart body", http.StatusBadRequest)
		return nil
	}
	files := req.MultipartForm.File["files"]
	if len(files) == 0 {
		http.Error(w, "no files uploaded", http.StatusBadRequest)
		return nil
	}

	var uploaded []*domain.Document
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return fmt.Errorf("open upload %s: %w", fh.Filename, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("read upload %s: %w", fh.Filename, err)
		}

		doc, err := r.intakeSvc.AddDocument(req.Context(), appID(req),
			fh.Filename, fh.Header.Get("Content-Type"), data)
		if err != nil {
			return err
		}
		uploaded = append(uploaded, doc)
	}
	return writeJSON(w, http.StatusCreated, map[string]any{"uploaded": uploaded})
}

// GET /applications/{id}/documents
func (r *Router) handleListDocuments(w http.ResponseWriter, req *http.Request) error {
	docs, err := r.intakeSvc.ListDocuments(req.Context(), appID(req))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, docs)
}

// POST /applications/{id}/decisions runs the pipeline once
func (r *Router) handleRunPipeline(w http.ResponseWriter, req *http.Request) error {
	d, err := r.pipeline.Run(req.Context(), appID(req))
	if err != nil {
		return err
	}
	middleware.ObserveDecision(string(d.Status))
	return writeJSON(w, http.StatusOK, d)
}

// GET /applications/{id}/decisions returns the full history, creation order
func (r *Router) handleListDecisions(w http.ResponseWriter, req *http.Request) error {
	decisions, err := r.intakeSvc.ListDecisions(req.Context(), appID(req))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, decisions)
}

// POST /applications/{id}/chat
func (r *Router) handleChat(w http.ResponseWriter, req *http.Request) error {
	var body chatRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return err
	}
	if err := r.validate.Struct(body); err != nil {
		return err
	}

	reply, err := r.dispatcher.Dispatch(req.Context(), appID(req), body.Messages, body.UseLLM)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, chatResponse{Reply: reply})
}

func appID(req *http.Request) domain.ApplicationID {
	return domain.ApplicationID(chi.URLParam(req, "id"))
}

func writeJSON(w http.ResponseWriter, code int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(v)
}

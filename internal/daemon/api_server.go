package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"uniqvid/internal/api"
	"uniqvid/internal/config"
	"uniqvid/internal/intake"
	"uniqvid/internal/jobs"
	"uniqvid/internal/logging"
)

// multipartOverhead pads the request size cap to leave room for boundaries
// and headers around the payload itself.
const multipartOverhead = 1 << 20

type apiServer struct {
	bind       string
	logger     *slog.Logger
	controller *jobs.Controller
	uploads    *intake.Store
	maxBytes   int64

	mu       sync.Mutex
	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, controller *jobs.Controller, uploads *intake.Store, logger *slog.Logger) (*apiServer, error) {
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, fmt.Errorf("api bind address not configured")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	srv := &apiServer{
		bind:       bind,
		logger:     logging.NewComponentLogger(logger, "api-server"),
		controller: controller,
		uploads:    uploads,
		maxBytes:   cfg.MaxFileBytes(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", srv.handleHealth)
	mux.HandleFunc("/api/uploads", srv.handleUploads)
	mux.HandleFunc("/api/jobs", srv.handleJobs)
	mux.HandleFunc("/api/jobs/", srv.handleJob)

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		s.stop()
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.server.Shutdown(shutdownCtx)

	s.mu.Lock()
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
	s.mu.Unlock()
}

func (s *apiServer) addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, api.HealthResponse{Status: "ok"})
}

// handleUploads accepts one multipart "file" part. The body is streamed
// through the intake store, which enforces the size cap before any job
// exists.
func (s *apiServer) handleUploads(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBytes+multipartOverhead)

	reader, err := r.MultipartReader()
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "expected multipart form upload")
		return
	}

	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("read upload: %v", err))
			return
		}
		if part.FormName() != "file" {
			_, _ = io.Copy(io.Discard, part)
			continue
		}

		upload, err := s.uploads.Save(part.FileName(), part)
		switch {
		case errors.Is(err, intake.ErrTooLarge):
			s.writeError(w, http.StatusRequestEntityTooLarge, err.Error())
			return
		case err != nil:
			s.logger.Error("upload failed", logging.Error(err))
			s.writeError(w, http.StatusInternalServerError, "store upload failed")
			return
		}

		s.writeJSON(w, http.StatusCreated, api.UploadResponse{
			UploadID:  upload.ID,
			Bytes:     upload.Size,
			ExpiresAt: upload.ExpiresAt,
		})
		return
	}
	s.writeError(w, http.StatusBadRequest, "missing file part")
}

func (s *apiServer) handleJobs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		list, err := s.controller.Jobs(r.Context())
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.writeJSON(w, http.StatusOK, api.JobListResponse{Jobs: api.FromJobs(list)})
	case http.MethodPost:
		s.handleSubmit(w, r)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *apiServer) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req api.SubmitJobRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	upload, err := s.uploads.Claim(strings.TrimSpace(req.UploadID))
	switch {
	case errors.Is(err, intake.ErrUploadExpired):
		s.writeError(w, http.StatusGone, "upload expired")
		return
	case errors.Is(err, intake.ErrUnknownUpload):
		s.writeError(w, http.StatusNotFound, "unknown upload")
		return
	case err != nil:
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	job, err := s.controller.Submit(r.Context(), jobs.SubmitRequest{
		Source:       upload.Path,
		OriginalName: upload.OriginalName,
		Copies:       req.Copies,
		Strength:     req.Strength,
	})
	if err != nil {
		// Claim moved ownership of the temp file here; no job exists to
		// clean it up.
		if removeErr := os.Remove(upload.Path); removeErr != nil && !os.IsNotExist(removeErr) {
			s.logger.Warn("remove claimed upload", logging.String("path", upload.Path), logging.Error(removeErr))
		}
		if errors.Is(err, jobs.ErrShuttingDown) {
			s.writeError(w, http.StatusServiceUnavailable, "daemon is shutting down")
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusAccepted, api.JobResponse{Job: api.FromJob(job)})
}

func (s *apiServer) handleJob(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
	if id == "" || strings.Contains(id, "/") {
		s.writeError(w, http.StatusNotFound, "job not found")
		return
	}

	job, err := s.controller.Job(r.Context(), id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if job == nil {
		s.writeError(w, http.StatusNotFound, "job not found")
		return
	}
	s.writeJSON(w, http.StatusOK, api.JobResponse{Job: api.FromJob(job)})
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, api.ErrorResponse{Error: message})
}

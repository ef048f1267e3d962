package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/ayonpaul8906/skillbite-engine/internal/recommend"
	"github.com/ayonpaul8906/skillbite-engine/internal/report"
	"github.com/ayonpaul8906/skillbite-engine/internal/syncstore"
)

// ensureIdentity makes the engine track the requested identity, loading its
// courses on first sight. New identities with no stored path get the seed
// catalog imported.
func (s *Server) ensureIdentity(ctx context.Context, identity string) error {
	if identity == "" {
		return fmt.Errorf("identity is required")
	}
	if s.engine.Snapshot().Identity == identity {
		return nil
	}
	if err := s.engine.LoadCourses(ctx, identity); err != nil {
		return err
	}

	if s.importer == nil || s.catalog == nil {
		return nil
	}
	if len(s.engine.Snapshot().Courses) > 0 {
		return nil
	}
	seeds := s.catalog.Courses()
	if len(seeds) == 0 {
		return nil
	}
	for _, c := range seeds {
		if err := s.importer.SaveCourse(ctx, identity, c); err != nil {
			return fmt.Errorf("seeding course %q: %w", c.ID, err)
		}
	}
	slog.Info("seed catalog imported", "identity", identity, "courses", len(seeds))
	return s.engine.LoadCourses(ctx, identity)
}

type recommendRequest struct {
	Identity string          `json:"identity"`
	CourseID string          `json:"course_id"`
	Name     string          `json:"name"`
	Goal     string          `json:"goal"`
	Skills   string          `json:"skills"`
	Payload  json.RawMessage `json:"payload"`
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	if s.importer == nil {
		writeError(w, http.StatusNotImplemented, "course import is not configured")
		return
	}

	var req recommendRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Identity == "" {
		writeError(w, http.StatusBadRequest, "identity is required")
		return
	}

	p, err := recommend.Decode(req.Payload)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	c := recommend.Normalize(req.CourseID, req.Name, req.Goal, req.Skills, p)
	if err := s.importer.SaveCourse(r.Context(), req.Identity, c); err != nil {
		slog.Warn("saving imported course", "identity", req.Identity, "course", c.ID, "error", err)
		writeError(w, http.StatusBadGateway, "could not save the learning path, please try again")
		return
	}

	if err := s.engine.LoadCourses(r.Context(), req.Identity); err != nil {
		writeError(w, http.StatusBadGateway, "saved, but reloading courses failed")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"course_id": c.ID})
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	if err := s.ensureIdentity(r.Context(), r.URL.Query().Get("identity")); err != nil {
		s.writeLoadError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Snapshot())
}

type progressUpdateRequest struct {
	Identity  string `json:"identity"`
	CourseID  string `json:"course_id"`
	Link      string `json:"link"`
	Completed bool   `json:"completed"`
}

func (s *Server) handleProgressUpdate(w http.ResponseWriter, r *http.Request) {
	var req progressUpdateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.ensureIdentity(r.Context(), req.Identity); err != nil {
		s.writeLoadError(w, err)
		return
	}

	if err := s.engine.SetCompleted(r.Context(), req.CourseID, req.Link, req.Completed); err != nil {
		var wf *syncstore.WriteFailure
		if errors.As(err, &wf) {
			// Local state was rolled back already; report a recoverable error.
			writeError(w, http.StatusBadGateway, "failed to update progress, please try again")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Snapshot())
}

type selectCourseRequest struct {
	Identity string `json:"identity"`
	CourseID string `json:"course_id"`
}

func (s *Server) handleSelectCourse(w http.ResponseWriter, r *http.Request) {
	var req selectCourseRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.ensureIdentity(r.Context(), req.Identity); err != nil {
		s.writeLoadError(w, err)
		return
	}
	s.engine.SelectCourse(req.CourseID)
	writeJSON(w, http.StatusOK, s.engine.Snapshot())
}

type selectResourceRequest struct {
	Identity string `json:"identity"`
	Index    int    `json:"index"`
}

func (s *Server) handleSelectResource(w http.ResponseWriter, r *http.Request) {
	var req selectResourceRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.ensureIdentity(r.Context(), req.Identity); err != nil {
		s.writeLoadError(w, err)
		return
	}
	s.engine.SelectResource(req.Index)
	writeJSON(w, http.StatusOK, s.engine.Snapshot())
}

type advanceRequest struct {
	Identity string `json:"identity"`
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	var req advanceRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.ensureIdentity(r.Context(), req.Identity); err != nil {
		s.writeLoadError(w, err)
		return
	}
	s.engine.Advance()
	writeJSON(w, http.StatusOK, s.engine.Snapshot())
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	identity := r.URL.Query().Get("identity")
	if err := s.ensureIdentity(r.Context(), identity); err != nil {
		s.writeLoadError(w, err)
		return
	}

	snap := s.engine.Snapshot()
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="progress.xlsx"`)
	if err := report.Write(w, identity, snap.Courses); err != nil {
		slog.Warn("writing progress report", "identity", identity, "error", err)
	}
}

func (s *Server) writeLoadError(w http.ResponseWriter, err error) {
	var lf *syncstore.LoadFailure
	if errors.As(err, &lf) {
		slog.Warn("loading courses", "identity", lf.Identity, "error", err)
		writeError(w, http.StatusBadGateway, "could not load your courses, please try again")
		return
	}
	writeError(w, http.StatusBadRequest, err.Error())
}

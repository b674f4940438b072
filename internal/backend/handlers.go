package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/alexanderramin/prdsmith/internal/contract"
	"github.com/alexanderramin/prdsmith/internal/db"
	"github.com/alexanderramin/prdsmith/internal/domain"
	"github.com/alexanderramin/prdsmith/internal/repository"
)

const maxBodyBytes = 1 << 20

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	var rec domain.Record
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&rec); err != nil {
		respondError(w, http.StatusBadRequest, contract.CodeInvalid, "invalid request payload")
		return
	}
	if err := rec.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, contract.CodeInvalid, err.Error())
		return
	}

	now := s.now()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	if err := s.repo.Create(r.Context(), ownerFrom(r.Context()), &rec); err != nil {
		s.fail(w, "create", rec.ID, err)
		return
	}
	respondJSON(w, http.StatusCreated, &rec)
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	rec, err := s.repo.GetByID(r.Context(), ownerFrom(r.Context()), id)
	if err != nil {
		s.fail(w, "get", id, err)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	parentID := r.URL.Query().Get(contract.ParentQueryParam)
	if parentID == "" {
		respondError(w, http.StatusBadRequest, contract.CodeInvalid, contract.ParentQueryParam+" is required")
		return
	}
	records, err := s.repo.ListByParent(r.Context(), ownerFrom(r.Context()), parentID)
	if err != nil {
		s.fail(w, "list", parentID, err)
		return
	}
	respondJSON(w, http.StatusOK, contract.RecordListResponse{Records: records})
}

// handleUpdateRecord shallow-merges the request payload into the stored one
// inside a single transaction. A parent or kind in the request moves the record.
func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req contract.UpdateRecordRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, contract.CodeInvalid, "invalid request payload")
		return
	}

	owner := ownerFrom(r.Context())
	var updated *domain.Record
	err := s.uow.WithinTx(r.Context(), func(ctx context.Context, tx db.DBTX) error {
		repo := repository.NewSQLiteRecordRepo(tx)
		current, err := repo.GetByID(ctx, owner, id)
		if err != nil {
			return err
		}
		if req.ParentID != "" {
			current.ParentID = req.ParentID
		}
		if req.Kind != "" {
			current.Kind = req.Kind
		}
		current.Payload = current.Payload.Merge(req.Payload)
		current.UpdatedAt = s.now()
		if err := repo.Update(ctx, owner, current); err != nil {
			return err
		}
		updated = current
		return nil
	})
	if err != nil {
		s.fail(w, "update", id, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.repo.Delete(r.Context(), ownerFrom(r.Context()), id); err != nil {
		s.fail(w, "delete", id, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) fail(w http.ResponseWriter, op, id string, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		respondError(w, http.StatusNotFound, contract.CodeNotFound, "record not found")
	case errors.Is(err, repository.ErrConflict):
		respondError(w, http.StatusConflict, contract.CodeConflict, err.Error())
	case errors.Is(err, domain.ErrValidation):
		respondError(w, http.StatusBadRequest, contract.CodeInvalid, err.Error())
	default:
		s.logger.Error("record request failed", "op", op, "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, contract.CodeInternal, "internal error")
	}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_, _ = w.Write(response)
	}
}

func respondError(w http.ResponseWriter, status int, code contract.ErrorCode, message string) {
	respondJSON(w, status, contract.ErrorResponse{Code: code, Message: message})
}

package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/viant/movierec/rank"
	"github.com/viant/movierec/service"
)

type handler struct {
	svc *service.Service
}

type titlesResponse struct {
	Count  int      `json:"count"`
	Titles []string `json:"titles"`
}

type candidatesResponse struct {
	Title      string `json:"title"`
	Candidates []int  `json:"candidates"`
}

type tagsResponse struct {
	Index int      `json:"index"`
	Tags  []string `json:"tags"`
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	respondOK(w, map[string]interface{}{"movies": h.svc.Len()})
}

func (h *handler) titles(w http.ResponseWriter, _ *http.Request) {
	titles := h.svc.ListTitles()
	respondOK(w, titlesResponse{Count: len(titles), Titles: titles})
}

func (h *handler) candidates(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("title")
	if title == "" {
		respondError(w, http.StatusBadRequest, &APIError{Code: "MISSING_TITLE", Message: "title is required"})
		return
	}
	rows, err := h.svc.Candidates(title)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondOK(w, candidatesResponse{Title: title, Candidates: rows})
}

func (h *handler) recommend(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := service.Query{Title: q.Get("title")}
	if query.Title == "" {
		respondError(w, http.StatusBadRequest, &APIError{Code: "MISSING_TITLE", Message: "title is required"})
		return
	}
	if raw := q.Get("index"); raw != "" {
		idx, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, &APIError{Code: "INVALID_INDEX", Message: "index must be an integer"})
			return
		}
		query.Disambiguation = &idx
	}
	if raw := q.Get("k"); raw != "" {
		k, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, &APIError{Code: "INVALID_K", Message: "k must be an integer"})
			return
		}
		query.TopK = k
	}

	resp, err := h.svc.Recommend(r.Context(), query)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondOK(w, resp)
}

func (h *handler) movie(w http.ResponseWriter, r *http.Request) {
	idx, ok := pathIndex(w, r)
	if !ok {
		return
	}
	m, err := h.svc.Movie(idx)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondOK(w, m)
}

func (h *handler) tags(w http.ResponseWriter, r *http.Request) {
	idx, ok := pathIndex(w, r)
	if !ok {
		return
	}
	tags, err := h.svc.Tags(idx)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondOK(w, tagsResponse{Index: idx, Tags: tags})
}

func pathIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	idx, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		respondError(w, http.StatusBadRequest, &APIError{Code: "INVALID_INDEX", Message: "index must be an integer"})
		return 0, false
	}
	return idx, true
}

func respondServiceError(w http.ResponseWriter, err error) {
	var amb *service.AmbiguousTitleError
	switch {
	case errors.Is(err, service.ErrUnknownTitle):
		respondError(w, http.StatusNotFound, &APIError{Code: "UNKNOWN_TITLE", Message: err.Error()})
	case errors.As(err, &amb):
		respondError(w, http.StatusConflict, &APIError{Code: "AMBIGUOUS_TITLE", Message: err.Error(), Candidates: amb.Candidates})
	case errors.Is(err, service.ErrNotACandidate):
		respondError(w, http.StatusBadRequest, &APIError{Code: "NOT_A_CANDIDATE", Message: err.Error()})
	case errors.Is(err, service.ErrIndexOutOfRange), errors.Is(err, rank.ErrInvalidIndex):
		respondError(w, http.StatusBadRequest, &APIError{Code: "INDEX_OUT_OF_RANGE", Message: err.Error()})
	case errors.Is(err, rank.ErrInvalidTopK):
		respondError(w, http.StatusBadRequest, &APIError{Code: "INVALID_K", Message: err.Error()})
	default:
		respondError(w, http.StatusInternalServerError, &APIError{Code: "INTERNAL", Message: "internal error"})
	}
}

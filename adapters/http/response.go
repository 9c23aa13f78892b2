package cataloghttp

import (
	"encoding/json"
	"net/http"

	errorslib "github.com/goliatone/go-errors"

	"github.com/goliatone/go-catalog/catalog"
)

type exportResponse struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	Rows        int    `json:"rows"`
	Pages       int    `json:"pages"`
	Bytes       int64  `json:"bytes"`
	DownloadURL string `json:"download_url"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func writeError(w http.ResponseWriter, err error) {
	if err == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	ge := catalog.AsGoError(err)
	writeStatus(w, statusForError(ge), ge.Message, ge.TextCode)
}

func writeStatus(w http.ResponseWriter, status int, msg, code string) {
	writeJSON(w, status, errorResponse{Error: errorBody{Message: msg, Code: code}})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func statusForError(err *errorslib.Error) int {
	if err == nil {
		return http.StatusInternalServerError
	}
	switch err.Category {
	case errorslib.CategoryValidation:
		if err.TextCode == "config" {
			return http.StatusUnprocessableEntity
		}
		return http.StatusBadRequest
	case errorslib.CategoryNotFound:
		return http.StatusNotFound
	case errorslib.CategoryOperation:
		if err.TextCode == "canceled" {
			return http.StatusConflict
		}
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

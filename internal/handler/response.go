package handler

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/Kiandes/P27-firecard/internal/errors"
	"github.com/Kiandes/P27-firecard/internal/httputil"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	httputil.WriteJSON(w, status, data)
}

func writeError(w http.ResponseWriter, err error) {
	httputil.WriteError(w, err)
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.InvalidInput("body", "must be valid JSON")
	}
	return nil
}

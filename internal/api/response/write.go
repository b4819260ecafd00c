package response

import (
	"encoding/json"
	"net/http"

	"github.com/mcoot/loginpage/internal/model"
)

// JSON writes a JSON response
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// WriteForm writes a form's current state as JSON
func WriteForm(w http.ResponseWriter, status int, form *model.Form) {
	JSON(w, status, FormFromModel(form))
}

// NoContent writes a 204 No Content response
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

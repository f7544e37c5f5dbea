// Package response writes JSON bodies in the shape storefront clients expect.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/antonminaichev/storefront/internal/logger"
	"go.uber.org/zap"
)

// Message is the body of every error response.
type Message struct {
	Message string `json:"message"`
}

func JSON(w http.ResponseWriter, code int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		logger.Log.Error("marshal response", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(body)
}

func Error(w http.ResponseWriter, code int, msg string) {
	JSON(w, code, Message{Message: msg})
}

// ServerError logs err under op and answers with a generic 500.
func ServerError(w http.ResponseWriter, op string, err error) {
	logger.Log.Error(op, zap.Error(err))
	Error(w, http.StatusInternalServerError, "Server error")
}

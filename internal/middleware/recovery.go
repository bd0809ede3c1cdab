package middleware

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/rs/zerolog/log"
)

// panicLogger feeds gorilla's recovery handler into zerolog
type panicLogger struct{}

func (panicLogger) Println(v ...interface{}) {
	log.Error().Interface("panic", v).Msg("Panic recovered")
}

// Recovery turns a panicking handler into a 500 response
func Recovery(next http.Handler) http.Handler {
	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(panicLogger{}),
		handlers.PrintRecoveryStack(false),
	)(next)
}

package httpserver

import (
	"net/http"

	"github.com/ersonp/genepredictor/internal/domain/entities"
)

// StatusFor maps an error kind to its HTTP status code.
func StatusFor(kind entities.ErrorKind) int {
	switch kind {
	case entities.KindEmpty, entities.KindTooShort, entities.KindTooLong,
		entities.KindInvalidCharacter, entities.KindUnknownStrategy, entities.KindInvalidRequest:
		return http.StatusBadRequest
	case entities.KindModelUnavailable:
		return http.StatusServiceUnavailable
	case entities.KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

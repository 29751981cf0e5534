package handler

import (
	"net/http"

	"github.com/cmdgate/cmdgate/infrastructure/http/response"
	"github.com/cmdgate/cmdgate/pkg/apperror"
)

// writeError maps a use case error onto the response envelope. Domain
// sentinels carry their own status; anything else becomes a 500 without
// leaking internals.
func writeError(w http.ResponseWriter, err error) {
	appErr := apperror.MapError(err)
	response.Error(w, appErr.Status, appErr.Message)
}

package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"resourcefinda/pkg/datastore"
)

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// describeLoadError maps a load failure to an HTTP status and a message that is safe to
// show to users.
func describeLoadError(err error) (int, ErrorResponse) {
	var netErr *datastore.NetworkError
	var malformed *datastore.MalformedResponseError
	switch {
	case errors.As(err, &malformed):
		return http.StatusBadGateway, ErrorResponse{Error: "the facility dataset returned an unreadable response", Kind: "malformed_response"}
	case errors.As(err, &netErr) && netErr.StatusCode != 0:
		return http.StatusBadGateway, ErrorResponse{Error: fmt.Sprintf("the facility dataset returned status %d", netErr.StatusCode), Kind: "network"}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, ErrorResponse{Error: "the facility dataset did not respond in time", Kind: "network"}
	case errors.As(err, &netErr):
		return http.StatusBadGateway, ErrorResponse{Error: "the facility dataset could not be reached", Kind: "network"}
	default:
		return http.StatusInternalServerError, ErrorResponse{Error: "loading facilities failed", Kind: "internal"}
	}
}

func bannerMessage(err error) string {
	if err == nil {
		return ""
	}
	_, resp := describeLoadError(err)
	return resp.Error
}

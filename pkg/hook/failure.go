package hook

import (
	"errors"
	"net/http"
	"strings"

	"github.com/fibradoc/fibradoc/pkg/client"
	"github.com/fibradoc/fibradoc/pkg/types"
)

// Kind discriminates failures for programmatic handling.
type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindServer     Kind = "server"
	KindTransport  Kind = "transport"
	KindDuplicate  Kind = "duplicate"
)

// DuplicateMessage is reported when the same write is already in flight.
const DuplicateMessage = "Operação já em andamento"

// Failure describes why a hook call produced no data. Message is the
// server-supplied detail when present, otherwise the generic communication
// error text.
type Failure struct {
	Kind    Kind
	Status  int
	Message string
	Fields  []types.ValidationError

	// detail is true when Message came from the server.
	detail bool
}

func (f *Failure) Error() string {
	return string(f.Kind) + ": " + f.Message
}

// FromServer reports whether Message is a server-supplied detail.
func (f *Failure) FromServer() bool {
	return f.detail
}

func classify(err error) *Failure {
	var f *Failure
	if errors.As(err, &f) {
		return f
	}

	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		return &Failure{Kind: KindTransport, Message: types.GenericErrorMessage}
	}

	out := &Failure{
		Kind:    kindForStatus(apiErr.StatusCode),
		Status:  apiErr.StatusCode,
		Message: types.GenericErrorMessage,
		Fields:  apiErr.Problem.Errors,
	}
	if detail := strings.TrimSpace(apiErr.Problem.Detail); detail != "" {
		out.Message = detail
		out.detail = true
	}
	return out
}

func kindForStatus(status int) Kind {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return KindValidation
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusConflict:
		return KindConflict
	default:
		return KindServer
	}
}

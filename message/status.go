package message

// Status is the fixed SRFC status code set, carried in the wire frame's
// STATUS header field. Codes 500-504 are produced by the core itself;
// the rest are conveyed unchanged from handlers.
type Status uint64

const (
	StatusNone Status = 0 // uninitialized

	StatusOK                       Status = 200
	StatusNonAuthoritativeInfo     Status = 203
	StatusNoContent                Status = 204

	StatusBadRequest     Status = 400
	StatusUnauthorized   Status = 401
	StatusNotImplemented Status = 402
	StatusForbidden      Status = 403
	StatusUnknownMethod  Status = 404
	StatusConflict       Status = 405

	StatusExecutionError      Status = 500
	StatusUnhandledException Status = 501
	StatusInvalidArguments   Status = 502
	StatusConnectionError    Status = 503
	StatusResponseTimeout    Status = 504
)

// String returns a short human-readable name for the status, for logging.
func (s Status) String() string {
	switch s {
	case StatusNone:
		return "none"
	case StatusOK:
		return "ok"
	case StatusNonAuthoritativeInfo:
		return "non_authoritative_information"
	case StatusNoContent:
		return "no_content"
	case StatusBadRequest:
		return "bad_request"
	case StatusUnauthorized:
		return "unauthorized"
	case StatusNotImplemented:
		return "not_implemented"
	case StatusForbidden:
		return "forbidden"
	case StatusUnknownMethod:
		return "unknown_method"
	case StatusConflict:
		return "conflict"
	case StatusExecutionError:
		return "execution_error"
	case StatusUnhandledException:
		return "unhandled_exception"
	case StatusInvalidArguments:
		return "invalid_arguments"
	case StatusConnectionError:
		return "connection_error"
	case StatusResponseTimeout:
		return "response_timeout"
	default:
		return "unknown_status"
	}
}

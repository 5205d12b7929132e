package types

// SuccessEnvelope wraps every 2xx JSON body.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// Success builds the envelope for a 2xx response.
func Success(data any) SuccessEnvelope {
	return SuccessEnvelope{Data: data}
}

// APIError is the public error shape. Message carries the rule text for
// validation failures and a generic phrase for everything else.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps every error JSON body.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// Error builds the envelope for an error response.
func Error(code, message string, details any) ErrorEnvelope {
	return ErrorEnvelope{Error: APIError{Code: code, Message: message, Details: details}}
}

package transport

// ValidateResponse is the body of the validate-only endpoints.
type ValidateResponse struct {
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors"`
}

func NewValidateResponse(errs map[string]string) ValidateResponse {
	if errs == nil {
		errs = map[string]string{}
	}
	return ValidateResponse{Valid: len(errs) == 0, Errors: errs}
}

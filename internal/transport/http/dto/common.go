package dto

type ErrorResponse struct {
	Error string `json:"error"`
	// Code is machine-readable so the client can route to the right
	// remedial action instead of showing a generic failure.
	Code    string   `json:"code,omitempty"`
	Region  string   `json:"region,omitempty"`
	Details []string `json:"details,omitempty"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

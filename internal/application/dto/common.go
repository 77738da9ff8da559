package dto

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HealthResponse cuerpo de /health y /ready.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

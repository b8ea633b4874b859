package httpx

type IDResponse[T any] struct {
	ID T `json:"id"`
}

type ExistsResponse struct {
	Exists bool `json:"exists"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

package model

type PingResponse struct {
	Message string `json:"message"`
}

// Notice is a one-shot flash message rendered on the next page view.
type Notice struct {
	Kind    string // success | error
	Message string
}

package dto

type ResolveResponse struct {
	Ref  string `json:"ref"`
	Path string `json:"path"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Engine  string `json:"engine"`
	Library string `json:"library"`
	Loaded  bool   `json:"loaded"`
	Viewers int    `json:"viewers"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

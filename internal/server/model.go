package server

// APIResponse represents standard API response.
type APIResponse struct {
	Status  int         `json:"status" example:"200"`
	Message string      `json:"message" example:"OK"`
	Data    interface{} `json:"data,omitempty"`
}

// ValidationError represents validation error detail.
type ValidationError struct {
	Code    string                 `json:"code,omitempty" example:"ERR_REQUIRED"`
	Field   string                 `json:"field,omitempty" example:"limit"`
	Message string                 `json:"message,omitempty" example:"limit is required"`
	Params  map[string]interface{} `json:"params,omitempty"`
}

// ChartRequest binds GET /api/chart/:symbol.
type ChartRequest struct {
	Symbol string `param:"symbol" validate:"required,alphanum,max=20"`
	Limit  int    `query:"limit" default:"100" validate:"gte=30,lte=1000"`
}

// ScreenFailure is the body of a 503 answer for a pass that did not complete.
type ScreenFailure struct {
	RunID      string `json:"runId"`
	FinishedAt string `json:"finishedAt"`
	Error      string `json:"error"`
}

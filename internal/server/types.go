// Package server provides the HTTP server for the Framesight API.
// It includes handlers, middleware, routes, and DTOs separated from
// domain types.
package server

// AnalysisResult is the data half of an analysis response.
type AnalysisResult struct {
	// Analysis is the user-facing report text.
	Analysis string `json:"analysis"`
	// Model labels which provider/path produced the text.
	Model string `json:"model"`
	// FramesExtracted is the number of frames sampled for this result.
	FramesExtracted int `json:"frames_extracted"`
}

// AnalysisError is the error half of an analysis response.
type AnalysisError struct {
	// Message is the human-readable error message.
	Message string `json:"message"`
	// Code is an optional numeric code.
	Code int `json:"code,omitempty"`
}

// AnalyzeResponse is the response body for POST /analyses.
// Exactly one of Data or Error is set.
type AnalyzeResponse struct {
	Data  *AnalysisResult `json:"data,omitempty"`
	Error *AnalysisError  `json:"error,omitempty"`
}

// analyzeForm carries the validated non-file fields of the upload form.
type analyzeForm struct {
	// Prompt is the optional analysis prompt.
	Prompt string `validate:"omitempty,max=4096"`
	// IntervalSec is the optional frame sampling interval in seconds.
	IntervalSec float64 `validate:"omitempty,gt=0,lte=600"`
	// LastModifiedMillis is the optional upload modification timestamp.
	LastModifiedMillis int64 `validate:"omitempty,gte=0"`
}

// ErrorResponse is the standard error response format for non-analysis
// failures (bad form data, oversized uploads).
type ErrorResponse struct {
	// Error is the human-readable error message.
	Error string `json:"error"`
	// Code is the error code for programmatic handling.
	Code string `json:"code"`
}

// HealthResponse is the HTTP response for the health check endpoint.
type HealthResponse struct {
	// Status is the health status of the service.
	Status string `json:"status"`
}

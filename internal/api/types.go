// Package api holds the JSON wire types shared by the WhatIf service and its
// clients, plus the HTTP client used by the terminal front end.
package api

const (
	PathSubmit      = "/submit_question"
	PathInspiration = "/get_inspiration_questions"
	PathBackground  = "/get_background_questions"
	PathHealth      = "/healthz"
)

// SubmitRequest is the body of POST /submit_question.
type SubmitRequest struct {
	Question string `json:"question"`
}

// SubmitResponse is the success body of POST /submit_question.
type SubmitResponse struct {
	Response string `json:"response"`
}

// Inspiration is a previously asked question and how often it was asked.
type Inspiration struct {
	Text  string `json:"text"`
	Count int    `json:"count"`
}

// InspirationResponse is the body of GET /get_inspiration_questions.
type InspirationResponse struct {
	Questions []Inspiration `json:"questions"`
}

// BackgroundResponse is the body of GET /get_background_questions.
type BackgroundResponse struct {
	Questions []string `json:"questions"`
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
}

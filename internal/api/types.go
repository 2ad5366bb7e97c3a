package api

import "github.com/postureperfect/avatar-server/domain/entities"

// ChatRequest represents the request payload for the chat endpoint
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse mirrors entities.ChatResponse on the wire.
type ChatResponse struct {
	Messages []entities.MessageSegment `json:"messages"`
}

// ContactRequest represents a contact-form submission
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// RegisterRequest represents the request payload for user registration
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Account  string `json:"account"`
}

// LoginRequest represents the request payload for user login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse represents a successful login
type LoginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

// MessageResponse is a simple acknowledgement body
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

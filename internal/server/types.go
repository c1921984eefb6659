package server

import (
	"github.com/rezonia/idoc-edi/internal/mapper"
)

// ConvertResponse is the response for convert endpoints
type ConvertResponse struct {
	Status   string   `json:"status"`
	Mode     string   `json:"mode"`
	Path     string   `json:"path,omitempty"`
	Content  string   `json:"content"`
	Segments int      `json:"segments"`
	Items    int      `json:"items"`
	Warnings []string `json:"warnings,omitempty"`
}

// ValidationResponse is the response for validate endpoint
type ValidationResponse struct {
	Valid    bool     `json:"valid"`
	Segments int      `json:"segments"`
	Errors   []string `json:"errors,omitempty"`
}

// InfoResponse is the response for info endpoint
type InfoResponse struct {
	Format  string          `json:"format"`
	Size    int             `json:"size"`
	Summary *mapper.Summary `json:"summary"`
}

// ErrorResponse is the standard error response
type ErrorResponse struct {
	Error    string   `json:"error"`
	Details  string   `json:"details,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

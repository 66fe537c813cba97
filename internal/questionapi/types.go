package questionapi

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/betbot/marketadmin/internal/domain"
	"github.com/betbot/marketadmin/internal/validation"
	sdkhttp "github.com/betbot/marketadmin/pkg/sdk/http"
)

// ListParams GET {questions} query
type ListParams struct {
	Page  int
	Limit int
	Name  string
}

// ListResponse {data, totalPages}
type ListResponse struct {
	Data       []domain.Question `json:"data"`
	TotalPages int               `json:"totalPages"`
}

// Payload multipart body: text fields plus binary parts in order.
type Payload struct {
	Fields url.Values
	Files  []sdkhttp.File
}

// NewPayload returns an empty payload.
func NewPayload() *Payload {
	return &Payload{Fields: url.Values{}}
}

// Set sets a text field.
func (p *Payload) Set(key, value string) {
	p.Fields.Set(key, value)
}

// AddFile appends a binary part.
func (p *Payload) AddFile(f sdkhttp.File) {
	p.Files = append(p.Files, f)
}

// WriteResponse is returned by every write endpoint: {data?, error?, errors?}.
// A 2xx response may still carry errors.
type WriteResponse struct {
	Data   json.RawMessage    `json:"data,omitempty"`
	Error  json.RawMessage    `json:"error,omitempty"`
	Errors *validation.Errors `json:"errors,omitempty"`
}

// ErrorMessage returns the top-level error as text; the server sends either a
// string or an object with a message.
func (r *WriteResponse) ErrorMessage() string {
	if r == nil || len(r.Error) == 0 || string(r.Error) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(r.Error, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(r.Error, &obj); err == nil && obj.Message != "" {
		return obj.Message
	}
	if string(r.Error) == "false" {
		return ""
	}
	return string(r.Error)
}

// Rejected reports whether the server refused the write.
func (r *WriteResponse) Rejected() bool {
	if r == nil {
		return false
	}
	return r.ErrorMessage() != "" || !r.Errors.Empty()
}

// Question decodes data as a question; nil when data is absent or not a question.
func (r *WriteResponse) Question() *domain.Question {
	if r == nil || len(r.Data) == 0 || string(r.Data) == "null" {
		return nil
	}
	var q domain.Question
	if err := json.Unmarshal(r.Data, &q); err != nil {
		return nil
	}
	return &q
}

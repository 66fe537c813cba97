package questionapi

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/betbot/marketadmin/internal/domain"
	sdkhttp "github.com/betbot/marketadmin/pkg/sdk/http"
	"github.com/pkg/errors"
)

// API is the remote question service as used by the admin.
type API interface {
	List(ctx context.Context, p ListParams) (*ListResponse, error)
	Get(ctx context.Context, id string) (*domain.Question, error)
	Create(ctx context.Context, p *Payload) (*WriteResponse, error)
	Update(ctx context.Context, p *Payload) (*WriteResponse, error)
	UpdateAnswer(ctx context.Context, answerID string, p *Payload) (*WriteResponse, error)
	Delete(ctx context.Context, id string) error
	Resolve(ctx context.Context, answerID string, outcome domain.Outcome) (*WriteResponse, error)
}

// Config endpoint layout.
type Config struct {
	BaseURL       string
	QuestionsPath string
	AnswersPath   string
}

// Client talks to the question service over HTTP.
type Client struct {
	http      *sdkhttp.Client
	questions string
	answers   string
}

// NewClient creates a client; empty paths fall back to /questions and /answers.
func NewClient(cfg Config, opts ...sdkhttp.Option) *Client {
	q := cfg.QuestionsPath
	if q == "" {
		q = "/questions"
	}
	a := cfg.AnswersPath
	if a == "" {
		a = "/answers"
	}
	return &Client{
		http:      sdkhttp.NewClient(cfg.BaseURL, opts...),
		questions: strings.TrimRight(q, "/"),
		answers:   strings.TrimRight(a, "/"),
	}
}

var _ API = (*Client)(nil)

func (c *Client) questionPath(id string) string {
	return c.questions + "/" + url.PathEscape(id)
}

func (c *Client) answerPath(id string) string {
	return c.answers + "/" + url.PathEscape(id)
}

// List fetches one page of questions, optionally filtered by name.
func (c *Client) List(ctx context.Context, p ListParams) (*ListResponse, error) {
	params := map[string]any{}
	if p.Page > 0 {
		params["page"] = p.Page
	}
	if p.Limit > 0 {
		params["limit"] = p.Limit
	}
	if p.Name != "" {
		params["name"] = p.Name
	}
	var out ListResponse
	if _, err := c.http.DoRequest(ctx, http.MethodGet, c.questions, &sdkhttp.RequestOptions{Params: params}, &out); err != nil {
		return nil, errors.Wrap(err, "list questions")
	}
	return &out, nil
}

// Get fetches a question by id.
func (c *Client) Get(ctx context.Context, id string) (*domain.Question, error) {
	if id == "" {
		return nil, errors.New("question id is required")
	}
	var out struct {
		Data *domain.Question `json:"data"`
	}
	if _, err := c.http.DoRequest(ctx, http.MethodGet, c.questionPath(id), nil, &out); err != nil {
		return nil, errors.Wrapf(err, "get question %s", id)
	}
	if out.Data == nil {
		return nil, errors.Errorf("question %s: empty response", id)
	}
	return out.Data, nil
}

// Create posts a new question as multipart.
func (c *Client) Create(ctx context.Context, p *Payload) (*WriteResponse, error) {
	return c.write(ctx, http.MethodPost, c.questions, p)
}

// Update puts an edited question as multipart; the payload carries questionId.
func (c *Client) Update(ctx context.Context, p *Payload) (*WriteResponse, error) {
	return c.write(ctx, http.MethodPut, c.questions, p)
}

// UpdateAnswer puts a single answer as multipart.
func (c *Client) UpdateAnswer(ctx context.Context, answerID string, p *Payload) (*WriteResponse, error) {
	if answerID == "" {
		return nil, errors.New("answer id is required")
	}
	return c.write(ctx, http.MethodPut, c.answerPath(answerID), p)
}

// Delete removes a question.
func (c *Client) Delete(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("question id is required")
	}
	if _, err := c.http.DoRequest(ctx, http.MethodDelete, c.questionPath(id), nil, nil); err != nil {
		return errors.Wrapf(err, "delete question %s", id)
	}
	return nil
}

// Resolve settles an answer to YES or NO.
func (c *Client) Resolve(ctx context.Context, answerID string, outcome domain.Outcome) (*WriteResponse, error) {
	if answerID == "" {
		return nil, errors.New("answer id is required")
	}
	var out WriteResponse
	opt := &sdkhttp.RequestOptions{Data: map[string]string{"resolved": string(outcome)}}
	if _, err := c.http.DoRequest(ctx, http.MethodPost, c.answerPath(answerID)+"/resolve", opt, &out); err != nil {
		return nil, errors.Wrapf(err, "resolve answer %s", answerID)
	}
	return &out, nil
}

func (c *Client) write(ctx context.Context, method, endpoint string, p *Payload) (*WriteResponse, error) {
	if p == nil {
		p = NewPayload()
	}
	opt := &sdkhttp.RequestOptions{
		Form:      p.Fields,
		Files:     p.Files,
		Multipart: true,
	}
	var out WriteResponse
	if _, err := c.http.DoRequest(ctx, method, endpoint, opt, &out); err != nil {
		return nil, errors.Wrapf(err, "%s %s", method, endpoint)
	}
	return &out, nil
}

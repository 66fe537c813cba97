package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/betbot/marketadmin/pkg/logger"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ErrTransport 所有传输层失败（网络错误、非 2xx）都满足 errors.Is(err, ErrTransport)
var ErrTransport = errors.New("http transport failure")

type Client struct {
	client *resty.Client
}

// Option 客户端可选配置
type Option func(*resty.Client)

// WithTimeout 设置单次请求超时
func WithTimeout(d time.Duration) Option {
	return func(c *resty.Client) {
		if d > 0 {
			c.SetTimeout(d)
		}
	}
}

// WithHTTPClient 替换底层 http.Client（测试中注入 httptest 客户端）
func WithHTTPClient(hc *http.Client) Option {
	return func(c *resty.Client) {
		if hc != nil && hc.Transport != nil {
			c.SetTransport(hc.Transport)
		}
	}
}

func NewClient(host string, opts ...Option) *Client {
	host = strings.TrimRight(host, "/")

	// resty 会自动从环境变量读取代理配置（HTTP_PROXY, HTTPS_PROXY, http_proxy, https_proxy）
	// 提交接口不允许客户端重试：一次提交只能对应一次请求
	client := resty.New().
		SetBaseURL(host).
		SetTimeout(30 * time.Second).
		SetRetryCount(0)
	for _, opt := range opts {
		opt(client)
	}

	return &Client{client: client}
}

// File 一个 multipart 二进制字段
type File struct {
	Param       string
	FileName    string
	ContentType string
	Reader      io.Reader
}

type RequestOptions struct {
	Headers map[string]string
	Data    any
	Params  map[string]any
	// Form/Files 非空时按 multipart/form-data 发送（Data 被忽略）
	Form  url.Values
	Files []File
	// Multipart 为 true 时即使没有文件也按 multipart 发送
	Multipart bool
}

// 仅设置本次请求的默认 Header（不要再改 client 级 Header）
func (c *Client) newRequest(ctx context.Context) *resty.Request {
	r := c.client.R()
	if ctx != nil {
		r.SetContext(ctx)
	}
	r.SetHeader("Accept", "application/json")
	r.SetHeader("User-Agent", "marketadmin/1")
	r.SetHeader("X-Request-Id", uuid.NewString())
	return r
}

// DoRequest 发送请求；2xx 时把响应体解码到 out，非 2xx 返回 *StatusError
func (c *Client) DoRequest(ctx context.Context, method, endpoint string, opt *RequestOptions, out any) (*resty.Response, error) {
	rc := c.newRequest(ctx)
	if opt != nil {
		for k, v := range opt.Headers {
			rc.SetHeader(k, v)
		}
		if opt.Params != nil {
			rc.SetQueryParamsFromValues(toValues(opt.Params))
		}
		switch {
		case opt.Multipart || len(opt.Form) > 0 || len(opt.Files) > 0:
			fields := make([]*resty.MultipartField, 0, len(opt.Files))
			for _, f := range opt.Files {
				fields = append(fields, &resty.MultipartField{
					Param:       f.Param,
					FileName:    f.FileName,
					ContentType: f.ContentType,
					Reader:      f.Reader,
				})
			}
			rc.SetFormDataFromValues(opt.Form)
			rc.SetMultipartFields(fields...)
		case opt.Data != nil:
			rc.SetHeader("Content-Type", "application/json")
			rc.SetBody(opt.Data)
		}
	}

	var (
		resp *resty.Response
		err  error
	)
	switch strings.ToUpper(method) {
	case http.MethodGet:
		resp, err = rc.Get(endpoint)
	case http.MethodPost:
		resp, err = rc.Post(endpoint)
	case http.MethodDelete:
		resp, err = rc.Delete(endpoint)
	case http.MethodPut:
		resp, err = rc.Put(endpoint)
	default:
		return nil, fmt.Errorf("unsupported method: %s", method)
	}

	entry := logger.WithFields(logrus.Fields{
		"method":     strings.ToUpper(method),
		"endpoint":   endpoint,
		"request_id": rc.Header.Get("X-Request-Id"),
	})
	if err != nil {
		entry.WithError(err).Debug("request failed")
		return resp, &TransportError{Err: err}
	}
	entry.WithField("status", resp.StatusCode()).Debug("request done")

	if !resp.IsSuccess() {
		return resp, ParseHTTPError(resp)
	}
	if out != nil && len(resp.Body()) > 0 {
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return resp, errors.Wrapf(err, "decode %s %s response", method, endpoint)
		}
	}
	return resp, nil
}

func toValues(m map[string]any) map[string][]string {
	v := make(map[string][]string, len(m))
	for k, val := range m {
		switch t := val.(type) {
		case []string:
			v[k] = t
		default:
			v[k] = []string{fmt.Sprint(val)}
		}
	}
	return v
}

// TransportError 网络层失败（连接错误、超时、取消）
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return "http transport: " + e.Err.Error() }

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// StatusError 非 2xx 响应
type StatusError struct {
	StatusCode int
	Status     string
	Body       any
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http non-2xx: %d %v", e.StatusCode, e.Body)
}

func (e *StatusError) Is(target error) bool { return target == ErrTransport }

func ParseHTTPError(resp *resty.Response) error {
	var body any
	b := resp.Body()
	_ = json.Unmarshal(b, &body)
	if body == nil {
		body = string(b)
	}
	return &StatusError{
		StatusCode: resp.StatusCode(),
		Status:     resp.Status(),
		Body:       body,
	}
}

// IsCanceled 判断是否是 context 取消导致的失败
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}

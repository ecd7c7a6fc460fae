// Package dao is the manager's data-access collaborator: it retrieves and
// creates payees either over HTTP against a remote payee API or in-process
// against the payee service.
package dao

import (
	"context"
	"errors"
	"net/url"

	"github.com/R3E-Network/payee_manager/internal/app/domain/payee"
	"github.com/R3E-Network/payee_manager/internal/app/services/payees"
	svcerrors "github.com/R3E-Network/payee_manager/internal/errors"
	"github.com/R3E-Network/payee_manager/internal/httputil"
	"github.com/R3E-Network/payee_manager/pkg/logger"
)

// Result is delivered by GetPayeesAsync.
type Result struct {
	Payees []payee.Payee
	Err    error
}

// DataAccess is the contract the manager and its views depend on.
// GetPayees and GetPayeesAsync return the same data; they differ only in
// calling convention.
type DataAccess interface {
	GetPayees(ctx context.Context) ([]payee.Payee, error)
	GetPayeesAsync(ctx context.Context) <-chan Result
	SearchPayees(ctx context.Context, criteria payee.Criteria) ([]payee.Payee, error)
	AddPayee(ctx context.Context, p payee.Payee) (payee.Payee, error)
}

var (
	_ DataAccess = (*Client)(nil)
	_ DataAccess = (*Local)(nil)
)

// Client talks to a remote payee API.
type Client struct {
	http *httputil.ServiceClient
	log  *logger.Logger
}

// NewClient builds a remote client.
func NewClient(cfg httputil.ServiceClientConfig, log *logger.Logger) *Client {
	if log == nil {
		log = logger.NewDefault("payee-dao")
	}
	return &Client{http: httputil.NewServiceClient(cfg), log: log}
}

func (c *Client) GetPayees(ctx context.Context) ([]payee.Payee, error) {
	return c.list(ctx, "/api/payees")
}

func (c *Client) GetPayeesAsync(ctx context.Context) <-chan Result {
	return async(ctx, c.GetPayees)
}

func (c *Client) SearchPayees(ctx context.Context, criteria payee.Criteria) ([]payee.Payee, error) {
	query := url.Values{}
	if criteria.Query != "" {
		query.Set("q", criteria.Query)
	}
	if criteria.City != "" {
		query.Set("city", criteria.City)
	}
	if criteria.State != "" {
		query.Set("state", criteria.State)
	}
	path := "/api/payees"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}
	return c.list(ctx, path)
}

func (c *Client) AddPayee(ctx context.Context, p payee.Payee) (payee.Payee, error) {
	resp, err := c.http.Post(ctx, "/api/payees", p)
	if err != nil {
		return payee.Payee{}, svcerrors.Upstream("payee api unreachable", err)
	}
	var created payee.Payee
	if err := httputil.DecodeResponse(resp, &created); err != nil {
		return payee.Payee{}, translate(err)
	}
	c.log.WithField("payee_id", created.ID).Debug("payee added through api")
	return created, nil
}

func (c *Client) list(ctx context.Context, path string) ([]payee.Payee, error) {
	resp, err := c.http.Get(ctx, path)
	if err != nil {
		return nil, svcerrors.Upstream("payee api unreachable", err)
	}
	var out []payee.Payee
	if err := httputil.DecodeResponse(resp, &out); err != nil {
		return nil, translate(err)
	}
	if out == nil {
		out = []payee.Payee{}
	}
	return out, nil
}

// translate turns remote 4xx responses back into service errors so callers
// can tell validation failures from outages.
func translate(err error) error {
	var statusErr *httputil.StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode >= 400 && statusErr.StatusCode < 500 {
		code := svcerrors.ErrorCode(statusErr.Code)
		if code == "" {
			code = svcerrors.CodeInvalidInput
		}
		return &svcerrors.ServiceError{
			Code:       code,
			Message:    statusErr.Message,
			HTTPStatus: statusErr.StatusCode,
			Err:        err,
		}
	}
	return svcerrors.Upstream("payee api request failed", err)
}

// Local serves the DataAccess contract from an in-process payee service.
type Local struct {
	svc *payees.Service
}

// NewLocal wraps svc.
func NewLocal(svc *payees.Service) *Local {
	return &Local{svc: svc}
}

func (l *Local) GetPayees(ctx context.Context) ([]payee.Payee, error) {
	return l.svc.List(ctx)
}

func (l *Local) GetPayeesAsync(ctx context.Context) <-chan Result {
	return async(ctx, l.GetPayees)
}

func (l *Local) SearchPayees(ctx context.Context, criteria payee.Criteria) ([]payee.Payee, error) {
	return l.svc.Search(ctx, criteria)
}

func (l *Local) AddPayee(ctx context.Context, p payee.Payee) (payee.Payee, error) {
	return l.svc.Create(ctx, p)
}

// async runs fetch in a goroutine and delivers exactly one Result. The channel
// is buffered so the goroutine never blocks if the caller stops listening.
func async(ctx context.Context, fetch func(context.Context) ([]payee.Payee, error)) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		list, err := fetch(ctx)
		out <- Result{Payees: list, Err: err}
	}()
	return out
}

package cliente

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/simp-lee/clientes/internal/domain"
	"github.com/simp-lee/clientes/internal/pkg"
)

const (
	resourcePath = "/ClientesPs"

	// maxErrorBody caps how much of a failed response is read into the error.
	maxErrorBody = 2048
)

// Gateway implements domain.ClienteGateway against the ClientesPs REST backend.
type Gateway struct {
	client *pkg.BaseClient
}

var _ domain.ClienteGateway = (*Gateway)(nil)

// NewGateway creates a Gateway that issues requests through client.
// Panics if client is nil.
func NewGateway(client *pkg.BaseClient) *Gateway {
	if client == nil {
		panic("cliente.NewGateway: client must not be nil")
	}
	return &Gateway{client: client}
}

// List fetches one page of records. Only the parameters present in query are sent.
func (g *Gateway) List(ctx context.Context, query *domain.QueryParams) (*domain.PagedResult[domain.Cliente], error) {
	values := url.Values{}
	for key, value := range query.Values() {
		values.Set(key, value)
	}

	var result domain.PagedResult[domain.Cliente]
	if err := g.do(ctx, http.MethodGet, resourcePath, values, nil, &result); err != nil {
		return nil, err
	}
	if result.Items == nil {
		result.Items = []domain.Cliente{}
	}
	return &result, nil
}

// GetByID fetches a single record.
func (g *Gateway) GetByID(ctx context.Context, id uint) (*domain.Cliente, error) {
	var c domain.Cliente
	if err := g.do(ctx, http.MethodGet, idPath("", id), nil, nil, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Create posts a new record and returns the stored version. When the backend
// answers without a body the submitted record is returned.
func (g *Gateway) Create(ctx context.Context, c domain.Cliente) (*domain.Cliente, error) {
	var created domain.Cliente
	if err := g.do(ctx, http.MethodPost, resourcePath, nil, c, &created); err != nil {
		return nil, err
	}
	if created.NumID == "" && !created.HasID() {
		created = c
	}
	return &created, nil
}

// Update replaces the record identified by id.
func (g *Gateway) Update(ctx context.Context, id uint, c domain.Cliente) error {
	return g.do(ctx, http.MethodPut, idPath("", id), nil, c, nil)
}

// Exists reports whether any record, active or not, uses numID.
func (g *Gateway) Exists(ctx context.Context, numID string) (bool, error) {
	var exists bool
	relPath := resourcePath + "/Exists/" + pkg.PathSegment(numID)
	if err := g.do(ctx, http.MethodGet, relPath, nil, nil, &exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Deactivate soft deletes the record.
func (g *Gateway) Deactivate(ctx context.Context, id uint) error {
	return g.do(ctx, http.MethodPut, idPath("SoftDelete", id), nil, struct{}{}, nil)
}

// Activate reactivates a soft deleted record.
func (g *Gateway) Activate(ctx context.Context, id uint) error {
	return g.do(ctx, http.MethodPut, idPath("Activate", id), nil, struct{}{}, nil)
}

// Ping checks that the backend answers a minimal list request.
func (g *Gateway) Ping(ctx context.Context) error {
	query := url.Values{"pageNumber": {"1"}, "pageSize": {"1"}}
	return g.do(ctx, http.MethodGet, resourcePath, query, nil, nil)
}

func idPath(action string, id uint) string {
	p := resourcePath
	if action != "" {
		p += "/" + action
	}
	return p + "/" + strconv.FormatUint(uint64(id), 10)
}

// do sends one request. in is JSON encoded when non-nil; out receives the
// decoded body when non-nil. Non-2xx answers become *domain.AppError.
func (g *Gateway) do(ctx context.Context, method, relPath string, query url.Values, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return domain.NewAppError(domain.CodeInternal, "encode request", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := g.client.NewRequest(ctx, method, relPath, query, body)
	if err != nil {
		return domain.NewAppError(domain.CodeInternal, "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return domain.NewRemoteError(0, "backend unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return mapError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return domain.NewRemoteError(resp.StatusCode, "decode response", err)
	}
	return nil
}

// mapError converts a failed backend response to a domain error.
func mapError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	detail := errorDetail(raw)
	cause := fmt.Errorf("%s %s: %d %s", resp.Request.Method, resp.Request.URL.Path, resp.StatusCode, detail)

	if resp.StatusCode == http.StatusConflict || isDuplicateKeyError(detail) {
		appErr := domain.NewRemoteError(http.StatusConflict, "numId already exists", cause)
		appErr.Status = resp.StatusCode
		return appErr
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return domain.NewRemoteError(resp.StatusCode, "cliente not found", cause)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		if detail == "" {
			detail = "invalid cliente"
		}
		return domain.NewRemoteError(resp.StatusCode, detail, cause)
	default:
		return domain.NewRemoteError(resp.StatusCode, "backend error", cause)
	}
}

// errorDetail extracts a readable message from an error body. It understands
// problem details ({"title","detail"}), {"message"} and plain text.
func errorDetail(raw []byte) string {
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return ""
	}
	var problem struct {
		Title   string `json:"title"`
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &problem); err == nil {
		for _, s := range []string{problem.Detail, problem.Message, problem.Title} {
			if s != "" {
				return s
			}
		}
	}
	return text
}

// isDuplicateKeyError detects unique constraint violations reported in the
// body. Some backends answer them with a generic 400 or 500 status.
func isDuplicateKeyError(msg string) bool {
	msg = strings.ToLower(msg)
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}

package exports

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hirekitlabs/hirekit-backend/pkg/config"
	pkgerrors "github.com/hirekitlabs/hirekit-backend/pkg/errors"
)

const (
	rendererClientTimeout = 30 * time.Second
	rendererErrorBodyCap  = 2048
)

// Renderer turns a render document into PDF bytes.
type Renderer interface {
	RenderPDF(ctx context.Context, doc Document) ([]byte, error)
}

// HTTPRenderer calls the external rendering service. The service accepts the
// document as JSON and answers with the finished PDF body.
type HTTPRenderer struct {
	url    string
	token  string
	client *http.Client
}

// NewHTTPRenderer builds a renderer from the exports configuration.
func NewHTTPRenderer(cfg config.ExportsConfig) (*HTTPRenderer, error) {
	if strings.TrimSpace(cfg.RendererURL) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "renderer url required")
	}
	return &HTTPRenderer{
		url:    strings.TrimRight(cfg.RendererURL, "/"),
		token:  cfg.RendererToken,
		client: &http.Client{Timeout: rendererClientTimeout},
	}, nil
}

func (r *HTTPRenderer) RenderPDF(ctx context.Context, doc Document) ([]byte, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode render document: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url+"/render", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/pdf")
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, renderError(resp)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read rendered pdf: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("renderer returned an empty document")
	}
	return data, nil
}

func renderError(resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, rendererErrorBodyCap))
	return fmt.Errorf("renderer returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
}

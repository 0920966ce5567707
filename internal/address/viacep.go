package address

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dukerupert/coffee-delivery/internal/cep"
	"github.com/dukerupert/coffee-delivery/internal/telemetry"
)

// DefaultViaCEPURL is the public ViaCEP endpoint.
const DefaultViaCEPURL = "https://viacep.com.br"

// ViaCEPConfig configures the ViaCEP client.
type ViaCEPConfig struct {
	// BaseURL defaults to DefaultViaCEPURL. Tests point it at httptest servers.
	BaseURL string

	// Timeout bounds a single upstream request. Zero means no timeout beyond
	// the caller's context.
	Timeout time.Duration

	// HTTPClient overrides the client used for requests.
	HTTPClient *http.Client
}

// ViaCEPClient implements Directory against the ViaCEP web service:
//
//	GET {base}/ws/{code}/json/ -> {"logradouro", "bairro", "localidade", "uf", "erro"?}
//
// Concurrent lookups for the same code share one upstream request.
type ViaCEPClient struct {
	baseURL string
	timeout time.Duration
	client  *http.Client
	group   singleflight.Group
}

// NewViaCEPClient creates a new ViaCEP directory client.
func NewViaCEPClient(cfg ViaCEPConfig) *ViaCEPClient {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultViaCEPURL
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	return &ViaCEPClient{
		baseURL: baseURL,
		timeout: cfg.Timeout,
		client:  client,
	}
}

// viaCEPResponse is the JSON document returned by ViaCEP.
type viaCEPResponse struct {
	CEP        string   `json:"cep"`
	Logradouro string   `json:"logradouro"`
	Bairro     string   `json:"bairro"`
	Localidade string   `json:"localidade"`
	UF         string   `json:"uf"`
	Erro       flexBool `json:"erro"`
}

// flexBool decodes both `true` and `"true"`; ViaCEP has used each for the
// not-found flag.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	switch string(data) {
	case "true":
		*b = true
	case "false", "", "null":
		*b = false
	default:
		return fmt.Errorf("invalid boolean %q", data)
	}
	return nil
}

// Lookup resolves code (eight digits, masked or not).
func (c *ViaCEPClient) Lookup(ctx context.Context, code string) (*LookupResult, error) {
	digits, ok := cep.Normalize(code)
	if !ok {
		return nil, ErrInvalidCEP
	}

	// The shared request must not die with whichever caller started it.
	ch := c.group.DoChan(digits, func() (interface{}, error) {
		return c.fetch(context.WithoutCancel(ctx), digits)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		// Each caller gets its own copy.
		out := *res.Val.(*LookupResult)
		return &out, nil
	}
}

func (c *ViaCEPClient) fetch(ctx context.Context, digits string) (result *LookupResult, err error) {
	start := time.Now()
	defer func() {
		if telemetry.Checkout == nil {
			return
		}
		outcome := "found"
		switch {
		case err != nil:
			outcome = "error"
		case result.NotFound:
			outcome = "not_found"
		}
		telemetry.Checkout.LookupsTotal.WithLabelValues("viacep", outcome).Inc()
		telemetry.Checkout.LookupLatency.WithLabelValues("viacep").Observe(time.Since(start).Seconds())
	}()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	url := fmt.Sprintf("%s/ws/%s/json/", c.baseURL, digits)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build lookup request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	var body viaCEPResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode lookup response: %w", err)
	}

	return &LookupResult{
		Street:   body.Logradouro,
		District: body.Bairro,
		City:     body.Localidade,
		State:    body.UF,
		NotFound: bool(body.Erro),
	}, nil
}

package graph

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
)

// Runner executes a GraphQL document against the backend and decodes the
// data payload into out. It is the seam mutation and query code depends
// on, so tests can substitute a scripted runner for the real endpoint.
type Runner interface {
	Run(ctx context.Context, document string, vars map[string]any, out any) error
}

// Uploader executes a GraphQL document carrying one attached file.
type Uploader interface {
	Upload(ctx context.Context, document string, vars map[string]any, varPath, filename string, file io.Reader, out any) error
}

// Client is the HTTP transport to the backend's /graphql endpoint. It
// never retries: a failed request surfaces its error once and retry is a
// caller decision.
type Client struct {
	endpoint string
	client   *http.Client
}

func NewClient(origin string) *Client {
	return &Client{
		endpoint: origin + "/graphql",
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

type requestEnvelope struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type responseEnvelope struct {
	Data   jsoniter.RawMessage `json:"data"`
	Errors ErrorList           `json:"errors,omitempty"`
}

func (c *Client) Run(ctx context.Context, document string, vars map[string]any, out any) error {
	payload, err := jsoniter.Marshal(requestEnvelope{Query: document, Variables: vars})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnreachable, err)
	}
	defer resp.Body.Close()

	log.Debug().
		Str("request", req.Header.Get("X-Request-ID")).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("Forwarded an operation to the backend.")

	return decodeEnvelope(resp, out)
}

// Upload sends a document with one attached file following the GraphQL
// multipart request convention; the file variable must be declared null
// in vars and named by varPath (e.g. "variables.file"). Aborting ctx
// releases the in-flight request without retries.
func (c *Client) Upload(ctx context.Context, document string, vars map[string]any, varPath, filename string, file io.Reader, out any) error {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	operations, err := jsoniter.Marshal(requestEnvelope{Query: document, Variables: vars})
	if err != nil {
		return err
	}
	if err := form.WriteField("operations", string(operations)); err != nil {
		return err
	}
	fileMap, err := jsoniter.Marshal(map[string][]string{"0": {varPath}})
	if err != nil {
		return err
	}
	if err := form.WriteField("map", string(fileMap)); err != nil {
		return err
	}

	part, err := form.CreateFormFile("0", filename)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("failed to buffer upload: %v", err)
	}
	if err := form.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnreachable, err)
	}
	defer resp.Body.Close()

	return decodeEnvelope(resp, out)
}

func decodeEnvelope(resp *http.Response, out any) error {
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: responded with status %d", ErrBackendUnreachable, resp.StatusCode)
	}

	var envelope responseEnvelope
	if err := jsoniter.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("failed to parse backend response: %v", err)
	}
	if len(envelope.Errors) > 0 {
		return envelope.Errors
	}
	if out == nil {
		return nil
	}
	if len(envelope.Data) == 0 || bytes.Equal(envelope.Data, []byte("null")) {
		return ErrMissingPayload
	}

	return jsoniter.Unmarshal(envelope.Data, out)
}

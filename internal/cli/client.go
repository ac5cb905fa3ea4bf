package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const (
	envAPIURL = "INKWELL_API_URL"
	envUserID = "INKWELL_USER_ID"

	defaultAPIURL = "http://localhost:8080"
)

// apiClient talks to a running inkwelld instance. Requests carry the caller
// identity in the X-User-ID header, the same way the server expects it from
// any other client.
type apiClient struct {
	baseURL    string
	userID     string
	httpClient *http.Client
}

// newAPIClient resolves the server URL and identity, flags first, then
// environment.
func newAPIClient(cmd *cobra.Command) (*apiClient, error) {
	_ = godotenv.Load()

	var baseURL, userID string
	if cmd != nil {
		if flagURL, err := cmd.Flags().GetString("api-url"); err == nil && flagURL != "" {
			baseURL = flagURL
		}
		if flagUser, err := cmd.Flags().GetString("user"); err == nil && flagUser != "" {
			userID = flagUser
		}
	}

	if baseURL == "" {
		baseURL = os.Getenv(envAPIURL)
	}
	if userID == "" {
		userID = os.Getenv(envUserID)
	}

	if userID == "" {
		return nil, fmt.Errorf("no user identity set (use --user or %s)", envUserID)
	}
	if baseURL == "" {
		baseURL = defaultAPIURL
	}

	return &apiClient{
		baseURL: baseURL,
		userID:  userID,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}, nil
}

// apiResponse is the server's standard response envelope.
type apiResponse struct {
	Data  json.RawMessage `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
}

// apiError is a non-2xx response from the server.
type apiError struct {
	StatusCode int
	Message    string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

// get performs a GET request.
func (c *apiClient) get(path string) (*apiResponse, error) {
	return c.do(http.MethodGet, path, "", nil)
}

// postJSON performs a POST request with a JSON body.
func (c *apiClient) postJSON(path string, body interface{}) (*apiResponse, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	return c.do(http.MethodPost, path, "application/json", bytes.NewReader(jsonData))
}

// postFile performs a multipart POST with the file contents in the "file"
// field, which is how the document upload endpoint takes its input.
func (c *apiClient) postFile(path, filename string, data []byte) (*apiResponse, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("failed to write form file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart form: %w", err)
	}

	return c.do(http.MethodPost, path, writer.FormDataContentType(), &buf)
}

func (c *apiClient) do(method, path, contentType string, body io.Reader) (*apiResponse, error) {
	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-User-ID", c.userID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var apiResp apiResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		if resp.StatusCode >= 400 {
			return nil, &apiError{StatusCode: resp.StatusCode, Message: string(respBody)}
		}
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &apiError{StatusCode: resp.StatusCode, Message: apiResp.Error}
	}

	return &apiResp, nil
}

// addClientFlags registers the flags shared by the client commands.
func addClientFlags(cmd *cobra.Command) {
	cmd.Flags().String("api-url", "", "Inkwell server URL (default "+defaultAPIURL+")")
	cmd.Flags().String("user", "", "User identity sent as X-User-ID")
	cmd.Flags().StringP("output", "o", "text", "Output format: text or json")
}

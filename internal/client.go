package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to the meeting server's HTTP API
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

// NewClient creates a client for the server at baseURL. A zero timeout
// leaves requests unbounded; callers bound them through their context.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server url %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid server url %q: missing host", baseURL)
	}

	return &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// BaseURL returns the server root the client is bound to
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// endpoint builds an absolute URL from path segments, escaping each one
func (c *Client) endpoint(segments ...string) *url.URL {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return c.baseURL.JoinPath(escaped...)
}

func (c *Client) do(ctx context.Context, method string, u *url.URL, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out interface{}) error {
	path := req.URL.EscapedPath()
	LogDebug("%s %s", req.Method, req.URL.RequestURI())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Method: req.Method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	if err := checkResponse(req.Method, path, resp); err != nil {
		return err
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &DecodeError{Path: path, Err: err}
	}
	return nil
}

func checkResponse(method, path string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &APIError{
		Method:     method,
		Path:       path,
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}

// Devices lists the server's audio input devices
func (c *Client) Devices(ctx context.Context) ([]Device, error) {
	var resp struct {
		Devices []Device `json:"devices"`
	}
	if err := c.do(ctx, http.MethodGet, c.endpoint("devices"), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Devices, nil
}

// SelectDevice sets the microphone used for recording
func (c *Client) SelectDevice(ctx context.Context, index int) error {
	body := map[string]int{"device_index": index}
	return c.do(ctx, http.MethodPost, c.endpoint("config", "device"), body, nil)
}

// Control issues a start or stop action and returns the server's status string
func (c *Client) Control(ctx context.Context, action string) (string, error) {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodPost, c.endpoint("control", action), nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

// Status fetches the current recording status snapshot
func (c *Client) Status(ctx context.Context) (*StatusSnapshot, error) {
	var snap StatusSnapshot
	if err := c.do(ctx, http.MethodGet, c.endpoint("status"), nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// History fetches every recording
func (c *Client) History(ctx context.Context) ([]Recording, error) {
	var resp struct {
		Recordings []Recording `json:"recordings"`
	}
	if err := c.do(ctx, http.MethodGet, c.endpoint("history"), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Recordings, nil
}

// Search fetches recordings whose title, summary or tags match query
func (c *Client) Search(ctx context.Context, query string) ([]Recording, error) {
	u := c.endpoint("search")
	u.RawQuery = url.Values{"q": []string{query}}.Encode()

	var resp struct {
		Results []Recording `json:"results"`
	}
	if err := c.do(ctx, http.MethodGet, u, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// ClearHistory deletes every recording on the server
func (c *Client) ClearHistory(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, c.endpoint("history"), nil, nil)
}

// DeleteRecording deletes a single recording
func (c *Client) DeleteRecording(ctx context.Context, filename string) error {
	return c.do(ctx, http.MethodDelete, c.endpoint("history", filename), nil, nil)
}

// Upload streams r to the server as the multipart field "file"
func (c *Client) Upload(ctx context.Context, name string, r io.Reader) error {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		part, err := mw.CreateFormFile("file", name)
		if err != nil {
			_ = pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, r); err != nil {
			_ = pw.CloseWithError(err)
			return
		}
		_ = pw.CloseWithError(mw.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("upload").String(), pr)
	if err != nil {
		_ = pr.Close()
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return c.send(req, nil)
}

// Meeting fetches a single recording's detail
func (c *Client) Meeting(ctx context.Context, filename string) (*MeetingDetail, error) {
	var detail MeetingDetail
	if err := c.do(ctx, http.MethodGet, c.endpoint("meeting", filename), nil, &detail); err != nil {
		return nil, err
	}
	if detail.Filename == "" {
		detail.Filename = filename
	}
	return &detail, nil
}

// AudioURL returns the media URL for a recording's audio
func (c *Client) AudioURL(filename string) string {
	return c.endpoint("audio", filename).String()
}

// DownloadAudio streams a recording's audio into w
func (c *Client) DownloadAudio(ctx context.Context, filename string, w io.Writer) (int64, error) {
	u := c.endpoint("audio", filename)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, &TransportError{Method: req.Method, Path: u.EscapedPath(), Err: err}
	}
	defer resp.Body.Close()

	if err := checkResponse(req.Method, u.EscapedPath(), resp); err != nil {
		return 0, err
	}
	return io.Copy(w, resp.Body)
}

// AddTag attaches a tag to a recording
func (c *Client) AddTag(ctx context.Context, filename, tag string) error {
	body := map[string]string{"tag": tag}
	return c.do(ctx, http.MethodPost, c.endpoint("tags", filename), body, nil)
}

// Settings fetches the server's recording settings
func (c *Client) Settings(ctx context.Context) (Settings, error) {
	var resp struct {
		Settings Settings `json:"settings"`
	}
	if err := c.do(ctx, http.MethodGet, c.endpoint("settings"), nil, &resp); err != nil {
		return nil, err
	}
	if resp.Settings == nil {
		resp.Settings = Settings{}
	}
	return resp.Settings, nil
}

// SaveSettings writes the flat settings map back to the server
func (c *Client) SaveSettings(ctx context.Context, s Settings) error {
	return c.do(ctx, http.MethodPost, c.endpoint("settings"), s, nil)
}

// SaveSpeakers replaces a recording's speaker annotations
func (c *Client) SaveSpeakers(ctx context.Context, filename string, speakers []Speaker) error {
	if speakers == nil {
		speakers = []Speaker{}
	}
	body := map[string][]Speaker{"speakers": speakers}
	return c.do(ctx, http.MethodPost, c.endpoint("meeting", filename, "speakers"), body, nil)
}

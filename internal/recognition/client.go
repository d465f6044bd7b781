// SPDX-License-Identifier: MIT
/*
Package recognition identifies the song being captured by uploading a short
clip to an ACRCloud-compatible identification service.

The Client performs one signed request. The Task runs independently of the
render loop and only ever talks to the engine through its status slot and
one-shot resume flag; failures are reduced to a fallback status string.
*/
package recognition

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ringviz/internal/config"
)

const (
	identifyPath     = "/v1/identify"
	dataType         = "audio"
	signatureVersion = "1"

	// Status codes returned by the service.
	codeSuccess  = 0
	codeNoResult = 1001
)

var ErrNoMatch = errors.New("recognition: no match")

// StatusError is a non-zero status reported by the service.
type StatusError struct {
	Code int
	Msg  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("recognition: service status %d: %s", e.Code, e.Msg)
}

// Match is the best result for a clip.
type Match struct {
	Title   string
	Artists []string
}

// String formats the match for display as "Title - Artist, Artist".
func (m Match) String() string {
	if len(m.Artists) == 0 {
		return m.Title
	}
	return m.Title + " - " + strings.Join(m.Artists, ", ")
}

type response struct {
	Status struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
	} `json:"status"`
	Metadata struct {
		Music []struct {
			Title   string `json:"title"`
			Artists []struct {
				Name string `json:"name"`
			} `json:"artists"`
		} `json:"music"`
	} `json:"metadata"`
}

type Client struct {
	endpoint     string
	accessKey    string
	accessSecret string
	httpClient   *http.Client
	now          func() time.Time
}

// NewClient builds a client for rc.Host. A host without a scheme is reached
// over https.
func NewClient(rc config.RecognitionConfig) *Client {
	host := strings.TrimRight(rc.Host, "/")
	if !strings.Contains(host, "://") {
		host = "https://" + host
	}
	return &Client{
		endpoint:     host + identifyPath,
		accessKey:    rc.AccessKey,
		accessSecret: rc.AccessSecret,
		httpClient:   &http.Client{Timeout: rc.Timeout},
		now:          time.Now,
	}
}

// Sign returns the base64 HMAC-SHA1 request signature for timestamp.
func Sign(accessKey, accessSecret string, timestamp int64) string {
	toSign := strings.Join([]string{
		http.MethodPost,
		identifyPath,
		accessKey,
		dataType,
		signatureVersion,
		strconv.FormatInt(timestamp, 10),
	}, "\n")

	mac := hmac.New(sha1.New, []byte(accessSecret))
	mac.Write([]byte(toSign))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Identify uploads sample, an encoded audio clip, and returns the first
// match. It returns ErrNoMatch when the service found nothing and a
// *StatusError for any other non-zero status.
func (c *Client) Identify(ctx context.Context, sample []byte) (Match, error) {
	timestamp := c.now().Unix()

	body, contentType, err := c.form(sample, timestamp)
	if err != nil {
		return Match{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return Match{}, fmt.Errorf("recognition: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Match{}, fmt.Errorf("recognition: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return Match{}, fmt.Errorf("recognition: unexpected HTTP status %s", resp.Status)
	}

	var r response
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return Match{}, fmt.Errorf("recognition: failed to decode response: %w", err)
	}

	switch r.Status.Code {
	case codeSuccess:
	case codeNoResult:
		return Match{}, ErrNoMatch
	default:
		return Match{}, &StatusError{Code: r.Status.Code, Msg: r.Status.Msg}
	}

	if len(r.Metadata.Music) == 0 {
		return Match{}, ErrNoMatch
	}
	music := r.Metadata.Music[0]
	m := Match{Title: music.Title}
	for _, a := range music.Artists {
		m.Artists = append(m.Artists, a.Name)
	}
	return m, nil
}

func (c *Client) form(sample []byte, timestamp int64) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := [][2]string{
		{"access_key", c.accessKey},
		{"sample_bytes", strconv.Itoa(len(sample))},
		{"timestamp", strconv.FormatInt(timestamp, 10)},
		{"signature", Sign(c.accessKey, c.accessSecret, timestamp)},
		{"data_type", dataType},
		{"signature_version", signatureVersion},
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", fmt.Errorf("recognition: failed to write form: %w", err)
		}
	}

	part, err := w.CreateFormFile("sample", "sample.wav")
	if err != nil {
		return nil, "", fmt.Errorf("recognition: failed to write form: %w", err)
	}
	if _, err := part.Write(sample); err != nil {
		return nil, "", fmt.Errorf("recognition: failed to write form: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("recognition: failed to write form: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

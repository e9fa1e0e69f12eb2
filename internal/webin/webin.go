package webin

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/seqops/virsam/internal/errors"
)

// Part names recognized by the submission drop box.
const (
	PartSubmission = "SUBMISSION"
	PartSample     = "SAMPLE"
	PartProject    = "PROJECT"
)

// Document is one file attached to a drop box submission.
type Document struct {
	Part string // form field name: SUBMISSION, SAMPLE or PROJECT
	Path string // file on disk
}

// Client posts submission envelopes to the archive drop box using
// HTTP basic authentication.
type Client struct {
	url        string
	account    string
	password   string
	httpClient *http.Client
}

// NewClient creates a drop box client for the given endpoint.
func NewClient(url, account, password string, timeout time.Duration) *Client {
	return &Client{
		url:      url,
		account:  account,
		password: password,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Submit posts the given documents as one multipart request and returns
// the receipt body verbatim. A non-OK status is an error; the receipt is
// returned as-is even then so callers can preserve it for inspection.
func (c *Client) Submit(ctx context.Context, docs ...Document) ([]byte, error) {
	const op errors.Op = "webin.Submit"

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, doc := range docs {
		if err := attachFile(writer, doc); err != nil {
			return nil, errors.E(op, errors.KindIO, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, errors.E(op, errors.KindIO, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, &buf)
	if err != nil {
		return nil, errors.E(op, errors.KindNetwork, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.SetBasicAuth(c.account, c.password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.E(op, errors.KindNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.E(op, errors.KindIO, err)
	}

	if resp.StatusCode != http.StatusOK {
		return body, errors.E(op, errors.KindNetwork,
			fmt.Errorf("HTTP %d from drop box: %s", resp.StatusCode, snippet(body)))
	}

	return body, nil
}

func attachFile(writer *multipart.Writer, doc Document) error {
	file, err := os.Open(doc.Path)
	if err != nil {
		return err
	}
	defer file.Close()

	part, err := writer.CreateFormFile(doc.Part, filepath.Base(doc.Path))
	if err != nil {
		return err
	}
	_, err = io.Copy(part, file)
	return err
}

// snippet trims a response body down to one short line for error messages.
func snippet(body []byte) string {
	line := strings.TrimSpace(string(body))
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}
	if len(line) > 120 {
		line = line[:120]
	}
	return line
}

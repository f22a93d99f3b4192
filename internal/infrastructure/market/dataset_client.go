package market

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"skill-gap/internal/domain/skillgap"
)

var ErrEmptyDataset = errors.New("dataset has no usable rows")

// DatasetClient reads the two-column skill,count CSV from a file or URL.
type DatasetClient interface {
	Fetch(ctx context.Context) (map[string]int, error)
}

type httpDatasetClient struct {
	url    string
	client *http.Client
	logger *log.Logger
}

// NewDatasetClient returns nil when url is empty.
func NewDatasetClient(url string, timeout time.Duration, logger *log.Logger) DatasetClient {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &httpDatasetClient{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

func (c *httpDatasetClient) Fetch(ctx context.Context) (map[string]int, error) {
	if c == nil || c.client == nil {
		return nil, errors.New("nil dataset client")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/csv, text/plain")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rb, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		bodyStr := strings.TrimSpace(string(rb))
		if c.logger != nil {
			c.logger.Printf("[Market] dataset fetch error url=%s status=%d body=%q", c.url, resp.StatusCode, bodyStr)
		}
		return nil, fmt.Errorf("dataset fetch failed: status=%d", resp.StatusCode)
	}
	return skillgap.ParseMarketCSV(resp.Body)
}

type fileDatasetClient struct {
	path string
}

// NewFileDatasetClient returns nil when path is empty.
func NewFileDatasetClient(path string) DatasetClient {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	return &fileDatasetClient{path: path}
}

func (c *fileDatasetClient) Fetch(ctx context.Context) (map[string]int, error) {
	f, err := os.Open(c.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return skillgap.ParseMarketCSV(f)
}

package shipping

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dujiao-next/storefront/internal/models"
)

const maxResponseBytes = 1 << 20

// HTTPFetcher 从远程集合地址拉取配送方式
type HTTPFetcher struct {
	URL    string
	Client *http.Client
}

// NewHTTPFetcher 创建远程拉取器
func NewHTTPFetcher(url string, timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPFetcher{
		URL:    strings.TrimSpace(url),
		Client: &http.Client{Timeout: timeout},
	}
}

// flexText 兼容字符串与数字字面量，保留原始文本不做转换
type flexText string

func (t *flexText) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		*t = ""
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*t = flexText(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return err
	}
	*t = flexText(n.String())
	return nil
}

type remoteMethod struct {
	ID                flexText `json:"id"`
	Name              string   `json:"name"`
	EstimatedDelivery string   `json:"estimated_delivery"`
	EstimatedDays     string   `json:"estimatedDays"`
	Price             flexText `json:"price"`
}

type remoteEnvelope struct {
	StatusCode int    `json:"status_code"`
	Msg        string `json:"msg"`
	Data       struct {
		Items []remoteMethod `json:"items"`
	} `json:"data"`
}

// Fetch 实现 Fetcher
func (f *HTTPFetcher) Fetch(ctx context.Context) ([]models.ShippingMethod, error) {
	if f == nil || f.URL == "" {
		return nil, fmt.Errorf("%w: remote url is empty", ErrFetchFailed)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: http status %d", ErrFetchStatus, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	return decodeMethods(body)
}

func decodeMethods(body []byte) ([]models.ShippingMethod, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrResponseInvalid)
	}

	var raw []remoteMethod
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
		}
	} else {
		var envelope remoteEnvelope
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
		}
		if envelope.StatusCode != 0 {
			return nil, fmt.Errorf("%w: status_code %d %s", ErrFetchStatus, envelope.StatusCode, envelope.Msg)
		}
		raw = envelope.Data.Items
	}

	methods := make([]models.ShippingMethod, 0, len(raw))
	for i, item := range raw {
		id := strings.TrimSpace(string(item.ID))
		if id == "" {
			return nil, fmt.Errorf("%w: item %d has no id", ErrResponseInvalid, i)
		}
		estimate := item.EstimatedDelivery
		if estimate == "" {
			estimate = item.EstimatedDays
		}
		methods = append(methods, models.ShippingMethod{
			ID:                id,
			Name:              item.Name,
			EstimatedDelivery: estimate,
			Price:             string(item.Price),
			SortOrder:         i,
			IsActive:          true,
		})
	}
	return methods, nil
}

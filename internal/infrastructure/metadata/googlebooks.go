// Package metadata 实现基于Google Books API的图书元数据搜索
package metadata

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/xiebiao/library/internal/domain/metadata"
	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/pkg/circuitbreaker"
	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/metrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// GoogleBooksClient Google Books API客户端
// 设计说明:
// 1. 实现domain层的metadata.Searcher接口
// 2. 外部HTTP调用包在熔断器里:API持续故障时快速失败,
//    不让登记表单卡在5秒超时上
// 3. 所有失败(网络、非200、解析)统一归一为外部查询错误
type GoogleBooksClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	breaker *circuitbreaker.CircuitBreaker
}

// NewGoogleBooksClient 创建元数据客户端
func NewGoogleBooksClient(cfg config.MetadataConfig) *GoogleBooksClient {
	cb := circuitbreaker.NewCircuitBreaker("google-books", circuitbreaker.Config{
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	// 熔断器状态变化同步到监控指标
	cb.SetStateChangeCallback(func(name string, _, to circuitbreaker.State) {
		metrics.SetGaugeVec(metrics.CircuitBreakerState, map[string]string{"name": name}, float64(to))
	})

	return &GoogleBooksClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: cfg.Timeout},
		breaker: cb,
	}
}

// volumesResponse Google Books API响应结构(只解析用到的字段)
type volumesResponse struct {
	Items []struct {
		VolumeInfo volumeInfo `json:"volumeInfo"`
	} `json:"items"`
}

type volumeInfo struct {
	Title               string   `json:"title"`
	Authors             []string `json:"authors"`
	PublishedDate       string   `json:"publishedDate"`
	Categories          []string `json:"categories"`
	IndustryIdentifiers []struct {
		Type       string `json:"type"`
		Identifier string `json:"identifier"`
	} `json:"industryIdentifiers"`
}

// Search 按标题关键词搜索,最多返回5条候选
func (c *GoogleBooksClient) Search(ctx context.Context, query string) ([]metadata.Candidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []metadata.Candidate{}, nil
	}

	start := time.Now()
	var candidates []metadata.Candidate

	err := c.breaker.Execute(func() error {
		var innerErr error
		candidates, innerErr = c.doSearch(ctx, query)
		return innerErr
	})

	metrics.ObserveHistogram(metrics.MetadataLookupDuration, time.Since(start).Seconds())

	if err == circuitbreaker.ErrOpenState {
		metrics.IncCounterVec(metrics.MetadataLookupsTotal, map[string]string{"result": "rejected"})
		return nil, apperrors.WrapCode(apperrors.ErrCodeExternalLookup, err, "图书元数据服务暂时不可用")
	}
	if err != nil {
		metrics.IncCounterVec(metrics.MetadataLookupsTotal, map[string]string{"result": "failure"})
		return nil, apperrors.WrapCode(apperrors.ErrCodeExternalLookup, err, "图书元数据查询失败")
	}

	metrics.IncCounterVec(metrics.MetadataLookupsTotal, map[string]string{"result": "success"})
	return candidates, nil
}

// doSearch 执行实际的HTTP请求与解析
func (c *GoogleBooksClient) doSearch(ctx context.Context, query string) ([]metadata.Candidate, error) {
	params := url.Values{}
	params.Set("q", "intitle:"+query)
	params.Set("maxResults", strconv.Itoa(metadata.MaxResults))
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/volumes?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("意外的响应状态: %d", resp.StatusCode)
	}

	var body volumesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("解析响应失败: %w", err)
	}

	candidates := make([]metadata.Candidate, 0, len(body.Items))
	for _, item := range body.Items {
		if len(candidates) >= metadata.MaxResults {
			break
		}
		info := item.VolumeInfo
		candidates = append(candidates, metadata.Candidate{
			Title:    info.Title,
			Author:   strings.Join(info.Authors, ", "),
			Year:     parseYear(info.PublishedDate),
			Category: firstOf(info.Categories),
			ISBN:     firstISBN(info),
		})
	}
	return candidates, nil
}

// parseYear 从publishedDate提取年份
// 格式可能是"2006"、"2006-01"或"2006-01-02",取前4位数字;解析失败返回0
func parseYear(published string) int {
	if len(published) < 4 {
		return 0
	}
	year, err := strconv.Atoi(published[:4])
	if err != nil {
		return 0
	}
	return year
}

func firstOf(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// firstISBN 优先取ISBN_13,其次ISBN_10,再次第一个标识符
func firstISBN(info volumeInfo) string {
	var isbn10, other string
	for _, id := range info.IndustryIdentifiers {
		switch id.Type {
		case "ISBN_13":
			return id.Identifier
		case "ISBN_10":
			if isbn10 == "" {
				isbn10 = id.Identifier
			}
		default:
			if other == "" {
				other = id.Identifier
			}
		}
	}
	if isbn10 != "" {
		return isbn10
	}
	return other
}

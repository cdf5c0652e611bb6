package solver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/youlu/youlu/pkg/event"
	"github.com/youlu/youlu/pkg/logger"
)

// Error 求解器错误
// 携带HTTP状态码（网络层失败时为0）供上层决定是否重新排队整个优化任务
type Error struct {
	StatusCode int    `json:"status_code,omitempty"`
	Message    string `json:"message"`
}

// Error 实现 error 接口
func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("求解器错误 (HTTP %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("求解器错误: %s", e.Message)
}

// Config 求解器客户端配置
type Config struct {
	Host            string        `yaml:"host"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout"`
	ResponseTimeout time.Duration `yaml:"response_timeout"`
	RetryCount      int           `yaml:"retry_count"`
	RetryDelay      time.Duration `yaml:"retry_delay"`
	RateLimit       float64       `yaml:"rate_limit"` // 每秒请求数上限（0表示不限）
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Host:            "http://localhost:3000",
		ConnectTimeout:  3 * time.Second,
		ResponseTimeout: 30 * time.Second,
		RetryCount:      2,
		RetryDelay:      time.Second,
	}
}

// Request 一次求解请求
type Request struct {
	Input    *Input
	OfficeID uuid.UUID
	Date     string
}

// Client 求解器HTTP客户端
// 配置在构造时固定，调用之间不持有可变状态，可被并发使用
type Client struct {
	host       string
	http       *http.Client
	retryCount int
	retryDelay time.Duration
	limiter    *rate.Limiter
	events     *event.Dispatcher
	log        *logger.OptimizerLogger
}

// NewClient 创建求解器客户端
func NewClient(cfg Config, events *event.Dispatcher) *Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{Timeout: cfg.ConnectTimeout}).DialContext,
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}

	return &Client{
		host: cfg.Host,
		http: &http.Client{
			Timeout:   cfg.ResponseTimeout,
			Transport: transport,
		},
		retryCount: cfg.RetryCount,
		retryDelay: cfg.RetryDelay,
		limiter:    limiter,
		events:     events,
		log:        logger.NewOptimizerLogger(),
	}
}

// Solve 向求解器提交一次求解请求
// 固定次数的自动重试仅覆盖传输层失败与可重试状态码；
// 业务层的重试（如重新排队整个优化任务）由调用方决定
func (c *Client) Solve(ctx context.Context, req *Request) (*Plan, error) {
	requestID := uuid.New().String()

	c.events.Publish(event.Event{
		Type:      event.TypeRequestSent,
		RequestID: requestID,
		Host:      c.host,
		OfficeID:  req.OfficeID,
		Date:      req.Date,
		Payload:   req.Input,
	})

	payload, err := json.Marshal(req.Input)
	if err != nil {
		return nil, c.fail(req, requestID, fmt.Errorf("序列化求解器请求失败: %w", err))
	}

	attempts := c.retryCount + 1
	var lastErr error

	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, c.fail(req, requestID, ctx.Err())
			case <-time.After(c.retryDelay):
			}
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, c.fail(req, requestID, err)
			}
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host, bytes.NewReader(payload))
		if err != nil {
			return nil, c.fail(req, requestID, err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Accept", "application/json")

		start := time.Now()
		resp, err := c.http.Do(httpReq)
		if err != nil {
			lastErr = err
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		c.events.Publish(event.Event{
			Type:       event.TypeResponseReceived,
			RequestID:  requestID,
			Host:       c.host,
			StatusCode: resp.StatusCode,
			OfficeID:   req.OfficeID,
			Date:       req.Date,
			Payload:    excerpt(body),
		})
		c.log.SolverRequest(requestID, resp.StatusCode, time.Since(start))

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			lastErr = &Error{StatusCode: resp.StatusCode, Message: excerpt(body)}
			if retryableStatus(resp.StatusCode) && attempt < attempts-1 {
				continue
			}
			return nil, c.fail(req, requestID, lastErr)
		}

		if readErr != nil {
			lastErr = readErr
			continue
		}

		var plan Plan
		if err := json.Unmarshal(body, &plan); err != nil {
			return nil, c.fail(req, requestID, fmt.Errorf("解析求解器响应失败: %w", err))
		}
		return &plan, nil
	}

	return nil, c.fail(req, requestID, lastErr)
}

// fail 发布失败事件并统一为求解器错误
func (c *Client) fail(req *Request, requestID string, cause error) error {
	c.events.Publish(event.Event{
		Type:      event.TypeRequestFailed,
		RequestID: requestID,
		Host:      c.host,
		OfficeID:  req.OfficeID,
		Date:      req.Date,
		Error:     cause.Error(),
	})

	var solverErr *Error
	if errors.As(cause, &solverErr) {
		return solverErr
	}
	return &Error{Message: cause.Error()}
}

// retryableStatus 检查状态码是否可重试
func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// excerpt 截断过长的响应体
func excerpt(body []byte) string {
	const limit = 512
	s := string(body)
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}

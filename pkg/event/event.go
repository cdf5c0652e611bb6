// Package event 提供优化过程的事件分发
// 求解器请求、规则应用与状态变更都会以事件形式通知订阅者，
// 供日志、监控与外部协作方消费
package event

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Type 事件类型标识
type Type string

const (
	TypeRequestSent      Type = "solver.request_sent"      // 求解器请求已发送
	TypeResponseReceived Type = "solver.response_received" // 求解器响应已接收
	TypeRequestFailed    Type = "solver.request_failed"    // 求解器请求失败
	TypeRuleApplied      Type = "rule.applied"             // 业务规则已应用
	TypeStateUpdated     Type = "state.updated"            // 优化状态已更新
)

// Event 优化过程事件
type Event struct {
	ID         uuid.UUID `json:"id"`
	Type       Type      `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`

	// 求解器请求相关
	RequestID  string `json:"request_id,omitempty"`
	Host       string `json:"host,omitempty"`
	StatusCode int    `json:"status_code,omitempty"`
	Error      string `json:"error,omitempty"`

	// 业务上下文
	OfficeID uuid.UUID `json:"office_id,omitempty"`
	Date     string    `json:"date,omitempty"`
	Rule     string    `json:"rule,omitempty"`
	StateID  uuid.UUID `json:"state_id,omitempty"`
	Status   string    `json:"status,omitempty"`

	// Payload 原始载荷（求解器输入或响应摘要）
	Payload interface{} `json:"payload,omitempty"`
}

// Listener 事件监听器
type Listener interface {
	Handle(e Event)
}

// ListenerFunc 函数式监听器
type ListenerFunc func(e Event)

// Handle 实现 Listener 接口
func (f ListenerFunc) Handle(e Event) { f(e) }

// Dispatcher 事件分发器
// 同步分发，监听器需自行保证快速返回；分发器本身可被并发使用
type Dispatcher struct {
	mu        sync.RWMutex
	listeners []Listener
}

// NewDispatcher 创建事件分发器
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Subscribe 注册监听器
func (d *Dispatcher) Subscribe(l Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners = append(d.listeners, l)
}

// Publish 发布事件
func (d *Dispatcher) Publish(e Event) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now()
	}

	d.mu.RLock()
	listeners := make([]Listener, len(d.listeners))
	copy(listeners, d.listeners)
	d.mu.RUnlock()

	for _, l := range listeners {
		l.Handle(e)
	}
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// EventKind 工作事件类型标识
type EventKind string

const (
	KindAppointment  EventKind = "appointment"   // 服务预约
	KindWorkBreak    EventKind = "work_break"    // 工间休息
	KindTravel       EventKind = "travel"        // 路途行驶
	KindWaiting      EventKind = "waiting"       // 空闲等待
	KindMeeting      EventKind = "meeting"       // 会议
	KindReservedTime EventKind = "reserved_time" // 预留时间
)

// WorkEvent 工作事件接口
// 路线上的每个时间占位都是一个工作事件，事件同一时刻只属于一条路线
type WorkEvent interface {
	// EventID 返回事件ID
	EventID() uuid.UUID

	// Kind 返回事件类型
	Kind() EventKind

	// Window 返回预计到达时间窗口
	Window() TimeRange

	// Duration 返回事件持续时长
	Duration() time.Duration
}

// BaseEvent 工作事件公共字段
type BaseEvent struct {
	ID         uuid.UUID     `json:"id"`
	TimeWindow TimeRange     `json:"time_window"`
	Span       time.Duration `json:"duration"`
}

// EventID 返回事件ID
func (e BaseEvent) EventID() uuid.UUID { return e.ID }

// Window 返回预计到达时间窗口
func (e BaseEvent) Window() TimeRange { return e.TimeWindow }

// Duration 返回事件持续时长
func (e BaseEvent) Duration() time.Duration { return e.Span }

// Appointment 服务预约
// 必须携带具体地理位置
type Appointment struct {
	BaseEvent
	Description   string        `json:"description,omitempty"`
	Location      Location      `json:"location"`
	Skills        []int         `json:"skills,omitempty"`
	Priority      int           `json:"priority"`
	SetupDuration time.Duration `json:"setup_duration"`
}

// Kind 返回事件类型
func (a *Appointment) Kind() EventKind { return KindAppointment }

// RequiresSkill 检查预约是否要求某项技能
func (a *Appointment) RequiresSkill(skill int) bool {
	for _, s := range a.Skills {
		if s == skill {
			return true
		}
	}
	return false
}

// WorkBreak 工间休息
type WorkBreak struct {
	BaseEvent
	Description string `json:"description,omitempty"`

	// MinAppointmentsBefore 休息前至少完成的预约数（0表示不限制）
	MinAppointmentsBefore int `json:"min_appointments_before,omitempty"`
}

// Kind 返回事件类型
func (b *WorkBreak) Kind() EventKind { return KindWorkBreak }

// Travel 路途行驶
type Travel struct {
	BaseEvent
	DistanceMeters int `json:"distance_meters,omitempty"`
}

// Kind 返回事件类型
func (t *Travel) Kind() EventKind { return KindTravel }

// Waiting 空闲等待
type Waiting struct {
	BaseEvent
}

// Kind 返回事件类型
func (w *Waiting) Kind() EventKind { return KindWaiting }

// Meeting 会议
// 与预约一样必须携带具体地理位置
type Meeting struct {
	BaseEvent
	Description string   `json:"description,omitempty"`
	Location    Location `json:"location"`
}

// Kind 返回事件类型
func (m *Meeting) Kind() EventKind { return KindMeeting }

// ReservedTime 预留时间
type ReservedTime struct {
	BaseEvent
	Description string `json:"description,omitempty"`
}

// Kind 返回事件类型
func (r *ReservedTime) Kind() EventKind { return KindReservedTime }

package model

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// ServicePro 技师
type ServicePro struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	ExternalID string    `json:"external_id,omitempty"`
	Skills     []int     `json:"skills,omitempty"`
}

// HasSkill 检查技师是否具备某项技能
func (p *ServicePro) HasSkill(skill int) bool {
	for _, s := range p.Skills {
		if s == skill {
			return true
		}
	}
	return false
}

// CanServe 检查技师是否满足预约的全部技能要求
func (p *ServicePro) CanServe(a *Appointment) bool {
	for _, skill := range a.Skills {
		if !p.HasSkill(skill) {
			return false
		}
	}
	return true
}

// Route 一名技师一天的路线
type Route struct {
	ID       uuid.UUID `json:"id"`
	OfficeID uuid.UUID `json:"office_id"`

	// AssignedPro 路线分配的技师（可为空，表示未分配）
	AssignedPro *ServicePro `json:"assigned_pro,omitempty"`

	// Capacity 路线容量（可承载的最大预约数）
	Capacity int `json:"capacity"`

	StartLocation Location  `json:"start_location"`
	EndLocation   Location  `json:"end_location"`
	TimeWindow    TimeRange `json:"time_window"`

	// Events 按时间排序的工作事件序列
	Events WorkEvents `json:"events"`

	// 优化后由求解器回填的行驶统计
	TotalDriveTime     time.Duration `json:"total_drive_time,omitempty"`
	TotalDriveDistance int           `json:"total_drive_distance,omitempty"`
}

// Appointments 返回路线上的全部预约（按事件顺序）
func (r *Route) Appointments() []*Appointment {
	var result []*Appointment
	for _, e := range r.Events {
		if a, ok := e.(*Appointment); ok {
			result = append(result, a)
		}
	}
	return result
}

// AppointmentCount 返回路线上的预约数
func (r *Route) AppointmentCount() int {
	count := 0
	for _, e := range r.Events {
		if e.Kind() == KindAppointment {
			count++
		}
	}
	return count
}

// FirstAppointment 返回路线上的第一个预约（无预约时返回nil）
func (r *Route) FirstAppointment() *Appointment {
	for _, e := range r.Events {
		if a, ok := e.(*Appointment); ok {
			return a
		}
	}
	return nil
}

// Breaks 返回路线上的休息与预留时间事件
func (r *Route) Breaks() []WorkEvent {
	var result []WorkEvent
	for _, e := range r.Events {
		if e.Kind() == KindWorkBreak || e.Kind() == KindReservedTime {
			result = append(result, e)
		}
	}
	return result
}

// HasBreaks 检查路线是否包含休息或预留时间
func (r *Route) HasBreaks() bool {
	return len(r.Breaks()) > 0
}

// Utilization 返回路线利用率（百分比，向上取整）
// 利用率 = 预约数 / 容量 × 100
func (r *Route) Utilization() int {
	if r.Capacity <= 0 {
		return 0
	}
	return int(math.Ceil(float64(r.AppointmentCount()) / float64(r.Capacity) * 100))
}

// EventByID 根据事件ID查找工作事件
func (r *Route) EventByID(id uuid.UUID) WorkEvent {
	for _, e := range r.Events {
		if e.EventID() == id {
			return e
		}
	}
	return nil
}

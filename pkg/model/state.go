package model

import (
	"time"

	"github.com/google/uuid"
)

// StateStatus 优化状态的生命周期标识
type StateStatus string

const (
	StatusPre        StateStatus = "pre"        // 优化前快照
	StatusPlan       StateStatus = "plan"       // 仅计算行驶时间的规划结果
	StatusPost       StateStatus = "post"       // 优化后结果
	StatusSimulation StateStatus = "simulation" // 模拟运行结果
)

// OptimizationState 一个办事处一天的一次优化尝试
// 状态在反向转换产出后即不可变；每轮优化创建新状态并通过
// PreviousStateID 链接到上一个状态，保留完整的审计链路
type OptimizationState struct {
	ID              uuid.UUID   `json:"id"`
	PreviousStateID *uuid.UUID  `json:"previous_state_id,omitempty"`
	OfficeID        uuid.UUID   `json:"office_id"`
	Date            string      `json:"date"` // YYYY-MM-DD
	Status          StateStatus `json:"status"`
	Routes          []*Route    `json:"routes"`
	CreatedAt       time.Time   `json:"created_at"`
}

// NewState 创建新的优化状态
func NewState(officeID uuid.UUID, date string, status StateStatus, routes []*Route) *OptimizationState {
	return &OptimizationState{
		ID:        uuid.New(),
		OfficeID:  officeID,
		Date:      date,
		Status:    status,
		Routes:    routes,
		CreatedAt: time.Now(),
	}
}

// Derive 派生下一个状态（携带新的路线与状态标识，链接到当前状态）
func (s *OptimizationState) Derive(status StateStatus, routes []*Route) *OptimizationState {
	prev := s.ID
	return &OptimizationState{
		ID:              uuid.New(),
		PreviousStateID: &prev,
		OfficeID:        s.OfficeID,
		Date:            s.Date,
		Status:          status,
		Routes:          routes,
		CreatedAt:       time.Now(),
	}
}

// RouteByID 根据路线ID查找路线
func (s *OptimizationState) RouteByID(id uuid.UUID) *Route {
	for _, r := range s.Routes {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// TotalAppointments 返回全部路线的预约总数
func (s *OptimizationState) TotalAppointments() int {
	total := 0
	for _, r := range s.Routes {
		total += r.AppointmentCount()
	}
	return total
}

// UnderutilizedProIDs 返回利用率低于阈值的路线所分配的技师ID集合
func (s *OptimizationState) UnderutilizedProIDs(thresholdPercent int) map[uuid.UUID]bool {
	result := make(map[uuid.UUID]bool)
	for _, r := range s.Routes {
		if r.AssignedPro == nil {
			continue
		}
		if r.Utilization() < thresholdPercent {
			result[r.AssignedPro.ID] = true
		}
	}
	return result
}

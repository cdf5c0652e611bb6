// Package validator 提供优化后路线的策略校验
// 校验器是路线上的无状态谓词，违规只收集上报，从不阻断状态持久化
package validator

import (
	"time"

	"github.com/youlu/youlu/pkg/model"
)

// RouteValidator 路线校验器
type RouteValidator interface {
	// Validate 校验路线，返回true表示合规
	Validate(route *model.Route) bool

	// Violation 返回违规描述
	Violation() string
}

// 违规描述
const (
	ViolationLongInactivity                   = "空闲时间超过1小时"
	ViolationInactivityBeforeFirstAppointment = "首个预约前空闲超过20分钟"
	ViolationTwoBreaksInARow                  = "连续安排两次休息"
)

// LongInactivity 长时间空闲校验
// 路线上任一等待事件达到60分钟即违规
type LongInactivity struct{}

// NewLongInactivity 创建长时间空闲校验器
func NewLongInactivity() *LongInactivity {
	return &LongInactivity{}
}

// Validate 校验路线
func (v *LongInactivity) Validate(route *model.Route) bool {
	for _, ev := range route.Events {
		if ev.Kind() == model.KindWaiting && ev.Duration() >= time.Hour {
			return false
		}
	}
	return true
}

// Violation 返回违规描述
func (v *LongInactivity) Violation() string {
	return ViolationLongInactivity
}

// InactivityBeforeFirstAppointment 开工前空闲校验
// 存在20分钟以上且在首个预约开始之前起始的等待事件即违规；
// 首个预约之后的等待无论多长都不触发本规则
type InactivityBeforeFirstAppointment struct{}

// NewInactivityBeforeFirstAppointment 创建开工前空闲校验器
func NewInactivityBeforeFirstAppointment() *InactivityBeforeFirstAppointment {
	return &InactivityBeforeFirstAppointment{}
}

// Validate 校验路线
func (v *InactivityBeforeFirstAppointment) Validate(route *model.Route) bool {
	first := route.FirstAppointment()
	if first == nil {
		return true
	}

	for _, ev := range route.Events {
		if ev.Kind() != model.KindWaiting || ev.Duration() < 20*time.Minute {
			continue
		}
		if ev.Window().Start.Before(first.Window().Start) {
			return false
		}
	}
	return true
}

// Violation 返回违规描述
func (v *InactivityBeforeFirstAppointment) Violation() string {
	return ViolationInactivityBeforeFirstAppointment
}

// TwoBreaksInARow 连续休息校验
// 按时间顺序扫描事件序列，两次休息之间没有任何其他事件即违规；
// 中间出现任一其他类型事件（行驶、等待、预约）都会重置相邻关系
type TwoBreaksInARow struct{}

// NewTwoBreaksInARow 创建连续休息校验器
func NewTwoBreaksInARow() *TwoBreaksInARow {
	return &TwoBreaksInARow{}
}

// Validate 校验路线
func (v *TwoBreaksInARow) Validate(route *model.Route) bool {
	prevWasBreak := false
	for _, ev := range route.Events {
		isBreak := ev.Kind() == model.KindWorkBreak
		if isBreak && prevWasBreak {
			return false
		}
		prevWasBreak = isBreak
	}
	return true
}

// Violation 返回违规描述
func (v *TwoBreaksInARow) Violation() string {
	return ViolationTwoBreaksInARow
}

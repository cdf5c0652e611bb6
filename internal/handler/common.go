// Package handler 提供HTTP请求处理器
package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/youlu/youlu/pkg/errors"
	"github.com/youlu/youlu/pkg/model"
)

// RouteInput 路线输入
type RouteInput struct {
	ID            string        `json:"id,omitempty"`
	Pro           *ProInput     `json:"pro,omitempty"`
	Capacity      int           `json:"capacity"`
	StartLocation LocationInput `json:"start_location"`
	EndLocation   LocationInput `json:"end_location"`
	WindowStart   time.Time     `json:"window_start"`
	WindowEnd     time.Time     `json:"window_end"`
	Events        []EventInput  `json:"events"`
}

// ProInput 技师输入
type ProInput struct {
	ID         string `json:"id"`
	Name       string `json:"name,omitempty"`
	ExternalID string `json:"external_id,omitempty"`
	Skills     []int  `json:"skills,omitempty"`
}

// LocationInput 位置输入
type LocationInput struct {
	Address   string  `json:"address,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// EventInput 工作事件输入
type EventInput struct {
	ID              string    `json:"id,omitempty"`
	Kind            string    `json:"kind"`
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	DurationSeconds int64     `json:"duration_seconds"`

	// 预约/会议字段
	Description  string         `json:"description,omitempty"`
	Location     *LocationInput `json:"location,omitempty"`
	Skills       []int          `json:"skills,omitempty"`
	Priority     int            `json:"priority,omitempty"`
	SetupSeconds int64          `json:"setup_seconds,omitempty"`

	// 休息字段
	MinAppointmentsBefore int `json:"min_appointments_before,omitempty"`
}

// buildRoute 将路线输入转换为领域路线
func buildRoute(officeID uuid.UUID, in *RouteInput) (*model.Route, *errors.AppError) {
	id := uuid.New()
	if in.ID != "" {
		parsed, err := uuid.Parse(in.ID)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidInput, "无效的路线ID格式: "+in.ID)
		}
		id = parsed
	}

	route := &model.Route{
		ID:            id,
		OfficeID:      officeID,
		Capacity:      in.Capacity,
		StartLocation: buildLocation(in.StartLocation),
		EndLocation:   buildLocation(in.EndLocation),
		TimeWindow:    model.TimeRange{Start: in.WindowStart, End: in.WindowEnd},
	}

	if in.Pro != nil {
		proID, err := uuid.Parse(in.Pro.ID)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidInput, "无效的技师ID格式: "+in.Pro.ID)
		}
		route.AssignedPro = &model.ServicePro{
			ID:         proID,
			Name:       in.Pro.Name,
			ExternalID: in.Pro.ExternalID,
			Skills:     in.Pro.Skills,
		}
	}

	for i := range in.Events {
		ev, appErr := buildEvent(&in.Events[i])
		if appErr != nil {
			return nil, appErr
		}
		route.Events = append(route.Events, ev)
	}

	return route, nil
}

// buildEvent 将事件输入转换为领域工作事件
func buildEvent(in *EventInput) (model.WorkEvent, *errors.AppError) {
	id := uuid.New()
	if in.ID != "" {
		parsed, err := uuid.Parse(in.ID)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidInput, "无效的事件ID格式: "+in.ID)
		}
		id = parsed
	}

	base := model.BaseEvent{
		ID:         id,
		TimeWindow: model.TimeRange{Start: in.Start, End: in.End},
		Span:       time.Duration(in.DurationSeconds) * time.Second,
	}

	switch model.EventKind(in.Kind) {
	case model.KindAppointment:
		if in.Location == nil {
			return nil, errors.InvalidInput("location", "预约必须携带地理位置")
		}
		return &model.Appointment{
			BaseEvent:     base,
			Description:   in.Description,
			Location:      buildLocation(*in.Location),
			Skills:        in.Skills,
			Priority:      in.Priority,
			SetupDuration: time.Duration(in.SetupSeconds) * time.Second,
		}, nil
	case model.KindWorkBreak:
		return &model.WorkBreak{
			BaseEvent:             base,
			Description:           in.Description,
			MinAppointmentsBefore: in.MinAppointmentsBefore,
		}, nil
	case model.KindTravel:
		return &model.Travel{BaseEvent: base}, nil
	case model.KindWaiting:
		return &model.Waiting{BaseEvent: base}, nil
	case model.KindMeeting:
		if in.Location == nil {
			return nil, errors.InvalidInput("location", "会议必须携带地理位置")
		}
		return &model.Meeting{
			BaseEvent:   base,
			Description: in.Description,
			Location:    buildLocation(*in.Location),
		}, nil
	case model.KindReservedTime:
		return &model.ReservedTime{
			BaseEvent:   base,
			Description: in.Description,
		}, nil
	}

	return nil, errors.InvalidInput("kind", "未知的事件类型: "+in.Kind)
}

// buildLocation 位置输入转换
func buildLocation(in LocationInput) model.Location {
	return model.Location{
		Address:   in.Address,
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
	}
}

// respondJSON 返回JSON响应
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError 返回错误响应
func respondError(w http.ResponseWriter, err error) {
	appErr, ok := err.(*errors.AppError)
	if !ok {
		appErr = errors.Wrap(err, errors.CodeInternal, "内部错误")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.HTTPStatus)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   true,
		"code":    appErr.Code,
		"message": appErr.Message,
		"details": appErr.Details,
	})
}

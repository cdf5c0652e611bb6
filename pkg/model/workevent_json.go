package model

import (
	"encoding/json"
	"fmt"
)

// WorkEvents 工作事件序列
// 事件是闭合的和类型，JSON序列化时带上类型标签以便无损还原
type WorkEvents []WorkEvent

// eventEnvelope 事件序列化信封
type eventEnvelope struct {
	Kind EventKind       `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// MarshalJSON 实现 json.Marshaler
func (evs WorkEvents) MarshalJSON() ([]byte, error) {
	envelopes := make([]eventEnvelope, 0, len(evs))
	for _, e := range evs {
		data, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("序列化工作事件失败: %w", err)
		}
		envelopes = append(envelopes, eventEnvelope{Kind: e.Kind(), Data: data})
	}
	return json.Marshal(envelopes)
}

// UnmarshalJSON 实现 json.Unmarshaler
func (evs *WorkEvents) UnmarshalJSON(data []byte) error {
	var envelopes []eventEnvelope
	if err := json.Unmarshal(data, &envelopes); err != nil {
		return err
	}

	result := make(WorkEvents, 0, len(envelopes))
	for _, env := range envelopes {
		e, err := unmarshalEvent(env)
		if err != nil {
			return err
		}
		result = append(result, e)
	}

	*evs = result
	return nil
}

// unmarshalEvent 根据类型标签还原具体事件
func unmarshalEvent(env eventEnvelope) (WorkEvent, error) {
	switch env.Kind {
	case KindAppointment:
		var e Appointment
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return nil, err
		}
		return &e, nil
	case KindWorkBreak:
		var e WorkBreak
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return nil, err
		}
		return &e, nil
	case KindTravel:
		var e Travel
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return nil, err
		}
		return &e, nil
	case KindWaiting:
		var e Waiting
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return nil, err
		}
		return &e, nil
	case KindMeeting:
		var e Meeting
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return nil, err
		}
		return &e, nil
	case KindReservedTime:
		var e ReservedTime
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return nil, err
		}
		return &e, nil
	default:
		return nil, fmt.Errorf("未知的工作事件类型: %s", env.Kind)
	}
}

// Package solver 提供外部VRP求解器的数据模型与HTTP客户端
// 求解器是黑盒服务：接收车辆/任务/休息的JSON描述，返回可行的路线计划
package solver

// Coordinates 求解器坐标，按 [经度, 纬度] 排列
type Coordinates [2]float64

// Lng 返回经度
func (c Coordinates) Lng() float64 { return c[0] }

// Lat 返回纬度
func (c Coordinates) Lat() float64 { return c[1] }

// TimeWindow 求解器时间窗口，按 [起始Unix时间戳, 结束Unix时间戳] 排列
type TimeWindow [2]int64

// Job 求解器任务（对应领域中的预约或会议）
type Job struct {
	ID          string       `json:"id"`
	Description string       `json:"description,omitempty"`
	Skills      []int        `json:"skills,omitempty"`
	Service     int64        `json:"service"` // 服务时长（秒）
	Delivery    []int        `json:"delivery,omitempty"`
	Location    Coordinates  `json:"location"`
	Priority    int          `json:"priority,omitempty"`
	Setup       int64        `json:"setup,omitempty"` // 准备时长（秒）
	TimeWindows []TimeWindow `json:"time_windows,omitempty"`
}

// Break 求解器休息（对应领域中的工间休息或预留时间）
type Break struct {
	ID          string       `json:"id"`
	Description string       `json:"description,omitempty"`
	Service     int64        `json:"service"` // 休息时长（秒）
	MaxLoad     []int        `json:"max_load,omitempty"`
	TimeWindows []TimeWindow `json:"time_windows,omitempty"`
}

// Vehicle 求解器车辆（对应领域中的一条路线）
type Vehicle struct {
	ID          string      `json:"id"`
	Start       Coordinates `json:"start"`
	End         Coordinates `json:"end"`
	Capacity    []int       `json:"capacity,omitempty"`
	SpeedFactor float64     `json:"speed_factor,omitempty"`
	TimeWindow  *TimeWindow `json:"time_window,omitempty"`

	// Breaks 休息请求，仅当路线包含休息/预留时间时附带
	Breaks []Break `json:"breaks,omitempty"`
}

// Options 求解器引擎选项
type Options struct {
	// Geometry 是否返回路径几何与距离信息
	Geometry bool `json:"g"`

	// ChooseETA 是否允许求解器重排并自选到达时间
	// 规划模式必须关闭：仅在既有顺序上计算行驶时间
	ChooseETA bool `json:"c"`
}

// Input 求解器请求体
type Input struct {
	Vehicles []Vehicle `json:"vehicles"`
	Jobs     []Job     `json:"jobs"`
	Options  Options   `json:"options"`
}

// VehicleByID 根据ID查找车辆
func (in *Input) VehicleByID(id string) *Vehicle {
	for i := range in.Vehicles {
		if in.Vehicles[i].ID == id {
			return &in.Vehicles[i]
		}
	}
	return nil
}

// 步骤类型标识
const (
	StepStart = "start"
	StepJob   = "job"
	StepBreak = "break"
	StepEnd   = "end"
)

// Step 计划中的一个步骤
type Step struct {
	Type     string      `json:"type"` // start/job/break/end
	ID       string      `json:"id,omitempty"`
	Location Coordinates `json:"location,omitempty"`
	Arrival  int64       `json:"arrival"`            // 到达时间（Unix时间戳）
	Service  int64       `json:"service,omitempty"`  // 服务时长（秒）
	Duration int64       `json:"duration"`           // 累计行驶时长（秒）
	Distance int64       `json:"distance,omitempty"` // 累计行驶距离（米）
	Waiting  int64       `json:"waiting_time,omitempty"`
}

// PlanRoute 计划中一辆车的路线
type PlanRoute struct {
	VehicleID string `json:"vehicle_id"`
	Steps     []Step `json:"steps"`
	Duration  int64  `json:"duration"` // 总行驶时长（秒）
	Distance  int64  `json:"distance"` // 总行驶距离（米）
}

// Unassigned 未能安排的任务
type Unassigned struct {
	ID     string `json:"id"`
	Reason string `json:"reason,omitempty"`
}

// Plan 求解器响应
type Plan struct {
	Code       int          `json:"code"`
	Error      string       `json:"error,omitempty"`
	Routes     []PlanRoute  `json:"routes"`
	Unassigned []Unassigned `json:"unassigned,omitempty"`
}

package web

import "github.com/zan8in/tcpscan/pkg/report"

// 登录请求结构
type LoginRequest struct {
	Password string `json:"password"`
}

// 登录响应数据
type LoginData struct {
	Token   string `json:"token"`
	Expires int64  `json:"expires"`
}

// 通用API响应
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// 创建扫描 - 请求
type CreateScanRequest struct {
	Host      string `json:"host"`
	Ports     string `json:"ports"`                // "80", "1-1024", "full"
	Workers   int    `json:"workers,omitempty"`    // 默认使用配置
	TimeoutMs int    `json:"timeout_ms,omitempty"` // 默认使用配置
}

type ProgressData struct {
	Current uint64 `json:"current"`
	Total   uint64 `json:"total"`
	Percent int    `json:"percent"`
}

// 扫描任务详情
type ScanData struct {
	ID        string             `json:"id"`
	Host      string             `json:"host"`
	StartPort int                `json:"start_port"`
	EndPort   int                `json:"end_port"`
	Workers   int                `json:"workers"`
	Status    TaskStatus         `json:"status"`
	CreatedAt string             `json:"created_at"`
	Progress  ProgressData       `json:"progress"`
	Error     string             `json:"error,omitempty"`
	Report    *report.JsonReport `json:"report,omitempty"`
}

type MonitorData struct {
	CPU        float64 `json:"cpu"`
	Memory     float64 `json:"memory"`
	OpenFDs    int32   `json:"open_fds"`
	Goroutines int     `json:"goroutines"`
}

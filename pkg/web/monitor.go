package web

import (
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/process"
	"github.com/zan8in/gologger"
)

// SystemMonitor samples the process CPU, memory and descriptor usage.
type SystemMonitor struct {
	cpuUsage    float64
	memoryUsage float64
	openFDs     int32
	mu          sync.RWMutex
	stopChan    chan struct{}
	stopOnce    sync.Once
}

func NewSystemMonitor() *SystemMonitor {
	return &SystemMonitor{stopChan: make(chan struct{})}
}

// Start 启动采样，interval 为采样间隔
func (m *SystemMonitor) Start(interval time.Duration) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		gologger.Error().Msgf("Failed to get process info: %v", err)
		return
	}
	m.sample(proc)

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-m.stopChan:
				return
			case <-ticker.C:
				m.sample(proc)
			}
		}
	}()
}

// Stop 停止监控
func (m *SystemMonitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopChan) })
}

func (m *SystemMonitor) sample(proc *process.Process) {
	// 0 表示计算自上次调用以来的平均值
	cpu, cpuErr := proc.Percent(0)
	mem, memErr := proc.MemoryPercent()
	fds, fdErr := proc.NumFDs()

	m.mu.Lock()
	defer m.mu.Unlock()
	if cpuErr == nil {
		m.cpuUsage = cpu
	}
	if memErr == nil {
		m.memoryUsage = float64(mem)
	}
	if fdErr == nil {
		m.openFDs = fds
	}
}

// Stats 获取最近一次采样
func (m *SystemMonitor) Stats() MonitorData {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return MonitorData{
		CPU:        m.cpuUsage,
		Memory:     m.memoryUsage,
		OpenFDs:    m.openFDs,
		Goroutines: runtime.NumGoroutine(),
	}
}

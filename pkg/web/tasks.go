package web

import (
	"context"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/xid"
	"github.com/zan8in/gologger"
	"github.com/zan8in/tcpscan/pkg/portscan"
	"github.com/zan8in/tcpscan/pkg/report"
)

type TaskStatus string

const (
	StatusPending   TaskStatus = "pending"
	StatusRunning   TaskStatus = "running"
	StatusCompleted TaskStatus = "completed"
	StatusFailed    TaskStatus = "failed"
	StatusCanceled  TaskStatus = "canceled"
)

var ErrTaskNotFound = errors.New("task not found")

// Task is one scan started through the API.
type Task struct {
	ID        string
	Target    portscan.ScanTarget
	Workers   int
	CreatedAt time.Time

	mu       sync.Mutex
	status   TaskStatus
	err      string
	report   *portscan.ScanReport
	progress *portscan.Progress
	cancel   context.CancelFunc
	done     chan struct{}
}

func (t *Task) Status() TaskStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

func (t *Task) setStatus(s TaskStatus) {
	t.mu.Lock()
	t.status = s
	t.mu.Unlock()
}

// Wait blocks until the task finished or timeout passed, reporting
// whether it finished.
func (t *Task) Wait(timeout time.Duration) bool {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-t.done:
		return true
	case <-timer.C:
		return false
	}
}

// Data snapshots the task for the API.
func (t *Task) Data(withReport bool) ScanData {
	t.mu.Lock()
	defer t.mu.Unlock()

	d := ScanData{
		ID:        t.ID,
		Host:      t.Target.Host,
		StartPort: t.Target.StartPort,
		EndPort:   t.Target.EndPort,
		Workers:   t.Workers,
		Status:    t.status,
		CreatedAt: t.CreatedAt.Format("2006-01-02 15:04:05"),
		Progress: ProgressData{
			Current: t.progress.Current(),
			Total:   t.progress.Total(),
			Percent: t.progress.Percent(),
		},
		Error: t.err,
	}
	if withReport && t.report != nil {
		jr := report.JsonContent(t.report)
		d.Report = &jr
	}
	return d
}

// TaskManager runs API scans in the background. Each task gets its own
// Scanner and Progress, so tasks never share scan state.
type TaskManager struct {
	mu       sync.RWMutex
	tasks    map[string]*Task
	order    []string
	defaults portscan.Options
	slots    chan struct{}
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

func NewTaskManager(defaults portscan.Options, maxRunning int) *TaskManager {
	if maxRunning <= 0 {
		maxRunning = getMaxRunning()
	}
	ctx, cancel := context.WithCancel(context.Background())
	gologger.Info().Msgf("TaskManager init: max_running=%d workers=%d timeout=%s", maxRunning, defaults.Workers, defaults.Timeout)
	return &TaskManager{
		tasks:    make(map[string]*Task),
		defaults: defaults,
		slots:    make(chan struct{}, maxRunning),
		ctx:      ctx,
		cancel:   cancel,
	}
}

func getMaxRunning() int {
	v := strings.TrimSpace(os.Getenv("TCPSCAN_MAX_RUNNING_TASKS"))
	if v == "" {
		return 4
	}
	i, err := strconv.Atoi(v)
	if err != nil || i <= 0 {
		return 4
	}
	return i
}

// CreateTask validates the request and starts the scan in the background.
func (m *TaskManager) CreateTask(req CreateScanRequest) (*Task, error) {
	ports := strings.TrimSpace(req.Ports)
	if ports == "" {
		ports = "1-1024"
	}
	target, err := portscan.NewScanTarget(req.Host, ports)
	if err != nil {
		return nil, err
	}

	opt := m.defaults
	opt.OnResult = nil
	if req.Workers != 0 {
		opt.Workers = req.Workers
	}
	if req.TimeoutMs > 0 {
		opt.Timeout = time.Duration(req.TimeoutMs) * time.Millisecond
	}
	scanner, err := portscan.NewScanner(&opt)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(m.ctx)
	t := &Task{
		ID:        xid.New().String(),
		Target:    target,
		Workers:   opt.Workers,
		CreatedAt: time.Now(),
		status:    StatusPending,
		progress:  portscan.NewProgress(),
		cancel:    cancel,
		done:      make(chan struct{}),
	}

	m.mu.Lock()
	m.tasks[t.ID] = t
	m.order = append(m.order, t.ID)
	m.mu.Unlock()

	m.wg.Add(1)
	go m.runTask(ctx, t, scanner)

	gologger.Info().Msgf("CreateTask: task_id=%s host=%s ports=%d-%d workers=%d", t.ID, target.Host, target.StartPort, target.EndPort, opt.Workers)
	return t, nil
}

func (m *TaskManager) runTask(ctx context.Context, t *Task, scanner *portscan.Scanner) {
	defer m.wg.Done()
	defer close(t.done)
	defer t.cancel()

	// 等待运行名额
	select {
	case m.slots <- struct{}{}:
		defer func() { <-m.slots }()
	case <-ctx.Done():
		m.finish(t, nil, portscan.ErrCanceled)
		return
	}
	t.setStatus(StatusRunning)

	rep, err := scanner.Scan(ctx, t.Target, t.progress)
	m.finish(t, rep, err)
}

func (m *TaskManager) finish(t *Task, rep *portscan.ScanReport, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch {
	case err == nil:
		t.status = StatusCompleted
		t.report = rep
		gologger.Info().Msgf("Task completed: task_id=%s open=%d duration=%s", t.ID, rep.Count(portscan.StatusOpen), rep.Duration)
	case errors.Is(err, portscan.ErrCanceled):
		t.status = StatusCanceled
		gologger.Info().Msgf("Task canceled: task_id=%s", t.ID)
	default:
		t.status = StatusFailed
		t.err = err.Error()
		gologger.Error().Msgf("Task failed: task_id=%s err=%v", t.ID, err)
	}
}

func (m *TaskManager) Get(id string) (*Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tasks[id]
	if !ok {
		return nil, ErrTaskNotFound
	}
	return t, nil
}

// List returns tasks in creation order.
func (m *TaskManager) List() []*Task {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Task, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.tasks[id])
	}
	return out
}

// Stop cancels a pending or running task. Stopping a finished task is a no-op.
func (m *TaskManager) Stop(id string) (*Task, error) {
	t, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	t.cancel()
	return t, nil
}

// Close cancels every task and waits for the workers to return.
func (m *TaskManager) Close() {
	m.cancel()
	m.wg.Wait()
}

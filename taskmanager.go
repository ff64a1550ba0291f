package main

import (
	"context"
	"sync"

	"github.com/aidarkhanov/nanoid/v2"
)

type TaskHandler func(ctx context.Context, task *Task)

type TaskManager struct {
	mu        sync.Mutex
	tasks     map[string]*Task
	Context   context.Context
	WaitGroup sync.WaitGroup
}

type Task struct {
	id        string
	ctx       context.Context
	cancelCtx context.CancelFunc
	handler   TaskHandler
	started   bool
}

type TaskId struct{}

func (t *Task) ID() string {
	return t.id
}

func NewTaskManager(ctx context.Context) *TaskManager {
	tm := new(TaskManager)
	tm.Context = ctx
	tm.tasks = make(map[string]*Task)
	return tm
}

func (tm *TaskManager) AddTask(handler TaskHandler) *Task {
	id, _ := nanoid.New()
	ctx, cancelCtx := context.WithCancel(tm.Context)
	ctx = context.WithValue(ctx, TaskId{}, id)

	task := &Task{id: id, handler: handler, ctx: ctx, cancelCtx: cancelCtx}

	tm.mu.Lock()
	tm.tasks[id] = task
	tm.mu.Unlock()

	return task
}

func (tm *TaskManager) StartTask(id string) *Task {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	task, ok := tm.tasks[id]
	if !ok || task.started {
		return task
	}
	task.started = true

	tm.WaitGroup.Add(1)
	go func() {
		defer tm.WaitGroup.Done()
		defer task.cancelCtx()
		task.handler(task.ctx, task)
	}()

	return task
}

func (tm *TaskManager) StopTask(id string) *Task {
	tm.mu.Lock()
	task, ok := tm.tasks[id]
	tm.mu.Unlock()

	if ok {
		task.cancelCtx()
	}

	return task
}

func (tm *TaskManager) ids() []string {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	ids := make([]string, 0, len(tm.tasks))
	for id := range tm.tasks {
		ids = append(ids, id)
	}
	return ids
}

func (tm *TaskManager) StartTasks() {
	for _, id := range tm.ids() {
		tm.StartTask(id)
	}
}

func (tm *TaskManager) StopTasks() {
	for _, id := range tm.ids() {
		tm.StopTask(id)
	}
}

func (tm *TaskManager) Wait() {
	tm.WaitGroup.Wait()
}

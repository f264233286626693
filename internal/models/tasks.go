package models

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskDone       TaskStatus = "done"
)

// Next is the status a toggle moves to: todo, in progress, done, then back to todo.
func (s TaskStatus) Next() TaskStatus {
	switch s {
	case TaskTodo:
		return TaskInProgress
	case TaskInProgress:
		return TaskDone
	default:
		return TaskTodo
	}
}

func (s TaskStatus) rank() int {
	switch s {
	case TaskInProgress:
		return 0
	case TaskTodo:
		return 1
	case TaskDone:
		return 2
	}
	return 99
}

func ParseTaskStatus(s string) (TaskStatus, error) {
	switch st := TaskStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case TaskTodo, TaskInProgress, TaskDone:
		return st, nil
	}
	return "", fmt.Errorf("invalid task status %q (todo, in_progress, done)", s)
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

func (p TaskPriority) rank() int {
	switch p {
	case PriorityUrgent:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	}
	return 99
}

// ParseTaskPriority reads a priority name; empty means medium.
func ParseTaskPriority(s string) (TaskPriority, error) {
	p := TaskPriority(strings.ToLower(strings.TrimSpace(s)))
	if p == "" {
		return PriorityMedium, nil
	}
	if p.rank() == 99 {
		return "", fmt.Errorf("invalid task priority %q (low, medium, high, urgent)", s)
	}
	return p, nil
}

type Tag struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Color     string    `json:"color" db:"color"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type Task struct {
	ID          string       `json:"id" db:"id"`
	ProjectID   string       `json:"project_id" db:"project_id"`
	Title       string       `json:"title" db:"title"`
	Description *string      `json:"description,omitempty" db:"description"`
	Status      TaskStatus   `json:"status" db:"status"`
	Priority    TaskPriority `json:"priority" db:"priority"`
	DueDate     *time.Time   `json:"due_date,omitempty" db:"due_date"`
	CompletedAt *time.Time   `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at" db:"updated_at"`

	ProjectName string `json:"project_name,omitempty" db:"project_name"`
	Tags        []Tag  `json:"tags,omitempty" db:"-"`
}

// Overdue reports whether an unfinished task is past its due date at now.
func (t *Task) Overdue(now time.Time) bool {
	return t.Status != TaskDone && t.DueDate != nil && t.DueDate.Before(now)
}

// SortTasks orders in-progress work first, then todo, then done; within a status by
// priority, most urgent first, then newest first.
func SortTasks(tasks []*Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if a.Status.rank() != b.Status.rank() {
			return a.Status.rank() < b.Status.rank()
		}
		if a.Priority.rank() != b.Priority.rank() {
			return a.Priority.rank() < b.Priority.rank()
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
}

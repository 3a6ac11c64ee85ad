package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TaskStatus is the closed set of task workflow states.
type TaskStatus string

const (
	StatusToDo       TaskStatus = "To Do"
	StatusInProgress TaskStatus = "In Progress"
	StatusReview     TaskStatus = "Review"
	StatusCompleted  TaskStatus = "Completed"
)

// Valid reports whether s is one of the defined workflow states.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusToDo, StatusInProgress, StatusReview, StatusCompleted:
		return true
	}
	return false
}

// TaskPriority is the closed set of task priorities.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "Low"
	PriorityMedium TaskPriority = "Medium"
	PriorityHigh   TaskPriority = "High"
)

// Valid reports whether p is one of the defined priorities.
func (p TaskPriority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Task is a unit of work assigned to a user within a team.
type Task struct {
	ID          primitive.ObjectID  `bson:"_id" json:"_id"`
	Title       string              `bson:"title" json:"title"`
	Description string              `bson:"description" json:"description"`
	AssignedTo  *primitive.ObjectID `bson:"assigned_to,omitempty" json:"assignedTo"`
	Priority    TaskPriority        `bson:"priority" json:"priority"`
	Status      TaskStatus          `bson:"status" json:"status"`
	DueDate     time.Time           `bson:"due_date" json:"dueDate"`
	CreatedBy   primitive.ObjectID  `bson:"created_by" json:"createdBy"`
	TeamID      *primitive.ObjectID `bson:"team_id,omitempty" json:"teamId"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

package model

import "time"

// Work order status values as the backend stores them.
const (
	StatusPending    = "Pending"
	StatusInProgress = "In Progress"
	StatusCompleted  = "Completed"
	StatusCancelled  = "Cancelled"
)

// Work order priority values as the backend stores them.
const (
	PriorityLow    = "Low"
	PriorityNormal = "Normal"
	PriorityHigh   = "High"
)

// Statuses lists all valid work order statuses in display order.
var Statuses = []string{
	StatusPending,
	StatusInProgress,
	StatusCompleted,
	StatusCancelled,
}

// Priorities lists all valid work order priorities in display order.
var Priorities = []string{
	PriorityLow,
	PriorityNormal,
	PriorityHigh,
}

// WorkOrder is a single work order record as returned by the backend.
type WorkOrder struct {
	// ID is the backend's numeric identifier.
	ID int `json:"id"`

	// Number is the human-facing order number (e.g. "WO0012").
	Number string `json:"is_emri_no"`

	// Title is the short summary line.
	Title string `json:"title"`

	// Description holds the free-form details.
	Description string `json:"description"`

	// Priority is one of the Priority* constants.
	Priority string `json:"priority"`

	// Status is one of the Status* constants.
	Status string `json:"status"`

	// AssignedUserID references the assignee, if any.
	AssignedUserID *int `json:"assigned_user_id"`

	// AssignedToUser is the expanded assignee profile, if any.
	AssignedToUser *User `json:"assigned_to_user"`

	// Updates are the annotations attached to this order, oldest first.
	Updates []WorkOrderUpdate `json:"updates"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WorkOrderInput is the payload for creating or updating a work order.
type WorkOrderInput struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	Priority       string `json:"priority"`
	Status         string `json:"status"`
	AssignedUserID *int   `json:"assigned_user_id"`
}

// UpdateAuthor is the reduced profile embedded in an annotation.
type UpdateAuthor struct {
	Username string `json:"username"`
}

// WorkOrderUpdate is an annotation left on a work order.
type WorkOrderUpdate struct {
	ID          int          `json:"id"`
	WorkOrderID int          `json:"work_order_id"`
	Description string       `json:"description"`
	User        UpdateAuthor `json:"user"`
	CreatedAt   time.Time    `json:"created_at"`
}

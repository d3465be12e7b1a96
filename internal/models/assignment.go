package models

import "time"

const (
	AssignmentModeInternal = "internal"
	AssignmentModeService  = "service"
)

type PetGroupPick struct {
	GroupName string `json:"groupName"`
	Count     int    `json:"count"`
}

type StaffGroup struct {
	Name     string   `json:"name"`
	StaffIDs []string `json:"staffIds"`
	LeaderID string   `json:"leaderId"`
}

// SlotAssignment is the selection attached to one bucket of the wizard.
type SlotAssignment struct {
	AreaIDs     []string       `json:"areaIds"`
	PetGroups   []PetGroupPick `json:"petGroups"`
	StaffGroups []StaffGroup   `json:"staffGroups"`
}

// AssignmentDraft holds the wizard state of one task: either the flat
// internal bucket or one bucket per time slot.
type AssignmentDraft struct {
	TaskID      string                    `json:"task_id"`
	Mode        string                    `json:"mode"`
	Internal    *SlotAssignment           `json:"internalAssignment,omitempty"`
	Slots       map[string]SlotAssignment `json:"slots,omitempty"`
	SubmittedAt *time.Time                `json:"submitted_at,omitempty"`
	UpdatedAt   time.Time                 `json:"updated_at"`
}

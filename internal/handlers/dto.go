package handlers

import "taskbot/internal/models"

type CreateTaskGroupRequest struct {
	TaskText   string   `json:"task_text"`
	Deadline   string   `json:"deadline"`
	GroupID    string   `json:"group_id"`
	AssignedTo []string `json:"assigned_to"`
	AssignedBy string   `json:"assigned_by"`
}

type AddAssigneesRequest struct {
	AssignedTo []string `json:"assigned_to"`
	AssignedBy string   `json:"assigned_by"`
}

type UpdateTaskGroupRequest struct {
	TaskText *string `json:"task_text,omitempty"`
	Deadline *string `json:"deadline,omitempty"`
	GroupID  *string `json:"group_id,omitempty"`
}

type UpsertUserRequest struct {
	FullName string   `json:"full_name"`
	Groups   []string `json:"groups"`
}

type UpsertGroupRequest struct {
	Name string `json:"name"`
}

type UpdateConfigRequest = models.Config

package dto

// CreateGroupRequest creates a teacher-owned group.
type CreateGroupRequest struct {
	Name string `json:"name" validate:"required,min=1,max=255"`
}

// AddGroupMemberRequest enrols a student into a group.
type AddGroupMemberRequest struct {
	StudentID string `json:"student_id" validate:"required,uuid4"`
}

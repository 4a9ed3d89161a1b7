package events

import (
	"time"

	"github.com/google/uuid"
)

const EventTypePermissionRenamed = "permission.renamed"

type PermissionRenamedEvent struct {
	BaseEvent
	PermissionID string `json:"permission_id"`
	OldName      string `json:"old_name"`
	NewName      string `json:"new_name"`
}

func NewPermissionRenamedEvent(permissionID, oldName, newName string) *PermissionRenamedEvent {
	return &PermissionRenamedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypePermissionRenamed,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"permission_id": permissionID,
				"old_name":      oldName,
				"new_name":      newName,
			},
		},
		PermissionID: permissionID,
		OldName:      oldName,
		NewName:      newName,
	}
}

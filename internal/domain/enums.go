package domain

type PhaseStatus string

const (
	PhasePending PhaseStatus = "pending"
	PhasePaid    PhaseStatus = "paid"
)

// Valid reports whether s is one of the accepted phase statuses.
func (s PhaseStatus) Valid() bool {
	return s == PhasePending || s == PhasePaid
}

// NormalizePhaseStatus maps an empty or unknown source value to pending.
func NormalizePhaseStatus(s string) PhaseStatus {
	st := PhaseStatus(s)
	if st.Valid() {
		return st
	}
	return PhasePending
}

type TaskStatus string

const (
	TaskOpen       TaskStatus = "open"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskCancelled  TaskStatus = "cancelled"
)

// ValidTaskStatuses is the canonical set of accepted task status strings.
var ValidTaskStatuses = map[string]bool{
	"open": true, "in_progress": true, "completed": true, "cancelled": true,
}

// SlotState is the lifecycle position of a document slot.
type SlotState string

const (
	SlotUnselected   SlotState = "unselected"
	SlotSelected     SlotState = "selected"
	SlotFilePending  SlotState = "file_pending"
	SlotUploading    SlotState = "uploading"
	SlotUploaded     SlotState = "uploaded"
	SlotUploadFailed SlotState = "upload_failed"
)

// PhaseNameSuggestions is the fixed set of phase names offered to users.
// Free-text names are accepted as well.
var PhaseNameSuggestions = []string{
	"Agreement",
	"Documentation",
	"Filing",
	"Approval",
	"Final Settlement",
}

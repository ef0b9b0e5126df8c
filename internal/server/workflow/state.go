package workflow

type SaveState string

const (
	Idle            SaveState = "idle"
	Uploading       SaveState = "uploading"
	Describing      SaveState = "describing"
	ConflictPending SaveState = "conflict_pending"
	Done            SaveState = "done"
	Failed          SaveState = "failed"
)

// ConflictProposal pairs the stored description with the one the user is
// trying to save.
type ConflictProposal struct {
	Existing string `json:"existing"`
	Proposed string `json:"proposed"`
}

type NoticeChoice string

const (
	NoticeBack    NoticeChoice = "back"
	NoticeProceed NoticeChoice = "proceed"
)

type Decision string

const (
	Overwrite Decision = "overwrite"
	Cancel    Decision = "cancel"
)

package lookup

// PayableItem is one line a payer can select. ID is the positional public id
// recomputed on every lookup; 0 is reserved for the combined aggregate.
type PayableItem struct {
	ID           int    `json:"id"`
	AcademicYear int    `json:"academic_year,omitempty"`
	Semester     int    `json:"semester,omitempty"`
	AmountCents  int64  `json:"amount_cents"`
	Description  string `json:"description,omitempty"`
	ReadOnly     bool   `json:"read_only,omitempty"`
	IsCombined   bool   `json:"is_combined,omitempty"`
	Mandatory    bool   `json:"mandatory,omitempty"`
	TuitionCount int    `json:"tuition_count,omitempty"`
}

// Result is a student with their payable items in public-id order.
type Result struct {
	MSSV            string        `json:"student_id"`
	FullName        string        `json:"full_name"`
	PendingTuitions []PayableItem `json:"pending_tuitions"`
}

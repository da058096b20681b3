package sdp

// Request represents a ServiceDesk Plus request (ticket).
type Request struct {
	ID                    string                 `json:"id,omitempty"                     yaml:"id,omitempty"`
	Subject               string                 `json:"subject,omitempty"                yaml:"subject,omitempty"`
	Description           string                 `json:"description,omitempty"            yaml:"description,omitempty"`
	Requester             *User                  `json:"requester,omitempty"              yaml:"requester,omitempty"`
	Technician            *User                  `json:"technician,omitempty"             yaml:"technician,omitempty"`
	Status                *Named                 `json:"status,omitempty"                 yaml:"status,omitempty"`
	Priority              *Named                 `json:"priority,omitempty"               yaml:"priority,omitempty"`
	Urgency               *Named                 `json:"urgency,omitempty"                yaml:"urgency,omitempty"`
	Group                 *Named                 `json:"group,omitempty"                  yaml:"group,omitempty"`
	Template              *Named                 `json:"template,omitempty"               yaml:"template,omitempty"`
	Category              *Named                 `json:"category,omitempty"               yaml:"category,omitempty"`
	Subcategory           *Named                 `json:"subcategory,omitempty"            yaml:"subcategory,omitempty"`
	Site                  *Named                 `json:"site,omitempty"                   yaml:"site,omitempty"`
	CreatedTime           *Time                  `json:"created_time,omitempty"           yaml:"created_time,omitempty"`
	DueByTime             *Time                  `json:"due_by_time,omitempty"            yaml:"due_by_time,omitempty"`
	ResolvedTime          *Time                  `json:"resolved_time,omitempty"          yaml:"resolved_time,omitempty"`
	CompletedTime         *Time                  `json:"completed_time,omitempty"         yaml:"completed_time,omitempty"`
	OnHoldScheduler       *OnHoldScheduler       `json:"onhold_scheduler,omitempty"       yaml:"onhold_scheduler,omitempty"`
	Resolution            *Resolution            `json:"resolution,omitempty"             yaml:"resolution,omitempty"`
	CancellationRequested bool                   `json:"cancellation_requested,omitempty" yaml:"cancellation_requested,omitempty"`
	HasNotes              bool                   `json:"has_notes,omitempty"              yaml:"has_notes,omitempty"`
	IsServiceRequest      bool                   `json:"is_service_request,omitempty"     yaml:"is_service_request,omitempty"`
	UDFFields             map[string]interface{} `json:"udf_fields,omitempty"             yaml:"udf_fields,omitempty"`
}

// RequestCreate represents a request creation payload.
type RequestCreate struct {
	// Subject is the ticket title; the provider requires it.
	Subject string `json:"subject" yaml:"subject"`
	// Description carries the ticket body, HTML allowed.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	// Requester identifies who the ticket is raised for; nil means the
	// authenticated technician.
	Requester *User `json:"requester,omitempty" yaml:"requester,omitempty"`
	// Template selects the request template; nil uses the portal default.
	Template    *Named                 `json:"template,omitempty"     yaml:"template,omitempty"`
	Status      *Named                 `json:"status,omitempty"       yaml:"status,omitempty"`
	Priority    *Named                 `json:"priority,omitempty"     yaml:"priority,omitempty"`
	Urgency     *Named                 `json:"urgency,omitempty"      yaml:"urgency,omitempty"`
	Group       *Named                 `json:"group,omitempty"        yaml:"group,omitempty"`
	Technician  *User                  `json:"technician,omitempty"   yaml:"technician,omitempty"`
	Category    *Named                 `json:"category,omitempty"     yaml:"category,omitempty"`
	Subcategory *Named                 `json:"subcategory,omitempty"  yaml:"subcategory,omitempty"`
	Site        *Named                 `json:"site,omitempty"         yaml:"site,omitempty"`
	DueByTime   *Time                  `json:"due_by_time,omitempty"  yaml:"due_by_time,omitempty"`
	UDFFields   map[string]interface{} `json:"udf_fields,omitempty"   yaml:"udf_fields,omitempty"`
}

// RequestUpdate represents a partial request update payload. Nil fields are
// left unchanged by the provider.
type RequestUpdate struct {
	Subject         *string                `json:"subject,omitempty"          yaml:"subject,omitempty"`
	Description     *string                `json:"description,omitempty"      yaml:"description,omitempty"`
	Status          *Named                 `json:"status,omitempty"           yaml:"status,omitempty"`
	Priority        *Named                 `json:"priority,omitempty"         yaml:"priority,omitempty"`
	Urgency         *Named                 `json:"urgency,omitempty"          yaml:"urgency,omitempty"`
	Group           *Named                 `json:"group,omitempty"            yaml:"group,omitempty"`
	Technician      *User                  `json:"technician,omitempty"       yaml:"technician,omitempty"`
	Category        *Named                 `json:"category,omitempty"         yaml:"category,omitempty"`
	Subcategory     *Named                 `json:"subcategory,omitempty"      yaml:"subcategory,omitempty"`
	DueByTime       *Time                  `json:"due_by_time,omitempty"      yaml:"due_by_time,omitempty"`
	OnHoldScheduler *OnHoldScheduler       `json:"onhold_scheduler,omitempty" yaml:"onhold_scheduler,omitempty"`
	Resolution      *Resolution            `json:"resolution,omitempty"       yaml:"resolution,omitempty"`
	UDFFields       map[string]interface{} `json:"udf_fields,omitempty"       yaml:"udf_fields,omitempty"`
}

// IsEmpty reports whether the update would change nothing.
func (u *RequestUpdate) IsEmpty() bool {
	return u == nil || (u.Subject == nil && u.Description == nil && u.Status == nil &&
		u.Priority == nil && u.Urgency == nil && u.Group == nil && u.Technician == nil &&
		u.Category == nil && u.Subcategory == nil && u.DueByTime == nil &&
		u.OnHoldScheduler == nil && u.Resolution == nil && len(u.UDFFields) == 0)
}

// OnHoldScheduler describes the automatic resume of an on-hold request.
type OnHoldScheduler struct {
	ScheduledTime  *Time  `json:"scheduled_time,omitempty"   yaml:"scheduled_time,omitempty"`
	ChangeToStatus *Named `json:"change_to_status,omitempty" yaml:"change_to_status,omitempty"`
	Comments       string `json:"comments,omitempty"         yaml:"comments,omitempty"`
	HeldBy         *User  `json:"held_by,omitempty"          yaml:"held_by,omitempty"`
}

// Resolution carries a request's resolution text.
type Resolution struct {
	Content      string `json:"content"                 yaml:"content"`
	SubmittedOn  *Time  `json:"submitted_on,omitempty"  yaml:"submitted_on,omitempty"`
	SubmittedBy  *User  `json:"submitted_by,omitempty"  yaml:"submitted_by,omitempty"`
	ResolutionID string `json:"resolution_id,omitempty" yaml:"resolution_id,omitempty"`
}

// ClosureInfo carries the closure details of a close operation.
type ClosureInfo struct {
	ClosureCode            *Named `json:"closure_code,omitempty"             yaml:"closure_code,omitempty"`
	ClosureComments        string `json:"closure_comments,omitempty"         yaml:"closure_comments,omitempty"`
	RequesterAckResolution bool   `json:"requester_ack_resolution,omitempty" yaml:"requester_ack_resolution,omitempty"`
	RequesterAckComments   string `json:"requester_ack_comments,omitempty"   yaml:"requester_ack_comments,omitempty"`
}

// CloseInput is the payload for closing a request.
type CloseInput struct {
	ClosureInfo ClosureInfo `json:"closure_info" yaml:"closure_info"`
}

// AssignInput names the technician and/or group a request is assigned to.
// At least one of the two must be set.
type AssignInput struct {
	Technician *User  `json:"technician,omitempty" yaml:"technician,omitempty"`
	Group      *Named `json:"group,omitempty"      yaml:"group,omitempty"`
}

// Note represents a request note (conversation entry).
type Note struct {
	ID                string `json:"id,omitempty"                  yaml:"id,omitempty"`
	Description       string `json:"description,omitempty"         yaml:"description,omitempty"`
	CreatedTime       *Time  `json:"created_time,omitempty"        yaml:"created_time,omitempty"`
	CreatedBy         *User  `json:"created_by,omitempty"          yaml:"created_by,omitempty"`
	ShowToRequester   bool   `json:"show_to_requester,omitempty"   yaml:"show_to_requester,omitempty"`
	NotifyTechnician  bool   `json:"notify_technician,omitempty"   yaml:"notify_technician,omitempty"`
	MarkFirstResponse bool   `json:"mark_first_response,omitempty" yaml:"mark_first_response,omitempty"`
}

// NoteInput is the payload for adding or updating a note.
type NoteInput struct {
	Description       string `json:"description"                   yaml:"description"`
	ShowToRequester   bool   `json:"show_to_requester,omitempty"   yaml:"show_to_requester,omitempty"`
	NotifyTechnician  bool   `json:"notify_technician,omitempty"   yaml:"notify_technician,omitempty"`
	MarkFirstResponse bool   `json:"mark_first_response,omitempty" yaml:"mark_first_response,omitempty"`
}

// Task represents a task attached to a request.
type Task struct {
	ID                   string `json:"id,omitempty"                    yaml:"id,omitempty"`
	Title                string `json:"title,omitempty"                 yaml:"title,omitempty"`
	Description          string `json:"description,omitempty"           yaml:"description,omitempty"`
	Status               *Named `json:"status,omitempty"                yaml:"status,omitempty"`
	Priority             *Named `json:"priority,omitempty"              yaml:"priority,omitempty"`
	Owner                *User  `json:"owner,omitempty"                 yaml:"owner,omitempty"`
	Group                *Named `json:"group,omitempty"                 yaml:"group,omitempty"`
	CreatedTime          *Time  `json:"created_time,omitempty"          yaml:"created_time,omitempty"`
	ScheduledStartTime   *Time  `json:"scheduled_start_time,omitempty"  yaml:"scheduled_start_time,omitempty"`
	ScheduledEndTime     *Time  `json:"scheduled_end_time,omitempty"    yaml:"scheduled_end_time,omitempty"`
	ActualStartTime      *Time  `json:"actual_start_time,omitempty"     yaml:"actual_start_time,omitempty"`
	ActualEndTime        *Time  `json:"actual_end_time,omitempty"       yaml:"actual_end_time,omitempty"`
	PercentageCompletion int    `json:"percentage_completion,omitempty" yaml:"percentage_completion,omitempty"`
}

// TaskInput is the payload for adding or updating a task.
type TaskInput struct {
	Title                string `json:"title"                           yaml:"title"`
	Description          string `json:"description,omitempty"           yaml:"description,omitempty"`
	Status               *Named `json:"status,omitempty"                yaml:"status,omitempty"`
	Priority             *Named `json:"priority,omitempty"              yaml:"priority,omitempty"`
	Owner                *User  `json:"owner,omitempty"                 yaml:"owner,omitempty"`
	Group                *Named `json:"group,omitempty"                 yaml:"group,omitempty"`
	ScheduledStartTime   *Time  `json:"scheduled_start_time,omitempty"  yaml:"scheduled_start_time,omitempty"`
	ScheduledEndTime     *Time  `json:"scheduled_end_time,omitempty"    yaml:"scheduled_end_time,omitempty"`
	PercentageCompletion int    `json:"percentage_completion,omitempty" yaml:"percentage_completion,omitempty"`
}

// Technician represents a portal technician.
type Technician struct {
	ID           string `json:"id,omitempty"            yaml:"id,omitempty"`
	Name         string `json:"name,omitempty"          yaml:"name,omitempty"`
	EmailID      string `json:"email_id,omitempty"      yaml:"email_id,omitempty"`
	Phone        string `json:"phone,omitempty"         yaml:"phone,omitempty"`
	Mobile       string `json:"mobile,omitempty"        yaml:"mobile,omitempty"`
	Department   *Named `json:"department,omitempty"    yaml:"department,omitempty"`
	IsVIPUser    bool   `json:"is_vip_user,omitempty"   yaml:"is_vip_user,omitempty"`
	CostPerHour  string `json:"cost_per_hour,omitempty" yaml:"cost_per_hour,omitempty"`
	EmployeeID   string `json:"employee_id,omitempty"   yaml:"employee_id,omitempty"`
	SMSMailID    string `json:"sms_mail_id,omitempty"   yaml:"sms_mail_id,omitempty"`
	LoginEnabled bool   `json:"login_enabled,omitempty" yaml:"login_enabled,omitempty"`
}

// Request status names the provider ships with.
const (
	// StatusOpenRequest is the default status of a new request.
	StatusOpenRequest = "Open"

	// StatusOnHold is the status an on-hold update sets.
	StatusOnHold = "Onhold"

	// StatusResolved marks a request resolved but not yet closed.
	StatusResolved = "Resolved"

	// StatusClosedRequest marks a request closed.
	StatusClosedRequest = "Closed"
)

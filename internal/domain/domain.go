package domain

type Department struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Icon           string `json:"icon,omitempty"`
	WellnessScore  *int   `json:"wellness_score,omitempty"`
	TotalEmployees *int   `json:"total_employees,omitempty"`
	WellnessTrend  string `json:"wellness_trend,omitempty" enum:"improving,stable,declining"`
	CreatedAt      string `json:"created_at" format:"date-time"`
}

type Employee struct {
	ID                      string  `json:"id"`
	FullName                string  `json:"full_name"`
	Email                   string  `json:"email"`
	EmployeeCode            string  `json:"employee_code,omitempty"`
	DepartmentID            *string `json:"department_id,omitempty"`
	Role                    string  `json:"role" enum:"employee,admin"`
	IsActive                bool    `json:"is_active"`
	ActivityTrackingEnabled bool    `json:"activity_tracking_enabled"`
	CreatedAt               string  `json:"created_at" format:"date-time"`
}

type Report struct {
	ID                 string   `json:"id"`
	EmployeeID         *string  `json:"employee_id,omitempty"`
	DepartmentID       string   `json:"department_id"`
	ReportType         string   `json:"report_type"`
	Severity           string   `json:"severity" enum:"low,medium,high,critical"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Status             string   `json:"status" enum:"pending,in_progress,resolved,dismissed"`
	AssignedTo         *string  `json:"assigned_to,omitempty"`
	IsAnonymous        bool     `json:"is_anonymous"`
	IsFlagged          bool     `json:"is_flagged"`
	FlagReason         *string  `json:"flag_reason,omitempty"`
	IncidentDate       *string  `json:"incident_date,omitempty" format:"date-time"`
	WitnessInformation *string  `json:"witness_information,omitempty"`
	Attachments        []string `json:"attachments,omitempty"`
	CreatedAt          string   `json:"created_at" format:"date-time"`
	UpdatedAt          string   `json:"updated_at" format:"date-time"`
}

type FlaggingRule struct {
	ID            string `json:"id"`
	Keyword       string `json:"keyword"`
	SeverityLevel string `json:"severity_level" enum:"low,medium,high,critical"`
	IsActive      bool   `json:"is_active"`
	CreatedAt     string `json:"created_at" format:"date-time"`
}

type ActivityLog struct {
	ID           string `json:"id"`
	EmployeeID   string `json:"employee_id"`
	ActivityType string `json:"activity_type" enum:"active,login,logout"`
	TS           string `json:"ts" format:"date-time"`
}

type Task struct {
	ID          string  `json:"id"`
	EmployeeID  string  `json:"employee_id"`
	ReportID    *string `json:"report_id,omitempty"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	DueDate     *string `json:"due_date,omitempty" format:"date-time"`
	Priority    string  `json:"priority" enum:"low,medium,high"`
	IsCompleted bool    `json:"is_completed"`
	CreatedAt   string  `json:"created_at" format:"date-time"`
	UpdatedAt   string  `json:"updated_at" format:"date-time"`
}

type WellnessScore struct {
	ID           string         `json:"id"`
	EmployeeID   string         `json:"employee_id"`
	Score        int            `json:"score" minimum:"1" maximum:"10"`
	Factors      map[string]int `json:"factors"`
	Notes        string         `json:"notes,omitempty"`
	CalculatedAt string         `json:"calculated_at" format:"date-time"`
}

// DepartmentWellness is the derived department-level aggregate. It is
// recomputed on demand and overwrites the department's stored summary.
type DepartmentWellness struct {
	DepartmentID   string `json:"department_id"`
	WellnessScore  int    `json:"wellness_score" minimum:"0" maximum:"100"`
	TotalEmployees int    `json:"total_employees"`
	Trend          string `json:"trend" enum:"improving,stable,declining"`
}

type SystemLog struct {
	ID         int64  `json:"id"`
	TS         string `json:"ts" format:"date-time"`
	Action     string `json:"action"`
	UserID     string `json:"user_id,omitempty"`
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id,omitempty"`
	Details    string `json:"details_json"`
}

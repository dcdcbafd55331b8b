package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"safeshift/internal/engine"
	"safeshift/internal/repo"
)

func pageLimit(e engine.Engine, requested int) int {
	limit := requested
	if limit <= 0 {
		limit = e.Config.Pagination.DefaultPageSize
	}
	if limit > e.Config.Pagination.MaxPageSize {
		limit = e.Config.Pagination.MaxPageSize
	}
	return limit
}

func registerReports(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID:   "submit-report",
		Method:        http.MethodPost,
		Path:          "/reports",
		Summary:       "Submit report",
		DefaultStatus: http.StatusCreated,
		Errors: []int{
			http.StatusBadRequest,
			http.StatusUnauthorized,
			http.StatusNotFound,
			http.StatusInternalServerError,
		},
	}, func(ctx context.Context, input *struct {
		Body SubmitReportRequest `json:"body"`
	}) (*struct {
		Body ReportResponse `json:"body"`
	}, error) {
		if len(bodyBytes(ctx)) == 0 {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "body required", nil)
		}
		userID, authErr := userIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		opts := engine.ReportSubmitOptions{
			EmployeeID:   userID,
			DepartmentID: input.Body.DepartmentID,
			ReportType:   input.Body.ReportType,
			Severity:     input.Body.Severity,
			Title:        input.Body.Title,
			Description:  input.Body.Description,
			IsAnonymous:  input.Body.IsAnonymous,
			Attachments:  input.Body.Attachments,
			ActorID:      userID,
		}
		if input.Body.IncidentDate != nil {
			opts.IncidentDate = *input.Body.IncidentDate
		}
		if input.Body.WitnessInformation != nil {
			opts.WitnessInformation = *input.Body.WitnessInformation
		}
		rep, err := e.SubmitReport(ctx, opts)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body ReportResponse `json:"body"`
		}{Body: reportResponse(rep)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-reports",
		Method:      http.MethodGet,
		Path:        "/reports",
		Summary:     "List reports",
		Errors:      []int{http.StatusUnauthorized, http.StatusForbidden},
	}, func(ctx context.Context, input *struct {
		DepartmentID    string `query:"department_id"`
		ReportType      string `query:"report_type"`
		Status          string `query:"status"`
		Flagged         *bool  `query:"flagged"`
		Limit           int    `query:"limit"`
		CursorCreatedAt string `query:"cursor_created_at"`
		CursorID        string `query:"cursor_id"`
	}) (*struct {
		Body []ReportResponse `json:"body"`
	}, error) {
		if authErr := requireAdmin(ctx); authErr != nil {
			return nil, authErr
		}
		items, err := e.Repo.ListReports(ctx, repo.ReportFilters{
			DepartmentID:    input.DepartmentID,
			ReportType:      input.ReportType,
			Status:          input.Status,
			Flagged:         input.Flagged,
			Limit:           pageLimit(e, input.Limit),
			CursorCreatedAt: input.CursorCreatedAt,
			CursorID:        input.CursorID,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []ReportResponse `json:"body"`
		}{Body: mapReports(items)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-report",
		Method:      http.MethodGet,
		Path:        "/reports/{report_id}",
		Summary:     "Get report",
		Errors:      []int{http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ReportID string `path:"report_id"`
	}) (*struct {
		Body ReportResponse `json:"body"`
	}, error) {
		userID, authErr := userIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		rep, err := e.Repo.GetReport(ctx, input.ReportID)
		if err != nil {
			return nil, handleError(err)
		}
		// Non-admins can only read their own non-anonymous reports.
		if p, _ := principalFromContext(ctx); p.Role != "admin" {
			if rep.EmployeeID == nil || *rep.EmployeeID != userID {
				return nil, newAPIError(http.StatusForbidden, "forbidden", "not your report", nil)
			}
		}
		return &struct {
			Body ReportResponse `json:"body"`
		}{Body: reportResponse(rep)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-report-status",
		Method:      http.MethodPatch,
		Path:        "/reports/{report_id}/status",
		Summary:     "Update report status",
		Errors: []int{
			http.StatusBadRequest,
			http.StatusUnauthorized,
			http.StatusForbidden,
			http.StatusNotFound,
		},
	}, func(ctx context.Context, input *struct {
		ReportID string                    `path:"report_id"`
		Body     UpdateReportStatusRequest `json:"body"`
	}) (*struct {
		Body ReportResponse `json:"body"`
	}, error) {
		if authErr := requireAdmin(ctx); authErr != nil {
			return nil, authErr
		}
		userID, _ := userIDFromContext(ctx)
		rep, err := e.UpdateReportStatus(ctx, input.ReportID, input.Body.Status, userID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body ReportResponse `json:"body"`
		}{Body: reportResponse(rep)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "assign-report",
		Method:      http.MethodPost,
		Path:        "/reports/{report_id}/assign",
		Summary:     "Assign report",
		Errors: []int{
			http.StatusBadRequest,
			http.StatusUnauthorized,
			http.StatusForbidden,
			http.StatusNotFound,
		},
	}, func(ctx context.Context, input *struct {
		ReportID string              `path:"report_id"`
		Body     AssignReportRequest `json:"body"`
	}) (*struct {
		Body ReportResponse `json:"body"`
	}, error) {
		if authErr := requireAdmin(ctx); authErr != nil {
			return nil, authErr
		}
		userID, _ := userIDFromContext(ctx)
		rep, err := e.AssignReport(ctx, input.ReportID, input.Body.AssigneeID, userID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body ReportResponse `json:"body"`
		}{Body: reportResponse(rep)}, nil
	})
}

func registerRules(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-rule",
		Method:        http.MethodPost,
		Path:          "/rules",
		Summary:       "Create flagging rule",
		DefaultStatus: http.StatusCreated,
		Errors: []int{
			http.StatusBadRequest,
			http.StatusUnauthorized,
			http.StatusForbidden,
		},
	}, func(ctx context.Context, input *struct {
		Body CreateRuleRequest `json:"body"`
	}) (*struct {
		Body RuleResponse `json:"body"`
	}, error) {
		if authErr := requireAdmin(ctx); authErr != nil {
			return nil, authErr
		}
		userID, _ := userIDFromContext(ctx)
		rule, err := e.CreateRule(ctx, input.Body.Keyword, input.Body.SeverityLevel, userID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body RuleResponse `json:"body"`
		}{Body: ruleResponse(rule)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-rules",
		Method:      http.MethodGet,
		Path:        "/rules",
		Summary:     "List flagging rules",
		Errors:      []int{http.StatusUnauthorized, http.StatusForbidden},
	}, func(ctx context.Context, input *struct {
		ActiveOnly bool `query:"active_only"`
	}) (*struct {
		Body []RuleResponse `json:"body"`
	}, error) {
		if authErr := requireAdmin(ctx); authErr != nil {
			return nil, authErr
		}
		items, err := e.Repo.ListRules(ctx, input.ActiveOnly)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []RuleResponse `json:"body"`
		}{Body: mapRules(items)}, nil
	})

	setActive := func(operationID, pathSuffix string, active bool) {
		huma.Register(api, huma.Operation{
			OperationID: operationID,
			Method:      http.MethodPost,
			Path:        "/rules/{rule_id}/" + pathSuffix,
			Summary:     "Toggle flagging rule",
			Errors: []int{
				http.StatusUnauthorized,
				http.StatusForbidden,
				http.StatusNotFound,
			},
		}, func(ctx context.Context, input *struct {
			RuleID string `path:"rule_id"`
		}) (*struct {
			Body RuleResponse `json:"body"`
		}, error) {
			if authErr := requireAdmin(ctx); authErr != nil {
				return nil, authErr
			}
			userID, _ := userIDFromContext(ctx)
			rule, err := e.SetRuleActive(ctx, input.RuleID, active, userID)
			if err != nil {
				return nil, handleError(err)
			}
			return &struct {
				Body RuleResponse `json:"body"`
			}{Body: ruleResponse(rule)}, nil
		})
	}
	setActive("enable-rule", "enable", true)
	setActive("disable-rule", "disable", false)

	huma.Register(api, huma.Operation{
		OperationID:   "delete-rule",
		Method:        http.MethodDelete,
		Path:          "/rules/{rule_id}",
		Summary:       "Delete flagging rule",
		DefaultStatus: http.StatusNoContent,
		Errors: []int{
			http.StatusUnauthorized,
			http.StatusForbidden,
			http.StatusNotFound,
		},
	}, func(ctx context.Context, input *struct {
		RuleID string `path:"rule_id"`
	}) (*struct{}, error) {
		if authErr := requireAdmin(ctx); authErr != nil {
			return nil, authErr
		}
		userID, _ := userIDFromContext(ctx)
		if err := e.DeleteRule(ctx, input.RuleID, userID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}

func registerActivity(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID:   "record-activity",
		Method:        http.MethodPost,
		Path:          "/activity",
		Summary:       "Record activity heartbeat",
		DefaultStatus: http.StatusCreated,
		Errors: []int{
			http.StatusBadRequest,
			http.StatusUnauthorized,
			http.StatusConflict,
			http.StatusNotFound,
		},
	}, func(ctx context.Context, input *struct {
		Body RecordActivityRequest `json:"body"`
	}) (*struct {
		Body ActivityLogResponse `json:"body"`
	}, error) {
		userID, authErr := userIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		activityType := input.Body.ActivityType
		if activityType == "" {
			activityType = "active"
		}
		a, err := e.RecordActivity(ctx, userID, activityType)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body ActivityLogResponse `json:"body"`
		}{Body: activityLogResponse(a)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-activity",
		Method:      http.MethodGet,
		Path:        "/activity",
		Summary:     "List activity logs",
		Errors:      []int{http.StatusUnauthorized, http.StatusForbidden},
	}, func(ctx context.Context, input *struct {
		EmployeeID   string `query:"employee_id"`
		ActivityType string `query:"activity_type"`
		Since        string `query:"since"`
		Limit        int    `query:"limit"`
	}) (*struct {
		Body []ActivityLogResponse `json:"body"`
	}, error) {
		userID, authErr := userIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		employeeID := input.EmployeeID
		if p, _ := principalFromContext(ctx); p.Role != "admin" {
			// Non-admins only see their own logs.
			employeeID = userID
		}
		items, err := e.Repo.ListActivityLogs(ctx, repo.ActivityFilters{
			EmployeeID:   employeeID,
			ActivityType: input.ActivityType,
			Since:        input.Since,
			Limit:        pageLimit(e, input.Limit),
		})
		if err != nil {
			return nil, handleError(err)
		}
		res := make([]ActivityLogResponse, 0, len(items))
		for _, a := range items {
			res = append(res, activityLogResponse(a))
		}
		return &struct {
			Body []ActivityLogResponse `json:"body"`
		}{Body: res}, nil
	})
}

func registerWellness(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "compute-employee-wellness",
		Method:      http.MethodGet,
		Path:        "/wellness/employees/{employee_id}",
		Summary:     "Compute employee wellness",
		Errors: []int{
			http.StatusUnauthorized,
			http.StatusForbidden,
			http.StatusNotFound,
		},
	}, func(ctx context.Context, input *struct {
		EmployeeID string `path:"employee_id"`
	}) (*struct {
		Body WellnessScoreResponse `json:"body"`
	}, error) {
		userID, authErr := userIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		if p, _ := principalFromContext(ctx); p.Role != "admin" && input.EmployeeID != userID {
			return nil, newAPIError(http.StatusForbidden, "forbidden", "cannot read another employee's wellness", nil)
		}
		w, err := e.ComputeEmployeeWellness(ctx, input.EmployeeID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body WellnessScoreResponse `json:"body"`
		}{Body: wellnessScoreResponse(w)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "wellness-history",
		Method:      http.MethodGet,
		Path:        "/wellness/employees/{employee_id}/history",
		Summary:     "List wellness score history",
		Errors: []int{
			http.StatusUnauthorized,
			http.StatusForbidden,
		},
	}, func(ctx context.Context, input *struct {
		EmployeeID string `path:"employee_id"`
		Limit      int    `query:"limit"`
	}) (*struct {
		Body []WellnessScoreResponse `json:"body"`
	}, error) {
		userID, authErr := userIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		if p, _ := principalFromContext(ctx); p.Role != "admin" && input.EmployeeID != userID {
			return nil, newAPIError(http.StatusForbidden, "forbidden", "cannot read another employee's wellness", nil)
		}
		items, err := e.Repo.ListWellnessScores(ctx, input.EmployeeID, pageLimit(e, input.Limit))
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []WellnessScoreResponse `json:"body"`
		}{Body: mapWellnessScores(items)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "compute-department-wellness",
		Method:      http.MethodGet,
		Path:        "/wellness/departments/{department_id}",
		Summary:     "Compute department wellness",
		Errors: []int{
			http.StatusUnauthorized,
			http.StatusForbidden,
			http.StatusNotFound,
		},
	}, func(ctx context.Context, input *struct {
		DepartmentID string `path:"department_id"`
	}) (*struct {
		Body DepartmentWellnessResponse `json:"body"`
	}, error) {
		if authErr := requireAdmin(ctx); authErr != nil {
			return nil, authErr
		}
		if _, err := e.Repo.GetDepartment(ctx, input.DepartmentID); err != nil {
			return nil, handleError(err)
		}
		got := e.ComputeDepartmentWellness(ctx, input.DepartmentID)
		return &struct {
			Body DepartmentWellnessResponse `json:"body"`
		}{Body: departmentWellnessResponse(got)}, nil
	})
}

func registerTasks(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-task",
		Method:        http.MethodPost,
		Path:          "/tasks",
		Summary:       "Create task",
		DefaultStatus: http.StatusCreated,
		Errors: []int{
			http.StatusBadRequest,
			http.StatusUnauthorized,
			http.StatusForbidden,
			http.StatusNotFound,
		},
	}, func(ctx context.Context, input *struct {
		Body CreateTaskRequest `json:"body"`
	}) (*struct {
		Body TaskResponse `json:"body"`
	}, error) {
		if authErr := requireAdmin(ctx); authErr != nil {
			return nil, authErr
		}
		opts := engine.TaskCreateOptions{
			EmployeeID: input.Body.EmployeeID,
			Title:      input.Body.Title,
			Priority:   input.Body.Priority,
		}
		if input.Body.ReportID != nil {
			opts.ReportID = *input.Body.ReportID
		}
		if input.Body.Description != nil {
			opts.Description = *input.Body.Description
		}
		if input.Body.DueDate != nil {
			opts.DueDate = *input.Body.DueDate
		}
		t, err := e.CreateTask(ctx, opts)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body TaskResponse `json:"body"`
		}{Body: taskResponse(t)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-tasks",
		Method:      http.MethodGet,
		Path:        "/tasks",
		Summary:     "List tasks",
		Errors:      []int{http.StatusUnauthorized},
	}, func(ctx context.Context, input *struct {
		EmployeeID string `query:"employee_id"`
		Limit      int    `query:"limit"`
	}) (*struct {
		Body []TaskResponse `json:"body"`
	}, error) {
		userID, authErr := userIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		employeeID := input.EmployeeID
		if p, _ := principalFromContext(ctx); p.Role != "admin" {
			employeeID = userID
		}
		items, err := e.Repo.ListTasks(ctx, employeeID, pageLimit(e, input.Limit))
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []TaskResponse `json:"body"`
		}{Body: mapTasks(items)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "complete-task",
		Method:      http.MethodPost,
		Path:        "/tasks/{task_id}/complete",
		Summary:     "Complete task",
		Errors: []int{
			http.StatusUnauthorized,
			http.StatusForbidden,
			http.StatusNotFound,
		},
	}, func(ctx context.Context, input *struct {
		TaskID string `path:"task_id"`
	}) (*struct {
		Body TaskResponse `json:"body"`
	}, error) {
		userID, authErr := userIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		t, err := e.Repo.GetTask(ctx, input.TaskID)
		if err != nil {
			return nil, handleError(err)
		}
		if p, _ := principalFromContext(ctx); p.Role != "admin" && t.EmployeeID != userID {
			return nil, newAPIError(http.StatusForbidden, "forbidden", "not your task", nil)
		}
		t, err = e.CompleteTask(ctx, input.TaskID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body TaskResponse `json:"body"`
		}{Body: taskResponse(t)}, nil
	})
}

func registerEmployees(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-employee",
		Method:        http.MethodPost,
		Path:          "/employees",
		Summary:       "Create employee",
		DefaultStatus: http.StatusCreated,
		Errors: []int{
			http.StatusBadRequest,
			http.StatusUnauthorized,
			http.StatusForbidden,
			http.StatusConflict,
		},
	}, func(ctx context.Context, input *struct {
		Body CreateEmployeeRequest `json:"body"`
	}) (*struct {
		Body EmployeeResponse `json:"body"`
	}, error) {
		if authErr := requireAdmin(ctx); authErr != nil {
			return nil, authErr
		}
		opts := engine.EmployeeCreateOptions{
			FullName: input.Body.FullName,
			Email:    input.Body.Email,
			Role:     input.Body.Role,
		}
		if input.Body.EmployeeCode != nil {
			opts.EmployeeCode = *input.Body.EmployeeCode
		}
		if input.Body.DepartmentID != nil {
			opts.DepartmentID = *input.Body.DepartmentID
		}
		emp, err := e.CreateEmployee(ctx, opts)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body EmployeeResponse `json:"body"`
		}{Body: employeeResponse(emp)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-employees",
		Method:      http.MethodGet,
		Path:        "/employees",
		Summary:     "List employees",
		Errors:      []int{http.StatusUnauthorized, http.StatusForbidden},
	}, func(ctx context.Context, input *struct {
		DepartmentID string `query:"department_id"`
	}) (*struct {
		Body []EmployeeResponse `json:"body"`
	}, error) {
		if authErr := requireAdmin(ctx); authErr != nil {
			return nil, authErr
		}
		items, err := e.Repo.ListEmployees(ctx, input.DepartmentID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []EmployeeResponse `json:"body"`
		}{Body: mapEmployees(items)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-employee",
		Method:      http.MethodGet,
		Path:        "/employees/{employee_id}",
		Summary:     "Get employee",
		Errors:      []int{http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		EmployeeID string `path:"employee_id"`
	}) (*struct {
		Body EmployeeResponse `json:"body"`
	}, error) {
		userID, authErr := userIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		if p, _ := principalFromContext(ctx); p.Role != "admin" && input.EmployeeID != userID {
			return nil, newAPIError(http.StatusForbidden, "forbidden", "cannot read another employee", nil)
		}
		emp, err := e.Repo.GetEmployee(ctx, input.EmployeeID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body EmployeeResponse `json:"body"`
		}{Body: employeeResponse(emp)}, nil
	})
}

func registerDepartments(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-department",
		Method:        http.MethodPost,
		Path:          "/departments",
		Summary:       "Create department",
		DefaultStatus: http.StatusCreated,
		Errors: []int{
			http.StatusBadRequest,
			http.StatusUnauthorized,
			http.StatusForbidden,
		},
	}, func(ctx context.Context, input *struct {
		Body CreateDepartmentRequest `json:"body"`
	}) (*struct {
		Body DepartmentResponse `json:"body"`
	}, error) {
		if authErr := requireAdmin(ctx); authErr != nil {
			return nil, authErr
		}
		icon := ""
		if input.Body.Icon != nil {
			icon = *input.Body.Icon
		}
		d, err := e.CreateDepartment(ctx, input.Body.Name, icon)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body DepartmentResponse `json:"body"`
		}{Body: departmentResponse(d)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-departments",
		Method:      http.MethodGet,
		Path:        "/departments",
		Summary:     "List departments",
		Errors:      []int{http.StatusUnauthorized},
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []DepartmentResponse `json:"body"`
	}, error) {
		if _, authErr := userIDFromContext(ctx); authErr != nil {
			return nil, authErr
		}
		items, err := e.Repo.ListDepartments(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []DepartmentResponse `json:"body"`
		}{Body: mapDepartments(items)}, nil
	})
}

func registerMetrics(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "dashboard-metrics",
		Method:      http.MethodGet,
		Path:        "/metrics",
		Summary:     "Dashboard metrics",
		Errors:      []int{http.StatusUnauthorized, http.StatusForbidden},
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body MetricsResponse `json:"body"`
	}, error) {
		if authErr := requireAdmin(ctx); authErr != nil {
			return nil, authErr
		}
		m, err := e.Metrics(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body MetricsResponse `json:"body"`
		}{Body: metricsResponse(m)}, nil
	})
}

func registerSystemLogs(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "list-system-logs",
		Method:      http.MethodGet,
		Path:        "/logs",
		Summary:     "List system logs",
		Errors:      []int{http.StatusUnauthorized, http.StatusForbidden},
	}, func(ctx context.Context, input *struct {
		Action     string `query:"action"`
		EntityType string `query:"entity_type"`
		EntityID   string `query:"entity_id"`
		Limit      int    `query:"limit"`
		Cursor     int64  `query:"cursor"`
	}) (*struct {
		Body []SystemLogResponse `json:"body"`
	}, error) {
		if authErr := requireAdmin(ctx); authErr != nil {
			return nil, authErr
		}
		items, err := e.Repo.ListSystemLogs(ctx, repo.SystemLogFilters{
			Action:     input.Action,
			EntityType: input.EntityType,
			EntityID:   input.EntityID,
			Limit:      pageLimit(e, input.Limit),
			Cursor:     input.Cursor,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []SystemLogResponse `json:"body"`
		}{Body: mapSystemLogs(items)}, nil
	})
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"safeshift/internal/config"
	"safeshift/internal/db"
	"safeshift/internal/engine"
	"safeshift/internal/migrate"
	"safeshift/internal/repo"
	"safeshift/internal/server"
)

var rootCmd = &cobra.Command{
	Use:   "safeshift",
	Short: "SafeShift CLI",
	Long: `SafeShift manages workplace reports, automatic flagging, and wellness scoring.
Reports are screened on submission: keyword rules, same-department burst detection,
and documentation checks can flag a report for mandatory review. Wellness scores
are computed on demand from activity logs, report history, and task completion.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		workspace := viper.GetString("workspace")
		if _, err := db.EnsureWorkspace(workspace); err != nil {
			return err
		}
		return nil
	},
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("SAFESHIFT")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	rootCmd.PersistentFlags().String("actor-id", "local-admin", "acting user identifier")
	_ = viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("actor-id", rootCmd.PersistentFlags().Lookup("actor-id"))
}

func registerCommands() {
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(ruleCmd())
	rootCmd.AddCommand(wellnessCmd())
	rootCmd.AddCommand(activityCmd())
	rootCmd.AddCommand(taskCmd())
	rootCmd.AddCommand(employeeCmd())
	rootCmd.AddCommand(departmentCmd())
	rootCmd.AddCommand(logCmd())
	rootCmd.AddCommand(metricsCmd())
	rootCmd.AddCommand(serveCmd())
}

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "report", Short: "Manage reports"}
	cmd.AddCommand(reportSubmitCmd())
	cmd.AddCommand(reportListCmd())
	cmd.AddCommand(reportShowCmd())
	cmd.AddCommand(reportStatusCmd())
	cmd.AddCommand(reportAssignCmd())
	return cmd
}

func reportSubmitCmd() *cobra.Command {
	var opts engine.ReportSubmitOptions
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a report (runs flagging)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				opts.ActorID = viper.GetString("actor-id")
				rep, err := e.SubmitReport(ctx, opts)
				if err != nil {
					return err
				}
				return printJSONOrTable(rep)
			})
		},
	}
	cmd.Flags().StringVar(&opts.EmployeeID, "employee", "", "reporting employee id")
	cmd.Flags().StringVar(&opts.DepartmentID, "department", "", "department id")
	cmd.Flags().StringVar(&opts.ReportType, "type", "", "report type")
	cmd.Flags().StringVar(&opts.Severity, "severity", "low", "severity (low|medium|high|critical)")
	cmd.Flags().StringVar(&opts.Title, "title", "", "title")
	cmd.Flags().StringVar(&opts.Description, "description", "", "description")
	cmd.Flags().BoolVar(&opts.IsAnonymous, "anonymous", false, "submit anonymously")
	cmd.Flags().StringVar(&opts.IncidentDate, "incident-date", "", "incident date (RFC3339)")
	cmd.Flags().StringVar(&opts.WitnessInformation, "witnesses", "", "witness information")
	cmd.Flags().StringSliceVar(&opts.Attachments, "attachment", nil, "attachment reference (repeatable)")
	_ = cmd.MarkFlagRequired("department")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func reportListCmd() *cobra.Command {
	var f repo.ReportFilters
	var flagged bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List reports",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				if cmd.Flags().Changed("flagged") {
					f.Flagged = &flagged
				}
				reports, err := r.ListReports(ctx, f)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(reports)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Type", "Severity", "Status", "Flagged", "Title"})
				for _, rep := range reports {
					tw.AppendRow(table.Row{rep.ID, rep.ReportType, rep.Severity, rep.Status, rep.IsFlagged, rep.Title})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&f.DepartmentID, "department", "", "department filter")
	cmd.Flags().StringVar(&f.EmployeeID, "employee", "", "employee filter")
	cmd.Flags().StringVar(&f.ReportType, "type", "", "report type filter")
	cmd.Flags().StringVar(&f.Status, "status", "", "status filter")
	cmd.Flags().BoolVar(&flagged, "flagged", false, "flagged filter")
	cmd.Flags().IntVar(&f.Limit, "limit", 0, "max rows")
	return cmd
}

func reportShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <report-id>",
		Short: "Show a report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				rep, err := r.GetReport(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSONOrTable(rep)
			})
		},
	}
	return cmd
}

func reportStatusCmd() *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "status <report-id>",
		Short: "Update report status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				rep, err := e.UpdateReportStatus(ctx, args[0], status, viper.GetString("actor-id"))
				if err != nil {
					return err
				}
				return printJSONOrTable(rep)
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "new status (pending|in_progress|resolved|dismissed)")
	_ = cmd.MarkFlagRequired("status")
	return cmd
}

func reportAssignCmd() *cobra.Command {
	var assignee string
	cmd := &cobra.Command{
		Use:   "assign <report-id>",
		Short: "Assign a report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				rep, err := e.AssignReport(ctx, args[0], assignee, viper.GetString("actor-id"))
				if err != nil {
					return err
				}
				return printJSONOrTable(rep)
			})
		},
	}
	cmd.Flags().StringVar(&assignee, "assignee", "", "assignee employee id")
	_ = cmd.MarkFlagRequired("assignee")
	return cmd
}

func ruleCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "rule", Short: "Manage flagging rules"}
	cmd.AddCommand(ruleAddCmd())
	cmd.AddCommand(ruleListCmd())
	cmd.AddCommand(ruleSetActiveCmd("enable", true))
	cmd.AddCommand(ruleSetActiveCmd("disable", false))
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <rule-id>",
		Short: "Delete a flagging rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				return e.DeleteRule(ctx, args[0], viper.GetString("actor-id"))
			})
		},
	})
	return cmd
}

func ruleAddCmd() *cobra.Command {
	var keyword, severity string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a flagging rule",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				rule, err := e.CreateRule(ctx, keyword, severity, viper.GetString("actor-id"))
				if err != nil {
					return err
				}
				return printJSONOrTable(rule)
			})
		},
	}
	cmd.Flags().StringVar(&keyword, "keyword", "", "keyword to match")
	cmd.Flags().StringVar(&severity, "severity", "", "severity level (low|medium|high|critical)")
	_ = cmd.MarkFlagRequired("keyword")
	_ = cmd.MarkFlagRequired("severity")
	return cmd
}

func ruleListCmd() *cobra.Command {
	var activeOnly bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List flagging rules in evaluation order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				rules, err := r.ListRules(ctx, activeOnly)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(rules)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Keyword", "Severity", "Active"})
				for _, rule := range rules {
					tw.AppendRow(table.Row{rule.ID, rule.Keyword, rule.SeverityLevel, rule.IsActive})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&activeOnly, "active", false, "active rules only")
	return cmd
}

func ruleSetActiveCmd(use string, active bool) *cobra.Command {
	short := "Enable a flagging rule"
	if !active {
		short = "Disable a flagging rule"
	}
	return &cobra.Command{
		Use:   use + " <rule-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				rule, err := e.SetRuleActive(ctx, args[0], active, viper.GetString("actor-id"))
				if err != nil {
					return err
				}
				return printJSONOrTable(rule)
			})
		},
	}
}

func wellnessCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "wellness", Short: "Compute wellness scores"}
	cmd.AddCommand(wellnessEmployeeCmd())
	cmd.AddCommand(wellnessDepartmentCmd())
	cmd.AddCommand(wellnessHistoryCmd())
	return cmd
}

func wellnessEmployeeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "employee <employee-id>",
		Short: "Compute an employee's wellness score",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				w, err := e.ComputeEmployeeWellness(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSONOrTable(w)
			})
		},
	}
	return cmd
}

func wellnessDepartmentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "department <department-id>",
		Short: "Compute a department's wellness summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				if _, err := e.Repo.GetDepartment(ctx, args[0]); err != nil {
					return err
				}
				return printJSONOrTable(e.ComputeDepartmentWellness(ctx, args[0]))
			})
		},
	}
	return cmd
}

func wellnessHistoryCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history <employee-id>",
		Short: "List an employee's wellness score history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				items, err := r.ListWellnessScores(ctx, args[0], limit)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(items)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"Calculated", "Score", "Notes"})
				for _, w := range items {
					tw.AppendRow(table.Row{w.CalculatedAt, w.Score, w.Notes})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "max rows")
	return cmd
}

func activityCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "activity", Short: "Record activity"}
	heartbeat := &cobra.Command{
		Use:   "heartbeat <employee-id>",
		Short: "Record an activity heartbeat",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			activityType, _ := cmd.Flags().GetString("type")
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				a, err := e.RecordActivity(ctx, args[0], activityType)
				if err != nil {
					return err
				}
				return printJSONOrTable(a)
			})
		},
	}
	heartbeat.Flags().String("type", "active", "activity type (active|login|logout)")
	cmd.AddCommand(heartbeat)
	return cmd
}

func taskCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "task", Short: "Manage tasks"}
	cmd.AddCommand(taskAddCmd())
	cmd.AddCommand(taskListCmd())
	cmd.AddCommand(taskCompleteCmd())
	return cmd
}

func taskAddCmd() *cobra.Command {
	var opts engine.TaskCreateOptions
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				t, err := e.CreateTask(ctx, opts)
				if err != nil {
					return err
				}
				return printJSONOrTable(t)
			})
		},
	}
	cmd.Flags().StringVar(&opts.EmployeeID, "employee", "", "assignee employee id")
	cmd.Flags().StringVar(&opts.Title, "title", "", "title")
	cmd.Flags().StringVar(&opts.Description, "description", "", "description")
	cmd.Flags().StringVar(&opts.ReportID, "report", "", "linked report id")
	cmd.Flags().StringVar(&opts.Priority, "priority", "medium", "priority (low|medium|high)")
	_ = cmd.MarkFlagRequired("employee")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func taskListCmd() *cobra.Command {
	var employee string
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				tasks, err := r.ListTasks(ctx, employee, limit)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(tasks)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Title", "Priority", "Completed"})
				for _, t := range tasks {
					tw.AppendRow(table.Row{t.ID, t.Title, t.Priority, t.IsCompleted})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&employee, "employee", "", "employee filter")
	cmd.Flags().IntVar(&limit, "limit", 0, "max rows")
	return cmd
}

func taskCompleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "complete <task-id>",
		Short: "Mark a task completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				t, err := e.CompleteTask(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSONOrTable(t)
			})
		},
	}
}

func employeeCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "employee", Short: "Manage employees"}
	cmd.AddCommand(employeeAddCmd())
	cmd.AddCommand(employeeListCmd())
	return cmd
}

func employeeAddCmd() *cobra.Command {
	var opts engine.EmployeeCreateOptions
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register an employee",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				emp, err := e.CreateEmployee(ctx, opts)
				if err != nil {
					return err
				}
				return printJSONOrTable(emp)
			})
		},
	}
	cmd.Flags().StringVar(&opts.FullName, "name", "", "full name")
	cmd.Flags().StringVar(&opts.Email, "email", "", "email")
	cmd.Flags().StringVar(&opts.EmployeeCode, "code", "", "employee code")
	cmd.Flags().StringVar(&opts.DepartmentID, "department", "", "department id")
	cmd.Flags().StringVar(&opts.Role, "role", "employee", "role (employee|admin)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func employeeListCmd() *cobra.Command {
	var department string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List employees",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				items, err := r.ListEmployees(ctx, department)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(items)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Name", "Email", "Role", "Active"})
				for _, emp := range items {
					tw.AppendRow(table.Row{emp.ID, emp.FullName, emp.Email, emp.Role, emp.IsActive})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&department, "department", "", "department filter")
	return cmd
}

func departmentCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "department", Short: "Manage departments"}
	add := &cobra.Command{
		Use:   "add",
		Short: "Create a department",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			icon, _ := cmd.Flags().GetString("icon")
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				d, err := e.CreateDepartment(ctx, name, icon)
				if err != nil {
					return err
				}
				return printJSONOrTable(d)
			})
		},
	}
	add.Flags().String("name", "", "department name")
	add.Flags().String("icon", "", "icon")
	_ = add.MarkFlagRequired("name")
	list := &cobra.Command{
		Use:   "list",
		Short: "List departments",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				items, err := r.ListDepartments(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(items)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Name", "Wellness", "Employees", "Trend"})
				for _, d := range items {
					score, total := "", ""
					if d.WellnessScore != nil {
						score = fmt.Sprintf("%d", *d.WellnessScore)
					}
					if d.TotalEmployees != nil {
						total = fmt.Sprintf("%d", *d.TotalEmployees)
					}
					tw.AppendRow(table.Row{d.ID, d.Name, score, total, d.WellnessTrend})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.AddCommand(add)
	cmd.AddCommand(list)
	return cmd
}

func logCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "log", Short: "Inspect the audit log"}
	cmd.AddCommand(logTailCmd())
	return cmd
}

func logTailCmd() *cobra.Command {
	var f repo.SystemLogFilters
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Tail audit log entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				logs, err := r.ListSystemLogs(ctx, f)
				if err != nil {
					return err
				}
				return printJSONOrTable(logs)
			})
		},
	}
	cmd.Flags().IntVar(&f.Limit, "n", 20, "number of entries")
	cmd.Flags().StringVar(&f.Action, "action", "", "action filter")
	cmd.Flags().StringVar(&f.EntityType, "entity-type", "", "entity type filter")
	cmd.Flags().StringVar(&f.EntityID, "entity-id", "", "entity id filter")
	return cmd
}

func metricsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "Show dashboard metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				m, err := e.Metrics(ctx)
				if err != nil {
					return err
				}
				return printJSONOrTable(m)
			})
		},
	}
}

func serveCmd() *cobra.Command {
	var addr, basePath string
	var devAuth bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace := viper.GetString("workspace")
			if _, err := db.EnsureWorkspace(workspace); err != nil {
				return err
			}
			conn, err := db.Open(db.Config{Workspace: workspace})
			if err != nil {
				return err
			}
			defer conn.Close()
			if err := migrate.Migrate(conn); err != nil {
				return err
			}
			cfg, err := config.Load(workspace)
			if err != nil {
				return err
			}
			e := engine.New(conn, cfg)
			authCfg := server.AuthConfig{
				JWTSecret:          os.Getenv("SAFESHIFT_JWT_SECRET"),
				AllowDevUserHeader: devAuth,
			}
			if authCfg.JWTSecret == "" && !devAuth {
				return fmt.Errorf("SAFESHIFT_JWT_SECRET is required for bearer auth")
			}
			handler, err := server.New(server.Config{Engine: e, BasePath: basePath, Auth: authCfg})
			if err != nil {
				return err
			}
			srv := &http.Server{Addr: addr, Handler: handler}
			go func() {
				<-cmd.Context().Done()
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(ctx)
			}()
			fmt.Printf("Serving SafeShift API on http://%s%s (OpenAPI at /openapi.json, Swagger UI at /docs)\n", addr, basePath)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	cmd.Flags().StringVar(&basePath, "base-path", "/v0", "API base path")
	cmd.Flags().BoolVar(&devAuth, "dev-auth", false, "allow X-User-Id header auth (development only)")
	return cmd
}

// --- helpers ---

func withEngine(ctx context.Context, fn func(context.Context, engine.Engine) error) error {
	workspace := viper.GetString("workspace")
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := migrate.Migrate(conn); err != nil {
		return err
	}
	cfg, err := config.Load(workspace)
	if err != nil {
		return err
	}
	e := engine.New(conn, cfg)
	return fn(ctx, e)
}

func withRepo(ctx context.Context, fn func(context.Context, repo.Repo) error) error {
	workspace := viper.GetString("workspace")
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := migrate.Migrate(conn); err != nil {
		return err
	}
	return fn(ctx, repo.Repo{DB: conn})
}

func printJSONOrTable(v any) error {
	if viper.GetBool("json") {
		return printJSON(v)
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

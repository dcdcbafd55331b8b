package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net"
	"net/http"
	"testing"
	"time"

	"safeshift/internal/config"
	"safeshift/internal/db"
	"safeshift/internal/engine"
	"safeshift/internal/migrate"
)

type testServer struct {
	URL      string
	Admin    string
	Employee string
	client   *http.Client
	close    func()
}

func (s *testServer) Client() *http.Client { return s.client }
func (s *testServer) Close()               { s.close() }

func newTestServer(t *testing.T) (*testServer, func()) {
	t.Helper()
	workspace := t.TempDir()
	if _, err := db.EnsureWorkspace(workspace); err != nil {
		t.Fatalf("ensure workspace: %v", err)
	}
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	e := engine.New(conn, config.Default())
	e.Now = func() time.Time { return time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC) }
	e.Logger = log.New(io.Discard, "", 0)
	ctx := context.Background()
	dept, err := e.CreateDepartment(ctx, "Warehouse", "")
	if err != nil {
		t.Fatalf("seed department: %v", err)
	}
	admin, err := e.CreateEmployee(ctx, engine.EmployeeCreateOptions{
		FullName:     "Admin User",
		Email:        "admin@example.com",
		DepartmentID: dept.ID,
		Role:         "admin",
	})
	if err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	emp, err := e.CreateEmployee(ctx, engine.EmployeeCreateOptions{
		FullName:     "Dana Reyes",
		Email:        "dana@example.com",
		DepartmentID: dept.ID,
	})
	if err != nil {
		t.Fatalf("seed employee: %v", err)
	}
	handler, err := New(Config{
		Engine:   e,
		BasePath: "/v0",
		Auth: AuthConfig{
			AllowDevUserHeader: true,
			Logger:             log.New(io.Discard, "", 0),
		},
	})
	if err != nil {
		t.Fatalf("build handler: %v", err)
	}
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := &http.Server{Handler: handler}
	go srv.Serve(ln)
	testSrv := &testServer{
		URL:      "http://" + ln.Addr().String(),
		Admin:    admin.ID,
		Employee: emp.ID,
		client:   &http.Client{},
		close: func() {
			srv.Shutdown(context.Background())
			ln.Close()
			conn.Close()
		},
	}
	return testSrv, func() { testSrv.Close() }
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any, headers map[string]string) (*http.Response, []byte) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	res, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return res, data
}

func TestHealthNeedsNoAuth(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	res, data := doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/health", nil, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("health status %d: %s", res.StatusCode, string(data))
	}
}

func TestUnauthenticatedRejected(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	res, data := doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/departments", nil, nil)
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", res.StatusCode, string(data))
	}
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if envelope.Error.Code != "unauthorized" {
		t.Fatalf("code = %q", envelope.Error.Code)
	}
}

func TestSubmitReportAndFlagging(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	client := srv.Client()
	adminHdr := map[string]string{"X-User-Id": srv.Admin}
	empHdr := map[string]string{"X-User-Id": srv.Employee}

	res, data := doJSON(t, client, http.MethodPost, srv.URL+"/v0/rules", map[string]any{
		"keyword":        "fraud",
		"severity_level": "critical",
	}, adminHdr)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create rule: %d %s", res.StatusCode, string(data))
	}

	deptsRes, deptsBody := doJSON(t, client, http.MethodGet, srv.URL+"/v0/departments", nil, empHdr)
	if deptsRes.StatusCode != http.StatusOK {
		t.Fatalf("list departments: %d %s", deptsRes.StatusCode, string(deptsBody))
	}
	var depts []DepartmentResponse
	if err := json.Unmarshal(deptsBody, &depts); err != nil || len(depts) == 0 {
		t.Fatalf("unmarshal departments: %v (%s)", err, string(deptsBody))
	}

	repRes, repBody := doJSON(t, client, http.MethodPost, srv.URL+"/v0/reports", map[string]any{
		"department_id": depts[0].ID,
		"report_type":   "conduct",
		"severity":      "low",
		"title":         "Suspected fraud in inventory counts",
		"description":   "Counts have been adjusted after hours several times without matching paperwork.",
	}, empHdr)
	if repRes.StatusCode != http.StatusCreated {
		t.Fatalf("submit report: %d %s", repRes.StatusCode, string(repBody))
	}
	var rep ReportResponse
	if err := json.Unmarshal(repBody, &rep); err != nil {
		t.Fatalf("unmarshal report: %v", err)
	}
	if !rep.IsFlagged || rep.Severity != "critical" {
		t.Fatalf("expected critical keyword flag, got %+v", rep)
	}

	// flagged listing is admin only
	listRes, listBody := doJSON(t, client, http.MethodGet, srv.URL+"/v0/reports?flagged=true", nil, empHdr)
	if listRes.StatusCode != http.StatusForbidden {
		t.Fatalf("employee listed reports: %d %s", listRes.StatusCode, string(listBody))
	}
	listRes, listBody = doJSON(t, client, http.MethodGet, srv.URL+"/v0/reports?flagged=true", nil, adminHdr)
	if listRes.StatusCode != http.StatusOK {
		t.Fatalf("admin list reports: %d %s", listRes.StatusCode, string(listBody))
	}
	var reports []ReportResponse
	if err := json.Unmarshal(listBody, &reports); err != nil || len(reports) != 1 {
		t.Fatalf("expected one flagged report: %v (%s)", err, string(listBody))
	}

	statusRes, statusBody := doJSON(t, client, http.MethodPatch, srv.URL+"/v0/reports/"+rep.ID+"/status", map[string]any{
		"status": "in_progress",
	}, adminHdr)
	if statusRes.StatusCode != http.StatusOK {
		t.Fatalf("update status: %d %s", statusRes.StatusCode, string(statusBody))
	}
	var updated ReportResponse
	_ = json.Unmarshal(statusBody, &updated)
	if updated.Status != "in_progress" {
		t.Fatalf("status = %q", updated.Status)
	}
}

func TestWellnessEndpoints(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	client := srv.Client()
	adminHdr := map[string]string{"X-User-Id": srv.Admin}
	empHdr := map[string]string{"X-User-Id": srv.Employee}

	// heartbeat, then compute own wellness
	hbRes, hbBody := doJSON(t, client, http.MethodPost, srv.URL+"/v0/activity", map[string]any{}, empHdr)
	if hbRes.StatusCode != http.StatusCreated {
		t.Fatalf("heartbeat: %d %s", hbRes.StatusCode, string(hbBody))
	}

	wRes, wBody := doJSON(t, client, http.MethodGet, srv.URL+"/v0/wellness/employees/"+srv.Employee, nil, empHdr)
	if wRes.StatusCode != http.StatusOK {
		t.Fatalf("compute wellness: %d %s", wRes.StatusCode, string(wBody))
	}
	var score WellnessScoreResponse
	if err := json.Unmarshal(wBody, &score); err != nil {
		t.Fatalf("unmarshal score: %v", err)
	}
	if score.Score < 1 || score.Score > 10 {
		t.Fatalf("score %d outside [1,10]", score.Score)
	}

	// an employee cannot read a coworker's wellness
	otherRes, otherBody := doJSON(t, client, http.MethodGet, srv.URL+"/v0/wellness/employees/"+srv.Admin, nil, empHdr)
	if otherRes.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d %s", otherRes.StatusCode, string(otherBody))
	}

	deptsRes, deptsBody := doJSON(t, client, http.MethodGet, srv.URL+"/v0/departments", nil, adminHdr)
	if deptsRes.StatusCode != http.StatusOK {
		t.Fatalf("list departments: %d", deptsRes.StatusCode)
	}
	var depts []DepartmentResponse
	_ = json.Unmarshal(deptsBody, &depts)
	dRes, dBody := doJSON(t, client, http.MethodGet, srv.URL+"/v0/wellness/departments/"+depts[0].ID, nil, adminHdr)
	if dRes.StatusCode != http.StatusOK {
		t.Fatalf("department wellness: %d %s", dRes.StatusCode, string(dBody))
	}
	var dept DepartmentWellnessResponse
	if err := json.Unmarshal(dBody, &dept); err != nil {
		t.Fatalf("unmarshal department wellness: %v", err)
	}
	if dept.TotalEmployees != 2 {
		t.Fatalf("employees = %d, want 2", dept.TotalEmployees)
	}

	unknownRes, unknownBody := doJSON(t, client, http.MethodGet, srv.URL+"/v0/wellness/departments/nope", nil, adminHdr)
	if unknownRes.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d %s", unknownRes.StatusCode, string(unknownBody))
	}
}

func TestSystemLogsRecorded(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	client := srv.Client()
	adminHdr := map[string]string{"X-User-Id": srv.Admin}
	empHdr := map[string]string{"X-User-Id": srv.Employee}

	deptsRes, deptsBody := doJSON(t, client, http.MethodGet, srv.URL+"/v0/departments", nil, empHdr)
	if deptsRes.StatusCode != http.StatusOK {
		t.Fatalf("list departments: %d", deptsRes.StatusCode)
	}
	var depts []DepartmentResponse
	_ = json.Unmarshal(deptsBody, &depts)

	repRes, repBody := doJSON(t, client, http.MethodPost, srv.URL+"/v0/reports", map[string]any{
		"department_id": depts[0].ID,
		"report_type":   "safety",
		"title":         "Loose railing",
		"description":   "The railing on the mezzanine stairs is loose at the top bracket and moves under load.",
	}, empHdr)
	if repRes.StatusCode != http.StatusCreated {
		t.Fatalf("submit report: %d %s", repRes.StatusCode, string(repBody))
	}

	logsRes, logsBody := doJSON(t, client, http.MethodGet, srv.URL+"/v0/logs?action=report.submit", nil, adminHdr)
	if logsRes.StatusCode != http.StatusOK {
		t.Fatalf("list logs: %d %s", logsRes.StatusCode, string(logsBody))
	}
	var logs []SystemLogResponse
	if err := json.Unmarshal(logsBody, &logs); err != nil || len(logs) != 1 {
		t.Fatalf("expected one audit row: %v (%s)", err, string(logsBody))
	}
	if logs[0].UserID != srv.Employee {
		t.Fatalf("audit user = %q, want %q", logs[0].UserID, srv.Employee)
	}
}

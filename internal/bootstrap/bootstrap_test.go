package bootstrap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/qazaq-teachers/internal/config"
	"github.com/noah-isme/qazaq-teachers/internal/database"
	"github.com/noah-isme/qazaq-teachers/pkg/events"
)

const cookiePrefix = "qazaq_session"

type portal struct {
	app    *fiber.App
	cookie string
}

type portals struct {
	teacher portal
	student portal
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newPortals(t *testing.T) portals {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.ConnectSQLite(fmt.Sprintf("file:portal_%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, zerolog.Nop()))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := config.Config{
		AppName:           "Qazaq Teachers",
		AppEnv:            "test",
		SessionSecret:     "integration-secret",
		SessionTTL:        time.Hour,
		SessionCookieName: cookiePrefix,
		UploadMaxMB:       1,
		LoginRateLimit:    100,
	}
	infra := Infra{DB: db, Redis: client, Publisher: events.Nop{}}

	return portals{
		teacher: portal{app: NewTeacherApp(cfg, infra, zerolog.Nop()), cookie: SessionCookieName(cfg, "teacher")},
		student: portal{app: NewStudentApp(cfg, infra, zerolog.Nop()), cookie: SessionCookieName(cfg, "student")},
	}
}

func doJSON(t *testing.T, p portal, method, path, session string, body interface{}) (*http.Response, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if session != "" {
		req.AddCookie(&http.Cookie{Name: p.cookie, Value: session})
	}

	return send(t, p, req)
}

func send(t *testing.T, p portal, req *http.Request) (*http.Response, envelope) {
	t.Helper()

	resp, err := p.app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body = io.NopCloser(bytes.NewReader(raw))

	var payload envelope
	if strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(raw, &payload), string(raw))
	}
	return resp, payload
}

func sessionCookie(t *testing.T, p portal, resp *http.Response) string {
	t.Helper()
	for _, cookie := range resp.Cookies() {
		if cookie.Name == p.cookie && cookie.Value != "" {
			return cookie.Value
		}
	}
	t.Fatalf("response carried no %s cookie", p.cookie)
	return ""
}

func decodeID(t *testing.T, raw json.RawMessage) uint {
	t.Helper()
	var body struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	require.NotZero(t, body.ID)
	return body.ID
}

type seeded struct {
	teacherSession string
	studentSession string
	studentID      uint
	classID        uint
}

// seedRoster registers a teacher, one class and one student with a login.
func seedRoster(t *testing.T, p portals) seeded {
	t.Helper()

	resp, body := doJSON(t, p.teacher, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username":  "aigul",
		"password":  "teach-pass",
		"full_name": "Aigul Nurlanovna",
		"school":    "School 12",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body.Message)
	teacherSession := sessionCookie(t, p.teacher, resp)

	resp, body = doJSON(t, p.teacher, http.MethodPost, "/api/v1/classes", teacherSession, map[string]string{
		"name":    "7A",
		"subject": "Mathematics",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body.Message)
	classID := decodeID(t, body.Data)

	resp, body = doJSON(t, p.teacher, http.MethodPost, fmt.Sprintf("/api/v1/classes/%d/students", classID), teacherSession, map[string]interface{}{
		"full_name":    "Dana Serik",
		"student_code": "S-001",
		"grade_points": "8",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body.Message)
	studentID := decodeID(t, body.Data)

	resp, body = doJSON(t, p.teacher, http.MethodPost, fmt.Sprintf("/api/v1/students/%d/login", studentID), teacherSession, map[string]string{
		"username": "dana",
		"password": "dana-pass",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body.Message)

	resp, body = doJSON(t, p.student, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "dana",
		"password": "dana-pass",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, body.Message)

	return seeded{
		teacherSession: teacherSession,
		studentSession: sessionCookie(t, p.student, resp),
		studentID:      studentID,
		classID:        classID,
	}
}

func TestPortalsRejectRequestsWithoutSession(t *testing.T) {
	p := newPortals(t)

	resp, body := doJSON(t, p.teacher, http.MethodGet, "/api/v1/classes", "", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.False(t, body.Success)

	resp, _ = doJSON(t, p.student, http.MethodGet, "/api/v1/assignments", "", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, p.student, http.MethodGet, "/api/v1/assignments", "not-a-token", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPortalSessionsAreRoleScoped(t *testing.T) {
	p := newPortals(t)
	roster := seedRoster(t, p)

	resp, _ := doJSON(t, p.student, http.MethodGet, "/api/v1/assignments", roster.teacherSession, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = doJSON(t, p.teacher, http.MethodGet, "/api/v1/classes", roster.studentSession, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestTeacherLoginRejectsBadPassword(t *testing.T) {
	p := newPortals(t)
	seedRoster(t, p)

	resp, body := doJSON(t, p.teacher, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "aigul",
		"password": "wrong-pass",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.False(t, body.Success)

	resp, _ = doJSON(t, p.teacher, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "aigul",
		"password": "teach-pass",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, sessionCookie(t, p.teacher, resp))
}

func TestLogoutRevokesSession(t *testing.T) {
	p := newPortals(t)
	roster := seedRoster(t, p)

	resp, body := doJSON(t, p.student, http.MethodGet, "/api/v1/me", roster.studentSession, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var profile struct {
		ID        uint   `json:"id"`
		ClassName string `json:"class_name"`
		Subject   string `json:"subject"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &profile))
	require.Equal(t, roster.studentID, profile.ID)
	require.Equal(t, "7A", profile.ClassName)
	require.Equal(t, "Mathematics", profile.Subject)

	resp, _ = doJSON(t, p.student, http.MethodPost, "/api/v1/auth/logout", roster.studentSession, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, p.student, http.MethodGet, "/api/v1/me", roster.studentSession, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRemovingStudentLoginEndsLiveSessions(t *testing.T) {
	p := newPortals(t)
	roster := seedRoster(t, p)

	resp, _ := doJSON(t, p.student, http.MethodGet, "/api/v1/me", roster.studentSession, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := doJSON(t, p.teacher, http.MethodDelete, fmt.Sprintf("/api/v1/students/%d/login", roster.studentID), roster.teacherSession, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, body.Message)

	resp, _ = doJSON(t, p.student, http.MethodGet, "/api/v1/me", roster.studentSession, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, p.teacher, http.MethodGet, "/api/v1/classes", roster.teacherSession, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestPortalsUseSeparateSessionCookies(t *testing.T) {
	p := newPortals(t)
	roster := seedRoster(t, p)

	require.Equal(t, cookiePrefix+"_teacher", p.teacher.cookie)
	require.Equal(t, cookiePrefix+"_student", p.student.cookie)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.AddCookie(&http.Cookie{Name: p.teacher.cookie, Value: roster.studentSession})
	resp, _ := send(t, p.student, req)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.AddCookie(&http.Cookie{Name: p.teacher.cookie, Value: roster.teacherSession})
	req.AddCookie(&http.Cookie{Name: p.student.cookie, Value: roster.studentSession})
	resp, _ = send(t, p.student, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAssignmentRoundTripAcrossPortals(t *testing.T) {
	p := newPortals(t)
	roster := seedRoster(t, p)

	var form bytes.Buffer
	writer := multipart.NewWriter(&form)
	require.NoError(t, writer.WriteField("student_id", fmt.Sprint(roster.studentID)))
	require.NoError(t, writer.WriteField("task_name", "Fractions"))
	require.NoError(t, writer.WriteField("task_description", "Exercises 1-10"))
	require.NoError(t, writer.WriteField("tags", "fractions, homework"))
	part, err := writer.CreateFormFile("file", "fractions.txt")
	require.NoError(t, err)
	taskFile := []byte("solve every exercise on page 42")
	_, err = part.Write(taskFile)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/assignments", &form)
	req.Header.Set(fiber.HeaderContentType, writer.FormDataContentType())
	req.AddCookie(&http.Cookie{Name: p.teacher.cookie, Value: roster.teacherSession})
	resp, body := send(t, p.teacher, req)
	require.Equal(t, http.StatusCreated, resp.StatusCode, body.Message)
	assignmentID := decodeID(t, body.Data)

	var created struct {
		Status      string   `json:"status"`
		Points      int      `json:"points"`
		HasTaskFile bool     `json:"has_task_file"`
		StudentName string   `json:"student_name"`
		ClassName   string   `json:"class_name"`
		Tags        []string `json:"tags"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &created))
	require.Equal(t, "Assigned", created.Status)
	require.Equal(t, 10, created.Points)
	require.True(t, created.HasTaskFile)
	require.Equal(t, "Dana Serik", created.StudentName)
	require.Equal(t, "7A", created.ClassName)
	require.Equal(t, []string{"fractions", "homework"}, created.Tags)

	resp, _ = doJSON(t, p.student, http.MethodGet, fmt.Sprintf("/api/v1/assignments/%d/files/task", assignmentID), roster.studentSession, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "attachment")
	downloaded, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, taskFile, downloaded)

	resp, body = doJSON(t, p.student, http.MethodPost, fmt.Sprintf("/api/v1/assignments/%d/answer", assignmentID), roster.studentSession, map[string]string{
		"answer_text": "1/2 + 1/4 = 3/4",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, body.Message)

	resp, body = doJSON(t, p.teacher, http.MethodPatch, fmt.Sprintf("/api/v1/assignments/%d/review", assignmentID), roster.teacherSession, map[string]interface{}{
		"status":   "Reviewed",
		"feedback": "Well done",
		"score":    25,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, body.Message)

	var reviewed struct {
		Status          string `json:"status"`
		Score           *int   `json:"score"`
		TeacherFeedback string `json:"teacher_feedback"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &reviewed))
	require.Equal(t, "Reviewed", reviewed.Status)
	require.NotNil(t, reviewed.Score)
	require.Equal(t, 10, *reviewed.Score)
	require.Equal(t, "Well done", reviewed.TeacherFeedback)

	resp, body = doJSON(t, p.student, http.MethodPost, fmt.Sprintf("/api/v1/assignments/%d/answer", assignmentID), roster.studentSession, map[string]string{
		"answer_text": "second attempt",
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode, body.Message)

	resp, body = doJSON(t, p.student, http.MethodGet, "/api/v1/grades", roster.studentSession, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, body.Message)

	var grades struct {
		GradePoints   int     `json:"grade_points"`
		ReviewedCount int     `json:"reviewed_count"`
		AverageScore  float64 `json:"average_score"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &grades))
	require.Equal(t, 8, grades.GradePoints)
	require.Equal(t, 1, grades.ReviewedCount)
	require.InDelta(t, 10.0, grades.AverageScore, 0.001)

	resp, body = doJSON(t, p.teacher, http.MethodGet, "/api/v1/dashboard", roster.teacherSession, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, body.Message)

	var dashboard struct {
		Counts struct {
			Classes  int64 `json:"classes"`
			Students int64 `json:"students"`
		} `json:"counts"`
		Statistics struct {
			Total    int64 `json:"total"`
			Reviewed int64 `json:"reviewed"`
		} `json:"statistics"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &dashboard))
	require.Equal(t, int64(1), dashboard.Counts.Classes)
	require.Equal(t, int64(1), dashboard.Counts.Students)
	require.Equal(t, int64(1), dashboard.Statistics.Total)
	require.Equal(t, int64(1), dashboard.Statistics.Reviewed)
}

func TestAssignmentListMatchesContract(t *testing.T) {
	p := newPortals(t)
	roster := seedRoster(t, p)

	for _, name := range []string{"Essay", "Geometry"} {
		resp, body := doJSON(t, p.teacher, http.MethodPost, "/api/v1/assignments", roster.teacherSession, map[string]interface{}{
			"student_id": roster.studentID,
			"task_name":  name,
			"due_date":   "2020-01-15",
			"difficulty": "Hard",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode, body.Message)
	}

	schemaPath, err := filepath.Abs(filepath.Join("testdata", "assignment_list.schema.json"))
	require.NoError(t, err)
	schema, err := jsonschema.NewCompiler().Compile("file://" + schemaPath)
	require.NoError(t, err)

	for _, app := range []struct {
		name    string
		portal  portal
		session string
	}{
		{"teacher", p.teacher, roster.teacherSession},
		{"student", p.student, roster.studentSession},
	} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/assignments", nil)
		req.AddCookie(&http.Cookie{Name: app.portal.cookie, Value: app.session})
		resp, err := app.portal.app.Test(req, -1)
		require.NoError(t, err, app.name)
		require.Equal(t, http.StatusOK, resp.StatusCode, app.name)

		var document interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&document), app.name)
		require.NoError(t, schema.Validate(document), app.name)

		items := document.(map[string]interface{})["data"].([]interface{})
		require.Len(t, items, 2, app.name)
		for _, item := range items {
			require.Equal(t, "Late", item.(map[string]interface{})["display_status"], app.name)
		}
	}
}

func TestClassDeleteCascadesThroughPortal(t *testing.T) {
	p := newPortals(t)
	roster := seedRoster(t, p)

	resp, body := doJSON(t, p.teacher, http.MethodDelete, fmt.Sprintf("/api/v1/classes/%d", roster.classID), roster.teacherSession, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, body.Message)

	resp, _ = doJSON(t, p.teacher, http.MethodGet, fmt.Sprintf("/api/v1/classes/%d", roster.classID), roster.teacherSession, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, p.student, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "dana",
		"password": "dana-pass",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestStudentPerformanceRoute(t *testing.T) {
	p := newPortals(t)
	roster := seedRoster(t, p)

	resp, body := doJSON(t, p.teacher, http.MethodGet, "/api/v1/students/performance", roster.teacherSession, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, body.Message)

	var overview struct {
		TotalStudents     int            `json:"total_students"`
		AveragePoints     float64        `json:"average_points"`
		GradeDistribution map[string]int `json:"grade_distribution"`
		Classes           []struct {
			ClassName     string  `json:"class_name"`
			AveragePoints float64 `json:"average_points"`
		} `json:"classes"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &overview))
	require.Equal(t, 1, overview.TotalStudents)
	require.InDelta(t, 8.0, overview.AveragePoints, 0.001)
	require.Equal(t, 1, overview.GradeDistribution["B"])
	require.Len(t, overview.Classes, 1)
	require.Equal(t, "7A", overview.Classes[0].ClassName)

	resp, _ = doJSON(t, p.teacher, http.MethodGet, fmt.Sprintf("/api/v1/students/performance?class_id=%d", roster.classID), roster.teacherSession, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, p.teacher, http.MethodGet, "/api/v1/students/performance?class_id=abc", roster.teacherSession, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, p.teacher, http.MethodGet, "/api/v1/students/performance?class_id=9999", roster.teacherSession, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, p.student, http.MethodGet, "/api/v1/students/performance", roster.studentSession, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealthReportsDependencies(t *testing.T) {
	p := newPortals(t)

	resp, body := doJSON(t, p.student, http.MethodGet, "/api/v1/health", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Qazaq Teachers", resp.Header.Get("X-Application"))

	var health struct {
		Status string            `json:"status"`
		Portal string            `json:"portal"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &health))
	require.Equal(t, "ok", health.Status)
	require.Equal(t, "student", health.Portal)
	require.Equal(t, map[string]string{"database": "ok", "redis": "ok"}, health.Checks)
}

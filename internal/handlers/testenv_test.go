package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/guillecolu/machinetrack-api/internal/constants"
	"github.com/guillecolu/machinetrack-api/internal/database"
	"github.com/guillecolu/machinetrack-api/internal/repository"
	"github.com/guillecolu/machinetrack-api/internal/services"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testNow = time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)

// openTestDB returns an in-memory database with every model migrated.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.Models()...))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return db
}

// newTestServices wires the services over db with the clock fixed at testNow.
func newTestServices(db *gorm.DB, writer services.ReportWriter) Services {
	taskRepo := repository.NewTaskRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	memberRepo := repository.NewTeamMemberRepository(db)
	reportRepo := repository.NewReportRepository(db)

	recalculator := services.NewRecalculator(taskRepo, projectRepo, time.UTC)
	recalculator.SetNow(func() time.Time { return testNow })

	return Services{
		Projects: services.NewProjectService(projectRepo, recalculator),
		Tasks:    services.NewTaskService(taskRepo, projectRepo, memberRepo, recalculator),
		Team:     services.NewTeamService(memberRepo, taskRepo, recalculator),
		Reports:  services.NewReportService(projectRepo, taskRepo, memberRepo, reportRepo, writer, recalculator),
	}
}

// newTestRouter mounts every route behind a cookie session store.
func newTestRouter(svc Services) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	store := cookie.NewStore([]byte("secret"))
	r.Use(sessions.Sessions(constants.SessionCookieName, store))
	RegisterRoutes(r, svc)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, url string, payload any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if payload != nil {
		body, err := json.Marshal(payload)
		require.NoError(t, err)
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

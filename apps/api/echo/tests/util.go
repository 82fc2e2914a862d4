package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"

	. "github.com/terakoya-app/terakoya/apps/api/echo"
	"github.com/terakoya-app/terakoya/core"
	"github.com/terakoya-app/terakoya/core/audit"
	"github.com/terakoya-app/terakoya/core/identity"
	"github.com/terakoya-app/terakoya/core/session"
	authsvc "github.com/terakoya-app/terakoya/services/auth"
	billingsvc "github.com/terakoya-app/terakoya/services/billing"
	emailsvc "github.com/terakoya-app/terakoya/services/email"
	metricsvc "github.com/terakoya-app/terakoya/services/metrics"
	reportsvc "github.com/terakoya-app/terakoya/services/report"
	inmemdb "github.com/terakoya-app/terakoya/storage/database/inmem"
)

// seeded accounts, one per scenario
const (
	guardianEmail = "hana@test.jp"
	guardianPwd   = "guardian-pwd"
	guardianID    = "g1"

	teacherEmail = "ken@test.jp" // onboarding not finished
	teacherPwd   = "teacher-pwd"
	teacherID    = "t1"

	senseiEmail = "yui@test.jp" // onboarding finished
	senseiPwd   = "sensei-pwd"
	senseiID    = "t2"

	adminEmail = "aki@test.jp"
	adminPwd   = "admin-pwd"
	adminID    = "a1"

	targetEmail = "taro@test.jp" // mutation target
	targetPwd   = "target-pwd"
	targetID    = "u123"

	suspendedEmail = "mio@test.jp"
	suspendedPwd   = "suspended-pwd"
	suspendedID    = "s1"
)

type userStore interface {
	identity.Repository
	identity.AdminDirectory
	authsvc.AccountStore
	Seed(users ...inmemdb.User)
	MutationCount() int
	FailWith(err error)
}

type auditStore interface {
	audit.Repository
	Entries() []audit.Entry
	FailWith(err error)
}

type testEnv struct {
	app      Server
	conf     *core.Config
	users    userStore
	auditLog auditStore
	auditRec *audit.Recorder
	backend  *authsvc.JWTBackend
}

type nopLogger struct{}

func (nopLogger) Enable(bool)                        {}
func (nopLogger) Debug(string, ...interface{})       {}
func (nopLogger) Info(string, ...interface{})        {}
func (nopLogger) Warn(string, ...interface{})        {}
func (nopLogger) Error(string, ...interface{})       {}
func (nopLogger) Fatal(msg string, _ ...interface{}) { panic(msg) }

func testConf() *core.Config {
	return &core.Config{
		AppName:   "Terakoya",
		Env:       "TEST",
		TestMode:  true,
		SecretKey: "test-secret-key",
		Server: core.ServerConfig{
			AccessCookieName:          "tk_access",
			RefreshCookieName:         "tk_refresh",
			JWTExpirationDelta:        1 * time.Hour,
			JWTRefreshExpirationDelta: 7 * 24 * time.Hour,
		},
		DefaultLocale:           "ja",
		LocaleCookieName:        "locale",
		TeacherDashboardEnabled: true,
		DefaultFromEmail:        "noreply@test.jp",
	}
}

func setup(t *testing.T, confMut ...func(*core.Config)) *testEnv {
	conf := testConf()
	for _, mut := range confMut {
		mut(conf)
	}

	users := inmemdb.NewUserRepository()
	users.Seed(seedUsers(t)...)

	auditLog := inmemdb.NewAuditRepository()
	logger := nopLogger{}
	metrics := metricsvc.NewCollector(prometheus.NewRegistry())
	backend := authsvc.NewJWTBackend(users, conf)
	auditRec := audit.NewRecorder(auditLog, logger, metrics)

	app := NewServer(&Options{
		Conf:           conf,
		DisableReqLogs: true,
		Logger:         logger,
		Metrics:        metrics,
		Refresher:      session.NewRefresher(backend, logger),
		AuthBackend:    backend,
		Identities:     users,
		AdminDir:       users,
		Audit:          auditRec,
		EmailSvc:       emailsvc.NewConsoleServiceMock(conf),
		Billing:        billingsvc.NewDummyPortal(),
		Reports:        reportsvc.NewDummyGenerator(),
	})

	return &testEnv{
		app:      app,
		conf:     conf,
		users:    users,
		auditLog: auditLog,
		auditRec: auditRec,
		backend:  backend,
	}
}

func seedUsers(t *testing.T) []inmemdb.User {
	hash := func(pwd string) []byte {
		h, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.MinCost)
		if err != nil {
			t.Fatalf("bcrypt.GenerateFromPassword() failed: %v", err)
		}
		return h
	}
	return []inmemdb.User{
		{
			Account:     authsvc.Account{ID: guardianID, Email: guardianEmail, PasswordHash: hash(guardianPwd), Role: identity.RoleGuardian},
			DisplayName: "Hana",
		},
		{
			Account:     authsvc.Account{ID: teacherID, Email: teacherEmail, PasswordHash: hash(teacherPwd), Role: identity.RoleTeacher},
			DisplayName: "Ken",
		},
		{
			Account:     authsvc.Account{ID: senseiID, Email: senseiEmail, PasswordHash: hash(senseiPwd), Role: identity.RoleTeacher},
			DisplayName: "Yui",
			Subjects:    []string{"math"},
			Grades:      []string{"5"},
		},
		{
			Account:     authsvc.Account{ID: adminID, Email: adminEmail, PasswordHash: hash(adminPwd), Role: identity.RoleAdmin},
			DisplayName: "Aki",
		},
		{
			Account:     authsvc.Account{ID: targetID, Email: targetEmail, PasswordHash: hash(targetPwd), Role: identity.RoleGuardian},
			DisplayName: "Taro",
		},
		{
			Account:     authsvc.Account{ID: suspendedID, Email: suspendedEmail, PasswordHash: hash(suspendedPwd), Role: identity.RoleGuardian, Suspended: true},
			DisplayName: "Mio",
		},
	}
}

// signIn mints a fresh cookie pair for a seeded account.
func (env *testEnv) signIn(t *testing.T, email, pwd string) session.TokenPair {
	pair, _, err := env.backend.SignIn(context.Background(), email, pwd)
	if err != nil {
		t.Fatalf("signIn(%s) failed: %v", email, err)
	}
	return pair
}

// expiredPair mints a pair whose access token is already expired but whose
// refresh token is still good, to exercise silent rotation.
func (env *testEnv) expiredPair(t *testing.T, email, pwd string) session.TokenPair {
	conf := *env.conf
	conf.Server.JWTExpirationDelta = -1 * time.Hour
	// a slightly different refresh window keeps the rotated refresh token
	// from serializing identically when rotation lands in the same second
	conf.Server.JWTRefreshExpirationDelta -= time.Second
	backend := authsvc.NewJWTBackend(env.users, &conf)

	pair, _, err := backend.SignIn(context.Background(), email, pwd)
	if err != nil {
		t.Fatalf("expiredPair(%s) failed: %v", email, err)
	}
	return pair
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name       string
	method     string
	path       string
	body       []byte
	pair       session.TokenPair
	locale     string // locale cookie value
	acceptLang string
	wantCode   int
	wantLoc    string // expected Location header, redirects only
	wantData   []byte
	extra      interface{}
}

func (env *testEnv) do(tt httpTest) *httptest.ResponseRecorder {
	method := tt.method
	if method == "" {
		method = http.MethodGet
	}
	var body bytes.Buffer
	if len(tt.body) > 0 {
		body.Write(tt.body)
	}
	req := httptest.NewRequest(method, tt.path, &body)
	req.Header.Set("Content-Type", "application/json")
	if tt.acceptLang != "" {
		req.Header.Set("Accept-Language", tt.acceptLang)
	}
	if tt.locale != "" {
		req.AddCookie(&http.Cookie{Name: env.conf.LocaleCookieName, Value: tt.locale})
	}
	if tt.pair.Access != "" {
		req.AddCookie(&http.Cookie{Name: env.conf.Server.AccessCookieName, Value: tt.pair.Access})
	}
	if tt.pair.Refresh != "" {
		req.AddCookie(&http.Cookie{Name: env.conf.Server.RefreshCookieName, Value: tt.pair.Refresh})
	}

	rec := httptest.NewRecorder()
	env.app.ServeHTTP(rec, req)
	return rec
}

// sessionCookies returns the session cookies set on the response, keyed by name.
func (env *testEnv) sessionCookies(rec *httptest.ResponseRecorder) map[string]*http.Cookie {
	out := make(map[string]*http.Cookie)
	for _, cookie := range rec.Result().Cookies() {
		switch cookie.Name {
		case env.conf.Server.AccessCookieName, env.conf.Server.RefreshCookieName:
			out[cookie.Name] = cookie
		}
	}
	return out
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	l1, ok1 := j1.([]interface{})
	l2, ok2 := j2.([]interface{})
	if !ok1 || !ok2 {
		return false, nil
	}
	return assert.ElementsMatch(t, l1, l2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantLoc != "" {
		if loc := rec.Header().Get("Location"); loc != tt.wantLoc {
			t.Errorf("failed! Location = %v; wantLoc %v", loc, tt.wantLoc)
		}
		return
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

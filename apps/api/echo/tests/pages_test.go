package tests

import (
	"context"
	"net/http"
	"testing"

	"github.com/terakoya-app/terakoya/core"
	"github.com/terakoya-app/terakoya/core/session"
)

func Test_pageAuthorization(t *testing.T) {
	env := setup(t)

	var (
		guardianPair = env.signIn(t, guardianEmail, guardianPwd)
		teacherPair  = env.signIn(t, teacherEmail, teacherPwd)
		senseiPair   = env.signIn(t, senseiEmail, senseiPwd)
		adminPair    = env.signIn(t, adminEmail, adminPwd)
	)

	// a session minted before suspension must stop working immediately
	revokedPair := env.signIn(t, targetEmail, targetPwd)
	if err := env.users.SuspendUser(context.Background(), targetID); err != nil {
		t.Fatalf("SuspendUser() failed: %v", err)
	}

	tests := []httpTest{
		{name: "anonymous is sent to sign-in", path: "/guardian/dashboard", wantCode: http.StatusFound, wantLoc: "/login"},
		{name: "anonymous keeps its locale", path: "/fr/guardian/dashboard", wantCode: http.StatusFound, wantLoc: "/fr/login"},
		{name: "guardian reaches own tree", path: "/guardian/dashboard", pair: guardianPair, wantCode: http.StatusOK},
		{name: "guardian bounced off teacher tree", path: "/teacher/dashboard", pair: guardianPair, wantCode: http.StatusFound, wantLoc: "/guardian"},
		{name: "guardian bounced off admin tree", path: "/admin", pair: guardianPair, wantCode: http.StatusFound, wantLoc: "/guardian"},
		{name: "teacher bounced off admin tree", path: "/admin/users", pair: senseiPair, wantCode: http.StatusFound, wantLoc: "/teacher"},
		{name: "unfinished teacher sent to setup", path: "/teacher/dashboard", pair: teacherPair, wantCode: http.StatusFound, wantLoc: "/teacher/setup"},
		{name: "onboarded teacher reaches dashboard", path: "/teacher/dashboard", pair: senseiPair, wantCode: http.StatusOK},
		{name: "admin reaches user management", path: "/admin/users", pair: adminPair, wantCode: http.StatusOK},
		{name: "suspended session is anonymous", path: "/guardian/dashboard", pair: revokedPair, wantCode: http.StatusFound, wantLoc: "/login"},
		{name: "authenticated sign-in goes home", path: "/login", pair: guardianPair, wantCode: http.StatusFound, wantLoc: "/guardian"},
		{name: "authenticated sign-in keeps locale", path: "/fr/login", pair: adminPair, wantCode: http.StatusFound, wantLoc: "/fr/admin"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, env.do(tt))
		})
	}
}

// With the feature switch off the whole teacher tree must 404, for everyone:
// its existence must not leak through redirects.
func Test_teacherTreeGate(t *testing.T) {
	env := setup(t, func(conf *core.Config) { conf.TeacherDashboardEnabled = false })

	senseiPair := env.signIn(t, senseiEmail, senseiPwd)

	tests := []httpTest{
		{name: "anonymous", path: "/teacher/dashboard", wantCode: http.StatusNotFound},
		{name: "teacher", path: "/teacher/dashboard", pair: senseiPair, wantCode: http.StatusNotFound},
		{name: "teacher root", path: "/teacher", pair: senseiPair, wantCode: http.StatusNotFound},
		{name: "setup page", path: "/teacher/setup", pair: session.TokenPair{}, wantCode: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, env.do(tt))
		})
	}
}

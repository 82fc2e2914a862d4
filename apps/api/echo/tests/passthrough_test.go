package tests

import (
	"net/http"
	"testing"

	. "github.com/terakoya-app/terakoya/apps/api/echo"
	"github.com/terakoya-app/terakoya/core"
)

func Test_billingPortal(t *testing.T) {
	env := setup(t)

	var (
		guardianPair = env.signIn(t, guardianEmail, guardianPwd)
		adminPair    = env.signIn(t, adminEmail, adminPwd)
	)

	tests := []httpTest{
		{
			name: "anonymous", method: http.MethodPost, path: "/api/billing/portal",
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, httpErr{Error: "user not authenticated"}),
		},
		{
			name: "guardian gets a portal session", method: http.MethodPost, path: "/api/billing/portal",
			pair:     guardianPair,
			wantCode: http.StatusOK,
			wantData: marchallObj(t, PortalResponse{URL: "https://billing.example.com/portal/" + guardianID}),
		},
		{
			name: "admin gets a portal session", method: http.MethodPost, path: "/api/billing/portal",
			pair:     adminPair,
			wantCode: http.StatusOK,
			wantData: marchallObj(t, PortalResponse{URL: "https://billing.example.com/portal/" + adminID}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, env.do(tt))
		})
	}
}

func Test_generateReport(t *testing.T) {
	env := setup(t)

	var (
		guardianPair = env.signIn(t, guardianEmail, guardianPwd)
		adminPair    = env.signIn(t, adminEmail, adminPwd)
	)

	tests := []httpTest{
		{
			name: "anonymous", method: http.MethodPost, path: "/api/reports/generate",
			body:     []byte(`{"student_id": "st9"}`),
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, httpErr{Error: "user not authenticated"}),
		},
		{
			name: "admin has no report access", method: http.MethodPost, path: "/api/reports/generate",
			pair: adminPair, body: []byte(`{"student_id": "st9"}`),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "missing student", method: http.MethodPost, path: "/api/reports/generate",
			pair: guardianPair, body: []byte(`{}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"student_id": "this field is required"}),
		},
		{
			name: "guardian generates a report", method: http.MethodPost, path: "/api/reports/generate",
			pair: guardianPair, body: []byte(`{"student_id": "st9"}`),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, core.Report{StudentID: "st9", Content: "report pending"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, env.do(tt))
		})
	}
}

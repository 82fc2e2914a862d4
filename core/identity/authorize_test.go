package identity

import "testing"

func TestAuthorize(t *testing.T) {
	guardian := &Identity{ID: "g1", Role: RoleGuardian}
	teacher := &Identity{ID: "t1", Role: RoleTeacher}
	admin := &Identity{ID: "a1", Role: RoleAdmin}
	suspended := &Identity{ID: "g2", Role: RoleGuardian, Suspended: true}

	tests := []struct {
		name    string
		id      *Identity
		allowed []Role
		want    Decision
	}{
		{name: "nil identity", id: nil, allowed: []Role{RoleGuardian}, want: DecisionUnauthenticated},
		{name: "nil identity empty set", id: nil, allowed: nil, want: DecisionUnauthenticated},
		{name: "empty id", id: &Identity{}, allowed: []Role{RoleAdmin}, want: DecisionUnauthenticated},
		{name: "suspended", id: suspended, allowed: []Role{RoleGuardian}, want: DecisionUnauthenticated},
		{name: "role in set", id: guardian, allowed: []Role{RoleGuardian}, want: DecisionAuthorized},
		{name: "role in wider set", id: teacher, allowed: []Role{RoleTeacher, RoleAdmin}, want: DecisionAuthorized},
		{name: "role not in set", id: guardian, allowed: []Role{RoleTeacher}, want: DecisionWrongRole},
		{name: "admin not implicit", id: admin, allowed: []Role{RoleGuardian, RoleTeacher}, want: DecisionWrongRole},
		{name: "empty allowed set", id: guardian, allowed: nil, want: DecisionWrongRole},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Authorize(tt.id, tt.allowed...); got != tt.want {
				t.Errorf("Authorize() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTeacherSetupComplete(t *testing.T) {
	tests := []struct {
		name string
		id   Identity
		want bool
	}{
		{name: "complete", id: Identity{DisplayName: "T", Subjects: []string{"math"}, Grades: []string{"g5"}}, want: true},
		{name: "no subjects", id: Identity{DisplayName: "T", Grades: []string{"g5"}}},
		{name: "no grades", id: Identity{DisplayName: "T", Subjects: []string{"math"}}},
		{name: "no display name", id: Identity{Subjects: []string{"math"}, Grades: []string{"g5"}}},
		{name: "empty", id: Identity{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.id.TeacherSetupComplete(); got != tt.want {
				t.Errorf("TeacherSetupComplete() = %v, want %v", got, tt.want)
			}
		})
	}
}

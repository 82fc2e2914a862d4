// Package reportsvc holds stand-ins for the hosted AI report generator.
package reportsvc

import (
	"context"

	"github.com/terakoya-app/terakoya/core"
)

type dummyGenerator struct{}

var _ core.ReportGenerator = (*dummyGenerator)(nil)

func NewDummyGenerator() *dummyGenerator {
	return &dummyGenerator{}
}

func (g *dummyGenerator) Generate(_ context.Context, studentID string) (core.Report, error) {
	return core.Report{StudentID: studentID, Content: "report pending"}, nil
}

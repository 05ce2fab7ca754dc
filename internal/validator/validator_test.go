package validator

import (
	"testing"

	"github.com/rareminds/testportal/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestStruct_ImportRow(t *testing.T) {
	valid := model.ImportQuestionRow{
		ID:         1,
		CourseCode: "SGCEV",
		Text:       "Which solvent is greenest?",
		Options:    []string{"Water", "Benzene"},
		Answer:     "Water",
	}
	assert.Nil(t, Struct(valid))

	invalid := valid
	invalid.Options = []string{"Water"}
	invalid.CourseCode = ""
	fields := Struct(invalid)
	assert.Contains(t, fields, "Options")
	assert.Contains(t, fields, "CourseCode")
}

func TestStruct_CreateStudent(t *testing.T) {
	fields := Struct(model.CreateStudentRequest{
		NMID:     "NM1001",
		Email:    "not-an-email",
		Username: "Asha",
		Semester: "5",
		Password: "secret123",
	})
	assert.Len(t, fields, 1)
	assert.Contains(t, fields["Email"], "valid email")
}

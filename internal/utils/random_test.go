package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRandomShiftTemplateIsValid(t *testing.T) {
	for i := 0; i < 200; i++ {
		st := GenerateRandomShiftTemplate()
		require.NoError(t, ValidateShiftTemplate(st), "%+v", st)
		require.NotEmpty(t, st.Requirements)
		assert.Equal(t, st.OpenTime, st.Requirements[0].StartTime)
		assert.Equal(t, st.CloseTime, st.Requirements[len(st.Requirements)-1].EndTime)
	}
}

func TestGenerateRandomUser(t *testing.T) {
	for i := 0; i < 50; i++ {
		u := GenerateRandomUser("example.com")
		assert.True(t, strings.HasSuffix(u.Email, "@example.com"))
		assert.True(t, strings.HasPrefix(u.Email, u.Username))
		assert.True(t, u.IsActive)
		if u.Tags.WorkerTag || u.Tags.ManagerTag {
			assert.True(t, u.Tags.IsStaff)
		}
	}
}

package attendance_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classtrack/classtrack/core"
	"github.com/classtrack/classtrack/core/attendance"
	"github.com/classtrack/classtrack/core/testutil"
	"github.com/classtrack/classtrack/core/user"
)

func TestNewRecordValidate(t *testing.T) {
	ctx := context.Background()
	svcs := testutil.NewServices(t)
	teacher := testutil.CreateUser(t, svcs.UserRepo, "Grace", "", "grace@school.test", "", user.RoleTeacher, true)
	student := testutil.CreateUser(t, svcs.UserRepo, "Ada", "S-1", "ada@school.test", "", user.RoleStudent, true)
	maths := testutil.CreateClass(t, svcs.ClassRepo, "Maths", "Mon", teacher.ID, 10)
	unknownID := "4a3a1b9e-6a0a-4b38-9f43-7d2b1e8c7a10"

	tests := []struct {
		name       string
		nr         attendance.NewRecord
		wantFields []string
	}{
		{name: "valid", nr: attendance.NewRecord{UserID: student.ID, ClassID: maths.ID}},
		{name: "teacher", nr: attendance.NewRecord{UserID: teacher.ID, ClassID: maths.ID}, wantFields: []string{"user"}},
		{name: "unknown class", nr: attendance.NewRecord{UserID: student.ID, ClassID: unknownID}, wantFields: []string{"class"}},
		{name: "unknown both", nr: attendance.NewRecord{UserID: unknownID, ClassID: unknownID}, wantFields: []string{"user", "class"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.nr.Validate(ctx, svcs.Validate, svcs.Attendance)
			if tt.wantFields == nil {
				assert.NoError(t, err)
				return
			}
			var vErr *core.ValidationError
			require.True(t, errors.As(err, &vErr), "got %v", err)
			fields := make([]string, 0, len(vErr.Fields))
			for _, f := range vErr.Fields {
				fields = append(fields, f.Field)
			}
			assert.Equal(t, tt.wantFields, fields)
		})
	}

	t.Run("missing ids", func(t *testing.T) {
		nr := attendance.NewRecord{}
		assert.Error(t, nr.Validate(ctx, svcs.Validate, svcs.Attendance))
	})
}

func TestRecordAlert(t *testing.T) {
	ctx := context.Background()
	svcs := testutil.NewServices(t)
	teacher := testutil.CreateUser(t, svcs.UserRepo, "Grace", "", "grace@school.test", "", user.RoleTeacher, true)
	student := testutil.CreateUser(t, svcs.UserRepo, "Ada", "S-1", "ada@school.test", "", user.RoleStudent, true)
	maths := testutil.CreateClass(t, svcs.ClassRepo, "Maths", "Mon", teacher.ID, 3)

	record := func() {
		_, err := svcs.Attendance.Record(ctx, attendance.NewRecord{UserID: student.ID, ClassID: maths.ID})
		require.NoError(t, err)
	}

	record()
	record()
	assert.Empty(t, svcs.Mail.SentMessages())

	record() // reaches the threshold
	sent := svcs.Mail.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, "ada@school.test", sent[0].To[0].Address)
	require.Len(t, sent[0].Cc, 1)
	assert.Equal(t, "grace@school.test", sent[0].Cc[0].Address)
	assert.Contains(t, sent[0].TextContent, "absent 3 times from Maths")

	record() // past the threshold: no new alert
	assert.Len(t, svcs.Mail.SentMessages(), 1)

	n, err := svcs.Attendance.Count(ctx, student.ID, maths.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestReports(t *testing.T) {
	ctx := context.Background()
	svcs := testutil.NewServices(t)
	teacher := testutil.CreateUser(t, svcs.UserRepo, "Grace", "", "grace@school.test", "", user.RoleTeacher, true)
	maths := testutil.CreateClass(t, svcs.ClassRepo, "Maths", "Mon", teacher.ID, 10)
	physics := testutil.CreateClass(t, svcs.ClassRepo, "Physics", "Tue", "", 2)

	counts := map[string]int{"Ana": 3, "Bea": 4, "Cyd": 4, "Dan": 2}
	students := make(map[string]user.User, len(counts))
	for name, n := range counts {
		usr := testutil.CreateUser(t, svcs.UserRepo, name, "", name+"@school.test", "", user.RoleStudent, true)
		students[name] = usr
		testutil.RecordAbsences(t, svcs.AttendanceRepo, usr, maths, n)
	}
	testutil.RecordAbsences(t, svcs.AttendanceRepo, students["Ana"], physics, 2)

	t.Run("class report", func(t *testing.T) {
		rep, err := svcs.Attendance.ClassReport(ctx, maths.ID)
		require.NoError(t, err)
		assert.Equal(t, maths.ID, rep.Class.ID)
		require.Len(t, rep.Rows, 4)

		wantRatios := []float64{.3, .4, .4, .2}
		for i, row := range rep.Rows {
			assert.False(t, row.Critical(), row.Name)
			assert.InDelta(t, wantRatios[i], row.Ratio(), 1e-9, row.Name)
		}
	})

	t.Run("unknown class", func(t *testing.T) {
		_, err := svcs.Attendance.ClassReport(ctx, "nope")
		assert.Error(t, err)
	})

	t.Run("student summary", func(t *testing.T) {
		rows, err := svcs.Attendance.StudentSummary(ctx, students["Ana"].ID)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "Maths", rows[0].ClassName)
		assert.Equal(t, 3, rows[0].Count)
		assert.Equal(t, "Physics", rows[1].ClassName)
		assert.True(t, rows[1].Critical())

		rows, err = svcs.Attendance.StudentSummary(ctx, "nobody")
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("critical digest", func(t *testing.T) {
		digest, err := svcs.Attendance.CriticalDigest(ctx)
		require.NoError(t, err)
		require.Len(t, digest, 1)
		assert.Equal(t, physics.ID, digest[0].Class.ID)
		require.Len(t, digest[0].Rows, 1)
		assert.Equal(t, "Ana", digest[0].Rows[0].Name)
	})

	t.Run("entries and delete", func(t *testing.T) {
		entries, err := svcs.Attendance.Entries(ctx, &attendance.QueryFilter{ClassID: physics.ID})
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "Physics", entries[0].ClassName)
		assert.Equal(t, "Ana", entries[0].UserName)

		require.NoError(t, svcs.Attendance.Delete(ctx, entries[0].RecordID))
		_, err = svcs.Attendance.GetByID(ctx, entries[0].RecordID)
		assert.Equal(t, attendance.ErrNotFound, errors.Cause(err))

		recs, err := svcs.Attendance.Query(ctx, &attendance.QueryFilter{UserID: students["Ana"].ID})
		require.NoError(t, err)
		assert.Len(t, recs, 4)
	})

	t.Run("deleting a user cascades", func(t *testing.T) {
		require.NoError(t, svcs.Users.Delete(ctx, students["Bea"].ID))
		recs, err := svcs.Attendance.Query(ctx, &attendance.QueryFilter{UserID: students["Bea"].ID})
		require.NoError(t, err)
		assert.Empty(t, recs)
	})
}

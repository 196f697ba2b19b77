package client

import (
	"context"

	"github.com/classtrack/classtrack/core/directory"
)

// Sort keys of the directories.
const (
	SortByName      = "name"
	SortByStudentID = "studentID"
	SortBySchedule  = "schedule"
)

func (c *Client) personDirectory(role string) *directory.Directory[Person] {
	name := func(p Person) string { return p.Name }
	studentID := func(p Person) string { return p.StudentID }
	return directory.New(directory.Options[Person]{
		Fetch:  func(ctx context.Context) ([]Person, error) { return c.People(ctx, role) },
		Fields: []directory.Field[Person]{name, studentID, func(p Person) string { return p.Email }},
		SortKeys: map[string]directory.Field[Person]{
			SortByName:      name,
			SortByStudentID: studentID,
		},
	})
}

func (c *Client) StudentDirectory() *directory.Directory[Person] {
	return c.personDirectory(RoleStudent)
}

func (c *Client) TeacherDirectory() *directory.Directory[Person] {
	return c.personDirectory(RoleTeacher)
}

func (c *Client) ClassDirectory() *directory.Directory[Class] {
	name := func(cls Class) string { return cls.Name }
	schedule := func(cls Class) string { return cls.Schedule }
	return directory.New(directory.Options[Class]{
		Fetch:  c.Classes,
		Fields: []directory.Field[Class]{name, schedule, func(cls Class) string { return cls.Description }},
		SortKeys: map[string]directory.Field[Class]{
			SortByName:     name,
			SortBySchedule: schedule,
		},
	})
}

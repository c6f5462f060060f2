// Package inmemdb provides a map-backed implementation of the domain
// repositories, used by tests and local development.
package inmemdb

import (
	"sync"

	"github.com/samsedu/rise/core/pointsheet"
	"github.com/samsedu/rise/core/school"
	"github.com/samsedu/rise/core/student"
	"github.com/samsedu/rise/core/user"
)

type (
	DB struct {
		user    *userTable
		school  *schoolTable
		student *studentTable
		class   *classTable
		report  *reportTable
	}

	userTable struct {
		mutex sync.RWMutex
		table map[string]*user.User
	}

	schoolTable struct {
		mutex sync.RWMutex
		table map[string]*school.School
	}

	studentTable struct {
		mutex sync.RWMutex
		table map[string]*student.Student
	}

	classTable struct {
		mutex sync.RWMutex
		table map[string]*student.Class
	}

	reportTable struct {
		mutex sync.RWMutex
		table map[string]*pointsheet.Report
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:    &userTable{table: make(map[string]*user.User)},
		school:  &schoolTable{table: make(map[string]*school.School)},
		student: &studentTable{table: make(map[string]*student.Student)},
		class:   &classTable{table: make(map[string]*student.Class)},
		report:  &reportTable{table: make(map[string]*pointsheet.Report)},
	}
	return db, nil
}

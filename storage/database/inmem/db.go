package inmemdb

import (
	"sync"

	"github.com/tmasula/dnevnik/core/school"
	"github.com/tmasula/dnevnik/core/user"
)

// DB is a process-local store backed by plain maps. A single lock covers all
// tables so that cascading deletes are atomic from the caller's perspective.
type DB struct {
	mutex sync.RWMutex
	seq   int

	users    map[int]*user.User
	groups   map[int]*school.Group
	students map[int]*school.Student
	teachers map[int]*school.Teacher
	subjects map[int]*school.Subject
	grades   map[int]*school.Grade
}

func Open() (*DB, error) {
	db := &DB{
		users:    make(map[int]*user.User),
		groups:   make(map[int]*school.Group),
		students: make(map[int]*school.Student),
		teachers: make(map[int]*school.Teacher),
		subjects: make(map[int]*school.Subject),
		grades:   make(map[int]*school.Grade),
	}
	return db, nil
}

// nextID assigns a fresh unique id; callers must hold the write lock.
func (db *DB) nextID() int {
	db.seq++
	return db.seq
}

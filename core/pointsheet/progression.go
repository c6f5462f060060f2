package pointsheet

import "github.com/samsedu/rise/core/student"

// dayRequirements is the number of successful days needed to move on from
// each level.
var dayRequirements = map[int]int{
	1: 10,
	2: 10,
	3: 15,
	4: 10,
}

// Requirement returns the successful-day requirement for a level.
func Requirement(level int) int {
	return dayRequirements[level]
}

// Advance is the per-student level-progression transition: given the current
// (level, daysInCurrentLevel) state and whether today's report was a
// successful day, it returns the student's next state.
//
// It is a pure function: replaying the same inputs always yields the same
// outputs, and a failed day leaves the state untouched.
//
// Levels 1-3 advance to (level+1, 0) once the day count reaches the level's
// requirement. Level 4 is terminal: the day count keeps accumulating and
// completion is only observed (reported via the completed flag), never
// auto-transitioned; graduating a student is a human decision.
func Advance(level, days int, success bool) (newLevel, newDays int, completed bool) {
	newLevel, newDays = level, days

	if success {
		newDays = days + 1
		if level < student.MaxLevel && newDays >= Requirement(level) {
			newLevel = level + 1
			newDays = 0
		}
	}

	completed = newLevel == student.MaxLevel && newDays >= Requirement(student.MaxLevel)
	return newLevel, newDays, completed
}

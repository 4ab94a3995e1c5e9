package domain

import "time"

type Course struct {
	ID          int64
	Title       string
	Description string // optional, empty when unset
	CreatedAt   time.Time
}

// SeedCourses are the courses inserted into an empty catalogue.
var SeedCourses = []Course{
	{
		Title:       "Mathematics",
		Description: "A mathematics course covering algebra, geometry and calculus.",
	},
	{
		Title:       "Physics",
		Description: "A physics course focused on the laws of mechanics and electromagnetism.",
	},
	{
		Title:       "History",
		Description: "A history course that includes the study of world civilisations.",
	},
}

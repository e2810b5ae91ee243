package functions

import (
	"strings"
	"unicode"
)

// Course is one entry in the static course catalogue.
type Course struct {
	Name         string
	Duration     string
	Intake       string
	Fees         string
	Requirements string
	Link         string
}

const defaultCourse = "business"

var catalogue = map[string]Course{
	"business": {
		Name:         "Bachelor of Business",
		Duration:     "3 years",
		Intake:       "February, July",
		Fees:         "Contact for current fees",
		Requirements: "Year 12 or equivalent",
		Link:         "https://asahe.edu.au/courses/",
	},
	"it": {
		Name:         "Bachelor of Information Technology",
		Duration:     "3 years",
		Intake:       "February, July",
		Fees:         "Contact for current fees",
		Requirements: "Year 12 or equivalent",
		Link:         "https://asahe.edu.au/courses/",
	},
}

// LookupCourse finds a course by name, ignoring case and whitespace.
// Unrecognised names return the business course.
func LookupCourse(name string) Course {
	if c, ok := catalogue[courseKey(name)]; ok {
		return c
	}
	return catalogue[defaultCourse]
}

func courseKey(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, name)
}

package mockapi

import (
	"fmt"
	"time"
)

var (
	firstNames = []string{"Ada", "Grace", "Alan", "Barbara", "Edsger", "Frances", "Ken", "Margaret"}
	lastNames  = []string{"Lovelace", "Hopper", "Turing", "Liskov", "Dijkstra", "Allen", "Thompson", "Hamilton"}
	subjects   = []string{
		"Week 3 reading list",
		"Assignment deadline moved",
		"Lab session cancelled",
		"Group project kickoff",
		"Exam revision notes",
		"Office hours this week",
	}
)

// OwnerID is the id of the seeded mailbox owner.
const OwnerID = 1

// Seeded returns a store populated with users, groups, courses, a few
// threads and notifications, with times relative to now.
func Seeded(now time.Time, superUser bool) *Store {
	s := NewStore(OwnerID, superUser)
	s.AddUser(OwnerID, "Mail", "Term")
	for i := range firstNames {
		s.AddUser(int64(i+2), firstNames[i], lastNames[i])
	}

	s.AddCourse("CS101", "Introduction to Programming")
	s.AddCourse("CS201", "Data Structures")
	s.AddGroup("CS101", "A", "CS101 Lab Group A")
	s.AddGroup("CS101", "B", "CS101 Lab Group B")
	s.AddGroup("CS201", "A", "CS201 Tutorial Group")

	for i, subject := range subjects {
		sender := int64(i%len(firstNames) + 2)
		sent := now.Add(-time.Duration(len(subjects)-i) * 3 * time.Hour)
		first := s.Deliver(sender, subject,
			fmt.Sprintf("Hi,\n\nA note about %q.\nSee you soon.", subject), 0, sent)

		// Every other thread has a follow-up.
		if i%2 == 0 {
			s.Deliver(sender+1, "Re: "+subject,
				"Thanks, noted.\n<b>Markup</b> arrives escaped.", first, sent.Add(time.Hour))
		}
	}

	s.Notify("New grade posted", "Your grade for Assignment 1 is available.",
		"https://lms.example.com/grades/1", now.Add(-2*time.Hour))
	s.Notify("Forum reply", "Someone replied to your post in CS101.",
		"https://lms.example.com/forum/42", now.Add(-time.Hour))
	s.Notify("Calendar", "Lecture moved to room 2.14.",
		"https://lms.example.com/calendar", now.Add(-30*time.Minute))

	return s
}

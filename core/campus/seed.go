package campus

import "time"

const day = 24 * time.Hour

// SeedEvents returns the sample events, scheduled relative to now.
func SeedEvents(now time.Time) []Event {
	now = now.UTC()
	return []Event{
		{
			ID:          "1",
			Title:       "Computer Science Lecture",
			Description: "Introduction to Data Structures and Algorithms",
			StartDate:   now.Add(2 * time.Hour),
			EndDate:     now.Add(3 * time.Hour),
			Location:    "Room 301, Engineering Building",
			Type:        EventClass,
			Priority:    PriorityHigh,
			CreatedBy:   CurrentUserID,
		},
		{
			ID:          "2",
			Title:       "Math Quiz",
			Description: "Calculus II - Chapter 3 Quiz",
			StartDate:   now.Add(day),
			EndDate:     now.Add(day + time.Hour),
			Location:    "Room 205, Science Building",
			Type:        EventExam,
			Priority:    PriorityHigh,
			CreatedBy:   CurrentUserID,
		},
		{
			ID:          "3",
			Title:       "Coding Club Meeting",
			Description: "Weekly meeting to discuss new projects",
			StartDate:   now.Add(3 * day),
			EndDate:     now.Add(3*day + 2*time.Hour),
			Location:    "Student Center, Room 101",
			Type:        EventClub,
			Priority:    PriorityMedium,
			CreatedBy:   CurrentUserID,
		},
	}
}

// SeedAssignments returns the sample assignments, due relative to now.
func SeedAssignments(now time.Time) []Assignment {
	now = now.UTC()
	return []Assignment{
		{
			ID:          "1",
			Title:       "Data Structures Project",
			Description: "Implement a binary search tree with insertion, deletion, and traversal operations",
			Subject:     "Computer Science",
			DueDate:     now.Add(7 * day),
			Priority:    PriorityHigh,
			CreatedBy:   CurrentUserID,
		},
		{
			ID:          "2",
			Title:       "Calculus Homework",
			Description: "Complete exercises 1-15 from Chapter 3",
			Subject:     "Mathematics",
			DueDate:     now.Add(2 * day),
			Priority:    PriorityMedium,
			CreatedBy:   CurrentUserID,
		},
		{
			ID:          "3",
			Title:       "Research Paper",
			Description: "Write a 10-page research paper on machine learning applications",
			Subject:     "Computer Science",
			DueDate:     now.Add(14 * day),
			Priority:    PriorityLow,
			CreatedBy:   CurrentUserID,
		},
	}
}

func SeedClubs() []Club {
	return []Club{
		{
			ID:          "1",
			Name:        "Coding Club",
			Description: "A community of programming enthusiasts who share knowledge and work on exciting projects together.",
			Members:     []string{CurrentUserID, "user2", "user3"},
			IsMember:    true,
			AdminID:     "user2",
			Events:      []Event{},
		},
		{
			ID:          "2",
			Name:        "Debate Society",
			Description: "Develop public speaking skills and engage in intellectual discussions on various topics.",
			Members:     []string{"user4", "user5", "user6"},
			IsMember:    false,
			AdminID:     "user4",
			Events:      []Event{},
		},
		{
			ID:          "3",
			Name:        "Photography Club",
			Description: "Capture beautiful moments and learn photography techniques from experienced members.",
			Members:     []string{CurrentUserID, "user7", "user8"},
			IsMember:    true,
			AdminID:     "user7",
			Events:      []Event{},
		},
	}
}

// SeedNotifications returns the sample notifications, sent before now.
func SeedNotifications(now time.Time) []Notification {
	now = now.UTC()
	return []Notification{
		{
			ID:        "1",
			Title:     "Assignment Due Soon",
			Message:   "Your Data Structures Project is due in 2 days. Don't forget to submit!",
			Type:      NotificationReminder,
			Timestamp: now.Add(-2 * time.Hour),
		},
		{
			ID:        "2",
			Title:     "New Event Added",
			Message:   "A new coding workshop has been scheduled for next week.",
			Type:      NotificationEvent,
			Timestamp: now.Add(-4 * time.Hour),
			IsRead:    true,
		},
		{
			ID:        "3",
			Title:     "Club Meeting Reminder",
			Message:   "Coding Club meeting starts in 30 minutes at Student Center.",
			Type:      NotificationReminder,
			Timestamp: now.Add(-6 * time.Hour),
		},
	}
}

func DefaultSettings() Settings {
	return Settings{
		Notifications: true,
		DarkMode:      false,
		AutoSync:      true,
		ReminderTime:  30,
		Language:      "English",
	}
}

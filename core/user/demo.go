package user

// DemoAccount is a built-in account of the demo identity store.
type DemoAccount struct {
	User
	Password string
}

// DemoAccounts returns the admin and student accounts available out of the box.
func DemoAccounts() []DemoAccount {
	return []DemoAccount{
		{
			User: User{
				ID:          "admin1",
				Name:        "Dr. Sarah Johnson",
				Email:       "admin@college.edu",
				Institution: "Tech University",
				Year:        0,
				Role:        RoleAdmin,
				Department:  "Computer Science",
			},
			Password: "admin123",
		},
		{
			User: User{
				ID:          "student1",
				Name:        "John Doe",
				Email:       "student@college.edu",
				Institution: "Tech University",
				Year:        3,
				Role:        RoleStudent,
				Department:  "Computer Science",
				StudentID:   "CS2021001",
			},
			Password: "student123",
		},
	}
}

// DemoCredentials returns the login forms of the demo accounts, keyed by role.
func DemoCredentials() map[string]Credentials {
	creds := make(map[string]Credentials, 2)
	for _, acc := range DemoAccounts() {
		creds[acc.Role] = Credentials{Email: acc.Email, Password: acc.Password, Role: acc.Role}
	}
	return creds
}

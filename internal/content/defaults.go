package content

func intPtr(v int) *int { return &v }

// Bootstrap returns the empty-valued document persisted on first access
// when no content row exists yet.
func Bootstrap() Document {
	return Document{
		Personal: Personal{
			Name:     "Your Name",
			Title:    "Your Title",
			Image:    "https://placehold.co/228x128.png",
			Contacts: []Contact{},
			Socials:  []Social{},
		},
		About: About{
			WhatIDo: []Service{},
		},
		Resume: Resume{
			Education:      []Education{},
			Certifications: []Certification{},
			Skills:         []Skill{},
		},
		Portfolio: Portfolio{
			Tags:     []string{},
			Projects: []Project{},
		},
		Blog: Blog{
			Posts: []BlogPost{},
		},
	}
}

// Default returns the fixed sample document served when no backing
// store is configured. It contains exactly one sample project and one
// sample blog post so the viewer renders something meaningful.
func Default() Document {
	return Document{
		Personal: Personal{
			Name:  "Your Name",
			Title: "Web Developer",
			Image: "https://placehold.co/228x128.png",
			Contacts: []Contact{
				{Label: "EMAIL", Text: "your.email@example.com", Href: "mailto:your.email@example.com"},
				{Label: "PHONE", Text: "+1 234 567 890", Href: "tel:+1234567890"},
				{Label: "LOCATION", Text: "City, Country"},
			},
			Socials: []Social{
				{Href: "https://github.com"},
				{Href: "https://linkedin.com"},
				{Href: "https://medium.com"},
			},
			ResumeURL: "#",
		},
		About: About{
			AboutText: "A brief bio about yourself. You can edit this in the admin dashboard once you connect a database.",
			WhatIDo: []Service{
				{Title: "Web Development", Description: "Modern and mobile-ready website that will help you reach all of your marketing."},
				{Title: "Data Analysis", Description: "Analysis of large and complex data sets to support business decision-making."},
			},
		},
		Resume: Resume{
			Education: []Education{
				{Institution: "University of Example", Degree: "M.Sc. in Computer Science", Details: []string{"Relevant coursework..."}},
			},
			Certifications: []Certification{
				{Name: "Certified Cloud Developer", Issuer: "Example Org"},
			},
			Skills: []Skill{
				{Name: "Statistical Analysis & Hypothesis Testing", Proficiency: intPtr(80)},
				{Name: "Programming: Python and SQL", Proficiency: intPtr(70)},
				{Name: "Data Visualization: Tableau, Power BI, Matplotlib", Proficiency: intPtr(90)},
				{Name: "Database Management", Proficiency: intPtr(60)},
			},
		},
		Portfolio: Portfolio{
			Tags: []string{"All", "Tableau", "Power BI", "MS Excel", "Python"},
			Projects: []Project{
				{
					ID:          "sample-project",
					Title:       "Sample Project",
					Description: "A sample project description.",
					Image:       "https://placehold.co/600x400.png",
					Tags:        []string{"MS Excel"},
					GithubURL:   "#",
					DataAiHint:  "dashboard analytics",
				},
			},
		},
		Blog: Blog{
			Posts: []BlogPost{
				{
					ID:          "sample-post",
					Title:       "My First Blog Post",
					Date:        "2024-01-01",
					Image:       "https://placehold.co/600x400.png",
					Description: "This is a summary of the blog post.",
					Content:     "Full content of the blog post.",
					URL:         "#",
					DataAiHint:  "blog post",
				},
			},
		},
	}
}

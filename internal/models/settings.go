package models

// Subject is a topic projects can belong to and members hold expertise in.
type Subject struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// Settings is the team-wide configuration blob.
type Settings struct {
	TeamName string    `json:"team_name"`
	TeamAbbr string    `json:"team_abbr"`
	Subjects []Subject `json:"subjects"`
}

// SubjectIDs returns the subject keys in catalog order.
func (s *Settings) SubjectIDs() []string {
	ids := make([]string, 0, len(s.Subjects))
	for _, subject := range s.Subjects {
		ids = append(ids, subject.ID)
	}
	return ids
}

// SubjectByID looks up a subject in the catalog.
func (s *Settings) SubjectByID(id string) (Subject, bool) {
	for _, subject := range s.Subjects {
		if subject.ID == id {
			return subject, true
		}
	}
	return Subject{}, false
}

// DefaultSettings seeds the subject catalog the team starts with.
func DefaultSettings() *Settings {
	return &Settings{
		TeamName: "Makers Team",
		TeamAbbr: "MAK",
		Subjects: []Subject{
			{ID: "linux", Name: "Linux Administration", Icon: "terminal"},
			{ID: "programming", Name: "Programming Fundamentals", Icon: "code"},
			{ID: "ethics", Name: "Information Age Ethics", Icon: "scale"},
			{ID: "democracy", Name: "Democracy and Human Rights", Icon: "landmark"},
			{ID: "math", Name: "Mathematics", Icon: "calculator"},
			{ID: "english", Name: "English", Icon: "languages"},
			{ID: "engineering_drawing", Name: "Engineering Drawing", Icon: "ruler"},
		},
	}
}

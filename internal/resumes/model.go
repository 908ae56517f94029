package resumes

import "time"

type Resume struct {
	ID                 string    `json:"id"`
	OwnerID            string    `json:"ownerId"`
	OwnerUsername      string    `json:"ownerUsername"`
	JobTitle           string    `json:"jobTitle"`
	Skills             string    `json:"skills"`
	Languages          string    `json:"languages"`
	About              string    `json:"about"`
	Experience         string    `json:"experience"`
	VisibleToAnonymous bool      `json:"visibleToAnonymous"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// Form is the create/update form. Field names match the HTML inputs.
type Form struct {
	JobTitle           string `form:"job_title" binding:"required,notblank,max=100"`
	Skills             string `form:"skills" binding:"required,notblank"`
	Languages          string `form:"languages" binding:"required,notblank"`
	About              string `form:"about" binding:"required,notblank"`
	Experience         string `form:"experience" binding:"required,notblank"`
	VisibleToAnonymous bool   `form:"visible_to_anonymous"`
}

// FormFrom prefills a Form with an existing resume.
func FormFrom(r Resume) Form {
	return Form{
		JobTitle:           r.JobTitle,
		Skills:             r.Skills,
		Languages:          r.Languages,
		About:              r.About,
		Experience:         r.Experience,
		VisibleToAnonymous: r.VisibleToAnonymous,
	}
}

func (f Form) apply(r Resume) Resume {
	r.JobTitle = f.JobTitle
	r.Skills = f.Skills
	r.Languages = f.Languages
	r.About = f.About
	r.Experience = f.Experience
	r.VisibleToAnonymous = f.VisibleToAnonymous
	return r
}

// QuestionForm carries the resume snapshot and the visitor's question.
type QuestionForm struct {
	Name       string `form:"name"`
	Username   string `form:"username"`
	Email      string `form:"email"`
	JobTitle   string `form:"job_title"`
	Skills     string `form:"skills"`
	Languages  string `form:"languages"`
	About      string `form:"about"`
	Experience string `form:"experience"`
	Question   string `form:"question"`
}

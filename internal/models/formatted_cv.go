package models

// FormattedCV is the fixed CV shape. Slices are never nil once normalised,
// so every field is present when serialised.
type FormattedCV struct {
	Header          Header          `bson:"header" json:"header"`
	PersonalDetails PersonalDetails `bson:"personal_details" json:"personalDetails"`
	Profile         string          `bson:"profile" json:"profile"`
	Experience      []Experience    `bson:"experience" json:"experience"`
	Education       []Education     `bson:"education" json:"education"`
	KeySkills       []string        `bson:"key_skills" json:"keySkills"`
	Interests       []string        `bson:"interests" json:"interests"`
	Footer          string          `bson:"footer,omitempty" json:"footer,omitempty"`
}

type Header struct {
	Name     string `bson:"name" json:"name"`
	JobTitle string `bson:"job_title" json:"jobTitle"`
	PhotoURL string `bson:"photo_url" json:"photoUrl"`
}

type PersonalDetails struct {
	Nationality   string `bson:"nationality" json:"nationality"`
	Languages     string `bson:"languages" json:"languages"`
	DOB           string `bson:"dob" json:"dob"`
	MaritalStatus string `bson:"marital_status" json:"maritalStatus"`
}

type Experience struct {
	JobTitle         string   `bson:"job_title" json:"jobTitle"`
	Company          string   `bson:"company" json:"company"`
	Location         string   `bson:"location" json:"location"`
	Dates            string   `bson:"dates" json:"dates"`
	Responsibilities []string `bson:"responsibilities" json:"responsibilities"`
}

type Education struct {
	Institution string `bson:"institution" json:"institution"`
	Degree      string `bson:"degree" json:"degree"`
	Location    string `bson:"location" json:"location"`
	Dates       string `bson:"dates" json:"dates"`
}

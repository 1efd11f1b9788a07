package render

import (
	"regexp"
	"strings"

	"github.com/yoockh/cvstudio/internal/models"
)

const firstPageExperience = 2

// Page is one fixed A4 box. Sections with no content are left empty and skipped by the template.
type Page struct {
	Number int

	// page 1 only
	Header      *models.Header
	Details     []DetailLine
	ShowProfile bool
	Profile     string

	ExperienceHeading string
	Experience        []models.Experience

	// page 2 only
	Education []models.Education
	KeySkills []string
	Interests []string
}

type DetailLine struct {
	Label string
	Value string
}

// Layout always yields two pages. Entries after the second experience entry move to page 2.
// Content longer than a page is clipped, not reflowed.
func Layout(cv models.FormattedCV) []Page {
	header := cv.Header
	p1 := Page{
		Number:      1,
		Header:      &header,
		Details:     detailLines(cv.PersonalDetails),
		ShowProfile: true,
		Profile:     cv.Profile,
	}
	p2 := Page{
		Number:    2,
		Education: cv.Education,
		KeySkills: cv.KeySkills,
		Interests: cv.Interests,
	}

	exp := cv.Experience
	if len(exp) > firstPageExperience {
		p1.Experience = exp[:firstPageExperience]
		p2.Experience = exp[firstPageExperience:]
		p2.ExperienceHeading = "Experience (cont.)"
	} else {
		p1.Experience = exp
	}
	if len(p1.Experience) > 0 {
		p1.ExperienceHeading = "Experience"
	}

	return []Page{p1, p2}
}

func detailLines(pd models.PersonalDetails) []DetailLine {
	all := []DetailLine{
		{"Nationality", pd.Nationality},
		{"Languages", pd.Languages},
		{"Date of Birth", pd.DOB},
		{"Marital Status", pd.MaritalStatus},
	}
	out := make([]DetailLine, 0, len(all))
	for _, l := range all {
		if strings.TrimSpace(l.Value) != "" {
			out = append(out, l)
		}
	}
	return out
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// FileName is the download name for a rendered CV, e.g. "Jane_Doe_CV.pdf".
func FileName(cv models.FormattedCV) string {
	name := strings.TrimSpace(cv.Header.Name)
	if name == "" {
		return "CV.pdf"
	}
	return whitespaceRun.ReplaceAllString(name, "_") + "_CV.pdf"
}

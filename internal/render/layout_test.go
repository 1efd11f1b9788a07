package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yoockh/cvstudio/internal/models"
)

func sampleCV(experience int) models.FormattedCV {
	cv := models.FormattedCV{
		Header:          models.Header{Name: "Jane Doe", JobTitle: "Nanny"},
		PersonalDetails: models.PersonalDetails{Nationality: "British", Languages: "English, French", DOB: "01 Jan 1990"},
		Profile:         "Caring and experienced nanny.",
		Education:       []models.Education{{Institution: "College", Degree: "NVQ Level 3"}},
		KeySkills:       []string{"First Aid"},
		Interests:       []string{},
	}
	for i := 0; i < experience; i++ {
		cv.Experience = append(cv.Experience, models.Experience{
			JobTitle:         "Role " + string(rune('A'+i)),
			Company:          "Family",
			Dates:            "Jan 2020",
			Responsibilities: []string{"Childcare"},
		})
	}
	return cv
}

func TestLayout_SplitsExperience(t *testing.T) {
	pages := Layout(sampleCV(4))
	require.Len(t, pages, 2)

	assert.Equal(t, "Experience", pages[0].ExperienceHeading)
	assert.Len(t, pages[0].Experience, 2)
	assert.Equal(t, "Role A", pages[0].Experience[0].JobTitle)

	assert.Equal(t, "Experience (cont.)", pages[1].ExperienceHeading)
	require.Len(t, pages[1].Experience, 2)
	assert.Equal(t, "Role C", pages[1].Experience[0].JobTitle)
	assert.Equal(t, "Role D", pages[1].Experience[1].JobTitle)
}

func TestLayout_SecondPageAlwaysPresent(t *testing.T) {
	for _, n := range []int{0, 1, 2} {
		pages := Layout(sampleCV(n))
		require.Len(t, pages, 2)
		assert.Len(t, pages[0].Experience, n)
		assert.Empty(t, pages[1].Experience)
		assert.Empty(t, pages[1].ExperienceHeading)
		assert.Nil(t, pages[1].Header)
	}
}

func TestLayout_OmitsEmptyDetailLines(t *testing.T) {
	cv := sampleCV(1)
	cv.PersonalDetails.DOB = ""

	lines := Layout(cv)[0].Details
	for _, l := range lines {
		assert.NotEqual(t, "Date of Birth", l.Label)
	}
	assert.Len(t, lines, 2)
}

func TestRenderHTML_OmitsDateOfBirth(t *testing.T) {
	cv := sampleCV(1)
	cv.PersonalDetails.DOB = ""

	html, err := RenderHTML(cv, Assets{})
	require.NoError(t, err)
	assert.NotContains(t, string(html), "Date of Birth")
	assert.Contains(t, string(html), "Nationality: British")
}

func TestRenderHTML_Pages(t *testing.T) {
	html, err := RenderHTML(sampleCV(3), Assets{})
	require.NoError(t, err)
	s := string(html)

	assert.Equal(t, 2, strings.Count(s, `class="resume-page"`))
	assert.Contains(t, s, `id="page-1"`)
	assert.Contains(t, s, `id="page-2"`)
	assert.Contains(t, s, "Experience (cont.)")
	assert.Equal(t, 2, strings.Count(s, "www.exclusivehouseholdstaff.com</a>"))
	assert.Contains(t, s, "Education")
	assert.Contains(t, s, "Key Skills")
	// empty interests list drops the section
	assert.NotContains(t, s, "Interests</h2>")
}

func TestRenderHTML_EscapesContent(t *testing.T) {
	cv := sampleCV(0)
	cv.Profile = `<script>alert(1)</script>`

	html, err := RenderHTML(cv, Assets{})
	require.NoError(t, err)
	assert.NotContains(t, string(html), "<script>alert(1)</script>")
}

func TestPhotoSource(t *testing.T) {
	assert.Equal(t, PlaceholderPhoto, string(photoSource("")))
	assert.Equal(t, PlaceholderPhoto, string(photoSource(filepath.Join(t.TempDir(), "gone.jpg"))))
	assert.Equal(t, "https://storage.googleapis.com/b/photos/x.jpg", string(photoSource("https://storage.googleapis.com/b/photos/x.jpg")))

	// minimal PNG signature is enough for content sniffing
	png := filepath.Join(t.TempDir(), "me.png")
	require.NoError(t, os.WriteFile(png, []byte("\x89PNG\r\n\x1a\n0000"), 0o600))
	assert.True(t, strings.HasPrefix(string(photoSource(png)), "data:image/png;base64,"))
}

func TestFileName(t *testing.T) {
	tests := map[string]string{
		"Jane Doe":          "Jane_Doe_CV.pdf",
		"Mary  Ann\tSmith": "Mary_Ann_Smith_CV.pdf",
		"  Solo ":           "Solo_CV.pdf",
		"":                  "CV.pdf",
	}
	for in, want := range tests {
		cv := models.FormattedCV{Header: models.Header{Name: in}}
		assert.Equal(t, want, FileName(cv), in)
	}
}

package render

import (
	"bytes"
	_ "embed"
	"encoding/base64"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/yoockh/cvstudio/internal/models"
)

//go:embed cv.html.tmpl
var cvTemplateSrc string

var cvTemplate = template.Must(template.New("cv").Parse(cvTemplateSrc))

// PlaceholderPhoto is shown when the profile photo is missing or fails to load.
const PlaceholderPhoto = "data:image/svg+xml;base64,PHN2ZyB4bWxucz0iaHR0cDovL3d3dy53My5vcmcvMjAwMC9zdmciIHZpZXdCb3g9IjAgMCAyNCAyNCIgZmlsbD0iI2NjYyI+PHBhdGggZD0iTTEyIDJDNi40NzkgMiAyIDYuNDc5IDIgMTJzNC40NzkgMTAgMTAgMTAgMTAtNC40NzkgMTAtMTBTMTcuNTIxIDIgMTIgMnpNMTIgNWMxLjgyNyAwIDMuMzMxIDEuNDk2IDMuMzMxIDMuMzMxUzEzLjgyNyAxMS42NjIgMTIgMTEuNjYyIDguNjY5IDEwLjE2NiA4LjY2OSA4LjMzMSAxMC4xNzMgNSAxMiA1ek0xMiAxOWMtMy4xNTIgMC01LjgxMS0xLjYxNy03LjQxLTQuMjY3QzUuMDMxIDE0LjY1NiA4LjE4OCAxMyA5LjUgMTNjMS4wNzggMCAzIDIgNC41IDJzMy40MjItMiA0LjUtMmMxLjMxMiAwIDQuNDY5IDEuNjU2IDQuOTEgMS43MzNDMTcuODExIDE3LjM4MyAxNS4xNTIgMTkgMTIgMTl6Ii8+PC9zdmc+"

type Footer struct {
	Organisation string
	Website      string
	WebsiteURL   string
	Telephone    string
}

var DefaultFooter = Footer{
	Organisation: "Exclusive Household Staff & Nannies",
	Website:      "www.exclusivehouseholdstaff.com",
	WebsiteURL:   "https://www.exclusivehouseholdstaff.com",
	Telephone:    "+44 (0) 203 358 7000",
}

// Assets are the letterhead logos, inlined as data URIs so the page has no external dependencies.
type Assets struct {
	LogoLeft  template.URL
	LogoRight template.URL
}

// LoadAssets reads title.png and title_2.png from dir. Missing files leave the slot empty.
func LoadAssets(dir string) Assets {
	return Assets{
		LogoLeft:  fileDataURI(filepath.Join(dir, "title.png")),
		LogoRight: fileDataURI(filepath.Join(dir, "title_2.png")),
	}
}

type document struct {
	Title       string
	Pages       []Page
	Photo       template.URL
	Placeholder string
	LogoLeft    template.URL
	LogoRight   template.URL
	Footer      Footer
}

// RenderHTML builds the paginated print document.
func RenderHTML(cv models.FormattedCV, assets Assets) ([]byte, error) {
	doc := document{
		Title:       strings.TrimSuffix(FileName(cv), ".pdf"),
		Pages:       Layout(cv),
		Photo:       photoSource(cv.Header.PhotoURL),
		Placeholder: PlaceholderPhoto,
		LogoLeft:    assets.LogoLeft,
		LogoRight:   assets.LogoRight,
		Footer:      DefaultFooter,
	}

	var buf bytes.Buffer
	if err := cvTemplate.Execute(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// photoSource resolves the stored photo reference. Remote URLs are left to the browser;
// local paths are inlined; anything unreadable becomes the placeholder.
func photoSource(ref string) template.URL {
	ref = strings.TrimSpace(ref)
	switch {
	case ref == "":
		return template.URL(PlaceholderPhoto)
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"), strings.HasPrefix(ref, "data:image/"):
		return template.URL(ref)
	}
	if uri := fileDataURI(filepath.FromSlash(strings.ReplaceAll(ref, "\\", "/"))); uri != "" {
		return uri
	}
	return template.URL(PlaceholderPhoto)
}

func fileDataURI(path string) template.URL {
	b, err := os.ReadFile(path)
	if err != nil || len(b) == 0 {
		return ""
	}
	mime := http.DetectContentType(b)
	if !strings.HasPrefix(mime, "image/") {
		return ""
	}
	return template.URL("data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(b))
}

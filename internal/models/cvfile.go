package models

// UploadedFile describes one temporary file written by the upload transport.
type UploadedFile struct {
	Field        string `bson:"-" json:"-"` // multipart field name
	OriginalName string `bson:"original_name" json:"original_name"`
	StoredName   string `bson:"stored_name" json:"stored_name"`
	MimeType     string `bson:"mime_type" json:"mime_type"`
	Path         string `bson:"path" json:"path"`
	Size         int64  `bson:"size" json:"size"`
}

// UploadedFileSet is the three files submitted together in one upload request.
// A nil slot means the field was not submitted.
type UploadedFileSet struct {
	Resume    *UploadedFile
	EHSForm   *UploadedFile
	UserImage *UploadedFile
}

// Present returns the non-nil slots in request order.
func (s UploadedFileSet) Present() []*UploadedFile {
	out := make([]*UploadedFile, 0, 3)
	for _, f := range []*UploadedFile{s.Resume, s.EHSForm, s.UserImage} {
		if f != nil {
			out = append(out, f)
		}
	}
	return out
}

// Missing returns the field names of absent slots.
func (s UploadedFileSet) Missing() []string {
	var out []string
	if s.Resume == nil {
		out = append(out, FieldResume)
	}
	if s.EHSForm == nil {
		out = append(out, FieldEHSForm)
	}
	if s.UserImage == nil {
		out = append(out, FieldUserImage)
	}
	return out
}

const (
	FieldResume    = "resume"
	FieldEHSForm   = "ehsForm"
	FieldUserImage = "userImage"
)

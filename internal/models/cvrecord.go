package models

import "time"

type ExtractedText struct {
	Resume  string `bson:"resume" json:"resume"`
	EHSForm string `bson:"ehs_form" json:"ehsForm"`
}

// CVRecord is written once per successful upload and never updated.
type CVRecord struct {
	ID            string        `bson:"_id" json:"id"` // uuid
	Resume        UploadedFile  `bson:"resume" json:"resume"`
	EHSForm       UploadedFile  `bson:"ehs_form" json:"ehsForm"`
	UserImage     UploadedFile  `bson:"user_image" json:"userImage"`
	ExtractedText ExtractedText `bson:"extracted_text" json:"extractedText"`
	FormattedCV   FormattedCV   `bson:"formatted_cv" json:"formattedCV"`
	UploadedBy    string        `bson:"uploaded_by" json:"uploadedBy"`
	UploadedAt    time.Time     `bson:"uploaded_at" json:"uploadedAt"`
}

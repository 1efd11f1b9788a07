package cvformat

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/xeipuuv/gojsonschema"
	"github.com/yoockh/cvstudio/internal/models"
	"github.com/yoockh/cvstudio/internal/providers/llm"
	"github.com/yoockh/cvstudio/internal/utils"
)

//go:embed schema.json
var schemaJSON []byte

// Formatter turns the extracted text of both documents into a FormattedCV.
type Formatter interface {
	Format(ctx context.Context, resumeText, ehsFormText string) (*models.FormattedCV, error)
}

type LLMFormatter struct {
	provider llm.Provider
	schema   *gojsonschema.Schema
	log      logrus.FieldLogger
}

func NewLLMFormatter(provider llm.Provider, log logrus.FieldLogger) (*LLMFormatter, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("load cv schema: %w", err)
	}
	return &LLMFormatter{provider: provider, schema: schema, log: log}, nil
}

func (f *LLMFormatter) Format(ctx context.Context, resumeText, ehsFormText string) (*models.FormattedCV, error) {
	const op = "CVFormatter.Format"

	raw, err := f.provider.Complete(ctx, BuildPrompt(resumeText, ehsFormText))
	if err != nil {
		f.log.WithError(err).Error("llm completion failed")
		return nil, formattingError(op, err)
	}

	doc, err := Parse(raw)
	if err != nil {
		f.log.WithError(err).WithField("reply_len", len(raw)).Error("llm reply is not a json object")
		return nil, formattingError(op, err)
	}

	cv := Normalize(doc)
	if err := f.validate(cv); err != nil {
		return nil, formattingError(op, err)
	}
	return &cv, nil
}

func (f *LLMFormatter) validate(cv models.FormattedCV) error {
	res, err := f.schema.Validate(gojsonschema.NewGoLoader(cv))
	if err != nil {
		return err
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("schema validation failed: %s", strings.Join(msgs, "; "))
}

func formattingError(op string, cause error) error {
	return utils.E(utils.CodeInternal, op, "Error formatting CV using AI", fmt.Errorf("%w: %v", utils.ErrFormatting, cause))
}

// Parse decodes the model reply. One surrounding Markdown code fence is tolerated.
func Parse(raw string) (map[string]any, error) {
	s := stripFence(strings.TrimSpace(raw))
	if s == "" {
		return nil, errors.New("empty reply")
	}

	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, err
	}
	doc, ok := v.(map[string]any)
	if !ok {
		return nil, errors.New("reply is not a json object")
	}
	return doc, nil
}

func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return s
	}
	s = strings.TrimSuffix(s[3:], "```")
	// drop the info string, e.g. "json"
	if i := strings.IndexByte(s, '\n'); i >= 0 && !strings.ContainsAny(s[:i], "{[") {
		s = s[i+1:]
	}
	return strings.TrimSpace(s)
}

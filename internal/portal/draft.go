// ABOUTME: Editable copy of a speaker's presentation and its form validation.
// ABOUTME: Only the first speaker's profile is editable from the portal.

package portal

import (
	"errors"
	"net/url"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/pyconkr/console/internal/backend"
	"github.com/pyconkr/console/internal/i18n"
)

// Draft is the portal's session editor form.
type Draft struct {
	TitleKo       string `form:"title_ko" validate:"required,max=256"`
	TitleEn       string `form:"title_en" validate:"required,max=256"`
	SlideshowURL  string `form:"slideshow_url" validate:"omitempty,url,max=2048"`
	SummaryKo     string `form:"summary_ko" validate:"max=1000"`
	SummaryEn     string `form:"summary_en" validate:"max=1000"`
	DescriptionKo string `form:"description_ko"`
	DescriptionEn string `form:"description_en"`
	Image         string `form:"image"`

	SpeakerID    string `form:"speaker_id"`
	BiographyKo  string `form:"biography_ko"`
	BiographyEn  string `form:"biography_en"`
	SpeakerImage string `form:"speaker_image"`
}

var validate = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("form")
	})
	return v
}()

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nullable(s string) *string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return &s
}

// DraftFrom copies p into an editable draft.
func DraftFrom(p backend.Presentation, logger *zap.Logger) Draft {
	d := Draft{
		TitleKo:       p.TitleKo,
		TitleEn:       p.TitleEn,
		SlideshowURL:  deref(p.SlideshowURL),
		SummaryKo:     p.SummaryKo,
		SummaryEn:     p.SummaryEn,
		DescriptionKo: p.DescriptionKo,
		DescriptionEn: p.DescriptionEn,
		Image:         deref(p.Image),
	}
	if len(p.Speakers) == 0 {
		if logger != nil {
			logger.Warn("Presentation has no speakers", zap.String("presentation", p.ID))
		}
		return d
	}
	sp := p.Speakers[0]
	d.SpeakerID = sp.ID
	d.BiographyKo = sp.BiographyKo
	d.BiographyEn = sp.BiographyEn
	d.SpeakerImage = deref(sp.Image)
	return d
}

// DraftFromForm reads a submitted session editor form.
func DraftFromForm(form url.Values) Draft {
	return Draft{
		TitleKo:       form.Get("title_ko"),
		TitleEn:       form.Get("title_en"),
		SlideshowURL:  strings.TrimSpace(form.Get("slideshow_url")),
		SummaryKo:     form.Get("summary_ko"),
		SummaryEn:     form.Get("summary_en"),
		DescriptionKo: form.Get("description_ko"),
		DescriptionEn: form.Get("description_en"),
		Image:         form.Get("image"),
		SpeakerID:     form.Get("speaker_id"),
		BiographyKo:   form.Get("biography_ko"),
		BiographyEn:   form.Get("biography_en"),
		SpeakerImage:  form.Get("speaker_image"),
	}
}

// Update builds the modification request for presentation id. Speakers
// other than the first are left out and stay as they are.
func (d Draft) Update(id string) backend.PresentationUpdate {
	u := backend.PresentationUpdate{
		ID:            id,
		TitleKo:       d.TitleKo,
		TitleEn:       d.TitleEn,
		SummaryKo:     d.SummaryKo,
		SummaryEn:     d.SummaryEn,
		DescriptionKo: d.DescriptionKo,
		DescriptionEn: d.DescriptionEn,
		SlideshowURL:  nullable(d.SlideshowURL),
		Image:         nullable(d.Image),
		Speakers:      []backend.SpeakerUpdate{},
	}
	if d.SpeakerID != "" {
		u.Speakers = append(u.Speakers, backend.SpeakerUpdate{
			ID:          d.SpeakerID,
			BiographyKo: d.BiographyKo,
			BiographyEn: d.BiographyEn,
			Image:       nullable(d.SpeakerImage),
		})
	}
	return u
}

// FieldErrors maps form field names to messages.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	names := make([]string, 0, len(e))
	for name := range e {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e[name])
	}
	return "invalid draft: " + strings.Join(parts, "; ")
}

// Validate checks the draft, returning FieldErrors in lang.
func (d Draft) Validate(lang i18n.Language) error {
	err := validate.Struct(d)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := FieldErrors{}
	for _, fe := range verrs {
		key := i18n.MsgInvalidForm
		switch fe.Tag() {
		case "required":
			key = i18n.MsgFieldRequired
		case "max":
			key = i18n.MsgFieldTooLong
		case "url":
			key = i18n.MsgFieldURL
		}
		out[fe.Field()] = i18n.T(lang, key)
	}
	return out
}

// ABOUTME: Field layout of the session editor form and its page data.
// ABOUTME: Image fields choose among the speaker's public files.

package portal

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/pyconkr/console/internal/backend"
	"github.com/pyconkr/console/internal/i18n"
)

type section int

const (
	sessionSection section = iota
	speakerSection
)

type formField struct {
	name      string
	label     i18n.Localized
	section   section
	required  bool
	multiline bool
	markdown  bool
	image     bool
	get       func(Draft) string
}

var formFields = []formField{
	{name: "title_ko", label: i18n.Localized{Ko: "발표 제목 (한국어)", En: "Title (Korean)"}, required: true, get: func(d Draft) string { return d.TitleKo }},
	{name: "title_en", label: i18n.Localized{Ko: "발표 제목 (영어)", En: "Title (English)"}, required: true, get: func(d Draft) string { return d.TitleEn }},
	{name: "slideshow_url", label: i18n.Localized{Ko: "발표 슬라이드 URL", En: "Slideshow URL"}, get: func(d Draft) string { return d.SlideshowURL }},
	{name: "summary_ko", label: i18n.Localized{Ko: "발표 요약 (한국어)", En: "Summary (Korean)"}, multiline: true, get: func(d Draft) string { return d.SummaryKo }},
	{name: "summary_en", label: i18n.Localized{Ko: "발표 요약 (영어)", En: "Summary (English)"}, multiline: true, get: func(d Draft) string { return d.SummaryEn }},
	{name: "description_ko", label: i18n.Localized{Ko: "발표 내용 (한국어)", En: "Description (Korean)"}, multiline: true, markdown: true, get: func(d Draft) string { return d.DescriptionKo }},
	{name: "description_en", label: i18n.Localized{Ko: "발표 내용 (영어)", En: "Description (English)"}, multiline: true, markdown: true, get: func(d Draft) string { return d.DescriptionEn }},
	{name: "image", label: i18n.Localized{Ko: "발표 이미지", En: "Session image"}, image: true, get: func(d Draft) string { return d.Image }},
	{name: "speaker_id", section: speakerSection, get: func(d Draft) string { return d.SpeakerID }},
	{name: "biography_ko", label: i18n.Localized{Ko: "발표자 소개 (한국어)", En: "Biography (Korean)"}, section: speakerSection, multiline: true, markdown: true, get: func(d Draft) string { return d.BiographyKo }},
	{name: "biography_en", label: i18n.Localized{Ko: "발표자 소개 (영어)", En: "Biography (English)"}, section: speakerSection, multiline: true, markdown: true, get: func(d Draft) string { return d.BiographyEn }},
	{name: "speaker_image", label: i18n.Localized{Ko: "발표자 이미지", En: "Speaker image"}, section: speakerSection, image: true, get: func(d Draft) string { return d.SpeakerImage }},
}

var (
	noImageLabel      = i18n.Localized{Ko: "이미지 없음", En: "No image"}
	currentImageLabel = i18n.Localized{Ko: "현재 이미지", En: "Current image"}
)

type option struct {
	Value    string
	Label    string
	Selected bool
}

// imageOptions offers no image, every public file and, when it is not
// one of them, the current value.
func imageOptions(files []backend.PublicFile, current string, lang i18n.Language) []option {
	opts := []option{{Value: "", Label: noImageLabel.Get(lang), Selected: current == ""}}
	found := current == ""
	for _, f := range files {
		selected := f.File == current
		found = found || selected
		label := f.Name
		if label == "" {
			label = f.File
		}
		opts = append(opts, option{Value: f.File, Label: label, Selected: selected})
	}
	if !found {
		opts = append(opts, option{Value: current, Label: currentImageLabel.Get(lang), Selected: true})
	}
	return opts
}

type fieldView struct {
	Name      string
	Label     string
	Value     string
	Error     string
	Required  bool
	Multiline bool
	Markdown  bool
	Options   []option
}

type sectionView struct {
	Title  string
	Fields []fieldView
}

type presentationPage struct {
	page
	ID       string
	Draft    Draft
	Locked   bool
	AuditURL string
	Sections []sectionView
}

func (h *Handlers) editorData(w http.ResponseWriter, r *http.Request, p backend.Presentation, d Draft, errs FieldErrors) presentationPage {
	lang := h.language(r)
	files, err := h.cfg.Client.ListPublicFiles(r.Context())
	if err != nil {
		h.logger.Warn("Failed to list public files", zap.Error(err))
	}

	sections := []sectionView{
		{Title: i18n.T(lang, i18n.MsgEditSession)},
		{Title: i18n.T(lang, i18n.MsgEditSpeaker)},
	}
	for _, f := range formFields {
		if f.name == "speaker_id" {
			continue
		}
		v := fieldView{
			Name:      f.name,
			Label:     f.label.Get(lang),
			Value:     f.get(d),
			Error:     errs[f.name],
			Required:  f.required,
			Multiline: f.multiline,
			Markdown:  f.markdown,
		}
		if f.image {
			v.Options = imageOptions(files, v.Value, lang)
		}
		sections[f.section].Fields = append(sections[f.section].Fields, v)
	}
	if d.SpeakerID == "" {
		sections = sections[:1]
	}

	data := presentationPage{
		page:     h.newPage(w, r, i18n.T(lang, i18n.MsgEditSession)),
		ID:       p.ID,
		Draft:    d,
		Locked:   Locked(p),
		Sections: sections,
	}
	if p.RequestedModificationAuditID != nil {
		data.AuditURL = "/portal/modification-audits/" + *p.RequestedModificationAuditID
	}
	return data
}

// ABOUTME: Localized message catalog for the console (Korean and English).
// ABOUTME: Resolves message keys to display strings for a given language.

package i18n

import (
	"context"
	"strings"
)

// Language is a supported display language.
type Language string

const (
	Korean  Language = "ko"
	English Language = "en"
)

// Message keys used across the console.
const (
	MsgSaved              = "editor.saved"
	MsgCreated            = "editor.created"
	MsgDeleted            = "editor.deleted"
	MsgConfirmDelete      = "editor.confirm_delete"
	MsgCreateNew          = "editor.create_new"
	MsgEditPrefix         = "editor.edit_prefix"
	MsgDelete             = "editor.delete"
	MsgModify             = "editor.modify"
	MsgField              = "editor.field"
	MsgValue              = "editor.value"
	MsgLink               = "editor.link"
	MsgErrorWrapper       = "notify.error_wrapper"
	MsgUnknownError       = "notify.unknown_error"
	MsgBusy               = "editor.busy"
	MsgInvalidForm        = "editor.invalid_form"
	MsgModificationSent   = "portal.modification_requested"
	MsgModificationLocked = "portal.modification_pending"
	MsgConfirmModify      = "portal.confirm_modify"
	MsgAuditCancelled     = "portal.audit_cancelled"
	MsgSessionWarning     = "sessions.warning"
	MsgSubmit             = "portal.submit"
	MsgPortalTitle        = "portal.title"
	MsgSessionsTitle      = "sessions.title"
	MsgEditSession        = "portal.edit_session"
	MsgEditSpeaker        = "portal.edit_speaker"
	MsgCancelRequest      = "portal.cancel_request"
	MsgFieldRequired      = "form.required"
	MsgFieldTooLong       = "form.too_long"
	MsgFieldURL           = "form.url"
	MsgSignInRequired     = "portal.sign_in_required"
)

var catalog = map[Language]map[string]string{
	Korean: {
		MsgSaved:              "저장했습니다.",
		MsgCreated:            "페이지를 생성했습니다.",
		MsgDeleted:            "삭제했습니다.",
		MsgConfirmDelete:      "정말로 삭제하시겠습니까? 이 작업은 되돌릴 수 없습니다.",
		MsgCreateNew:          "새 객체 추가",
		MsgEditPrefix:         "편집: ",
		MsgDelete:             "삭제",
		MsgModify:             "수정",
		MsgField:              "필드",
		MsgValue:              "값",
		MsgLink:               "링크",
		MsgErrorWrapper:       "에러가 발생했습니다, 콘솔을 확인해주세요. 문제가 지속되면, 홈페이지팀에 콘솔 내용과 함께 문의해주세요!",
		MsgUnknownError:       "알 수 없는 문제가 발생했습니다, 잠시 후 다시 시도해주세요.",
		MsgBusy:               "이전 요청을 처리하고 있습니다.",
		MsgInvalidForm:        "입력값을 확인해주세요.",
		MsgModificationSent:   "발표 정보 수정을 요청했어요. 검토 후 반영될 예정이에요.",
		MsgModificationLocked: "검토 중인 수정 요청이 있어 편집할 수 없어요.",
		MsgConfirmModify:      "발표 정보 수정을 요청할까요?",
		MsgAuditCancelled:     "수정 요청을 취소했어요.",
		MsgSessionWarning:     "* 발표 목록은 발표자 사정에 따라 변동될 수 있습니다.",
		MsgSubmit:             "제출",
		MsgPortalTitle:        "참가자 포털",
		MsgSessionsTitle:      "발표 목록",
		MsgEditSession:        "발표 정보 수정",
		MsgEditSpeaker:        "발표자 정보 수정",
		MsgCancelRequest:      "수정 요청 취소",
		MsgFieldRequired:      "필수 항목입니다.",
		MsgFieldTooLong:       "입력값이 너무 깁니다.",
		MsgFieldURL:           "올바른 URL을 입력해주세요.",
		MsgSignInRequired:     "로그인이 필요합니다.",
	},
	English: {
		MsgSaved:              "Saved.",
		MsgCreated:            "Created.",
		MsgDeleted:            "Deleted.",
		MsgConfirmDelete:      "Are you sure you want to delete this? This cannot be undone.",
		MsgCreateNew:          "Add new",
		MsgEditPrefix:         "Edit: ",
		MsgDelete:             "Delete",
		MsgModify:             "Save",
		MsgField:              "Field",
		MsgValue:              "Value",
		MsgLink:               "Link",
		MsgErrorWrapper:       "An error occurred, please check the console. If the problem persists, contact the website team with the console output!",
		MsgUnknownError:       "An unknown problem occurred, please try again later.",
		MsgBusy:               "A previous request is still in progress.",
		MsgInvalidForm:        "Please check the highlighted fields.",
		MsgModificationSent:   "Presentation information update requested. It will be applied after review.",
		MsgModificationLocked: "A modification request is under review, editing is locked.",
		MsgConfirmModify:      "Request a presentation information update?",
		MsgAuditCancelled:     "Modification request cancelled.",
		MsgSessionWarning:     "* The list of sessions may change due to the speaker's circumstances.",
		MsgSubmit:             "Submit",
		MsgPortalTitle:        "Participant Portal",
		MsgSessionsTitle:      "Sessions",
		MsgEditSession:        "Edit Session Information",
		MsgEditSpeaker:        "Edit Speaker Information",
		MsgCancelRequest:      "Cancel request",
		MsgFieldRequired:      "This field is required.",
		MsgFieldTooLong:       "This value is too long.",
		MsgFieldURL:           "Enter a valid URL.",
		MsgSignInRequired:     "Please sign in first.",
	},
}

// Parse normalizes a language tag such as "en-US" to a supported Language,
// falling back to Korean.
func Parse(tag string) Language {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if strings.HasPrefix(tag, "en") {
		return English
	}
	return Korean
}

// T returns the message for key in lang, falling back to Korean and then to
// the key itself.
func T(lang Language, key string) string {
	if msgs, ok := catalog[lang]; ok {
		if msg, ok := msgs[key]; ok {
			return msg
		}
	}
	if msg, ok := catalog[Korean][key]; ok {
		return msg
	}
	return key
}

// Localized holds a value in both display languages.
type Localized struct {
	Ko string `json:"ko"`
	En string `json:"en"`
}

// Get returns the value for lang, falling back to the other language when empty.
func (l Localized) Get(lang Language) string {
	if lang == English && l.En != "" {
		return l.En
	}
	if l.Ko != "" {
		return l.Ko
	}
	return l.En
}

type contextKey struct{}

// WithLanguage returns a context carrying the caller's display language.
func WithLanguage(ctx context.Context, lang Language) context.Context {
	return context.WithValue(ctx, contextKey{}, lang)
}

// FromContext returns the language stored in ctx, or fallback.
func FromContext(ctx context.Context, fallback Language) Language {
	if lang, ok := ctx.Value(contextKey{}).(Language); ok && lang != "" {
		return lang
	}
	return fallback
}

package core

import (
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/es"
	ut "github.com/go-playground/universal-translator"
)

// Notice keys.
const (
	NoticeLoadFailed        = "load_failed"
	NoticeUpdateFailed      = "update_failed"
	NoticeDeleteFailed      = "delete_failed"
	NoticeDuplicateFailed   = "duplicate_failed"
	NoticeMoveFailed        = "move_failed"
	NoticeCreateFailed      = "create_failed"
	NoticeSessionExpired    = "session_expired"
	NoticePublishedHidden   = "published_hidden"
	NoticeArchivedReadOnly  = "archived_read_only"
	NoticeConfirmDelete     = "confirm_delete"
	NoticeConfirmDuplicate  = "confirm_duplicate"
	NoticeConfirmUnenroll   = "confirm_unenroll"
	NoticeVisibilityUpdated = "visibility_updated"
	NoticeDeleted           = "deleted"
	NoticeDuplicated        = "duplicated"
	NoticeCreated           = "created"
	NoticeSaved             = "saved"
	NoticeMoved             = "moved"
	NoticeCanceled          = "canceled"
	NoticeNotFound          = "not_found"
	NoticeNotEditable       = "not_editable"
	NoticeLoginFailed       = "login_failed"
	NoticeLoggedIn          = "logged_in"
	NoticeLoggedOut         = "logged_out"
	NoticeNotLoggedIn       = "not_logged_in"
	NoticeEmpty             = "empty"
)

type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

type (
	// Notifier surfaces transient notifications (toasts).
	Notifier interface {
		Notify(level Level, msg string)
	}

	// Confirmer asks a blocking yes/no question before a destructive call is made.
	Confirmer interface {
		Confirm(prompt string) bool
	}
)

var noticeTexts = map[string]map[string]string{
	"es": {
		NoticeLoadFailed:        "No se pudo cargar el contenido",
		NoticeUpdateFailed:      "No se pudo actualizar",
		NoticeDeleteFailed:      "No se pudo eliminar",
		NoticeDuplicateFailed:   "No se pudo duplicar",
		NoticeMoveFailed:        "No se pudo mover",
		NoticeCreateFailed:      "No se pudo crear",
		NoticeSessionExpired:    "Tu sesión ha expirado. Inicia sesión de nuevo.",
		NoticePublishedHidden:   "El curso está publicado pero oculto: los estudiantes no lo verán",
		NoticeArchivedReadOnly:  "Los cursos archivados no se pueden editar",
		NoticeConfirmDelete:     "¿Eliminar «{0}»? Esta acción no se puede deshacer.",
		NoticeConfirmDuplicate:  "¿Duplicar «{0}»?",
		NoticeConfirmUnenroll:   "¿Dar de baja esta matriculación?",
		NoticeVisibilityUpdated: "Visibilidad actualizada",
		NoticeDeleted:           "Eliminado",
		NoticeDuplicated:        "Duplicado",
		NoticeCreated:           "Creado",
		NoticeSaved:             "Guardado",
		NoticeMoved:             "Movido",
		NoticeCanceled:          "Cancelado",
		NoticeNotFound:          "No encontrado: {0}",
		NoticeNotEditable:       "No puedes editar este contenido",
		NoticeLoginFailed:       "No se pudo iniciar sesión",
		NoticeLoggedIn:          "Sesión iniciada como {0} ({1})",
		NoticeLoggedOut:         "Sesión cerrada",
		NoticeNotLoggedIn:       "No has iniciado sesión",
		NoticeEmpty:             "Sin resultados",
	},
	"en": {
		NoticeLoadFailed:        "Could not load content",
		NoticeUpdateFailed:      "Could not update",
		NoticeDeleteFailed:      "Could not delete",
		NoticeDuplicateFailed:   "Could not duplicate",
		NoticeMoveFailed:        "Could not move",
		NoticeCreateFailed:      "Could not create",
		NoticeSessionExpired:    "Your session has expired. Please log in again.",
		NoticePublishedHidden:   "The course is published but hidden: students will not see it",
		NoticeArchivedReadOnly:  "Archived courses cannot be edited",
		NoticeConfirmDelete:     "Delete \"{0}\"? This cannot be undone.",
		NoticeConfirmDuplicate:  "Duplicate \"{0}\"?",
		NoticeConfirmUnenroll:   "Remove this enrollment?",
		NoticeVisibilityUpdated: "Visibility updated",
		NoticeDeleted:           "Deleted",
		NoticeDuplicated:        "Duplicated",
		NoticeCreated:           "Created",
		NoticeSaved:             "Saved",
		NoticeMoved:             "Moved",
		NoticeCanceled:          "Canceled",
		NoticeNotFound:          "Not found: {0}",
		NoticeNotEditable:       "You cannot edit this content",
		NoticeLoginFailed:       "Could not log in",
		NoticeLoggedIn:          "Logged in as {0} ({1})",
		NoticeLoggedOut:         "Logged out",
		NoticeNotLoggedIn:       "You are not logged in",
		NoticeEmpty:             "No results",
	},
}

// Notices renders localized user-facing notices.
type Notices struct {
	translator ut.Translator
}

// NewNotices returns the notices for locale ("es" or "en"); unknown locales fall back to "es".
func NewNotices(locale string) *Notices {
	_es := es.New()
	uni := ut.New(_es, _es, en.New())
	for loc, texts := range noticeTexts {
		trans, _ := uni.GetTranslator(loc)
		for key, text := range texts {
			_ = trans.Add(key, text, false)
		}
	}
	trans, found := uni.GetTranslator(CleanString(locale, true /* lower */))
	if !found {
		trans, _ = uni.GetTranslator("es")
	}
	return &Notices{translator: trans}
}

// T renders the notice for key; unknown keys are returned as is.
func (n *Notices) T(key string, params ...string) string {
	s, err := n.translator.T(key, params...)
	if err != nil {
		return key
	}
	return s
}

// Failure renders the notice for key, followed by the server-supplied message of err, if any.
func (n *Notices) Failure(key string, err error) string {
	msg := n.T(key)
	if detail := ServerMessage(err); detail != "" {
		msg += ": " + detail
	}
	return msg
}

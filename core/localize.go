package core

import (
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	supportedLanguages = []language.Tag{language.English, language.Spanish}
	languageMatcher    = language.NewMatcher(supportedLanguages)

	kindMessages = map[Kind]map[language.Tag]string{
		KindNetwork: {
			language.English: "Unable to reach the server. Please check your connection and try again.",
			language.Spanish: "No se pudo conectar con el servidor. Revisa tu conexión e inténtalo de nuevo.",
		},
		KindAuth: {
			language.English: "Invalid credentials or insufficient permissions.",
			language.Spanish: "Credenciales inválidas o permisos insuficientes.",
		},
		KindValidation: {
			language.English: "Please check the highlighted fields.",
			language.Spanish: "Revisa los campos marcados.",
		},
		KindNotFound: {
			language.English: "The requested item was not found.",
			language.Spanish: "No se encontró el elemento solicitado.",
		},
		KindAlreadyExists: {
			language.English: "An account with this email already exists.",
			language.Spanish: "Ya existe una cuenta con este correo.",
		},
		KindStorage: {
			language.English: "Failed to save your data on this device.",
			language.Spanish: "No se pudieron guardar tus datos en este dispositivo.",
		},
		KindInternal: {
			language.English: "Something went wrong. Please try again.",
			language.Spanish: "Algo salió mal. Inténtalo de nuevo.",
		},
	}
)

func init() {
	for kind, msgs := range kindMessages {
		for tag, msg := range msgs {
			_ = message.SetString(tag, messageKey(kind), msg)
		}
	}
}

func messageKey(kind Kind) string {
	return "error." + kind.String()
}

// LanguageTag maps a settings language ("English", "Spanish", or a BCP 47 tag) to a
// supported language.
func LanguageTag(lang string) language.Tag {
	var tag language.Tag
	switch strings.ToLower(CleanString(lang)) {
	case "", "english":
		tag = language.English
	case "spanish", "español", "espanol":
		tag = language.Spanish
	default:
		t, err := language.Parse(lang)
		if err != nil {
			return language.English
		}
		tag = t
	}
	_, idx, _ := languageMatcher.Match(tag)
	return supportedLanguages[idx]
}

// Localize renders the user-facing message of err in lang.
// Internal errors fall back to the provider's message when one was given.
func Localize(err error, lang string) string {
	if err == nil {
		return ""
	}
	kind := KindOf(err)
	if kind == KindInternal {
		var e *Error
		if errors.As(err, &e) && e.Msg != "" {
			return e.Msg
		}
	}
	return message.NewPrinter(LanguageTag(lang)).Sprintf(messageKey(kind))
}
